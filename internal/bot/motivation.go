package bot

import (
	"fmt"
	"math/rand"
	"strings"

	"acebot/pkg/logger"
)

var speeches = []string{
	"Success is the sum of small efforts, repeated day in and day out. - Robert Collier",
	"The secret of getting ahead is getting started. - Mark Twain",
	"It always seems impossible until it is done. - Nelson Mandela",
	"Don't watch the clock; do what it does. Keep going. - Sam Levenson",
	"The expert in anything was once a beginner. - Helen Hayes",
	"Education is the most powerful weapon which you can use to change the world. - Nelson Mandela",
	"The beautiful thing about learning is that no one can take it away from you. - B.B. King",
	"Push yourself, because no one else is going to do it for you.",
	"There are no shortcuts to any place worth going. - Beverly Sills",
	"Strive for progress, not perfection.",
	"The future belongs to those who believe in the beauty of their dreams. - Eleanor Roosevelt",
	"Hard work beats talent when talent doesn't work hard. - Tim Notke",
	"Your limitation is only your imagination.",
	"A little progress each day adds up to big results.",
	"Failure is the opportunity to begin again more intelligently. - Henry Ford",
}

// sendMotivation replies with a random quote, formatted as quote + author
// when one is present.
func (b *Bot) sendMotivation(chatID int64, log *logger.Logger) {
	selected := speeches[rand.Intn(len(speeches))]

	var message string
	if idx := strings.LastIndex(selected, " - "); idx >= 0 {
		quote := strings.TrimSpace(selected[:idx])
		author := strings.TrimSpace(selected[idx+3:])
		message = fmt.Sprintf("💬 \"%s\"\n\n— %s", quote, author)
	} else {
		message = fmt.Sprintf("💬 \"%s\"", selected)
	}

	b.reply(chatID, message, mainMenu(), log)
}
