package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"acebot/internal/ai"
	"acebot/internal/catalog"
	"acebot/internal/models"
	"acebot/pkg/logger"
)

// startOnboarding creates the record if needed and prompts for the stream,
// or shows the main menu when the stream is already set. Flows that find a
// user without a stream route here as state recovery.
func (b *Bot) startOnboarding(ctx context.Context, msg *tgbotapi.Message, user *models.User, log *logger.Logger) {
	chatID := chatOf(msg)

	if user == nil {
		user = models.NewUser(msg.From.ID, msg.From.UserName)
		if err := b.store.SaveUser(ctx, user); err != nil {
			log.Errorw("Failed to create user record", "error", err)
			b.reply(chatID, apologyMessage, nil, log)
			return
		}
		log.Infow("New user created", "username", user.Username)
	}

	if user.Stream == models.StreamNone {
		b.reply(chatID, "Welcome! Please select your stream:", streamMenu(), log)
		return
	}

	b.reply(chatID, fmt.Sprintf("Hello %s! Choose an option:", msg.From.FirstName), mainMenu(), log)
}

// handleStart handles /start, capturing an optional referral code. The
// referral is recorded only at record creation, and only when it names an
// existing user other than the newcomer.
func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message, user *models.User, log *logger.Logger) {
	chatID := chatOf(msg)

	if user == nil {
		user = models.NewUser(msg.From.ID, msg.From.UserName)

		if refID := parseReferrer(msg.CommandArguments(), user.UserID); refID != 0 {
			referrer, err := b.store.FindUser(ctx, refID)
			if err != nil {
				log.Errorw("Failed to look up referrer", "referrer_id", refID, "error", err)
			} else if referrer != nil {
				user.ReferredBy = refID
				log.Infow("Referral captured", "referrer_id", refID)
			}
		}

		if err := b.store.SaveUser(ctx, user); err != nil {
			log.Errorw("Failed to create user record", "error", err)
			b.reply(chatID, apologyMessage, nil, log)
			return
		}
		log.Infow("New user created", "username", user.Username)
	}

	if user.Stream == models.StreamNone {
		b.reply(chatID, "Welcome! Please select your stream:", streamMenu(), log)
		return
	}

	b.reply(chatID, fmt.Sprintf("Hello %s! Choose an option:", msg.From.FirstName), mainMenu(), log)
}

func parseReferrer(arg string, selfID int64) int64 {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return 0
	}
	refID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || refID <= 0 || refID == selfID {
		return 0
	}
	return refID
}

// setStream records the chosen stream and shows the main menu.
func (b *Bot) setStream(ctx context.Context, msg *tgbotapi.Message, user *models.User, log *logger.Logger) {
	chatID := chatOf(msg)

	stream := models.StreamNatural
	if strings.TrimSpace(msg.Text) == ChoiceStreamSocial {
		stream = models.StreamSocial
	}

	user.Stream = stream
	user.LastActive = time.Now().UTC()
	if err := b.store.SaveUser(ctx, user); err != nil {
		log.Errorw("Failed to save stream selection", "error", err)
		b.reply(chatID, apologyMessage, nil, log)
		return
	}
	log.Infow("Stream set", "stream", stream)

	b.reply(chatID, fmt.Sprintf("Stream set to %s! Choose an option:", capitalize(string(stream))), mainMenu(), log)
}

// startSubjectFlow begins the premium-gated notes or quizzes flow: the next
// subject message is consumed by the registered pending action.
func (b *Bot) startSubjectFlow(ctx context.Context, chatID int64, user *models.User,
	action models.PendingAction, log *logger.Logger) {

	if !user.IsPremium {
		log.Infow("Premium content blocked", "action", action)
		b.reply(chatID, premiumMessage, mainMenu(), log)
		return
	}

	user.PendingAction = action
	if err := b.store.SaveUser(ctx, user); err != nil {
		log.Errorw("Failed to save pending action", "error", err)
		b.reply(chatID, apologyMessage, nil, log)
		return
	}

	if action == models.ActionSelectQuizSubject {
		b.reply(chatID, fmt.Sprintf("Select subject for %s stream quizzes:", capitalize(string(user.Stream))),
			subjectsMenu(user.Stream, MenuBackToMain), log)
		return
	}
	b.reply(chatID, fmt.Sprintf("Select subject for %s stream notes:", capitalize(string(user.Stream))),
		subjectsMenu(user.Stream, MenuBackToResources), log)
}

// processSubject consumes the subject for a pending notes or quizzes flow.
// The pending action is cleared whatever the outcome.
func (b *Bot) processSubject(ctx context.Context, chatID int64, user *models.User, text string, log *logger.Logger) {
	action := user.PendingAction
	user.PendingAction = models.ActionNone
	if err := b.store.SaveUser(ctx, user); err != nil {
		log.Errorw("Failed to clear pending action", "error", err)
	}

	// Gating holds on the continuation path too, not just on menu entry.
	if !user.IsPremium {
		log.Infow("Premium content blocked", "action", action)
		b.reply(chatID, premiumMessage, mainMenu(), log)
		return
	}

	subject := subjectKeys[strings.ToLower(text)]

	if action == models.ActionSelectQuizSubject {
		b.sendFolder(ctx, chatID, folderRequest{
			key:           catalog.Key(string(user.Stream), subject, "quizzes"),
			heading:       fmt.Sprintf("🧠 %s Quizzes (%s):", capitalize(text), capitalize(string(user.Stream))),
			notConfigured: fmt.Sprintf("Quizzes not available for %s yet.", capitalize(text)),
			empty:         "No quizzes found for this subject.",
			markup:        mainMenu(),
		}, log)
		return
	}

	b.sendFolder(ctx, chatID, folderRequest{
		key:           catalog.Key(string(user.Stream), subject, "notes"),
		heading:       fmt.Sprintf("📝 %s Notes (%s):", capitalize(text), capitalize(string(user.Stream))),
		notConfigured: fmt.Sprintf("Notes not available for %s yet.", capitalize(text)),
		empty:         "No notes available for this subject.",
		markup:        resourcesMenu(),
	}, log)
}

// showCheatSheets shows the premium-gated cheat-sheet picker. The sheet
// labels are fixed buttons, so no pending action is needed.
func (b *Bot) showCheatSheets(chatID int64, user *models.User, log *logger.Logger) {
	if !user.IsPremium {
		log.Info("Premium content blocked: cheat sheets")
		b.reply(chatID, premiumMessage, mainMenu(), log)
		return
	}
	b.reply(chatID, fmt.Sprintf("Select %s stream cheat sheet:", capitalize(string(user.Stream))),
		cheatSheetsMenu(user.Stream), log)
}

func (b *Bot) sendCheatSheet(ctx context.Context, chatID int64, user *models.User,
	qualifier, label string, log *logger.Logger) {

	if !user.IsPremium {
		log.Info("Premium content blocked: cheat sheets")
		b.reply(chatID, premiumMessage, mainMenu(), log)
		return
	}

	b.sendFolder(ctx, chatID, folderRequest{
		key:           catalog.Key(string(user.Stream), qualifier, "cheats"),
		heading:       fmt.Sprintf("📚 %s:", label),
		notConfigured: fmt.Sprintf("Cheat sheets not available for %s yet.", label),
		empty:         "No cheat sheets found.",
		markup:        resourcesMenu(),
	}, log)
}

// sendGradeFolder serves the textbook / teacher's guide lookups for one
// grade. Not premium gated.
func (b *Bot) sendGradeFolder(ctx context.Context, chatID int64, user *models.User,
	grade, purpose string, log *logger.Logger) {

	category := "textbooks"
	display := "Textbooks"
	if purpose == "Guide" {
		category = "teachers_guide"
		display = "Teacher's Guides"
	}

	b.sendFolder(ctx, chatID, folderRequest{
		key:     catalog.Key(string(user.Stream), "grade"+grade, category),
		heading: fmt.Sprintf("📚 %s for Grade %s (%s):", display, grade, capitalize(string(user.Stream))),
		notConfigured: fmt.Sprintf("Resources not available for %s Grade %s (%s) yet.",
			display, grade, capitalize(string(user.Stream))),
		empty:  fmt.Sprintf("No resources available for %s Grade %s.", display, grade),
		markup: resourcesMenu(),
	}, log)
}

// startPastExams asks for an exam year. Entry is open to everyone; the
// premium check applies to the recent years at selection time.
func (b *Bot) startPastExams(ctx context.Context, chatID int64, user *models.User, log *logger.Logger) {
	user.PendingAction = models.ActionSelectExamYear
	if err := b.store.SaveUser(ctx, user); err != nil {
		log.Errorw("Failed to save pending action", "error", err)
		b.reply(chatID, apologyMessage, nil, log)
		return
	}
	b.reply(chatID, "Select exam year:", examYearsMenu(), log)
}

func (b *Bot) processExamYear(ctx context.Context, chatID int64, user *models.User, text string, log *logger.Logger) {
	user.PendingAction = models.ActionNone
	if err := b.store.SaveUser(ctx, user); err != nil {
		log.Errorw("Failed to clear pending action", "error", err)
	}

	year, err := strconv.Atoi(text)
	if err != nil || year < 2000 || year > 2017 {
		b.reply(chatID, "Invalid year selected. Please choose a year between 2000 and 2017.", mainMenu(), log)
		return
	}

	// Exams from 2014 on are premium content.
	if year >= 2014 && !user.IsPremium {
		log.Infow("Premium content blocked", "exam_year", year)
		b.reply(chatID, premiumMessage, mainMenu(), log)
		return
	}

	b.sendFolder(ctx, chatID, folderRequest{
		key:     catalog.Key(string(user.Stream), fmt.Sprint(year), "exam"),
		heading: fmt.Sprintf("📚 Past Exam %d (%s):", year, capitalize(string(user.Stream))),
		notConfigured: fmt.Sprintf("Past exam for %d not available for %s stream yet.",
			year, capitalize(string(user.Stream))),
		empty:  fmt.Sprintf("No past exam files found for %d.", year),
		markup: mainMenu(),
	}, log)
}

// sendTips serves the premium exam-tips / study-tips folders.
func (b *Bot) sendTips(ctx context.Context, chatID int64, user *models.User,
	category, heading string, log *logger.Logger) {

	if !user.IsPremium {
		log.Infow("Premium content blocked", "category", category)
		b.reply(chatID, premiumMessage, mainMenu(), log)
		return
	}

	display := strings.ReplaceAll(category, "_", " ")
	b.sendFolder(ctx, chatID, folderRequest{
		key:           catalog.Key(string(user.Stream), category),
		heading:       fmt.Sprintf("%s (%s):", heading, capitalize(string(user.Stream))),
		notConfigured: fmt.Sprintf("%s not available for %s stream yet.", capitalize(display), capitalize(string(user.Stream))),
		empty:         fmt.Sprintf("No %s found for %s stream.", display, capitalize(string(user.Stream))),
		markup:        mainMenu(),
	}, log)
}

// startAIChat switches the user into AI chat mode: every following text
// message goes to the completion backend until the exit button.
func (b *Bot) startAIChat(ctx context.Context, chatID int64, user *models.User, log *logger.Logger) {
	if !user.IsPremium {
		log.Info("Premium content blocked: AI chat")
		b.reply(chatID, premiumMessage, mainMenu(), log)
		return
	}

	user.PendingAction = models.ActionAIChat
	if err := b.store.SaveUser(ctx, user); err != nil {
		log.Errorw("Failed to save pending action", "error", err)
		b.reply(chatID, apologyMessage, nil, log)
		return
	}

	b.reply(chatID, "🤖 Ask me anything about your subjects! Type your question:", aiChatMenu(), log)
}

func (b *Bot) handleAIChat(ctx context.Context, msg *tgbotapi.Message, user *models.User, log *logger.Logger) {
	chatID := chatOf(msg)

	if !user.IsPremium {
		user.PendingAction = models.ActionNone
		if err := b.store.SaveUser(ctx, user); err != nil {
			log.Errorw("Failed to clear pending action", "error", err)
		}
		b.reply(chatID, premiumMessage, mainMenu(), log)
		return
	}

	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		log.Errorw("Failed to send chat action", "error", err)
	}
	b.reply(chatID, "Typing... ✍️", aiChatMenu(), log)

	var turns []ai.Turn
	if b.history != nil {
		entries, err := b.history.Recent(ctx, user.UserID)
		if err != nil {
			log.Errorw("Failed to load chat history", "error", err)
		}
		for _, e := range entries {
			turns = append(turns, ai.Turn{Role: e.Role, Content: e.Content})
		}
	}

	answer, err := b.ai.Complete(ctx, msg.Text, turns)
	if err != nil {
		log.Errorw("AI completion failed", "error", err)
		b.reply(chatID, "🤖 Sorry, I'm having trouble connecting to the AI right now. Please try again later.",
			aiChatMenu(), log)
		return
	}

	if b.history != nil {
		if err := b.history.Append(ctx, user.UserID, ai.RoleUser, msg.Text); err != nil {
			log.Errorw("Failed to append chat history", "error", err)
		}
		if err := b.history.Append(ctx, user.UserID, ai.RoleAssistant, answer); err != nil {
			log.Errorw("Failed to append chat history", "error", err)
		}
	}

	// pending_action stays ai_chat so the conversation continues.
	b.reply(chatID, answer, aiChatMenu(), log)
}

func (b *Bot) exitAIChat(ctx context.Context, chatID int64, user *models.User, log *logger.Logger) {
	user.PendingAction = models.ActionNone
	if err := b.store.SaveUser(ctx, user); err != nil {
		log.Errorw("Failed to clear pending action", "error", err)
	}
	if b.history != nil {
		if err := b.history.Clear(ctx, user.UserID); err != nil {
			log.Errorw("Failed to clear chat history", "error", err)
		}
	}
	b.reply(chatID, "👋 Exiting AI Chat. How else can I help you?", mainMenu(), log)
}

// folderRequest describes one content lookup: the catalog key plus the
// texts for each outcome.
type folderRequest struct {
	key           string
	heading       string
	notConfigured string
	empty         string
	markup        interface{}
}

// sendFolder runs the shared content-lookup algorithm: resolve the catalog
// key, list the folder, render a name + link line per file.
func (b *Bot) sendFolder(ctx context.Context, chatID int64, req folderRequest, log *logger.Logger) {
	folderID, ok := b.catalog.Resolve(req.key)
	if !ok {
		log.Infow("Catalog entry not configured", "key", req.key)
		b.reply(chatID, req.notConfigured, req.markup, log)
		return
	}

	files, err := b.files.ListFiles(ctx, folderID)
	if err != nil {
		log.Errorw("Failed to list folder", "key", req.key, "error", err)
		b.reply(chatID, apologyMessage, req.markup, log)
		return
	}
	if len(files) == 0 {
		log.Infow("Folder is empty", "key", req.key)
		b.reply(chatID, req.empty, req.markup, log)
		return
	}

	var sb strings.Builder
	sb.WriteString(req.heading + "\n\n")
	for _, f := range files {
		fmt.Fprintf(&sb, "📄 %s\n🔗 %s\n\n", f.Name, f.ViewLink)
	}
	b.reply(chatID, sb.String(), req.markup, log)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
