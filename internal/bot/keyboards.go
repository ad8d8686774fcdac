package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"acebot/internal/models"
)

func mainMenu() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(MenuResources),
			tgbotapi.NewKeyboardButton(MenuQuizzes),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(MenuMotivation),
			tgbotapi.NewKeyboardButton(MenuAIChat),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(MenuPastExams),
			tgbotapi.NewKeyboardButton(MenuExamTips),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(MenuStudyTips),
			tgbotapi.NewKeyboardButton(MenuAssignmentHelp),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(MenuUpgrade),
			tgbotapi.NewKeyboardButton(MenuHelp),
			tgbotapi.NewKeyboardButton(MenuContactUs),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(MenuInvite),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func streamMenu() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ChoiceStreamNatural),
			tgbotapi.NewKeyboardButton(ChoiceStreamSocial),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func resourcesMenu() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(MenuTextBooks),
			tgbotapi.NewKeyboardButton(MenuTeachersGuide),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(MenuShortNotes),
			tgbotapi.NewKeyboardButton(MenuCheatSheets),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(MenuBackToMain),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// gradesMenu builds the grade picker; purpose is appended to each label
// ("Textbooks" or "Guide").
func gradesMenu(purpose string) tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Grade 9 "+purpose),
			tgbotapi.NewKeyboardButton("Grade 10 "+purpose),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Grade 11 "+purpose),
			tgbotapi.NewKeyboardButton("Grade 12 "+purpose),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(MenuBackToResources),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// subjectsMenu builds the subject picker for the user's stream; back
// navigates to the given menu label (resources for notes, main for quizzes).
func subjectsMenu(stream models.Stream, backLabel string) tgbotapi.ReplyKeyboardMarkup {
	third := tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton("Physics"),
		tgbotapi.NewKeyboardButton("Biology"),
	)
	fourth := tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton("Chemistry"),
		tgbotapi.NewKeyboardButton("Aptitude"),
	)
	if stream == models.StreamSocial {
		third = tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Geography"),
			tgbotapi.NewKeyboardButton("History"),
		)
		fourth = tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Economics"),
			tgbotapi.NewKeyboardButton("Aptitude"),
		)
	}

	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Mathematics"),
			tgbotapi.NewKeyboardButton("English"),
		),
		third,
		fourth,
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(backLabel),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func cheatSheetsMenu(stream models.Stream) tgbotapi.ReplyKeyboardMarkup {
	second := tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton("⚛ Physics Formulas"),
		tgbotapi.NewKeyboardButton("🧬 Biology Cheats"),
	)
	third := tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton("🧪 Chemistry Cheats"),
		tgbotapi.NewKeyboardButton("🧠 Aptitude Tricks"),
	)
	if stream == models.StreamSocial {
		second = tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🗺 Geography Cheats"),
			tgbotapi.NewKeyboardButton("📜 History Cheats"),
		)
		third = tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("💹 Economics Cheats"),
			tgbotapi.NewKeyboardButton("🧠 Aptitude Tricks"),
		)
	}

	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🧮 Math Formulas"),
			tgbotapi.NewKeyboardButton("📝 English Tips"),
		),
		second,
		third,
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(MenuBackToResources),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func examYearsMenu() tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	var row []tgbotapi.KeyboardButton
	for year := 2000; year <= 2017; year++ {
		row = append(row, tgbotapi.NewKeyboardButton(fmt.Sprint(year)))
		if len(row) == 4 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(MenuBackToMain),
	))

	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func aiChatMenu() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(MenuExitAIChat),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func upgradeMenu() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ChoicePaid),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ChoiceNotPaid),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(MenuBackToMain),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// approvalKeyboard is the moderator decision control attached to a
// forwarded payment proof. Callback data identifies the requester.
func approvalKeyboard(userID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", fmt.Sprintf("approve_%d", userID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Decline", fmt.Sprintf("decline_%d", userID)),
		),
	)
}
