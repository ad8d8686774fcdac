package bot

// Menu button labels. Dispatch matches these exactly, so they live in one
// place and the keyboards reuse them.
const (
	MenuResources      = "📚 Resources"
	MenuQuizzes        = "🧠 Quizzes"
	MenuMotivation     = "✨ Motivation"
	MenuAIChat         = "🤖 AI Chat"
	MenuPastExams      = "📝 Past Exams"
	MenuExamTips       = "💡 Exam Tips"
	MenuStudyTips      = "📖 Study Tips"
	MenuAssignmentHelp = "✍️ Assignment Help"
	MenuUpgrade        = "💎 Upgrade"
	MenuHelp           = "🆘 Help"
	MenuContactUs      = "📧 Contact Us"
	MenuInvite         = "🤝 Invite and Earn"
	MenuExitAIChat     = "⬅️ Exit AI Chat"

	MenuTextBooks     = "📖 Text Books"
	MenuTeachersGuide = "📚 Teacher's Guide"
	MenuShortNotes    = "📝 Short Notes"
	MenuCheatSheets   = "🧮 Cheat Sheets"

	MenuBackToMain      = "⬅️ Back to Main Menu"
	MenuBackToResources = "⬅️ Back to Resources"

	ChoiceStreamNatural = "Natural"
	ChoiceStreamSocial  = "Social"

	ChoicePaid    = "✅ Yes, I have paid"
	ChoiceNotPaid = "❌ No, I haven't paid yet"
)

const (
	premiumMessage = "This feature is for premium users only. Please upgrade " +
		"to access this content. Tap '💎 Upgrade' from the main menu to learn more!"

	apologyMessage = "Sorry, something went wrong on our side. Please try again later."

	unrecognizedMessage = "I didn't understand that. Please choose from the " +
		"menu options or type a command."

	paymentDetailsMessage = "To upgrade to premium, please make your payment " +
		"and then select 'Yes, I have paid'.\n\n" +
		"Payment Details: Commercial Bank, Account No: 1000-2345-6789, Beneficiary: AceBot Education\n" +
		"Alternatively, you can pay via Mobile Money: 0911-000-000"
)

// subjectKeys maps the human-facing subject labels to catalog qualifiers.
var subjectKeys = map[string]string{
	"mathematics": "math",
	"english":     "english",
	"physics":     "physics",
	"biology":     "biology",
	"chemistry":   "chemistry",
	"aptitude":    "aptitude",
	"geography":   "geography",
	"history":     "history",
	"economics":   "economics",
}

// cheatSheetKeys maps the cheat-sheet button labels to catalog qualifiers.
var cheatSheetKeys = map[string]string{
	"🧮 Math Formulas":    "math",
	"📝 English Tips":     "english",
	"⚛ Physics Formulas": "physics",
	"🧬 Biology Cheats":   "biology",
	"🧪 Chemistry Cheats": "chemistry",
	"🧠 Aptitude Tricks":  "aptitude",
	"🗺 Geography Cheats": "geography",
	"📜 History Cheats":   "history",
	"💹 Economics Cheats": "economics",
}
