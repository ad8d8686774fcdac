package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"acebot/internal/ai"
	"acebot/internal/catalog"
	"acebot/internal/history"
	"acebot/internal/models"
	"acebot/pkg/logger"
)

// api is the slice of the Telegram client the flows use. Tests substitute
// a recording fake.
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Store is the user record store. FindUser returns (nil, nil) when no
// record exists yet.
type Store interface {
	FindUser(ctx context.Context, userID int64) (*models.User, error)
	SaveUser(ctx context.Context, u *models.User) error
}

// FileLister is the document-store backend behind the content catalog.
type FileLister interface {
	ListFiles(ctx context.Context, folderID string) ([]models.File, error)
}

// Completer is the AI-completion backend for free-text questions.
type Completer interface {
	Complete(ctx context.Context, question string, history []ai.Turn) (string, error)
}

// ChatHistory keeps the rolling AI conversation per user. Optional: a nil
// ChatHistory disables history without disabling AI chat.
type ChatHistory interface {
	Append(ctx context.Context, userID int64, role, content string) error
	Recent(ctx context.Context, userID int64) ([]history.Entry, error)
	Clear(ctx context.Context, userID int64) error
}

// Options carries the static bot settings that are not service handles.
type Options struct {
	Moderators     []int64
	SupportContact string
	ReferralReward float64
}

// Bot owns the update loop and the conversation state machine. All
// collaborators are injected; there is no package-level state.
type Bot struct {
	api     api
	tg      *tgbotapi.BotAPI
	store   Store
	files   FileLister
	ai      Completer
	history ChatHistory
	catalog catalog.Catalog
	logger  *logger.Logger

	username       string
	moderators     []int64
	supportContact string
	referralReward float64
}

func New(token string, store Store, files FileLister, completer Completer,
	hist ChatHistory, cat catalog.Catalog, opts Options, log *logger.Logger) (*Bot, error) {

	tg, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	log.Infow("Authorized on Telegram", "username", tg.Self.UserName)

	return &Bot{
		api:            tg,
		tg:             tg,
		store:          store,
		files:          files,
		ai:             completer,
		history:        hist,
		catalog:        cat,
		logger:         log,
		username:       tg.Self.UserName,
		moderators:     opts.Moderators,
		supportContact: opts.SupportContact,
		referralReward: opts.ReferralReward,
	}, nil
}

// Start begins receiving updates from Telegram via polling.
func (b *Bot) Start(ctx context.Context) error {
	_, err := b.tg.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true})
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.tg.GetUpdatesChan(updateConfig)

	b.logger.Info("Started receiving Telegram updates")
	go b.handleUpdates(ctx, updates)

	return nil
}

// Stop gracefully shuts down the update loop.
func (b *Bot) Stop(ctx context.Context) error {
	b.tg.StopReceivingUpdates()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(500 * time.Millisecond):
		return nil
	}
}

func (b *Bot) handleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		go func(update tgbotapi.Update) {
			log := b.logger.With("trace_id", uuid.NewString(), "update_id", update.UpdateID)

			// One bad update must not take the loop down.
			defer func() {
				if r := recover(); r != nil {
					log.Errorw("Recovered from panic while processing update", "panic", r)
				}
			}()

			switch {
			case update.Message != nil:
				b.handleMessage(ctx, update.Message, log)
			case update.CallbackQuery != nil:
				b.handleCallback(ctx, update.CallbackQuery, log)
			}
		}(update)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message, log *logger.Logger) {
	userID := msg.From.ID
	log = log.With("user_id", userID)

	user, err := b.store.FindUser(ctx, userID)
	if err != nil {
		log.Errorw("Failed to load user record", "error", err)
		b.reply(chatOf(msg), apologyMessage, nil, log)
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user, log)
		return
	}

	// No record or no stream yet: everything routes through onboarding
	// first. This is state recovery, not an error.
	if user == nil || user.Stream == models.StreamNone {
		if user != nil && isStreamChoice(msg.Text) {
			b.setStream(ctx, msg, user, log)
			return
		}
		b.startOnboarding(ctx, msg, user, log)
		return
	}

	user.LastActive = time.Now().UTC()

	if len(msg.Photo) > 0 {
		b.handlePaymentProof(ctx, msg, user, log)
		return
	}

	b.dispatchText(ctx, msg, user, log)
}

// dispatchText routes a plain text message: exact menu labels first, then
// the pending action, then the fallback reply.
func (b *Bot) dispatchText(ctx context.Context, msg *tgbotapi.Message, user *models.User, log *logger.Logger) {
	chatID := chatOf(msg)
	text := strings.TrimSpace(msg.Text)

	switch text {
	case MenuResources:
		b.reply(chatID, "Select resource type:", resourcesMenu(), log)
	case MenuTextBooks:
		b.reply(chatID, "Select grade level for Textbooks:", gradesMenu("Textbooks"), log)
	case MenuTeachersGuide:
		b.reply(chatID, "Select grade level for Teacher's Guide:", gradesMenu("Guide"), log)
	case MenuShortNotes:
		b.startSubjectFlow(ctx, chatID, user, models.ActionSelectNotesSubject, log)
	case MenuCheatSheets:
		b.showCheatSheets(chatID, user, log)
	case MenuQuizzes:
		b.startSubjectFlow(ctx, chatID, user, models.ActionSelectQuizSubject, log)
	case MenuPastExams:
		b.startPastExams(ctx, chatID, user, log)
	case MenuExamTips:
		b.sendTips(ctx, chatID, user, "exam_tips", "💡 Exam Tips", log)
	case MenuStudyTips:
		b.sendTips(ctx, chatID, user, "study_tips", "📖 Study Tips", log)
	case MenuMotivation:
		b.sendMotivation(chatID, log)
	case MenuAIChat:
		b.startAIChat(ctx, chatID, user, log)
	case MenuAssignmentHelp:
		b.reply(chatID, "Assignment help coming soon! ✍️", mainMenu(), log)
	case MenuUpgrade:
		b.startUpgrade(ctx, chatID, user, log)
	case MenuHelp:
		b.reply(chatID, "For assistance, please contact support. 🆘", mainMenu(), log)
	case MenuContactUs:
		b.reply(chatID, fmt.Sprintf("You can reach us at %s 📧", b.supportContact), mainMenu(), log)
	case MenuInvite:
		b.sendInvite(chatID, user, log)
	case MenuExitAIChat:
		b.exitAIChat(ctx, chatID, user, log)
	case MenuBackToMain:
		b.clearPendingAndShow(ctx, chatID, user, "Choose an option:", mainMenu(), log)
	case MenuBackToResources:
		b.clearPendingAndShow(ctx, chatID, user, "Select resource type:", resourcesMenu(), log)
	case ChoiceStreamNatural, ChoiceStreamSocial:
		b.setStream(ctx, msg, user, log)
	default:
		if grade, purpose, ok := parseGradeSelection(text); ok {
			b.sendGradeFolder(ctx, chatID, user, grade, purpose, log)
			return
		}
		if qualifier, ok := cheatSheetKeys[text]; ok {
			b.sendCheatSheet(ctx, chatID, user, qualifier, text, log)
			return
		}
		b.continuePending(ctx, msg, user, log)
	}
}

// continuePending routes free text to the flow registered by the user's
// pending action.
func (b *Bot) continuePending(ctx context.Context, msg *tgbotapi.Message, user *models.User, log *logger.Logger) {
	chatID := chatOf(msg)
	text := strings.TrimSpace(msg.Text)

	switch {
	case user.PendingAction == models.ActionSelectExamYear && isDigits(text):
		b.processExamYear(ctx, chatID, user, text, log)

	case isSubjectFor(user.PendingAction, text):
		b.processSubject(ctx, chatID, user, text, log)

	case user.PendingAction == models.ActionAIChat:
		b.handleAIChat(ctx, msg, user, log)

	case user.PendingAction == models.ActionAwaitPaymentChoice:
		b.handlePaymentChoice(ctx, chatID, user, text, log)

	case user.PendingAction == models.ActionAwaitName:
		b.handleFullName(ctx, chatID, user, text, log)

	case user.PendingAction == models.ActionAwaitProof:
		b.reply(chatID, "Please send an actual photo of your payment receipt, not text.", nil, log)

	default:
		log.Infow("Unrecognized message", "text", text)
		b.reply(chatID, unrecognizedMessage, mainMenu(), log)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *models.User, log *logger.Logger) {
	switch msg.Command() {
	case "start":
		b.handleStart(ctx, msg, user, log)
	case "upgrade":
		if user == nil || user.Stream == models.StreamNone {
			b.startOnboarding(ctx, msg, user, log)
			return
		}
		user.LastActive = time.Now().UTC()
		b.startUpgrade(ctx, chatOf(msg), user, log)
	case "approve":
		b.handleApproveCommand(ctx, msg, log)
	case "help":
		b.reply(chatOf(msg), "Use /start to open the menu. For assistance, contact support. 🆘", nil, log)
	default:
		b.reply(chatOf(msg), "Unknown command. Use /start to open the menu.", nil, log)
	}
}

// clearPendingAndShow handles back-navigation: the pending action is
// dropped so stale flows cannot consume later messages.
func (b *Bot) clearPendingAndShow(ctx context.Context, chatID int64, user *models.User,
	text string, markup interface{}, log *logger.Logger) {

	user.PendingAction = models.ActionNone
	if err := b.store.SaveUser(ctx, user); err != nil {
		log.Errorw("Failed to save user record", "error", err)
	}
	b.reply(chatID, text, markup, log)
}

// reply sends a text message with an optional reply markup. Delivery
// failures are logged, never propagated: the state transition that
// preceded the reply has already been committed.
func (b *Bot) reply(chatID int64, text string, markup interface{}, log *logger.Logger) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		log.Errorw("Failed to send message", "chat_id", chatID, "error", err)
	}
}

func chatOf(msg *tgbotapi.Message) int64 {
	return msg.Chat.ID
}

func isStreamChoice(text string) bool {
	text = strings.TrimSpace(text)
	return text == ChoiceStreamNatural || text == ChoiceStreamSocial
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isSubjectFor reports whether text is a valid subject label for a
// pending subject-selection action.
func isSubjectFor(action models.PendingAction, text string) bool {
	if action != models.ActionSelectNotesSubject && action != models.ActionSelectQuizSubject {
		return false
	}
	_, ok := subjectKeys[strings.ToLower(text)]
	return ok
}

// parseGradeSelection recognizes the "Grade <9-12> <Textbooks|Guide>"
// buttons.
func parseGradeSelection(text string) (grade, purpose string, ok bool) {
	parts := strings.Fields(text)
	if len(parts) != 3 || parts[0] != "Grade" {
		return "", "", false
	}
	switch parts[1] {
	case "9", "10", "11", "12":
	default:
		return "", "", false
	}
	switch parts[2] {
	case "Textbooks", "Guide":
	default:
		return "", "", false
	}
	return parts[1], parts[2], true
}
