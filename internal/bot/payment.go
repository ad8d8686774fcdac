package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"acebot/internal/models"
	"acebot/pkg/logger"
)

// startUpgrade begins the manual payment flow. Fails fast with a message
// when the user is already premium or already under review.
func (b *Bot) startUpgrade(ctx context.Context, chatID int64, user *models.User, log *logger.Logger) {
	if user.IsPremium {
		b.reply(chatID, "🎉 You are already a premium member! Enjoy your full access.", mainMenu(), log)
		return
	}
	if user.PendingAdminApproval {
		b.reply(chatID, "⏳ Your premium request is currently under review by an admin. Please be patient.", mainMenu(), log)
		return
	}

	user.PendingAction = models.ActionAwaitPaymentChoice
	if err := b.store.SaveUser(ctx, user); err != nil {
		log.Errorw("Failed to save pending action", "error", err)
		b.reply(chatID, apologyMessage, nil, log)
		return
	}

	b.reply(chatID, paymentDetailsMessage, upgradeMenu(), log)
	log.Info("Upgrade flow started")
}

// handlePaymentChoice consumes the yes/no answer after the payment details
// were shown. Invalid input re-prompts without a state change.
func (b *Bot) handlePaymentChoice(ctx context.Context, chatID int64, user *models.User, text string, log *logger.Logger) {
	switch text {
	case ChoicePaid:
		user.PendingAction = models.ActionAwaitName
		if err := b.store.SaveUser(ctx, user); err != nil {
			log.Errorw("Failed to save pending action", "error", err)
			b.reply(chatID, apologyMessage, nil, log)
			return
		}
		msg := tgbotapi.NewMessage(chatID, "Great! Please tell me your Full Name as it appears on the payment receipt.")
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
		if _, err := b.api.Send(msg); err != nil {
			log.Errorw("Failed to send message", "error", err)
		}

	case ChoiceNotPaid:
		user.PendingAction = models.ActionNone
		if err := b.store.SaveUser(ctx, user); err != nil {
			log.Errorw("Failed to clear pending action", "error", err)
		}
		b.reply(chatID, "No problem! You can upgrade anytime.\n\n"+paymentDetailsMessage, mainMenu(), log)

	default:
		b.reply(chatID, "Please use the buttons provided to select your payment status.", upgradeMenu(), log)
	}
}

// handleFullName accepts any non-empty text as the payer's name and asks
// for the receipt screenshot.
func (b *Bot) handleFullName(ctx context.Context, chatID int64, user *models.User, text string, log *logger.Logger) {
	name := strings.TrimSpace(text)
	if name == "" {
		b.reply(chatID, "Please tell me your Full Name as it appears on the payment receipt.", nil, log)
		return
	}

	user.FullName = name
	user.PendingAction = models.ActionAwaitProof
	if err := b.store.SaveUser(ctx, user); err != nil {
		log.Errorw("Failed to save payer name", "error", err)
		b.reply(chatID, apologyMessage, nil, log)
		return
	}

	b.reply(chatID, fmt.Sprintf("Thank you, %s! Now, please send the screenshot of your payment receipt.", name), nil, log)
}

// handlePaymentProof consumes the proof photo, commits the pending request
// and fans the proof out to every moderator. A moderator delivery failure
// is logged and does not block the others or the user acknowledgment.
func (b *Bot) handlePaymentProof(ctx context.Context, msg *tgbotapi.Message, user *models.User, log *logger.Logger) {
	chatID := chatOf(msg)

	if user.PendingAction != models.ActionAwaitProof {
		b.reply(chatID, "Please initiate the upgrade process first using the '💎 Upgrade' button.", mainMenu(), log)
		return
	}

	// Largest photo size is last.
	proofID := msg.Photo[len(msg.Photo)-1].FileID

	user.PaymentProof = proofID
	user.PaymentPending = true
	user.PendingAdminApproval = true
	user.PendingAction = models.ActionNone
	if err := b.store.SaveUser(ctx, user); err != nil {
		log.Errorw("Failed to save payment request", "error", err)
		b.reply(chatID, apologyMessage, nil, log)
		return
	}
	log.Info("Payment proof submitted, awaiting admin decision")

	b.reply(chatID, "Thank you! Your payment proof has been received and sent to the admin for review. "+
		"We will notify you once your premium access is approved. This usually takes 24-48 hours.",
		mainMenu(), log)

	caption := fmt.Sprintf("🚨 New Premium Request from %s (@%s) (ID: %d)\n\nFull Name: %s\nRequest Status: Awaiting Approval",
		msg.From.FirstName, orNA(user.Username), user.UserID, user.FullName)

	for _, modID := range b.moderators {
		photo := tgbotapi.NewPhoto(modID, tgbotapi.FileID(proofID))
		photo.Caption = caption
		photo.ReplyMarkup = approvalKeyboard(user.UserID)
		if _, err := b.api.Send(photo); err != nil {
			log.Errorw("Failed to notify moderator", "moderator_id", modID, "error", err)
		}
	}
}

// handleCallback resolves the moderator approve/decline buttons.
func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery, log *logger.Logger) {
	log = log.With("moderator_id", cq.From.ID, "data", cq.Data)

	action, targetID, ok := parseDecision(cq.Data)
	if !ok {
		log.Info("Ignoring unknown callback data")
		b.answerCallback(cq.ID, log)
		return
	}

	if !b.isModerator(cq.From.ID) {
		log.Info("Unauthorized decision attempt")
		// A callback can be answered only once, so the rejection alert
		// doubles as the answer.
		cb := tgbotapi.NewCallbackWithAlert(cq.ID, "You are not authorized to resolve payment requests.")
		if _, err := b.api.Request(cb); err != nil {
			log.Errorw("Failed to answer callback", "error", err)
		}
		return
	}

	b.answerCallback(cq.ID, log)

	// Proof notifications are photo messages; their text lives in the
	// caption. Editing also drops the decision buttons.
	edit := func(text string) {
		e := tgbotapi.NewEditMessageCaption(cq.Message.Chat.ID, cq.Message.MessageID, text)
		if _, err := b.api.Send(e); err != nil {
			log.Errorw("Failed to edit decision message", "error", err)
		}
	}

	if action == "approve" {
		b.approve(ctx, targetID, edit, log)
		return
	}
	b.decline(ctx, targetID, edit, log)
}

// approve commits AWAIT_ADMIN_DECISION -> APPROVED. A second click lands
// on the already-premium no-op path and never renotifies or recredits.
func (b *Bot) approve(ctx context.Context, targetID int64, edit func(string), log *logger.Logger) {
	user, err := b.store.FindUser(ctx, targetID)
	if err != nil {
		log.Errorw("Failed to load requester", "error", err)
		edit("Something went wrong while loading the request.")
		return
	}
	if user == nil {
		edit("User not found in database.")
		return
	}
	if user.IsPremium {
		edit(fmt.Sprintf("🚫 This user (ID: %d) is already premium.", targetID))
		return
	}

	fullName := user.FullName
	user.IsPremium = true
	user.ResetPaymentRequest()
	creditReferral := user.ReferredBy != 0 && !user.ReferralCredited
	if creditReferral {
		user.ReferralCredited = true
	}
	user.LastActive = time.Now().UTC()

	if err := b.store.SaveUser(ctx, user); err != nil {
		log.Errorw("Failed to save approval", "error", err)
		edit("Something went wrong while saving the approval.")
		return
	}
	log.Infow("Premium access approved", "target_id", targetID)

	if creditReferral {
		b.creditReferrer(ctx, user.ReferredBy, log)
	}

	b.reply(targetID, "🎉 Congratulations! Your premium access has been approved. "+
		"You now have full access to all features!", mainMenu(), log)

	edit(fmt.Sprintf("✅ You have approved premium access for user (ID: %d) (%s).", targetID, orNA(fullName)))
}

// decline commits AWAIT_ADMIN_DECISION -> DECLINED. Resolving an already
// resolved request is a no-op with an informational edit.
func (b *Bot) decline(ctx context.Context, targetID int64, edit func(string), log *logger.Logger) {
	user, err := b.store.FindUser(ctx, targetID)
	if err != nil {
		log.Errorw("Failed to load requester", "error", err)
		edit("Something went wrong while loading the request.")
		return
	}
	if user == nil {
		edit("User not found in database.")
		return
	}
	if !user.PaymentPending && !user.PendingAdminApproval {
		edit(fmt.Sprintf("ℹ️ This request from user (ID: %d) is no longer pending or was already processed.", targetID))
		return
	}

	user.IsPremium = false
	user.ResetPaymentRequest()
	user.LastActive = time.Now().UTC()

	if err := b.store.SaveUser(ctx, user); err != nil {
		log.Errorw("Failed to save decline", "error", err)
		edit("Something went wrong while saving the decision.")
		return
	}
	log.Infow("Premium request declined", "target_id", targetID)

	b.reply(targetID, "😔 Unfortunately, your premium request could not be approved at this time. "+
		"Please ensure your payment details and screenshot are clear and correct, then try again "+
		"via the '💎 Upgrade' button. If you believe this is an error, please contact support.",
		mainMenu(), log)

	edit(fmt.Sprintf("❌ Premium request for user %d has been declined.", targetID))
}

// creditReferrer credits the referring user. It runs only after the
// referred user's record, referral_credited included, has been committed:
// a failed referrer save can drop a credit, but a moderator retry can
// never duplicate one.
func (b *Bot) creditReferrer(ctx context.Context, referrerID int64, log *logger.Logger) {
	referrer, err := b.store.FindUser(ctx, referrerID)
	if err != nil {
		log.Errorw("Failed to load referrer", "referrer_id", referrerID, "error", err)
		return
	}
	if referrer == nil {
		log.Infow("Referrer record gone, skipping credit", "referrer_id", referrerID)
		return
	}

	referrer.ReferralBalance += b.referralReward
	referrer.ReferralCount++
	if err := b.store.SaveUser(ctx, referrer); err != nil {
		log.Errorw("Failed to credit referrer", "referrer_id", referrer.UserID, "error", err)
		return
	}
	log.Infow("Referral credited", "referrer_id", referrer.UserID, "reward", b.referralReward)
}

// handleApproveCommand is the moderator /approve <user_id> command,
// equivalent to the inline approve button.
func (b *Bot) handleApproveCommand(ctx context.Context, msg *tgbotapi.Message, log *logger.Logger) {
	chatID := chatOf(msg)

	if !b.isModerator(msg.From.ID) {
		b.reply(chatID, "You are not authorized to use this command.", nil, log)
		return
	}

	targetID, err := strconv.ParseInt(strings.TrimSpace(msg.CommandArguments()), 10, 64)
	if err != nil || targetID <= 0 {
		b.reply(chatID, "Usage: /approve <user_id>", nil, log)
		return
	}

	b.approve(ctx, targetID, func(outcome string) {
		b.reply(chatID, outcome, nil, log)
	}, log.With("moderator_id", msg.From.ID))
}

func (b *Bot) answerCallback(id string, log *logger.Logger) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, "")); err != nil {
		log.Errorw("Failed to answer callback", "error", err)
	}
}

func (b *Bot) isModerator(userID int64) bool {
	for _, id := range b.moderators {
		if id == userID {
			return true
		}
	}
	return false
}

// parseDecision splits "approve_<id>" / "decline_<id>" callback data.
func parseDecision(data string) (action string, userID int64, ok bool) {
	parts := strings.SplitN(data, "_", 2)
	if len(parts) != 2 {
		return "", 0, false
	}
	if parts[0] != "approve" && parts[0] != "decline" {
		return "", 0, false
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return "", 0, false
	}
	return parts[0], id, true
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
