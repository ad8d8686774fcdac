package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"acebot/internal/models"
	"acebot/pkg/logger"
)

// sendInvite shows the user's referral link and earnings. The user's own
// id doubles as the referral code.
func (b *Bot) sendInvite(chatID int64, user *models.User, log *logger.Logger) {
	link := fmt.Sprintf("https://t.me/%s?start=%d", b.username, user.UserID)

	esc := func(s string) string {
		return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
	}

	text := "🤝 *Invite & Earn*\n\n" +
		esc("Share your unique referral link with your friends. When a new user joins "+
			"through your link and upgrades to a premium membership, you will earn ") +
		fmt.Sprintf("*%s ETB*\\!\n\n", esc(fmt.Sprintf("%.0f", b.referralReward))) +
		"🔗 *Your Referral Link:*\n" +
		fmt.Sprintf("`%s`\n\n", link) +
		"📈 *Your Stats:*\n" +
		fmt.Sprintf("∙ *Successful Referrals:* %d\n", user.ReferralCount) +
		fmt.Sprintf("∙ *Current Balance:* %s ETB\n\n", esc(fmt.Sprintf("%.2f", user.ReferralBalance))) +
		esc("Keep sharing to earn more!")

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := b.api.Send(msg); err != nil {
		log.Errorw("Failed to send invite message", "error", err)
	}
	log.Info("Invite link and stats sent")
}
