// internal/models/user.go
package models

import (
	"time"
)

// Stream is the user's academic track. It gates which subject set and
// catalog keys apply.
type Stream string

const (
	StreamNone    Stream = ""
	StreamNatural Stream = "natural"
	StreamSocial  Stream = "social"
)

// PendingAction marks which flow should consume the user's next free-text
// message. ActionNone means menu-driven dispatch only.
type PendingAction string

const (
	ActionNone               PendingAction = ""
	ActionSelectNotesSubject PendingAction = "select_notes_subject"
	ActionSelectQuizSubject  PendingAction = "select_quiz_subject"
	ActionSelectExamYear     PendingAction = "select_exam_year"
	ActionAIChat             PendingAction = "ai_chat"
	ActionAwaitPaymentChoice PendingAction = "await_payment_status_choice"
	ActionAwaitName          PendingAction = "await_name_for_payment"
	ActionAwaitProof         PendingAction = "await_payment_proof"
)

// User is one record per Telegram user, keyed by UserID. Records are saved
// as a whole on every mutation, last writer wins.
type User struct {
	UserID               int64         `json:"user_id"`
	Username             string        `json:"username"`
	FullName             string        `json:"full_name"`
	Stream               Stream        `json:"stream"`
	IsPremium            bool          `json:"is_premium"`
	PaymentPending       bool          `json:"payment_pending"`
	PendingAdminApproval bool          `json:"pending_admin_approval"`
	PaymentProof         string        `json:"payment_proof"`
	PendingAction        PendingAction `json:"pending_action"`
	ReferralBalance      float64       `json:"referral_balance"`
	ReferralCount        int           `json:"referral_count"`
	ReferredBy           int64         `json:"referred_by"` // 0 means no referrer
	ReferralCredited     bool          `json:"referral_credited"`
	CreatedAt            time.Time     `json:"created_at"`
	LastActive           time.Time     `json:"last_active"`
}

func NewUser(userID int64, username string) *User {
	now := time.Now().UTC()
	return &User{
		UserID:     userID,
		Username:   username,
		CreatedAt:  now,
		LastActive: now,
	}
}

// ResetPaymentRequest clears everything tied to an in-flight upgrade
// request. Both pending flags transition together with the stored proof and
// payer name, on approval and decline alike.
func (u *User) ResetPaymentRequest() {
	u.PaymentPending = false
	u.PendingAdminApproval = false
	u.PaymentProof = ""
	u.FullName = ""
}

// File is one entry returned by the document-store backend.
type File struct {
	Name     string `json:"name"`
	ViewLink string `json:"view_link"`
}
