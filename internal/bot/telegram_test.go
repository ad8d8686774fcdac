package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acebot/internal/ai"
	"acebot/internal/catalog"
	"acebot/internal/history"
	"acebot/internal/models"
	"acebot/pkg/logger"
)

// fakeAPI records everything the bot tries to send.
type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// textsTo returns the plain messages sent to one chat, in order.
func (f *fakeAPI) textsTo(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var texts []string
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok && msg.ChatID == chatID {
			texts = append(texts, msg.Text)
		}
	}
	return texts
}

func (f *fakeAPI) lastTextTo(t *testing.T, chatID int64) string {
	t.Helper()
	texts := f.textsTo(chatID)
	require.NotEmpty(t, texts, "no messages sent to chat %d", chatID)
	return texts[len(texts)-1]
}

func (f *fakeAPI) photosTo(chatID int64) []tgbotapi.PhotoConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var photos []tgbotapi.PhotoConfig
	for _, c := range f.sent {
		if p, ok := c.(tgbotapi.PhotoConfig); ok && p.ChatID == chatID {
			photos = append(photos, p)
		}
	}
	return photos
}

func (f *fakeAPI) captionEdits() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var edits []string
	for _, c := range f.sent {
		if e, ok := c.(tgbotapi.EditMessageCaptionConfig); ok {
			edits = append(edits, e.Caption)
		}
	}
	return edits
}

// memStore is an in-memory Store. Records are copied on read and write so
// tests observe committed state, not shared pointers. failSaves holds how
// many upcoming saves should fail per user id.
type memStore struct {
	mu        sync.Mutex
	users     map[int64]*models.User
	failSaves map[int64]int
}

func newMemStore(users ...*models.User) *memStore {
	s := &memStore{
		users:     map[int64]*models.User{},
		failSaves: map[int64]int{},
	}
	for _, u := range users {
		cp := *u
		s.users[u.UserID] = &cp
	}
	return s
}

func (s *memStore) FindUser(_ context.Context, userID int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) SaveUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.failSaves[u.UserID]; n > 0 {
		s.failSaves[u.UserID] = n - 1
		return errors.New("save failed")
	}
	cp := *u
	s.users[u.UserID] = &cp
	return nil
}

func (s *memStore) get(t *testing.T, userID int64) *models.User {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	require.True(t, ok, "user %d not in store", userID)
	cp := *u
	return &cp
}

type fakeLister struct {
	folders map[string][]models.File
	err     error
}

func (f *fakeLister) ListFiles(_ context.Context, folderID string) ([]models.File, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.folders[folderID], nil
}

type fakeCompleter struct {
	answer  string
	err     error
	gotText string
	gotHist []ai.Turn
}

func (f *fakeCompleter) Complete(_ context.Context, question string, hist []ai.Turn) (string, error) {
	f.gotText = question
	f.gotHist = hist
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type fakeHistory struct {
	entries map[int64][]history.Entry
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{entries: map[int64][]history.Entry{}}
}

func (f *fakeHistory) Append(_ context.Context, userID int64, role, content string) error {
	f.entries[userID] = append(f.entries[userID], history.Entry{Role: role, Content: content})
	return nil
}

func (f *fakeHistory) Recent(_ context.Context, userID int64) ([]history.Entry, error) {
	return f.entries[userID], nil
}

func (f *fakeHistory) Clear(_ context.Context, userID int64) error {
	delete(f.entries, userID)
	return nil
}

const moderatorID = int64(9000)

func newTestBot(store *memStore) (*Bot, *fakeAPI) {
	api := &fakeAPI{}
	return &Bot{
		api:            api,
		store:          store,
		files:          &fakeLister{folders: map[string][]models.File{}},
		ai:             &fakeCompleter{answer: "photosynthesis converts light to energy"},
		catalog:        catalog.Default(),
		logger:         logger.NewNop(),
		username:       "acebot_test_bot",
		moderators:     []int64{moderatorID},
		supportContact: "support@acebot.com",
		referralReward: 50,
	}, api
}

func textMessage(userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: userID, UserName: "tester", FirstName: "Test"},
		Chat:      &tgbotapi.Chat{ID: userID},
		Text:      text,
	}
}

func commandMessage(userID int64, text string) *tgbotapi.Message {
	msg := textMessage(userID, text)
	length := len(text)
	if idx := strings.Index(text, " "); idx > 0 {
		length = idx
	}
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}}
	return msg
}

func photoMessage(userID int64, fileID string) *tgbotapi.Message {
	msg := textMessage(userID, "")
	msg.Photo = []tgbotapi.PhotoSize{
		{FileID: "small-" + fileID, Width: 90},
		{FileID: fileID, Width: 800},
	}
	return msg
}

func TestStartPromptsForStream(t *testing.T) {
	store := newMemStore()
	b, api := newTestBot(store)

	b.handleMessage(context.Background(), commandMessage(1001, "/start"), b.logger)

	u := store.get(t, 1001)
	assert.Equal(t, models.StreamNone, u.Stream)
	assert.Contains(t, api.lastTextTo(t, 1001), "select your stream")
}

func TestStreamSelectionOpensMainMenu(t *testing.T) {
	store := newMemStore(models.NewUser(1001, "tester"))
	b, api := newTestBot(store)

	b.handleMessage(context.Background(), textMessage(1001, "Natural"), b.logger)

	u := store.get(t, 1001)
	assert.Equal(t, models.StreamNatural, u.Stream)
	assert.Contains(t, api.lastTextTo(t, 1001), "Stream set to Natural")
}

func TestStartCapturesReferral(t *testing.T) {
	referrer := models.NewUser(42, "sharer")
	referrer.Stream = models.StreamNatural
	store := newMemStore(referrer)
	b, _ := newTestBot(store)

	b.handleMessage(context.Background(), commandMessage(1001, "/start 42"), b.logger)

	assert.Equal(t, int64(42), store.get(t, 1001).ReferredBy)
}

func TestStartIgnoresBadReferrals(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
	}{
		{"self referral", "/start 1001"},
		{"unknown referrer", "/start 777"},
		{"garbage payload", "/start not-a-number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			b, _ := newTestBot(store)

			b.handleMessage(context.Background(), commandMessage(1001, tt.cmd), b.logger)

			assert.Zero(t, store.get(t, 1001).ReferredBy)
		})
	}
}

func TestQuizzesBlockedForFreeUser(t *testing.T) {
	user := models.NewUser(1001, "tester")
	user.Stream = models.StreamNatural
	store := newMemStore(user)
	b, api := newTestBot(store)

	b.handleMessage(context.Background(), textMessage(1001, MenuQuizzes), b.logger)

	assert.Equal(t, premiumMessage, api.lastTextTo(t, 1001))
	assert.Equal(t, models.ActionNone, store.get(t, 1001).PendingAction)
}

func TestQuizFlowServesConfiguredFolder(t *testing.T) {
	user := models.NewUser(1001, "tester")
	user.Stream = models.StreamNatural
	user.IsPremium = true
	store := newMemStore(user)
	b, api := newTestBot(store)
	b.catalog = b.catalog.Merge(map[string]string{"natural_physics_quizzes": "quiz-folder"})
	b.files = &fakeLister{folders: map[string][]models.File{
		"quiz-folder": {
			{Name: "mechanics.pdf", ViewLink: "https://files.example/mechanics.pdf"},
			{Name: "optics.pdf", ViewLink: "https://files.example/optics.pdf"},
		},
	}}

	b.handleMessage(context.Background(), textMessage(1001, MenuQuizzes), b.logger)
	assert.Equal(t, models.ActionSelectQuizSubject, store.get(t, 1001).PendingAction)

	b.handleMessage(context.Background(), textMessage(1001, "Physics"), b.logger)

	reply := api.lastTextTo(t, 1001)
	assert.Contains(t, reply, "🧠 Physics Quizzes (Natural):")
	assert.Contains(t, reply, "📄 mechanics.pdf")
	assert.Contains(t, reply, "https://files.example/optics.pdf")
	assert.Equal(t, models.ActionNone, store.get(t, 1001).PendingAction)
}

func TestQuizFlowPlaceholderFolderReportsUnavailable(t *testing.T) {
	user := models.NewUser(1001, "tester")
	user.Stream = models.StreamNatural
	user.IsPremium = true
	user.PendingAction = models.ActionSelectQuizSubject
	store := newMemStore(user)
	b, api := newTestBot(store)

	b.handleMessage(context.Background(), textMessage(1001, "Physics"), b.logger)

	assert.Equal(t, "Quizzes not available for Physics yet.", api.lastTextTo(t, 1001))
	assert.Equal(t, models.ActionNone, store.get(t, 1001).PendingAction)
}

func TestNotesGatingHoldsOnContinuation(t *testing.T) {
	// Premium revoked between subject prompt and subject answer.
	user := models.NewUser(1001, "tester")
	user.Stream = models.StreamNatural
	user.PendingAction = models.ActionSelectNotesSubject
	store := newMemStore(user)
	b, api := newTestBot(store)

	b.handleMessage(context.Background(), textMessage(1001, "Biology"), b.logger)

	assert.Equal(t, premiumMessage, api.lastTextTo(t, 1001))
	assert.Equal(t, models.ActionNone, store.get(t, 1001).PendingAction)
}

func TestExamYearGating(t *testing.T) {
	tests := []struct {
		name    string
		year    string
		premium bool
		want    string
	}{
		{"recent year blocked for free user", "2015", false, premiumMessage},
		{"old year open to free user", "2010", false, "Past exam for 2010 not available"},
		{"recent year open to premium", "2016", true, "Past exam for 2016 not available"},
		{"out of range", "1999", false, "Invalid year selected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := models.NewUser(1001, "tester")
			user.Stream = models.StreamNatural
			user.IsPremium = tt.premium
			user.PendingAction = models.ActionSelectExamYear
			store := newMemStore(user)
			b, api := newTestBot(store)

			b.handleMessage(context.Background(), textMessage(1001, tt.year), b.logger)

			assert.Contains(t, api.lastTextTo(t, 1001), tt.want)
			assert.Equal(t, models.ActionNone, store.get(t, 1001).PendingAction)
		})
	}
}

func TestGradeSelectionServesTextbooks(t *testing.T) {
	user := models.NewUser(1001, "tester")
	user.Stream = models.StreamSocial
	store := newMemStore(user)
	b, api := newTestBot(store)
	b.catalog = b.catalog.Merge(map[string]string{"social_grade9_textbooks": "tb-folder"})
	b.files = &fakeLister{folders: map[string][]models.File{
		"tb-folder": {{Name: "history-g9.pdf", ViewLink: "https://files.example/history-g9.pdf"}},
	}}

	b.handleMessage(context.Background(), textMessage(1001, "Grade 9 Textbooks"), b.logger)

	reply := api.lastTextTo(t, 1001)
	assert.Contains(t, reply, "Textbooks for Grade 9 (Social)")
	assert.Contains(t, reply, "history-g9.pdf")
}

func TestBackToMainClearsPending(t *testing.T) {
	user := models.NewUser(1001, "tester")
	user.Stream = models.StreamNatural
	user.PendingAction = models.ActionSelectExamYear
	store := newMemStore(user)
	b, api := newTestBot(store)

	b.handleMessage(context.Background(), textMessage(1001, MenuBackToMain), b.logger)

	assert.Equal(t, models.ActionNone, store.get(t, 1001).PendingAction)
	assert.Equal(t, "Choose an option:", api.lastTextTo(t, 1001))
}

func TestUnrecognizedTextFallsBack(t *testing.T) {
	user := models.NewUser(1001, "tester")
	user.Stream = models.StreamNatural
	store := newMemStore(user)
	b, api := newTestBot(store)

	b.handleMessage(context.Background(), textMessage(1001, "what is the meaning of life"), b.logger)

	assert.Equal(t, unrecognizedMessage, api.lastTextTo(t, 1001))
}

func TestListFailureSendsApology(t *testing.T) {
	user := models.NewUser(1001, "tester")
	user.Stream = models.StreamNatural
	user.IsPremium = true
	store := newMemStore(user)
	b, api := newTestBot(store)
	b.catalog = b.catalog.Merge(map[string]string{"natural_exam_tips": "tips-folder"})
	b.files = &fakeLister{err: errors.New("backend down")}

	b.handleMessage(context.Background(), textMessage(1001, MenuExamTips), b.logger)

	assert.Equal(t, apologyMessage, api.lastTextTo(t, 1001))
}

func TestAIChatRoundTrip(t *testing.T) {
	user := models.NewUser(1001, "tester")
	user.Stream = models.StreamNatural
	user.IsPremium = true
	store := newMemStore(user)
	b, api := newTestBot(store)
	hist := newFakeHistory()
	b.history = hist
	completer := &fakeCompleter{answer: "Photosynthesis converts light into chemical energy."}
	b.ai = completer

	b.handleMessage(context.Background(), textMessage(1001, MenuAIChat), b.logger)
	require.Equal(t, models.ActionAIChat, store.get(t, 1001).PendingAction)

	b.handleMessage(context.Background(), textMessage(1001, "What is photosynthesis?"), b.logger)

	texts := api.textsTo(1001)
	assert.Contains(t, texts, "Typing... ✍️")
	assert.Equal(t, completer.answer, texts[len(texts)-1])
	assert.Equal(t, "What is photosynthesis?", completer.gotText)

	// Chat mode persists and the exchange is recorded.
	assert.Equal(t, models.ActionAIChat, store.get(t, 1001).PendingAction)
	require.Len(t, hist.entries[1001], 2)
	assert.Equal(t, ai.RoleUser, hist.entries[1001][0].Role)
	assert.Equal(t, ai.RoleAssistant, hist.entries[1001][1].Role)
}

func TestAIChatCarriesHistory(t *testing.T) {
	user := models.NewUser(1001, "tester")
	user.Stream = models.StreamNatural
	user.IsPremium = true
	user.PendingAction = models.ActionAIChat
	store := newMemStore(user)
	b, _ := newTestBot(store)
	hist := newFakeHistory()
	hist.entries[1001] = []history.Entry{
		{Role: ai.RoleUser, Content: "What is photosynthesis?"},
		{Role: ai.RoleAssistant, Content: "It converts light into energy."},
	}
	b.history = hist
	completer := &fakeCompleter{answer: "In the chloroplasts."}
	b.ai = completer

	b.handleMessage(context.Background(), textMessage(1001, "Where does it happen?"), b.logger)

	require.Len(t, completer.gotHist, 2)
	assert.Equal(t, "What is photosynthesis?", completer.gotHist[0].Content)
}

func TestAIChatFailureKeepsChatMode(t *testing.T) {
	user := models.NewUser(1001, "tester")
	user.Stream = models.StreamNatural
	user.IsPremium = true
	user.PendingAction = models.ActionAIChat
	store := newMemStore(user)
	b, api := newTestBot(store)
	b.ai = &fakeCompleter{err: errors.New("rate limited")}

	b.handleMessage(context.Background(), textMessage(1001, "hello?"), b.logger)

	assert.Contains(t, api.lastTextTo(t, 1001), "trouble connecting to the AI")
	assert.Equal(t, models.ActionAIChat, store.get(t, 1001).PendingAction)
}

func TestExitAIChatClearsModeAndHistory(t *testing.T) {
	user := models.NewUser(1001, "tester")
	user.Stream = models.StreamNatural
	user.IsPremium = true
	user.PendingAction = models.ActionAIChat
	store := newMemStore(user)
	b, api := newTestBot(store)
	hist := newFakeHistory()
	hist.entries[1001] = []history.Entry{{Role: ai.RoleUser, Content: "hi"}}
	b.history = hist

	b.handleMessage(context.Background(), textMessage(1001, MenuExitAIChat), b.logger)

	assert.Equal(t, models.ActionNone, store.get(t, 1001).PendingAction)
	assert.Empty(t, hist.entries[1001])
	assert.Contains(t, api.lastTextTo(t, 1001), "Exiting AI Chat")
}

func TestParseGradeSelection(t *testing.T) {
	grade, purpose, ok := parseGradeSelection("Grade 12 Guide")
	require.True(t, ok)
	assert.Equal(t, "12", grade)
	assert.Equal(t, "Guide", purpose)

	for _, bad := range []string{"Grade 13 Guide", "Grade 9", "Year 9 Textbooks", "Grade 9 Homework"} {
		_, _, ok := parseGradeSelection(bad)
		assert.False(t, ok, "parseGradeSelection(%q)", bad)
	}
}

func TestInviteShowsLinkAndStats(t *testing.T) {
	user := models.NewUser(1001, "tester")
	user.Stream = models.StreamNatural
	user.ReferralCount = 3
	user.ReferralBalance = 150
	store := newMemStore(user)
	b, api := newTestBot(store)

	b.handleMessage(context.Background(), textMessage(1001, MenuInvite), b.logger)

	reply := api.lastTextTo(t, 1001)
	assert.Contains(t, reply, fmt.Sprintf("https://t.me/%s?start=1001", b.username))
	assert.Contains(t, reply, "3")
	assert.Contains(t, reply, "150")
}

func TestMotivationSendsQuote(t *testing.T) {
	user := models.NewUser(1001, "tester")
	user.Stream = models.StreamNatural
	store := newMemStore(user)
	b, api := newTestBot(store)

	b.handleMessage(context.Background(), textMessage(1001, MenuMotivation), b.logger)

	assert.Contains(t, api.lastTextTo(t, 1001), "💬")
}
