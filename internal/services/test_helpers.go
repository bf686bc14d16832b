package services

import (
	"context"
	"sync"
	"time"

	"github.com/mbenavides/billfold/internal/models"
)

// MockUserRepository implements UserRepository, ResetUserRepository and
// AdminUserRepository for testing
type MockUserRepository struct {
	GetByIDFunc              func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc           func(ctx context.Context, email string) (*models.User, error)
	GetByPhoneFunc           func(ctx context.Context, phone string) (*models.User, error)
	CreateFunc               func(ctx context.Context, user *models.User) (*models.User, error)
	SetResetTokenFunc        func(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	GetByResetTokenHashFunc  func(ctx context.Context, tokenHash string) (*models.User, error)
	ConsumePasswordResetFunc func(ctx context.Context, tokenHash, newPasswordHash string) (*models.User, error)
	UpsertAdminFunc          func(ctx context.Context, email string) (*models.User, error)
	ListMembersFunc          func(ctx context.Context, limit, offset int) ([]*models.User, error)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	if m.GetByPhoneFunc != nil {
		return m.GetByPhoneFunc(ctx, phone)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	if m.SetResetTokenFunc != nil {
		return m.SetResetTokenFunc(ctx, id, tokenHash, expiresAt)
	}
	return nil
}

func (m *MockUserRepository) GetByResetTokenHash(ctx context.Context, tokenHash string) (*models.User, error) {
	if m.GetByResetTokenHashFunc != nil {
		return m.GetByResetTokenHashFunc(ctx, tokenHash)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) ConsumePasswordReset(ctx context.Context, tokenHash, newPasswordHash string) (*models.User, error) {
	if m.ConsumePasswordResetFunc != nil {
		return m.ConsumePasswordResetFunc(ctx, tokenHash, newPasswordHash)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) UpsertAdmin(ctx context.Context, email string) (*models.User, error) {
	if m.UpsertAdminFunc != nil {
		return m.UpsertAdminFunc(ctx, email)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) ListMembers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if m.ListMembersFunc != nil {
		return m.ListMembersFunc(ctx, limit, offset)
	}
	return []*models.User{}, nil
}

// SentMessage is a single captured delivery
type SentMessage struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// MockMailer captures sent messages for test assertions
type MockMailer struct {
	mu       sync.Mutex
	messages []SentMessage
	sent     chan SentMessage
	SendErr  error
}

func NewMockMailer() *MockMailer {
	return &MockMailer{sent: make(chan SentMessage, 8)}
}

func (m *MockMailer) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	if m.SendErr != nil {
		return m.SendErr
	}

	msg := SentMessage{To: to, Subject: subject, HTMLBody: htmlBody, TextBody: textBody}

	m.mu.Lock()
	m.messages = append(m.messages, msg)
	m.mu.Unlock()

	m.sent <- msg
	return nil
}

// WaitForMessage blocks until a delivery lands or the timeout elapses.
// Returns nil on timeout.
func (m *MockMailer) WaitForMessage(timeout time.Duration) *SentMessage {
	select {
	case msg := <-m.sent:
		return &msg
	case <-time.After(timeout):
		return nil
	}
}

// Count returns the number of deliveries captured so far
func (m *MockMailer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// NewTestUser builds a user with sensible defaults for tests
func NewTestUser(id, email string) *models.User {
	now := time.Now()
	return &models.User{
		ID:          id,
		FirstName:   "Test",
		LastName:    "User",
		Email:       email,
		PhoneNumber: "+12025550100",
		Role:        models.RoleUser,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
