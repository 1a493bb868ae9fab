package service

import (
	"context"
	"time"

	"github.com/ykarataev/accountd/internal/models"
)

// mockUserRepo implements UserRepository with overridable functions.
// Methods without an override fail loudly via nil dereference, which keeps
// tests honest about what they expect to be called.
type mockUserRepo struct {
	CreateUserFunc     func(ctx context.Context, username, email, passwordHash string) (models.User, error)
	FindByUsernameFunc func(ctx context.Context, username string) (models.User, error)
	FindByEmailFunc    func(ctx context.Context, email string) (models.User, error)
	FindByIDFunc       func(ctx context.Context, id string) (models.User, error)
	UpdatePasswordFunc func(ctx context.Context, userID, passwordHash string) error
	UpdateUsernameFunc func(ctx context.Context, userID, username string) error
	TouchLastSeenFunc  func(ctx context.Context, userID string, t time.Time) error
}

func (m *mockUserRepo) CreateUser(ctx context.Context, username, email, passwordHash string) (models.User, error) {
	return m.CreateUserFunc(ctx, username, email, passwordHash)
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return m.FindByUsernameFunc(ctx, username)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return m.FindByEmailFunc(ctx, email)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (models.User, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return m.UpdatePasswordFunc(ctx, userID, passwordHash)
}

func (m *mockUserRepo) UpdateUsername(ctx context.Context, userID, username string) error {
	return m.UpdateUsernameFunc(ctx, userID, username)
}

func (m *mockUserRepo) TouchLastSeen(ctx context.Context, userID string, t time.Time) error {
	return m.TouchLastSeenFunc(ctx, userID, t)
}

// mockSessionRepo implements SessionRepository with overridable functions.
type mockSessionRepo struct {
	CreateFunc func(ctx context.Context, session models.Session) error
	GetFunc    func(ctx context.Context, token string) (models.Session, error)
	DeleteFunc func(ctx context.Context, token string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, session models.Session) error {
	return m.CreateFunc(ctx, session)
}

func (m *mockSessionRepo) Get(ctx context.Context, token string) (models.Session, error) {
	return m.GetFunc(ctx, token)
}

func (m *mockSessionRepo) Delete(ctx context.Context, token string) error {
	return m.DeleteFunc(ctx, token)
}

// memoryLedger is an in-memory ResetTokenRepository.
type memoryLedger struct {
	consumed map[string]bool
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{consumed: make(map[string]bool)}
}

func (m *memoryLedger) IsConsumed(ctx context.Context, jti string) (bool, error) {
	return m.consumed[jti], nil
}

func (m *memoryLedger) Consume(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	m.consumed[jti] = true
	return nil
}

// mockMailer records sent messages and optionally fails.
type mockMailer struct {
	sent    []sentMail
	sendErr error
}

type sentMail struct {
	to, subject, bodyText, bodyHTML string
}

func (m *mockMailer) Send(to, subject, bodyText, bodyHTML string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, bodyText: bodyText, bodyHTML: bodyHTML})
	return nil
}
