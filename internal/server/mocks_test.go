package server

import (
	"context"
	"time"

	"shelftalk/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a testify mock for repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) SetBanned(ctx context.Context, id string, banned bool, reason string) error {
	args := m.Called(ctx, id, banned, reason)
	return args.Error(0)
}

func (m *MockUserRepository) IncrementReportCount(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) PromoteAdminByEmail(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// MockChatRepository is a testify mock for repository.ChatRepository.
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) AppendMessage(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockChatRepository) GetMessages(ctx context.Context, convID string, limit, offset int) ([]*models.Message, error) {
	args := m.Called(ctx, convID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Message), args.Error(1)
}

func (m *MockChatRepository) TouchOnSend(ctx context.Context, convID, senderID, recipientID, preview string, at time.Time) error {
	args := m.Called(ctx, convID, senderID, recipientID, preview, at)
	return args.Error(0)
}

func (m *MockChatRepository) ResetUnread(ctx context.Context, convID, userID string) error {
	args := m.Called(ctx, convID, userID)
	return args.Error(0)
}

func (m *MockChatRepository) GetSummary(ctx context.Context, convID string) (*models.ConversationSummary, error) {
	args := m.Called(ctx, convID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ConversationSummary), args.Error(1)
}

func (m *MockChatRepository) GetUnreadCount(ctx context.Context, convID, userID string) (int, error) {
	args := m.Called(ctx, convID, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockChatRepository) GetUserSummaries(ctx context.Context, userID string) ([]*models.ConversationSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ConversationSummary), args.Error(1)
}
