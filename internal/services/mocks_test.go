package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/hostelhub/hostel-service/internal/events"
	"github.com/hostelhub/hostel-service/internal/models"
	"github.com/hostelhub/hostel-service/internal/repositories"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// ===== REPOSITORY MOCKS =====

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	args := m.Called(ctx, tx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	args := m.Called(ctx, tx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	args := m.Called(ctx, tx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ListByRoles(ctx context.Context, tx *gorm.DB, roles []models.UserRole, activeOnly bool) ([]*models.User, error) {
	args := m.Called(ctx, tx, roles, activeOnly)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) SetActive(ctx context.Context, tx *gorm.DB, id uint, active bool) error {
	args := m.Called(ctx, tx, id, active)
	return args.Error(0)
}

type MockIssueRepository struct {
	mock.Mock
}

func (m *MockIssueRepository) Create(ctx context.Context, tx *gorm.DB, issue *models.Issue) error {
	args := m.Called(ctx, tx, issue)
	return args.Error(0)
}

func (m *MockIssueRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Issue, error) {
	args := m.Called(ctx, tx, id)
	issue, _ := args.Get(0).(*models.Issue)
	return issue, args.Error(1)
}

func (m *MockIssueRepository) Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	args := m.Called(ctx, tx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockIssueRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.IssueFilters) ([]*models.Issue, int64, error) {
	args := m.Called(ctx, tx, filters)
	issues, _ := args.Get(0).([]*models.Issue)
	return issues, args.Get(1).(int64), args.Error(2)
}

func (m *MockIssueRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, issue *models.Issue, expectedVersion int) error {
	args := m.Called(ctx, tx, issue, expectedVersion)
	return args.Error(0)
}

func (m *MockIssueRepository) GetStats(ctx context.Context, tx *gorm.DB) (*models.IssueStats, error) {
	args := m.Called(ctx, tx)
	stats, _ := args.Get(0).(*models.IssueStats)
	return stats, args.Error(1)
}

type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, tx *gorm.DB, comment *models.Comment) error {
	args := m.Called(ctx, tx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) ListByIssue(ctx context.Context, tx *gorm.DB, issueID uint) ([]*models.Comment, error) {
	args := m.Called(ctx, tx, issueID)
	comments, _ := args.Get(0).([]*models.Comment)
	return comments, args.Error(1)
}

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, tx *gorm.DB, message *models.Message) error {
	args := m.Called(ctx, tx, message)
	return args.Error(0)
}

func (m *MockMessageRepository) GetHistory(ctx context.Context, tx *gorm.DB, a, b uint, filters repositories.MessageFilters) ([]*models.Message, error) {
	args := m.Called(ctx, tx, a, b, filters)
	messages, _ := args.Get(0).([]*models.Message)
	return messages, args.Error(1)
}

func (m *MockMessageRepository) MarkRead(ctx context.Context, tx *gorm.DB, id, receiverID uint) (*models.Message, error) {
	args := m.Called(ctx, tx, id, receiverID)
	message, _ := args.Get(0).(*models.Message)
	return message, args.Error(1)
}

func (m *MockMessageRepository) CountUnread(ctx context.Context, tx *gorm.DB, receiverID uint) (int64, error) {
	args := m.Called(ctx, tx, receiverID)
	return args.Get(0).(int64), args.Error(1)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error {
	args := m.Called(ctx, tx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, tx *gorm.DB, userID uint, filters repositories.NotificationFilters) ([]*models.Notification, error) {
	args := m.Called(ctx, tx, userID, filters)
	notifications, _ := args.Get(0).([]*models.Notification)
	return notifications, args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	args := m.Called(ctx, tx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, tx *gorm.DB, id, userID uint) (*models.Notification, error) {
	args := m.Called(ctx, tx, id, userID)
	notification, _ := args.Get(0).(*models.Notification)
	return notification, args.Error(1)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	args := m.Called(ctx, tx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockAnnouncementRepository struct {
	mock.Mock
}

func (m *MockAnnouncementRepository) Create(ctx context.Context, tx *gorm.DB, announcement *models.Announcement) error {
	args := m.Called(ctx, tx, announcement)
	return args.Error(0)
}

func (m *MockAnnouncementRepository) List(ctx context.Context, tx *gorm.DB) ([]*models.Announcement, error) {
	args := m.Called(ctx, tx)
	announcements, _ := args.Get(0).([]*models.Announcement)
	return announcements, args.Error(1)
}

type MockLostFoundRepository struct {
	mock.Mock
}

func (m *MockLostFoundRepository) Create(ctx context.Context, tx *gorm.DB, item *models.LostFoundItem) error {
	args := m.Called(ctx, tx, item)
	return args.Error(0)
}

func (m *MockLostFoundRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.LostFoundItem, error) {
	args := m.Called(ctx, tx, id)
	item, _ := args.Get(0).(*models.LostFoundItem)
	return item, args.Error(1)
}

func (m *MockLostFoundRepository) ListByStatus(ctx context.Context, tx *gorm.DB, status models.LostFoundStatus) ([]*models.LostFoundItem, error) {
	args := m.Called(ctx, tx, status)
	items, _ := args.Get(0).([]*models.LostFoundItem)
	return items, args.Error(1)
}

func (m *MockLostFoundRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.LostFoundStatus) error {
	args := m.Called(ctx, tx, id, status)
	return args.Error(0)
}

// MockRepository runs transactions inline with a nil tx
type MockRepository struct {
	users         *MockUserRepository
	issues        *MockIssueRepository
	comments      *MockCommentRepository
	messages      *MockMessageRepository
	notifications *MockNotificationRepository
	announcements *MockAnnouncementRepository
	lostFound     *MockLostFoundRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		users:         &MockUserRepository{},
		issues:        &MockIssueRepository{},
		comments:      &MockCommentRepository{},
		messages:      &MockMessageRepository{},
		notifications: &MockNotificationRepository{},
		announcements: &MockAnnouncementRepository{},
		lostFound:     &MockLostFoundRepository{},
	}
}

func (m *MockRepository) User() repositories.UserRepository                 { return m.users }
func (m *MockRepository) Issue() repositories.IssueRepository               { return m.issues }
func (m *MockRepository) Comment() repositories.CommentRepository           { return m.comments }
func (m *MockRepository) Message() repositories.MessageRepository           { return m.messages }
func (m *MockRepository) Notification() repositories.NotificationRepository { return m.notifications }
func (m *MockRepository) Announcement() repositories.AnnouncementRepository { return m.announcements }
func (m *MockRepository) LostFound() repositories.LostFoundRepository       { return m.lostFound }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (m *MockRepository) Ping(ctx context.Context) error { return nil }

func (m *MockRepository) AssertExpectations(t mock.TestingT) {
	m.users.AssertExpectations(t)
	m.issues.AssertExpectations(t)
	m.comments.AssertExpectations(t)
	m.messages.AssertExpectations(t)
	m.notifications.AssertExpectations(t)
	m.announcements.AssertExpectations(t)
	m.lostFound.AssertExpectations(t)
}

// ===== TEST HELPERS =====

type recordingRecorder struct {
	created     int
	transitions []string
	deliveries  []string
}

func (r *recordingRecorder) IssueCreated() { r.created++ }

func (r *recordingRecorder) IssueTransition(from, to models.IssueStatus) {
	r.transitions = append(r.transitions, string(from)+"->"+string(to))
}

func (r *recordingRecorder) ObserveDelivery(event, outcome string) {
	r.deliveries = append(r.deliveries, event+":"+outcome)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPublisher() *events.MockEventPublisher {
	return events.NewMockEventPublisher(testLogger())
}

func stringPtr(s string) *string {
	return &s
}

func uintPtr(u uint) *uint {
	return &u
}
