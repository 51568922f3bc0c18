package handlers

import (
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/hostelhub/hostel-service/internal/models"
	"github.com/hostelhub/hostel-service/internal/services"
	"github.com/hostelhub/hostel-service/internal/utils"
	"github.com/stretchr/testify/mock"
)

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// ===== SERVICE MOCKS =====

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Login(ctx context.Context, req *services.LoginRequest) (*services.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.LoginResponse), args.Error(1)
}

func (m *mockAuthService) Register(ctx context.Context, req *services.RegisterRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	args := m.Called(ctx, name, email, password)
	return args.Bool(0), args.Error(1)
}

type mockUserService struct{ mock.Mock }

func (m *mockUserService) ListStudents(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *mockUserService) GetStudentDetails(ctx context.Context, id uint) (*services.StudentDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.StudentDetails), args.Error(1)
}

func (m *mockUserService) DeactivateStudent(ctx context.Context, id uint, actorID uint) (*models.User, error) {
	args := m.Called(ctx, id, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) ListStaff(ctx context.Context) ([]services.StaffMember, error) {
	args := m.Called(ctx)
	return args.Get(0).([]services.StaffMember), args.Error(1)
}

type mockIssueService struct{ mock.Mock }

func (m *mockIssueService) issue(args mock.Arguments) (*models.Issue, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Issue), args.Error(1)
}

func (m *mockIssueService) issues(args mock.Arguments) ([]*models.Issue, int64, error) {
	issues, _ := args.Get(0).([]*models.Issue)
	return issues, args.Get(1).(int64), args.Error(2)
}

func (m *mockIssueService) Create(ctx context.Context, req *services.CreateIssueRequest, reporterID uint, imagePath *string) (*models.Issue, error) {
	return m.issue(m.Called(ctx, req, reporterID, imagePath))
}

func (m *mockIssueService) Get(ctx context.Context, id uint, viewerID uint, viewerRole models.UserRole) (*models.Issue, error) {
	return m.issue(m.Called(ctx, id, viewerID, viewerRole))
}

func (m *mockIssueService) ListAll(ctx context.Context, query *services.IssueListQuery) ([]*models.Issue, int64, error) {
	return m.issues(m.Called(ctx, query))
}

func (m *mockIssueService) ListPublic(ctx context.Context, query *services.IssueListQuery) ([]*models.Issue, int64, error) {
	return m.issues(m.Called(ctx, query))
}

func (m *mockIssueService) ListMine(ctx context.Context, reporterID uint, query *services.IssueListQuery) ([]*models.Issue, int64, error) {
	return m.issues(m.Called(ctx, reporterID, query))
}

func (m *mockIssueService) Open(ctx context.Context, id uint, req *services.OpenIssueRequest, actorID uint) (*models.Issue, error) {
	return m.issue(m.Called(ctx, id, req, actorID))
}

func (m *mockIssueService) Resolve(ctx context.Context, id uint, req *services.ResolveIssueRequest, actorID uint) (*models.Issue, error) {
	return m.issue(m.Called(ctx, id, req, actorID))
}

func (m *mockIssueService) UpdateStatus(ctx context.Context, id uint, req *services.UpdateIssueStatusRequest, actorID uint) (*models.Issue, error) {
	return m.issue(m.Called(ctx, id, req, actorID))
}

func (m *mockIssueService) Stats(ctx context.Context) (*models.IssueStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IssueStats), args.Error(1)
}

type mockExportService struct{ mock.Mock }

func (m *mockExportService) ExportIssues(ctx context.Context, query *services.IssueListQuery) (*services.ExportFile, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ExportFile), args.Error(1)
}

type mockCommentService struct{ mock.Mock }

func (m *mockCommentService) List(ctx context.Context, issueID uint) ([]*models.Comment, error) {
	args := m.Called(ctx, issueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Comment), args.Error(1)
}

func (m *mockCommentService) Add(ctx context.Context, issueID uint, req *services.CreateCommentRequest, authorID uint) (*models.Comment, error) {
	args := m.Called(ctx, issueID, req, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

type mockMessageService struct{ mock.Mock }

func (m *mockMessageService) History(ctx context.Context, userID, otherID uint) ([]*models.Message, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Get(0).([]*models.Message), args.Error(1)
}

func (m *mockMessageService) Send(ctx context.Context, req *services.SendMessageRequest, senderID uint) (*models.Message, error) {
	args := m.Called(ctx, req, senderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *mockMessageService) MarkRead(ctx context.Context, id uint, userID uint) (*models.Message, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *mockMessageService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type mockNotificationService struct{ mock.Mock }

func (m *mockNotificationService) List(ctx context.Context, userID uint, query *services.NotificationQuery) ([]*models.Notification, error) {
	args := m.Called(ctx, userID, query)
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *mockNotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationService) MarkRead(ctx context.Context, id uint, userID uint) (*models.Notification, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *mockNotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type mockAnnouncementService struct{ mock.Mock }

func (m *mockAnnouncementService) Create(ctx context.Context, req *services.CreateAnnouncementRequest, authorID uint) (*models.Announcement, error) {
	args := m.Called(ctx, req, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Announcement), args.Error(1)
}

func (m *mockAnnouncementService) List(ctx context.Context) ([]*models.Announcement, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Announcement), args.Error(1)
}

type mockLostFoundService struct{ mock.Mock }

func (m *mockLostFoundService) Create(ctx context.Context, req *services.CreateLostFoundRequest, reporterID uint) (*models.LostFoundItem, error) {
	args := m.Called(ctx, req, reporterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LostFoundItem), args.Error(1)
}

func (m *mockLostFoundService) ListOpen(ctx context.Context) ([]*models.LostFoundItem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.LostFoundItem), args.Error(1)
}

func (m *mockLostFoundService) Claim(ctx context.Context, id uint, userID uint, role models.UserRole) (*models.LostFoundItem, error) {
	args := m.Called(ctx, id, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LostFoundItem), args.Error(1)
}

// mockServiceManager hands out the mocks above
type mockServiceManager struct {
	auth         *mockAuthService
	user         *mockUserService
	issue        *mockIssueService
	export       *mockExportService
	comment      *mockCommentService
	message      *mockMessageService
	notification *mockNotificationService
	announcement *mockAnnouncementService
	lostFound    *mockLostFoundService
}

func newMockServiceManager() *mockServiceManager {
	return &mockServiceManager{
		auth:         &mockAuthService{},
		user:         &mockUserService{},
		issue:        &mockIssueService{},
		export:       &mockExportService{},
		comment:      &mockCommentService{},
		message:      &mockMessageService{},
		notification: &mockNotificationService{},
		announcement: &mockAnnouncementService{},
		lostFound:    &mockLostFoundService{},
	}
}

func (m *mockServiceManager) Auth() services.AuthService                 { return m.auth }
func (m *mockServiceManager) User() services.UserService                 { return m.user }
func (m *mockServiceManager) Issue() services.IssueService               { return m.issue }
func (m *mockServiceManager) Export() services.ExportService             { return m.export }
func (m *mockServiceManager) Comment() services.CommentService           { return m.comment }
func (m *mockServiceManager) Message() services.MessageService           { return m.message }
func (m *mockServiceManager) Notification() services.NotificationService { return m.notification }
func (m *mockServiceManager) Announcement() services.AnnouncementService { return m.announcement }
func (m *mockServiceManager) LostFound() services.LostFoundService       { return m.lostFound }

// ===== INFRASTRUCTURE FAKES =====

type fakeImageStore struct {
	saved   []string
	removed []string
	saveErr error
}

func (f *fakeImageStore) Save(header *multipart.FileHeader) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	path := "uploads/" + header.Filename
	f.saved = append(f.saved, path)
	return path, nil
}

func (f *fakeImageStore) Remove(path string) error {
	f.removed = append(f.removed, path)
	return nil
}

func (f *fakeImageStore) MaxBytes() int64 {
	return 1 << 20
}

// fixedCounter reports the same count for every hit
type fixedCounter struct {
	count int64
}

func (f *fixedCounter) Hit(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return f.count, time.Hour, nil
}
