package services

import (
	"context"
	"time"

	"github.com/hostelhub/hostel-service/internal/models"
)

// ===== REQUEST / RESPONSE TYPES =====

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

type LoginResponse struct {
	Message string             `json:"message"`
	Token   string             `json:"token"`
	User    models.UserSummary `json:"user"`
}

type RegisterRequest struct {
	Name           string          `json:"name" validate:"required,max=100"`
	Email          string          `json:"email" validate:"required,email,max=255"`
	Password       string          `json:"password" validate:"required,max=72"`
	Role           models.UserRole `json:"role" validate:"omitempty,user_role"`
	HostelName     *string         `json:"hostel_name" validate:"omitempty,max=100"`
	BlockName      *string         `json:"block_name" validate:"omitempty,max=50"`
	RoomNumber     *string         `json:"room_number" validate:"omitempty,max=20"`
	StaffSpecialty *string         `json:"staff_specialty" validate:"omitempty,max=100"`
}

// CreateIssueRequest arrives as JSON or multipart form
type CreateIssueRequest struct {
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Category    string `json:"category" form:"category" validate:"omitempty,max=50"`
	Priority    string `json:"priority" form:"priority" validate:"omitempty,issue_priority"`
	Description string `json:"description" form:"description" validate:"max=5000"`
	IsPublic    bool   `json:"is_public" form:"is_public"`
}

type OpenIssueRequest struct {
	AssignedUserID uint `json:"assigned_user_id" validate:"required,gt=0"`
}

type ResolveIssueRequest struct {
	AdminNote *string `json:"admin_note" validate:"omitempty,max=2000"`
}

type UpdateIssueStatusRequest struct {
	Status models.IssueStatus `json:"status" validate:"required,issue_status"`
}

type IssueListQuery struct {
	Status   string `form:"status" validate:"omitempty,issue_status"`
	Hostel   string `form:"hostel" validate:"max=100"`
	Category string `form:"category" validate:"max=50"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type SendMessageRequest struct {
	ReceiverID uint   `json:"receiver_id" validate:"required,gt=0"`
	Content    string `json:"content" validate:"required,max=5000"`
}

type NotificationQuery struct {
	Limit      int  `form:"limit"`
	Offset     int  `form:"offset"`
	UnreadOnly bool `form:"unread"`
}

type CreateAnnouncementRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

type CreateLostFoundRequest struct {
	Title       string                   `json:"title" validate:"required,max=200"`
	Description string                   `json:"description" validate:"required,max=5000"`
	Category    models.LostFoundCategory `json:"category" validate:"required,lost_found_category"`
	ContactInfo *string                  `json:"contact_info" validate:"omitempty,max=255"`
}

// StaffMember is an assignment candidate
type StaffMember struct {
	ID             uint            `json:"id"`
	Name           string          `json:"name"`
	Role           models.UserRole `json:"role"`
	StaffSpecialty *string         `json:"staff_specialty"`
}

// StudentDetails is a student with their issue history, newest first
type StudentDetails struct {
	*models.User
	Issues []*models.Issue `json:"issues"`
}

// ExportFile is a generated spreadsheet
type ExportFile struct {
	FileName    string
	ContentType string
	Content     []byte
	RowCount    int
	GeneratedAt time.Time
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Me(ctx context.Context, userID uint) (*models.User, error)
	// EnsureAdmin creates the bootstrap admin when no user has its email
	EnsureAdmin(ctx context.Context, name, email, password string) (bool, error)
}

type UserService interface {
	ListStudents(ctx context.Context) ([]*models.User, error)
	GetStudentDetails(ctx context.Context, id uint) (*StudentDetails, error)
	DeactivateStudent(ctx context.Context, id uint, actorID uint) (*models.User, error)
	ListStaff(ctx context.Context) ([]StaffMember, error)
}

type IssueService interface {
	Create(ctx context.Context, req *CreateIssueRequest, reporterID uint, imagePath *string) (*models.Issue, error)
	Get(ctx context.Context, id uint, viewerID uint, viewerRole models.UserRole) (*models.Issue, error)
	// List methods return one page and the number of matching rows
	ListAll(ctx context.Context, query *IssueListQuery) ([]*models.Issue, int64, error)
	ListPublic(ctx context.Context, query *IssueListQuery) ([]*models.Issue, int64, error)
	ListMine(ctx context.Context, reporterID uint, query *IssueListQuery) ([]*models.Issue, int64, error)

	Open(ctx context.Context, id uint, req *OpenIssueRequest, actorID uint) (*models.Issue, error)
	Resolve(ctx context.Context, id uint, req *ResolveIssueRequest, actorID uint) (*models.Issue, error)
	UpdateStatus(ctx context.Context, id uint, req *UpdateIssueStatusRequest, actorID uint) (*models.Issue, error)

	Stats(ctx context.Context) (*models.IssueStats, error)
}

type ExportService interface {
	ExportIssues(ctx context.Context, query *IssueListQuery) (*ExportFile, error)
}

type CommentService interface {
	List(ctx context.Context, issueID uint) ([]*models.Comment, error)
	Add(ctx context.Context, issueID uint, req *CreateCommentRequest, authorID uint) (*models.Comment, error)
}

type MessageService interface {
	History(ctx context.Context, userID, otherID uint) ([]*models.Message, error)
	Send(ctx context.Context, req *SendMessageRequest, senderID uint) (*models.Message, error)
	MarkRead(ctx context.Context, id uint, userID uint) (*models.Message, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
}

type NotificationService interface {
	List(ctx context.Context, userID uint, query *NotificationQuery) ([]*models.Notification, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, id uint, userID uint) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
}

type AnnouncementService interface {
	Create(ctx context.Context, req *CreateAnnouncementRequest, authorID uint) (*models.Announcement, error)
	List(ctx context.Context) ([]*models.Announcement, error)
}

type LostFoundService interface {
	Create(ctx context.Context, req *CreateLostFoundRequest, reporterID uint) (*models.LostFoundItem, error)
	ListOpen(ctx context.Context) ([]*models.LostFoundItem, error)
	Claim(ctx context.Context, id uint, userID uint, role models.UserRole) (*models.LostFoundItem, error)
}

// ServiceManager exposes every service to the handler layer
type ServiceManager interface {
	Auth() AuthService
	User() UserService
	Issue() IssueService
	Export() ExportService
	Comment() CommentService
	Message() MessageService
	Notification() NotificationService
	Announcement() AnnouncementService
	LostFound() LostFoundService
}
