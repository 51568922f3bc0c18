package services

import (
	"log/slog"

	"github.com/hostelhub/hostel-service/internal/events"
	"github.com/hostelhub/hostel-service/internal/repositories"
	"github.com/hostelhub/hostel-service/internal/validator"
)

// Dependencies groups what every service needs
type Dependencies struct {
	Repo      repositories.Repository
	Tokens    TokenIssuer
	Publisher events.EventPublisher
	Recorder  Recorder
	Logger    *slog.Logger
	Validator *validator.Validator
}

type serviceManager struct {
	auth         AuthService
	user         UserService
	issue        IssueService
	export       ExportService
	comment      CommentService
	message      MessageService
	notification NotificationService
	announcement AnnouncementService
	lostFound    LostFoundService
}

func NewServiceManager(deps Dependencies) ServiceManager {
	v := deps.Validator
	if v == nil {
		v = validator.New()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &serviceManager{
		auth:         NewAuthService(deps.Repo, deps.Tokens, logger, v),
		user:         NewUserService(deps.Repo, logger),
		issue:        NewIssueService(deps.Repo, deps.Publisher, deps.Recorder, logger, v),
		export:       NewExportService(deps.Repo, logger, v),
		comment:      NewCommentService(deps.Repo, deps.Publisher, deps.Recorder, logger, v),
		message:      NewMessageService(deps.Repo, deps.Publisher, deps.Recorder, logger, v),
		notification: NewNotificationService(deps.Repo, logger, v),
		announcement: NewAnnouncementService(deps.Repo, logger, v),
		lostFound:    NewLostFoundService(deps.Repo, logger, v),
	}
}

func (m *serviceManager) Auth() AuthService                 { return m.auth }
func (m *serviceManager) User() UserService                 { return m.user }
func (m *serviceManager) Issue() IssueService               { return m.issue }
func (m *serviceManager) Export() ExportService             { return m.export }
func (m *serviceManager) Comment() CommentService           { return m.comment }
func (m *serviceManager) Message() MessageService           { return m.message }
func (m *serviceManager) Notification() NotificationService { return m.notification }
func (m *serviceManager) Announcement() AnnouncementService { return m.announcement }
func (m *serviceManager) LostFound() LostFoundService       { return m.lostFound }
