package postgres

import (
	"context"
	"fmt"

	"github.com/hostelhub/hostel-service/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	db           *gorm.DB
	user         repositories.UserRepository
	issue        repositories.IssueRepository
	comment      repositories.CommentRepository
	message      repositories.MessageRepository
	notification repositories.NotificationRepository
	announcement repositories.AnnouncementRepository
	lostFound    repositories.LostFoundRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	helpers := NewSharedHelpers(db)
	return &Repository{
		db:           db,
		user:         NewUserPostgreSQL(helpers),
		issue:        NewIssuePostgreSQL(helpers),
		comment:      NewCommentPostgreSQL(helpers),
		message:      NewMessagePostgreSQL(helpers),
		notification: NewNotificationPostgreSQL(helpers),
		announcement: NewAnnouncementPostgreSQL(helpers),
		lostFound:    NewLostFoundPostgreSQL(helpers),
	}
}

func (r *Repository) User() repositories.UserRepository                 { return r.user }
func (r *Repository) Issue() repositories.IssueRepository               { return r.issue }
func (r *Repository) Comment() repositories.CommentRepository           { return r.comment }
func (r *Repository) Message() repositories.MessageRepository           { return r.message }
func (r *Repository) Notification() repositories.NotificationRepository { return r.notification }
func (r *Repository) Announcement() repositories.AnnouncementRepository { return r.announcement }
func (r *Repository) LostFound() repositories.LostFoundRepository       { return r.lostFound }

// WithTransaction runs fn in a transaction; a returned error rolls it back.
func (r *Repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
