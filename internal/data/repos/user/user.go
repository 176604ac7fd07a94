package user

import (
	"github.com/yungbote/futureofgaming-backend/internal/domain/user"
	"github.com/yungbote/futureofgaming-backend/internal/platform/dbctx"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
	"gorm.io/gorm"
)

// UserRepo touches only the newsletter mirror column. Every other column of
// "user" belongs to the auth service.
type UserRepo interface {
	GetByID(dbc dbctx.Context, userID string) (*user.User, error)
	UpdateNewsletterStatus(dbc dbctx.Context, userID string, status string) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) GetByID(dbc dbctx.Context, userID string) (*user.User, error) {
	if userID == "" {
		return nil, nil
	}
	var results []*user.User
	if err := dbc.DB(ur.db).Where("id = ?", userID).Limit(1).Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// UpdateNewsletterStatus writes the best-effort mirror. Missing users are not
// an error.
func (ur *userRepo) UpdateNewsletterStatus(dbc dbctx.Context, userID string, status string) error {
	if userID == "" {
		return nil
	}
	return dbc.DB(ur.db).
		Model(&user.User{}).
		Where("id = ?", userID).
		Update("newsletter_status", status).Error
}
