package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/futureofgaming-backend/internal/data/repos/patent"
	"github.com/yungbote/futureofgaming-backend/internal/data/repos/user"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
)

type PatentRepo = patent.PatentRepo
type UserRepo = user.UserRepo

func NewPatentRepo(db *gorm.DB, baseLog *logger.Logger) PatentRepo {
	return patent.NewPatentRepo(db, baseLog)
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return user.NewUserRepo(db, baseLog)
}
