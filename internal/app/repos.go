package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/futureofgaming-backend/internal/data/repos"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
)

type Repos struct {
	Patent repos.PatentRepo
	User   repos.UserRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Patent: repos.NewPatentRepo(db, log),
		User:   repos.NewUserRepo(db, log),
	}
}
