package user

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/futureofgaming-backend/internal/domain/user"
	"github.com/yungbote/futureofgaming-backend/internal/platform/dbctx"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(&user.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestUserRepoNewsletterStatus(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewUserRepo(db, logger.Nop())
	dbc := dbctx.Context{Ctx: context.Background()}

	if err := db.Create(&user.User{ID: "u1", Email: "ada@example.com", Name: "Ada"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := repo.UpdateNewsletterStatus(dbc, "u1", "subscribed"); err != nil {
		t.Fatalf("UpdateNewsletterStatus: %v", err)
	}
	got, err := repo.GetByID(dbc, "u1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.NewsletterStatus == nil || *got.NewsletterStatus != "subscribed" {
		t.Fatalf("mirror not updated: %+v", got)
	}

	if err := repo.UpdateNewsletterStatus(dbc, "missing", "subscribed"); err != nil {
		t.Fatalf("missing user should be a no-op: %v", err)
	}
	if got, err := repo.GetByID(dbc, "missing"); err != nil || got != nil {
		t.Fatalf("GetByID missing: got=%+v err=%v", got, err)
	}
}

func TestUserRepoUsesTransaction(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewUserRepo(db, logger.Nop())
	if err := db.Create(&user.User{ID: "u2", Email: "b@example.com"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	tx := db.Begin()
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	if err := repo.UpdateNewsletterStatus(dbc, "u2", "unsubscribed"); err != nil {
		t.Fatalf("UpdateNewsletterStatus: %v", err)
	}
	if err := tx.Rollback().Error; err != nil {
		t.Fatalf("rollback: %v", err)
	}

	got, err := repo.GetByID(dbctx.Context{Ctx: context.Background()}, "u2")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.NewsletterStatus != nil {
		t.Fatalf("rolled back write leaked: %v", *got.NewsletterStatus)
	}
}
