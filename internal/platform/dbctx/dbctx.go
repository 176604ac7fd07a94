package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context carries the caller's context and, inside a unit of work, the open
// transaction. The zero value is usable.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// DB binds Tx, or base when no transaction is open, to Ctx.
func (c Context) DB(base *gorm.DB) *gorm.DB {
	db := base
	if c.Tx != nil {
		db = c.Tx
	}
	if c.Ctx == nil {
		return db.WithContext(context.Background())
	}
	return db.WithContext(c.Ctx)
}
