package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/futureofgaming-backend/internal/data/repos"
	"github.com/yungbote/futureofgaming-backend/internal/domain/newsletter"
	"github.com/yungbote/futureofgaming-backend/internal/domain/patent"
	"github.com/yungbote/futureofgaming-backend/internal/domain/user"
	"github.com/yungbote/futureofgaming-backend/internal/platform/dbctx"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
)

const recentLimit = 3

type HomeView struct {
	Featured *patent.Summary
	Recent   []patent.Summary
}

type PatentView struct {
	Patent *patent.Detail
	Nav    patent.Nav
}

type ArchiveView struct {
	Patents []patent.Summary
}

// PageService loads the read models behind the public pages.
type PageService interface {
	Home(ctx context.Context) (*HomeView, error)
	// Patent returns patent.ErrNotFound for unknown or unpublished patents.
	Patent(ctx context.Context, patentNumber string) (*PatentView, error)
	Archive(ctx context.Context) (*ArchiveView, error)
	// NewsletterStatus personalises pages for signed-in users. Lookup errors
	// degrade to nil.
	NewsletterStatus(ctx context.Context, sess *user.Session) *string
}

type pageService struct {
	log     *logger.Logger
	patents repos.PatentRepo
	list    ListProvider
}

func NewPageService(log *logger.Logger, patents repos.PatentRepo, list ListProvider) PageService {
	return &pageService{
		log:     log.With("service", "PageService"),
		patents: patents,
		list:    list,
	}
}

func (s *pageService) Home(ctx context.Context) (*HomeView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	featured, err := s.patents.Featured(dbc)
	if err != nil {
		return nil, fmt.Errorf("featured patent: %w", err)
	}
	var exclude *uuid.UUID
	if featured != nil {
		exclude = &featured.PatentID
	}
	recent, err := s.patents.Recent(dbc, exclude, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("recent patents: %w", err)
	}
	return &HomeView{Featured: featured, Recent: recent}, nil
}

func (s *pageService) Patent(ctx context.Context, patentNumber string) (*PatentView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	detail, err := s.patents.Detail(dbc, patentNumber)
	if err != nil {
		return nil, err
	}
	nav, err := s.patents.Nav(dbc, patentNumber)
	if err != nil {
		s.log.Warn("Patent navigation lookup failed", "patent_number", patentNumber, "error", err)
		nav = patent.Nav{}
	}
	return &PatentView{Patent: detail, Nav: nav}, nil
}

func (s *pageService) Archive(ctx context.Context) (*ArchiveView, error) {
	all, err := s.patents.Archive(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	return &ArchiveView{Patents: all}, nil
}

func (s *pageService) NewsletterStatus(ctx context.Context, sess *user.Session) *string {
	if sess == nil || sess.Email == "" || s.list == nil {
		return nil
	}
	status, err := s.list.GetStatus(ctx, newsletter.NormalizeEmail(sess.Email))
	if err != nil {
		s.log.Warn("Error checking newsletter status", "user_id", sess.UserID, "error", err)
		return nil
	}
	return newsletter.UIStatus(status)
}
