package patent

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/futureofgaming-backend/internal/domain/patent"
	"github.com/yungbote/futureofgaming-backend/internal/platform/dbctx"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
)

// PatentRepo reads the patent catalogue. The schema is owned by the
// ingestion pipeline; only publish_status is ever written here.
type PatentRepo interface {
	GetScorecardSource(dbc dbctx.Context, patentNumber string) (*patent.ScorecardInput, error)
	ListDue(dbc dbctx.Context) ([]patent.Scheduled, error)
	MarkPublished(dbc dbctx.Context, patentID uuid.UUID) error
	Featured(dbc dbctx.Context) (*patent.Summary, error)
	Recent(dbc dbctx.Context, exclude *uuid.UUID, limit int) ([]patent.Summary, error)
	Archive(dbc dbctx.Context) ([]patent.Summary, error)
	Detail(dbc dbctx.Context, patentNumber string) (*patent.Detail, error)
	Nav(dbc dbctx.Context, patentNumber string) (patent.Nav, error)
}

type patentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPatentRepo(db *gorm.DB, baseLog *logger.Logger) PatentRepo {
	return &patentRepo{
		db:  db,
		log: baseLog.With("repo", "PatentRepo"),
	}
}

const scorecardSourceQuery = `
SELECT
	p.patent_number,
	p.title,
	COALESCE(ad.scores, '{}'::jsonb) AS scores,
	COALESCE(ARRAY_AGG(a.assignee_name ORDER BY pa.sequence_order) FILTER (WHERE a.assignee_name IS NOT NULL), '{}') AS assignees
FROM patents p
LEFT JOIN patent_assignees pa ON p.patent_id = pa.patent_id
LEFT JOIN assignees a ON pa.assignee_id = a.assignee_id
LEFT JOIN ai_analysis_deep ad ON p.patent_id = ad.patent_id
WHERE p.patent_number = ?
GROUP BY p.patent_id, p.patent_number, p.title, ad.scores
LIMIT 1`

type scorecardRow struct {
	PatentNumber string         `gorm:"column:patent_number"`
	Title        *string        `gorm:"column:title"`
	Scores       datatypes.JSON `gorm:"column:scores"`
	Assignees    pq.StringArray `gorm:"column:assignees"`
}

func (r *patentRepo) GetScorecardSource(dbc dbctx.Context, patentNumber string) (*patent.ScorecardInput, error) {
	transaction := dbc.DB(r.db)
	var rows []scorecardRow
	if err := transaction.Raw(scorecardSourceQuery, patentNumber).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, patent.ErrNotFound
	}
	row := rows[0]
	scores, err := patent.ScoreSetFromJSON(row.Scores)
	if err != nil {
		return nil, err
	}
	in := patent.ScorecardInput{
		PatentNumber: row.PatentNumber,
		Company:      strings.Join(row.Assignees, ", "),
		Scores:       scores,
	}
	if row.Title != nil {
		in.Title = *row.Title
	}
	in = in.WithDefaults()
	return &in, nil
}

const dueQuery = `
SELECT
	p.patent_id,
	p.patent_number,
	p.title,
	p.published_date,
	a.assignee_name,
	ai.gaming_relevance_score
FROM patents p
LEFT JOIN patent_assignees pa ON p.patent_id = pa.patent_id AND pa.sequence_order = 0
LEFT JOIN assignees a ON pa.assignee_id = a.assignee_id
LEFT JOIN ai_analysis ai ON p.patent_id = ai.patent_id
WHERE p.publish_status = ?
	AND p.published_date <= NOW()
ORDER BY p.published_date ASC`

type dueRow struct {
	PatentID             uuid.UUID `gorm:"column:patent_id"`
	PatentNumber         string    `gorm:"column:patent_number"`
	Title                *string   `gorm:"column:title"`
	PublishedDate        time.Time `gorm:"column:published_date"`
	AssigneeName         *string   `gorm:"column:assignee_name"`
	GamingRelevanceScore *float64  `gorm:"column:gaming_relevance_score"`
}

func (r *patentRepo) ListDue(dbc dbctx.Context) ([]patent.Scheduled, error) {
	transaction := dbc.DB(r.db)
	var rows []dueRow
	if err := transaction.Raw(dueQuery, patent.PublishStatusScheduled).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]patent.Scheduled, 0, len(rows))
	for _, row := range rows {
		s := patent.Scheduled{
			PatentID:             row.PatentID,
			PatentNumber:         row.PatentNumber,
			PublishedDate:        row.PublishedDate,
			AssigneeName:         row.AssigneeName,
			GamingRelevanceScore: row.GamingRelevanceScore,
		}
		if row.Title != nil {
			s.Title = *row.Title
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *patentRepo) MarkPublished(dbc dbctx.Context, patentID uuid.UUID) error {
	if patentID == uuid.Nil {
		return errors.New("patent id required")
	}
	return dbc.DB(r.db).Exec("UPDATE patents SET publish_status = ? WHERE patent_id = ?", patent.PublishStatusPublished, patentID).Error
}
