package patent

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"

	"github.com/yungbote/futureofgaming-backend/internal/domain/patent"
	"github.com/yungbote/futureofgaming-backend/internal/platform/dbctx"
)

// Only patents with a deep analysis and a publication date are visible on
// the site.
const summarySelect = `
SELECT
	p.patent_id,
	p.patent_number,
	COALESCE(p.title, '') AS title,
	COALESCE(p.abstract, '') AS abstract,
	p.filing_date,
	p.grant_date,
	p.published_date,
	COALESCE(ad.executive_summary, '') AS executive_summary,
	COALESCE(ad.scores, '{}'::jsonb) AS scores,
	COALESCE(ARRAY_AGG(DISTINCT a.assignee_name) FILTER (WHERE a.assignee_name IS NOT NULL), '{}') AS assignees
FROM patents p
INNER JOIN ai_analysis_deep ad ON p.patent_id = ad.patent_id
LEFT JOIN patent_assignees pa ON p.patent_id = pa.patent_id
LEFT JOIN assignees a ON pa.assignee_id = a.assignee_id
WHERE ad.executive_summary IS NOT NULL
	AND p.published_date IS NOT NULL`

const summaryGroup = `
GROUP BY p.patent_id, p.patent_number, p.title, p.abstract,
	p.filing_date, p.grant_date, p.published_date, p.created_at, ad.executive_summary, ad.scores`

type summaryRow struct {
	PatentID         uuid.UUID      `gorm:"column:patent_id"`
	PatentNumber     string         `gorm:"column:patent_number"`
	Title            string         `gorm:"column:title"`
	Abstract         string         `gorm:"column:abstract"`
	FilingDate       *time.Time     `gorm:"column:filing_date"`
	GrantDate        *time.Time     `gorm:"column:grant_date"`
	PublishedDate    *time.Time     `gorm:"column:published_date"`
	ExecutiveSummary string         `gorm:"column:executive_summary"`
	Scores           datatypes.JSON `gorm:"column:scores"`
	Assignees        pq.StringArray `gorm:"column:assignees"`
}

func (row summaryRow) toSummary() (patent.Summary, error) {
	scores, err := patent.ScoreSetFromJSON(row.Scores)
	if err != nil {
		return patent.Summary{}, err
	}
	return patent.Summary{
		PatentID:         row.PatentID,
		PatentNumber:     row.PatentNumber,
		Title:            row.Title,
		Abstract:         row.Abstract,
		FilingDate:       row.FilingDate,
		GrantDate:        row.GrantDate,
		PublishedDate:    row.PublishedDate,
		ExecutiveSummary: row.ExecutiveSummary,
		Scores:           scores,
		Assignees:        []string(row.Assignees),
	}, nil
}

func toSummaries(rows []summaryRow) ([]patent.Summary, error) {
	out := make([]patent.Summary, 0, len(rows))
	for _, row := range rows {
		s, err := row.toSummary()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Featured returns the most recently published patent, or nil.
func (r *patentRepo) Featured(dbc dbctx.Context) (*patent.Summary, error) {
	transaction := dbc.DB(r.db)
	var rows []summaryRow
	q := summarySelect + summaryGroup + "\nORDER BY p.published_date DESC\nLIMIT 1"
	if err := transaction.Raw(q).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	s, err := rows[0].toSummary()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *patentRepo) Recent(dbc dbctx.Context, exclude *uuid.UUID, limit int) ([]patent.Summary, error) {
	transaction := dbc.DB(r.db)
	if limit <= 0 {
		limit = 3
	}
	var rows []summaryRow
	q := summarySelect
	args := []interface{}{}
	if exclude != nil {
		q += "\n\tAND p.patent_id <> ?"
		args = append(args, *exclude)
	}
	q += summaryGroup + "\nORDER BY p.published_date DESC, p.created_at DESC\nLIMIT ?"
	args = append(args, limit)
	if err := transaction.Raw(q, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toSummaries(rows)
}

func (r *patentRepo) Archive(dbc dbctx.Context) ([]patent.Summary, error) {
	transaction := dbc.DB(r.db)
	var rows []summaryRow
	q := summarySelect + summaryGroup + "\nORDER BY p.published_date DESC, p.created_at DESC"
	if err := transaction.Raw(q).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toSummaries(rows)
}

const detailQuery = `
SELECT
	p.patent_id,
	p.patent_number,
	COALESCE(p.title, '') AS title,
	COALESCE(p.abstract, '') AS abstract,
	p.filing_date,
	p.grant_date,
	p.published_date,
	COALESCE(ad.executive_summary, '') AS executive_summary,
	COALESCE(ad.technology_deep_dive, '') AS technology_deep_dive,
	COALESCE(ad.bottom_line, '') AS bottom_line,
	COALESCE(ad.practical_applications, '') AS practical_applications,
	COALESCE(ad.what_this_looks_like, '') AS what_this_looks_like,
	COALESCE(ad.scenarios, '') AS scenarios,
	COALESCE(ad.audience_takeaways, '') AS audience_takeaways,
	COALESCE(ad.competitive_landscape, '') AS competitive_landscape,
	COALESCE(ad.reality_check, '') AS reality_check,
	COALESCE(ad.implementation_analysis, '') AS implementation_analysis,
	COALESCE(ad.market_context, '') AS market_context,
	COALESCE(ad.risk_assessment, '') AS risk_assessment,
	COALESCE(ad.what_to_watch, '') AS what_to_watch,
	COALESCE(ad.final_take, '') AS final_take,
	COALESCE(ad.competitive_impact, '') AS competitive_impact,
	COALESCE(ad.scores, '{}'::jsonb) AS scores,
	COALESCE(ARRAY_AGG(DISTINCT a.assignee_name) FILTER (WHERE a.assignee_name IS NOT NULL), '{}') AS assignees,
	COALESCE(ARRAY_AGG(DISTINCT i.full_name) FILTER (WHERE i.full_name IS NOT NULL), '{}') AS inventors
FROM patents p
INNER JOIN ai_analysis_deep ad ON p.patent_id = ad.patent_id
LEFT JOIN patent_assignees pa ON p.patent_id = pa.patent_id
LEFT JOIN assignees a ON pa.assignee_id = a.assignee_id
LEFT JOIN patent_inventors pi ON p.patent_id = pi.patent_id
LEFT JOIN inventors i ON pi.inventor_id = i.inventor_id
WHERE p.patent_number = ?
	AND p.published_date IS NOT NULL
GROUP BY p.patent_id, ad.deep_analysis_id
LIMIT 1`

type detailRow struct {
	summaryRow
	TechnologyDeepDive     string         `gorm:"column:technology_deep_dive"`
	BottomLine             string         `gorm:"column:bottom_line"`
	PracticalApplications  string         `gorm:"column:practical_applications"`
	WhatThisLooksLike      string         `gorm:"column:what_this_looks_like"`
	Scenarios              string         `gorm:"column:scenarios"`
	AudienceTakeaways      string         `gorm:"column:audience_takeaways"`
	CompetitiveLandscape   string         `gorm:"column:competitive_landscape"`
	RealityCheck           string         `gorm:"column:reality_check"`
	ImplementationAnalysis string         `gorm:"column:implementation_analysis"`
	MarketContext          string         `gorm:"column:market_context"`
	RiskAssessment         string         `gorm:"column:risk_assessment"`
	WhatToWatch            string         `gorm:"column:what_to_watch"`
	FinalTake              string         `gorm:"column:final_take"`
	CompetitiveImpact      string         `gorm:"column:competitive_impact"`
	Inventors              pq.StringArray `gorm:"column:inventors"`
}

func (r *patentRepo) Detail(dbc dbctx.Context, patentNumber string) (*patent.Detail, error) {
	transaction := dbc.DB(r.db)
	var rows []detailRow
	if err := transaction.Raw(detailQuery, patentNumber).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, patent.ErrNotFound
	}
	row := rows[0]
	summary, err := row.summaryRow.toSummary()
	if err != nil {
		return nil, err
	}
	return &patent.Detail{
		Summary:                summary,
		TechnologyDeepDive:     row.TechnologyDeepDive,
		BottomLine:             row.BottomLine,
		PracticalApplications:  row.PracticalApplications,
		WhatThisLooksLike:      row.WhatThisLooksLike,
		Scenarios:              row.Scenarios,
		AudienceTakeaways:      row.AudienceTakeaways,
		CompetitiveLandscape:   row.CompetitiveLandscape,
		RealityCheck:           row.RealityCheck,
		ImplementationAnalysis: row.ImplementationAnalysis,
		MarketContext:          row.MarketContext,
		RiskAssessment:         row.RiskAssessment,
		WhatToWatch:            row.WhatToWatch,
		FinalTake:              row.FinalTake,
		CompetitiveImpact:      row.CompetitiveImpact,
		Inventors:              []string(row.Inventors),
	}, nil
}

const navQuery = `
WITH numbered AS (
	SELECT
		p.patent_number,
		LAG(p.patent_number) OVER (ORDER BY p.published_date DESC, p.created_at DESC) AS prev_patent,
		LEAD(p.patent_number) OVER (ORDER BY p.published_date DESC, p.created_at DESC) AS next_patent
	FROM patents p
	INNER JOIN ai_analysis_deep ad ON p.patent_id = ad.patent_id
	WHERE ad.executive_summary IS NOT NULL
		AND p.published_date IS NOT NULL
)
SELECT prev_patent, next_patent
FROM numbered
WHERE patent_number = ?`

type navRow struct {
	PrevPatent *string `gorm:"column:prev_patent"`
	NextPatent *string `gorm:"column:next_patent"`
}

// Nav returns the neighbours in publication order, newest first. Missing
// neighbours are empty strings.
func (r *patentRepo) Nav(dbc dbctx.Context, patentNumber string) (patent.Nav, error) {
	transaction := dbc.DB(r.db)
	var rows []navRow
	if err := transaction.Raw(navQuery, patentNumber).Scan(&rows).Error; err != nil {
		return patent.Nav{}, err
	}
	var nav patent.Nav
	if len(rows) == 0 {
		return nav, nil
	}
	if rows[0].PrevPatent != nil {
		nav.Previous = *rows[0].PrevPatent
	}
	if rows[0].NextPatent != nil {
		nav.Next = *rows[0].NextPatent
	}
	return nav, nil
}
