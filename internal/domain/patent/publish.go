package patent

import (
	"time"

	"github.com/google/uuid"
)

// Scheduled is a patent whose publication time has come but whose status is
// still "scheduled".
type Scheduled struct {
	PatentID             uuid.UUID
	PatentNumber         string
	Title                string
	PublishedDate        time.Time
	AssigneeName         *string
	GamingRelevanceScore *float64
}

// Published is one entry of the publish job report.
type Published struct {
	PatentID      uuid.UUID `json:"patent_id"`
	PatentNumber  string    `json:"patent_number"`
	Title         string    `json:"title"`
	Company       string    `json:"company"`
	Score         float64   `json:"score"`
	PublishedDate time.Time `json:"published_date"`
}

// ToPublished applies the report defaults: unknown company, zero score.
func (s Scheduled) ToPublished() Published {
	p := Published{
		PatentID:      s.PatentID,
		PatentNumber:  s.PatentNumber,
		Title:         s.Title,
		Company:       "Unknown",
		PublishedDate: s.PublishedDate,
	}
	if s.AssigneeName != nil && *s.AssigneeName != "" {
		p.Company = *s.AssigneeName
	}
	if s.GamingRelevanceScore != nil {
		p.Score = *s.GamingRelevanceScore
	}
	return p
}

const (
	PublishMessageNone = "No patents to publish"
	PublishMessageDone = "Patents published successfully"
)

// PublishResult is the summary returned by one publish run.
type PublishResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Count   int         `json:"count"`
	Patents []Published `json:"patents,omitempty"`
}
