package patent

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTitle   = "Patent Title"
	DefaultCompany = "Company Name"

	PublishStatusScheduled = "scheduled"
	PublishStatusPublished = "published"
)

var (
	ErrNotFound      = errors.New("patent not found")
	ErrInvalidNumber = errors.New("invalid patent number")
)

var numberPattern = regexp.MustCompile(`^[A-Z0-9]+$`)

// ValidNumber reports whether s is usable as a cache key: uppercase letters and
// digits only, non-empty.
func ValidNumber(s string) bool {
	return numberPattern.MatchString(s)
}

// ScorecardInput is everything the renderers need for one image.
type ScorecardInput struct {
	Title        string
	Company      string
	PatentNumber string
	Scores       ScoreSet
}

// WithDefaults fills the placeholder title and company used when the source
// record has none.
func (in ScorecardInput) WithDefaults() ScorecardInput {
	if in.Title == "" {
		in.Title = DefaultTitle
	}
	if in.Company == "" {
		in.Company = DefaultCompany
	}
	return in
}

// Summary is the list-row shape used by the home and archive pages.
type Summary struct {
	PatentID         uuid.UUID
	PatentNumber     string
	Title            string
	Abstract         string
	FilingDate       *time.Time
	GrantDate        *time.Time
	PublishedDate    *time.Time
	ExecutiveSummary string
	Scores           ScoreSet
	Assignees        []string
}

// Detail is the full analysis shown on a patent page.
type Detail struct {
	Summary
	TechnologyDeepDive     string
	BottomLine             string
	PracticalApplications  string
	WhatThisLooksLike      string
	Scenarios              string
	AudienceTakeaways      string
	CompetitiveLandscape   string
	RealityCheck           string
	ImplementationAnalysis string
	MarketContext          string
	RiskAssessment         string
	WhatToWatch            string
	FinalTake              string
	CompetitiveImpact      string
	Inventors              []string
}

// Nav holds the neighbouring patents in publication order.
type Nav struct {
	Previous string
	Next     string
}
