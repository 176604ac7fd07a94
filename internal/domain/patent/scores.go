package patent

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ScoreSet holds the six 0-100 evaluation metrics of a patent analysis.
type ScoreSet struct {
	GamingRelevance     float64
	Innovation          float64
	CommercialViability float64
	Disruptiveness      float64
	Feasibility         float64
	PatentStrength      float64
}

// analysisScores mirrors the keys stored in ai_analysis_deep.scores.
type analysisScores struct {
	GamingRelevance     flexFloat `json:"gaming_relevance_score"`
	Innovation          flexFloat `json:"innovation_score"`
	CommercialViability flexFloat `json:"commercial_viability_score"`
	Disruptiveness      flexFloat `json:"disruptiveness_score"`
	Feasibility         flexFloat `json:"implementation_feasibility_score"`
	PatentStrength      flexFloat `json:"patent_strength_score"`
}

// ScoreSetFromJSON decodes an analysis scores document. Empty or null input
// yields the zero ScoreSet; missing keys default to 0.
func ScoreSetFromJSON(raw []byte) (ScoreSet, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return ScoreSet{}, nil
	}
	var s analysisScores
	if err := json.Unmarshal(raw, &s); err != nil {
		return ScoreSet{}, fmt.Errorf("decode analysis scores: %w", err)
	}
	return ScoreSet{
		GamingRelevance:     float64(s.GamingRelevance),
		Innovation:          float64(s.Innovation),
		CommercialViability: float64(s.CommercialViability),
		Disruptiveness:      float64(s.Disruptiveness),
		Feasibility:         float64(s.Feasibility),
		PatentStrength:      float64(s.PatentStrength),
	}, nil
}

// flexFloat accepts numbers, numeric strings and null. Analysis rows written
// by older pipelines store some scores as strings.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		s = unq
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("score %q is not numeric", s)
	}
	*f = flexFloat(v)
	return nil
}
