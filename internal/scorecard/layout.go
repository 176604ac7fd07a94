package scorecard

import "github.com/yungbote/futureofgaming-backend/internal/domain/patent"

// Canvas and row geometry shared by the SVG and PNG renderers.
const (
	Width  = 1200
	Height = 630

	leftPadding  = 100
	rightPadding = 100
	trackX       = 320
	trackWidth   = 650
	trackHeight  = 32
	trackRadius  = 6
	rowSpacing   = 65
	titleTop     = 140
	titleSpacing = 48

	trackColor  = "#e0e0e0"
	borderColor = "#e0e0e0"
)

type row struct {
	Label string
	Score float64
	Color string
	Y     float64
}

// BarWidth scales a 0-100 score onto the track. Out-of-range scores are not
// clamped.
func BarWidth(score float64) float64 {
	return score * trackWidth / 100
}

// scoreStartY is the baseline of the first score row.
func scoreStartY(titleLines int) float64 {
	if titleLines > 1 {
		return 260
	}
	return 240
}

func rows(s patent.ScoreSet, titleLines int) []row {
	out := []row{
		{Label: "Gaming Relevance", Score: s.GamingRelevance, Color: "#22c55e"},
		{Label: "Innovation", Score: s.Innovation, Color: "#3b82f6"},
		{Label: "Commercial Viability", Score: s.CommercialViability, Color: "#f59e0b"},
		{Label: "Disruptiveness", Score: s.Disruptiveness, Color: "#ef4444"},
		{Label: "Feasibility", Score: s.Feasibility, Color: "#8b5cf6"},
	}
	if s.PatentStrength > 0 {
		out = append(out, row{Label: "Patent Strength", Score: s.PatentStrength, Color: "#64748b"})
	}
	start := scoreStartY(titleLines)
	for i := range out {
		out[i].Y = start + float64(i*rowSpacing)
	}
	return out
}
