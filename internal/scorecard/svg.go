package scorecard

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/futureofgaming-backend/internal/domain/patent"
)

const (
	ContentTypeSVG = "image/svg+xml"
	fontStack      = "-apple-system, BlinkMacSystemFont, Segoe UI, Roboto, sans-serif"
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string { return xmlEscaper.Replace(s) }

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Renderer turns a scorecard input into an encoded image.
type Renderer interface {
	Render(in patent.ScorecardInput) ([]byte, error)
	ContentType() string
	Ext() string
}

// SVGRenderer draws the 1200x630 scorecard. Output depends only on the input
// unless a copyright footer is set.
type SVGRenderer struct {
	WrapWidth int

	year  func() int
	owner string
}

func NewSVGRenderer() *SVGRenderer {
	return &SVGRenderer{WrapWidth: DefaultWrapWidth}
}

// WithCopyright adds a "© year owner" footer. year is called on every
// render, so a long-running process picks up the new year.
func (r *SVGRenderer) WithCopyright(owner string, year func() int) *SVGRenderer {
	cp := *r
	cp.year = year
	cp.owner = owner
	return &cp
}

// CurrentYear is the wall-clock year, for WithCopyright.
func CurrentYear() int { return time.Now().Year() }

func (r *SVGRenderer) ContentType() string { return ContentTypeSVG }

func (r *SVGRenderer) Ext() string { return "svg" }

func (r *SVGRenderer) Render(in patent.ScorecardInput) ([]byte, error) {
	in = in.WithDefaults()
	lines := WrapTitle(in.Title, r.WrapWidth)

	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`+"\n", Width, Height)
	fmt.Fprintf(&b, `  <rect width="%d" height="%d" fill="#ffffff"/>`+"\n", Width, Height)
	fmt.Fprintf(&b, `  <rect x="0" y="0" width="%d" height="%d" fill="none" stroke="%s" stroke-width="1"/>`+"\n", Width, Height, borderColor)
	fmt.Fprintf(&b, `  <text x="%d" y="50" fill="#999" font-size="14" font-weight="500" font-family="%s">Patent %s</text>`+"\n",
		leftPadding, fontStack, escapeXML(in.PatentNumber))
	fmt.Fprintf(&b, `  <text x="%d" y="80" fill="#666" font-size="17" font-weight="400" font-family="%s">%s</text>`+"\n",
		leftPadding, fontStack, escapeXML(in.Company))
	for i, line := range lines {
		fmt.Fprintf(&b, `  <text x="%d" y="%d" fill="#000" font-size="42" font-weight="700" letter-spacing="-0.02em" font-family="%s">%s</text>`+"\n",
			leftPadding, titleTop+i*titleSpacing, fontStack, escapeXML(line))
	}
	for _, rw := range rows(in.Scores, len(lines)) {
		y := num(rw.Y)
		top := num(rw.Y - trackHeight/2)
		fmt.Fprintf(&b, `  <text x="%d" y="%s" fill="#000" font-size="17" font-weight="500" font-family="%s">%s</text>`+"\n",
			leftPadding, y, fontStack, rw.Label)
		fmt.Fprintf(&b, `  <rect x="%d" y="%s" width="%d" height="%d" rx="%d" fill="%s"/>`+"\n",
			trackX, top, trackWidth, trackHeight, trackRadius, trackColor)
		fmt.Fprintf(&b, `  <rect x="%d" y="%s" width="%s" height="%d" rx="%d" fill="%s"/>`+"\n",
			trackX, top, num(BarWidth(rw.Score)), trackHeight, trackRadius, rw.Color)
		fmt.Fprintf(&b, `  <text x="%d" y="%s" fill="#000" font-size="24" font-weight="700" text-anchor="end" font-family="%s">%s</text>`+"\n",
			Width-rightPadding, num(rw.Y+5), fontStack, num(rw.Score))
	}
	if r.year != nil {
		fmt.Fprintf(&b, `  <text x="%d" y="%d" fill="#999" font-size="12" text-anchor="end" font-family="%s">© %d %s</text>`+"\n",
			Width-rightPadding, Height-20, fontStack, r.year(), escapeXML(r.owner))
	}
	b.WriteString("</svg>")
	return b.Bytes(), nil
}

var fallbackSVG = []byte(`<svg width="1200" height="630" xmlns="http://www.w3.org/2000/svg">
  <rect width="1200" height="630" fill="#f3f4f6"/>
  <text x="600" y="315" fill="#6b7280" font-size="24" text-anchor="middle" font-family="sans-serif">Error generating scorecard</text>
</svg>`)

// FallbackSVG is served in place of a scorecard that could not be produced.
func FallbackSVG() []byte {
	out := make([]byte, len(fallbackSVG))
	copy(out, fallbackSVG)
	return out
}
