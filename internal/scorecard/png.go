package scorecard

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/yungbote/futureofgaming-backend/internal/domain/patent"
)

const ContentTypePNG = "image/png"

// PNGRenderer draws the same layout as SVGRenderer into a raster image for
// networks that do not accept SVG previews.
type PNGRenderer struct {
	WrapWidth int

	regular *truetype.Font
	medium  *truetype.Font
	bold    *truetype.Font
}

func NewPNGRenderer() (*PNGRenderer, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	medium, err := truetype.Parse(gomedium.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse medium font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}
	return &PNGRenderer{WrapWidth: DefaultWrapWidth, regular: regular, medium: medium, bold: bold}, nil
}

func (r *PNGRenderer) ContentType() string { return ContentTypePNG }

func (r *PNGRenderer) Ext() string { return "png" }

// face builds a fresh face per call; truetype faces cache glyphs and are not
// safe for concurrent use.
func face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

func (r *PNGRenderer) Render(in patent.ScorecardInput) ([]byte, error) {
	in = in.WithDefaults()
	lines := WrapTitle(in.Title, r.WrapWidth)

	dc := gg.NewContext(Width, Height)
	dc.SetHexColor("#ffffff")
	dc.Clear()

	dc.SetHexColor(borderColor)
	dc.SetLineWidth(1)
	dc.DrawRectangle(0.5, 0.5, Width-1, Height-1)
	dc.Stroke()

	dc.SetFontFace(face(r.medium, 14))
	dc.SetHexColor("#999999")
	dc.DrawString("Patent "+in.PatentNumber, leftPadding, 50)

	dc.SetFontFace(face(r.regular, 17))
	dc.SetHexColor("#666666")
	dc.DrawString(in.Company, leftPadding, 80)

	dc.SetFontFace(face(r.bold, 42))
	dc.SetHexColor("#000000")
	for i, line := range lines {
		dc.DrawString(line, leftPadding, float64(titleTop+i*titleSpacing))
	}

	labelFace := face(r.medium, 17)
	scoreFace := face(r.bold, 24)
	for _, rw := range rows(in.Scores, len(lines)) {
		top := rw.Y - trackHeight/2

		dc.SetFontFace(labelFace)
		dc.SetHexColor("#000000")
		dc.DrawString(rw.Label, leftPadding, rw.Y)

		dc.SetHexColor(trackColor)
		dc.DrawRoundedRectangle(trackX, top, trackWidth, trackHeight, trackRadius)
		dc.Fill()

		if w := BarWidth(rw.Score); w > 0 {
			dc.SetHexColor(rw.Color)
			dc.DrawRoundedRectangle(trackX, top, w, trackHeight, trackRadius)
			dc.Fill()
		}

		dc.SetFontFace(scoreFace)
		dc.SetHexColor("#000000")
		dc.DrawStringAnchored(num(rw.Score), Width-rightPadding, rw.Y+5, 1, 0)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// FallbackPNG is the raster counterpart of FallbackSVG.
func (r *PNGRenderer) FallbackPNG() []byte {
	dc := gg.NewContext(Width, Height)
	dc.SetHexColor("#f3f4f6")
	dc.Clear()
	dc.SetFontFace(face(r.regular, 24))
	dc.SetHexColor("#6b7280")
	dc.DrawStringAnchored("Error generating scorecard", Width/2, Height/2, 0.5, 0.5)
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil
	}
	return buf.Bytes()
}
