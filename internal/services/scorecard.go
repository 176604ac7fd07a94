package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yungbote/futureofgaming-backend/internal/data/repos"
	"github.com/yungbote/futureofgaming-backend/internal/domain/patent"
	"github.com/yungbote/futureofgaming-backend/internal/observability"
	"github.com/yungbote/futureofgaming-backend/internal/platform/dbctx"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
	"github.com/yungbote/futureofgaming-backend/internal/platform/objectstore"
	"github.com/yungbote/futureofgaming-backend/internal/scorecard"
)

type ImageFormat string

const (
	FormatSVG ImageFormat = "svg"
	FormatPNG ImageFormat = "png"
)

const (
	CacheControlImmutable = "public, max-age=31536000"
	CacheControlNoStore   = "no-store"
)

// generateTimeout bounds one shared render-and-store run. The run outlives
// the request that started it, since later callers may be waiting on it.
const generateTimeout = 30 * time.Second

var ErrFormatDisabled = errors.New("image format not enabled")

// Scorecard is an image ready to be written to a response.
type Scorecard struct {
	Content      []byte
	ContentType  string
	CacheControl string
	FromCache    bool
	Fallback     bool
}

type ScorecardService interface {
	// GetOrCreate serves from the object store, rendering and storing on a
	// miss. ErrInvalidNumber, ErrNotFound and ErrFormatDisabled are returned,
	// as is ctx.Err() when the caller gives up while a render is in flight.
	// Every other failure yields a fallback image.
	GetOrCreate(ctx context.Context, patentNumber string, format ImageFormat) (*Scorecard, error)
	// Regenerate re-renders from source and overwrites the stored images,
	// returning the SVG's public URL. All failures are returned. Every
	// format is rendered before any is written, so a render failure leaves
	// the store untouched; a write failure after the SVG write leaves the
	// new SVG next to the old PNG.
	Regenerate(ctx context.Context, patentNumber string) (string, error)
}

type scorecardService struct {
	log       *logger.Logger
	patents   repos.PatentRepo
	store     objectstore.Gateway
	renderers map[ImageFormat]scorecard.Renderer
	fallbacks map[ImageFormat][]byte
	metrics   *observability.Metrics
	group     singleflight.Group
}

// NewScorecardService wires the SVG renderer and, when png is non-nil, the
// raster variant.
func NewScorecardService(
	log *logger.Logger,
	patents repos.PatentRepo,
	store objectstore.Gateway,
	svg *scorecard.SVGRenderer,
	png *scorecard.PNGRenderer,
	metrics *observability.Metrics,
) ScorecardService {
	s := &scorecardService{
		log:       log.With("service", "ScorecardService"),
		patents:   patents,
		store:     store,
		renderers: map[ImageFormat]scorecard.Renderer{FormatSVG: svg},
		fallbacks: map[ImageFormat][]byte{FormatSVG: scorecard.FallbackSVG()},
		metrics:   metrics,
	}
	if png != nil {
		s.renderers[FormatPNG] = png
		s.fallbacks[FormatPNG] = png.FallbackPNG()
	}
	return s
}

func (s *scorecardService) GetOrCreate(ctx context.Context, patentNumber string, format ImageFormat) (*Scorecard, error) {
	if !patent.ValidNumber(patentNumber) {
		return nil, patent.ErrInvalidNumber
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, ErrFormatDisabled
	}
	key := objectstore.Key(objectstore.CategoryPatentImages, patentNumber, renderer.Ext())

	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		return s.fallback(format, "store_exists", patentNumber, err), nil
	}
	if exists {
		content, err := s.store.Read(ctx, key)
		if err == nil {
			s.metrics.ScorecardRequest(string(format), true)
			return &Scorecard{
				Content:      content,
				ContentType:  renderer.ContentType(),
				CacheControl: CacheControlImmutable,
				FromCache:    true,
			}, nil
		}
		if !errors.Is(err, objectstore.ErrObjectNotFound) {
			return s.fallback(format, "store_read", patentNumber, err), nil
		}
		// Deleted between the two calls; render it again.
	}

	s.metrics.ScorecardRequest(string(format), false)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		genCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), generateTimeout)
		defer cancel()
		return s.renderAndStore(genCtx, patentNumber, renderer, key)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	v, err := res.Val, res.Err
	if err != nil {
		if errors.Is(err, patent.ErrNotFound) {
			return nil, err
		}
		return s.fallback(format, reasonOf(err), patentNumber, err), nil
	}
	content := v.([]byte)
	out := make([]byte, len(content))
	copy(out, content)
	return &Scorecard{
		Content:      out,
		ContentType:  renderer.ContentType(),
		CacheControl: CacheControlImmutable,
	}, nil
}

func (s *scorecardService) Regenerate(ctx context.Context, patentNumber string) (string, error) {
	if !patent.ValidNumber(patentNumber) {
		return "", patent.ErrInvalidNumber
	}
	in, err := s.patents.GetScorecardSource(dbctx.Context{Ctx: ctx}, patentNumber)
	if err != nil {
		return "", err
	}
	type rendered struct {
		renderer scorecard.Renderer
		content  []byte
	}
	var out []rendered
	for _, format := range []ImageFormat{FormatSVG, FormatPNG} {
		renderer, ok := s.renderers[format]
		if !ok {
			continue
		}
		content, err := s.render(renderer, *in)
		if err != nil {
			return "", err
		}
		out = append(out, rendered{renderer: renderer, content: content})
	}
	for _, r := range out {
		key := objectstore.Key(objectstore.CategoryPatentImages, patentNumber, r.renderer.Ext())
		if err := s.store.Write(ctx, key, r.content, r.renderer.ContentType(), CacheControlImmutable); err != nil {
			return "", fmt.Errorf("write %s: %w", key, err)
		}
	}
	svgKey := objectstore.Key(objectstore.CategoryPatentImages, patentNumber, s.renderers[FormatSVG].Ext())
	s.log.Info("Scorecard regenerated", "patent_number", patentNumber)
	return s.store.PublicURL(svgKey), nil
}

// stepError tags a generation failure with the metric reason.
type stepError struct {
	reason string
	err    error
}

func (e *stepError) Error() string { return e.reason + ": " + e.err.Error() }

func (e *stepError) Unwrap() error { return e.err }

func reasonOf(err error) string {
	var se *stepError
	if errors.As(err, &se) {
		return se.reason
	}
	return "unknown"
}

func (s *scorecardService) renderAndStore(ctx context.Context, patentNumber string, renderer scorecard.Renderer, key string) ([]byte, error) {
	in, err := s.patents.GetScorecardSource(dbctx.Context{Ctx: ctx}, patentNumber)
	if err != nil {
		if errors.Is(err, patent.ErrNotFound) {
			return nil, err
		}
		return nil, &stepError{reason: "source", err: err}
	}
	content, err := s.render(renderer, *in)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(ctx, key, content, renderer.ContentType(), CacheControlImmutable); err != nil {
		return nil, &stepError{reason: "store_write", err: err}
	}
	s.log.Debug("Scorecard generated", "patent_number", patentNumber, "key", key, "bytes", len(content))
	return content, nil
}

func (s *scorecardService) render(renderer scorecard.Renderer, in patent.ScorecardInput) ([]byte, error) {
	start := time.Now()
	content, err := renderer.Render(in)
	s.metrics.ObserveRender(renderer.Ext(), time.Since(start))
	if err != nil {
		return nil, &stepError{reason: "render", err: err}
	}
	return content, nil
}

func (s *scorecardService) fallback(format ImageFormat, reason, patentNumber string, err error) *Scorecard {
	s.log.Error("Serving fallback scorecard", "patent_number", patentNumber, "format", format, "reason", reason, "error", err)
	s.metrics.ScorecardFallback(reason)
	content := s.fallbacks[format]
	out := make([]byte, len(content))
	copy(out, content)
	return &Scorecard{
		Content:      out,
		ContentType:  s.renderers[format].ContentType(),
		CacheControl: CacheControlNoStore,
		Fallback:     true,
	}
}
