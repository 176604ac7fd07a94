package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/futureofgaming-backend/internal/domain/patent"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
	"github.com/yungbote/futureofgaming-backend/internal/platform/objectstore"
	"github.com/yungbote/futureofgaming-backend/internal/scorecard"
)

type failingWriteStore struct {
	*objectstore.Memory
}

func (failingWriteStore) Write(context.Context, string, []byte, string, string) error {
	return errors.New("access denied")
}

func newTestScorecardService(t *testing.T, repo *fakePatentRepo, store objectstore.Gateway) ScorecardService {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return NewScorecardService(log, repo, store, scorecard.NewSVGRenderer(), nil, nil)
}

func scorecardRepo() *fakePatentRepo {
	return &fakePatentRepo{sources: map[string]patent.ScorecardInput{
		"US11000001B2": {
			Title:        "Haptic Controller With Adaptive Triggers",
			Company:      "Sony Interactive Entertainment Inc.",
			PatentNumber: "US11000001B2",
			Scores:       patent.ScoreSet{GamingRelevance: 90, Innovation: 70, CommercialViability: 60, Disruptiveness: 40, Feasibility: 80},
		},
	}}
}

func TestScorecardServiceCachesFirstRender(t *testing.T) {
	repo := scorecardRepo()
	store := objectstore.NewMemory("https://cdn.example.com")
	svc := newTestScorecardService(t, repo, store)
	ctx := context.Background()

	first, err := svc.GetOrCreate(ctx, "US11000001B2", FormatSVG)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if first.FromCache || first.Fallback {
		t.Fatalf("first call: FromCache=%v Fallback=%v", first.FromCache, first.Fallback)
	}
	if first.ContentType != scorecard.ContentTypeSVG || first.CacheControl != CacheControlImmutable {
		t.Fatalf("headers: %q %q", first.ContentType, first.CacheControl)
	}

	second, err := svc.GetOrCreate(ctx, "US11000001B2", FormatSVG)
	if err != nil {
		t.Fatalf("GetOrCreate (cached): %v", err)
	}
	if !second.FromCache {
		t.Fatalf("second call not served from cache")
	}
	if !bytes.Equal(first.Content, second.Content) {
		t.Fatalf("cached content differs from first render")
	}
	if repo.sourceHit != 1 {
		t.Fatalf("source reads: want=1 got=%d", repo.sourceHit)
	}
	obj, ok := store.Object("patent-images/US11000001B2.svg")
	if !ok {
		t.Fatalf("object not stored under patent-images/US11000001B2.svg")
	}
	if obj.ContentType != "image/svg+xml" || obj.CacheControl != CacheControlImmutable {
		t.Fatalf("stored metadata: %+v", obj)
	}
}

func TestScorecardServiceRegenerateOverwrites(t *testing.T) {
	repo := scorecardRepo()
	store := objectstore.NewMemory("https://cdn.example.com")
	svc := newTestScorecardService(t, repo, store)
	ctx := context.Background()

	if _, err := svc.GetOrCreate(ctx, "US11000001B2", FormatSVG); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	src := repo.sources["US11000001B2"]
	src.Scores.GamingRelevance = 50
	repo.sources["US11000001B2"] = src

	url, err := svc.Regenerate(ctx, "US11000001B2")
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if url != "https://cdn.example.com/patent-images/US11000001B2.svg" {
		t.Fatalf("url: got=%q", url)
	}
	got, err := svc.GetOrCreate(ctx, "US11000001B2", FormatSVG)
	if err != nil {
		t.Fatalf("GetOrCreate after regenerate: %v", err)
	}
	if !strings.Contains(string(got.Content), `width="325"`) {
		t.Fatalf("expected bar width 325 for score 50")
	}
	if strings.Contains(string(got.Content), `width="585"`) {
		t.Fatalf("stale bar width 585 still present")
	}
}

func TestScorecardServiceErrors(t *testing.T) {
	svc := newTestScorecardService(t, scorecardRepo(), objectstore.NewMemory(""))
	ctx := context.Background()

	for _, n := range []string{"", "us123", "US-123", "US 1"} {
		if _, err := svc.GetOrCreate(ctx, n, FormatSVG); !errors.Is(err, patent.ErrInvalidNumber) {
			t.Fatalf("GetOrCreate(%q): want ErrInvalidNumber got %v", n, err)
		}
		if _, err := svc.Regenerate(ctx, n); !errors.Is(err, patent.ErrInvalidNumber) {
			t.Fatalf("Regenerate(%q): want ErrInvalidNumber got %v", n, err)
		}
	}
	if _, err := svc.GetOrCreate(ctx, "US999", FormatSVG); !errors.Is(err, patent.ErrNotFound) {
		t.Fatalf("missing patent: want ErrNotFound got %v", err)
	}
	if _, err := svc.Regenerate(ctx, "US999"); !errors.Is(err, patent.ErrNotFound) {
		t.Fatalf("regenerate missing patent: want ErrNotFound got %v", err)
	}
	if _, err := svc.GetOrCreate(ctx, "US11000001B2", FormatPNG); !errors.Is(err, ErrFormatDisabled) {
		t.Fatalf("png disabled: want ErrFormatDisabled got %v", err)
	}
}

func TestScorecardServiceFallsBack(t *testing.T) {
	ctx := context.Background()

	t.Run("source error", func(t *testing.T) {
		repo := scorecardRepo()
		repo.sourceErr = errors.New("connection refused")
		svc := newTestScorecardService(t, repo, objectstore.NewMemory(""))
		got, err := svc.GetOrCreate(ctx, "US11000001B2", FormatSVG)
		if err != nil {
			t.Fatalf("GetOrCreate: %v", err)
		}
		if !got.Fallback || got.CacheControl != CacheControlNoStore {
			t.Fatalf("want fallback with no-store, got Fallback=%v CacheControl=%q", got.Fallback, got.CacheControl)
		}
		if !bytes.Equal(got.Content, scorecard.FallbackSVG()) {
			t.Fatalf("unexpected fallback body")
		}
	})

	t.Run("store write error", func(t *testing.T) {
		store := failingWriteStore{objectstore.NewMemory("")}
		svc := newTestScorecardService(t, scorecardRepo(), store)
		got, err := svc.GetOrCreate(ctx, "US11000001B2", FormatSVG)
		if err != nil {
			t.Fatalf("GetOrCreate: %v", err)
		}
		if !got.Fallback {
			t.Fatalf("want fallback on write failure")
		}
		if _, err := svc.Regenerate(ctx, "US11000001B2"); err == nil {
			t.Fatalf("Regenerate must surface write failures")
		}
	})
}

func TestScorecardServiceConcurrentFirstRequests(t *testing.T) {
	repo := scorecardRepo()
	svc := newTestScorecardService(t, repo, objectstore.NewMemory(""))

	var wg sync.WaitGroup
	results := make([][]byte, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := svc.GetOrCreate(context.Background(), "US11000001B2", FormatSVG)
			if err != nil {
				t.Errorf("GetOrCreate: %v", err)
				return
			}
			results[i] = got.Content
		}(i)
	}
	wg.Wait()
	for i := 1; i < len(results); i++ {
		if !bytes.Equal(results[0], results[i]) {
			t.Fatalf("result %d differs", i)
		}
	}
}

// gatedWriteStore holds every Write until release is closed or the write's
// context ends.
type gatedWriteStore struct {
	*objectstore.Memory
	writing chan struct{}
	release chan struct{}
	exists  chan struct{}
	once    sync.Once
}

func newGatedWriteStore() *gatedWriteStore {
	return &gatedWriteStore{
		Memory:  objectstore.NewMemory(""),
		writing: make(chan struct{}),
		release: make(chan struct{}),
		exists:  make(chan struct{}, 8),
	}
}

func (s *gatedWriteStore) Exists(ctx context.Context, key string) (bool, error) {
	select {
	case s.exists <- struct{}{}:
	default:
	}
	return s.Memory.Exists(ctx, key)
}

func (s *gatedWriteStore) Write(ctx context.Context, key string, content []byte, contentType, cacheControl string) error {
	s.once.Do(func() { close(s.writing) })
	select {
	case <-s.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.Memory.Write(ctx, key, content, contentType, cacheControl)
}

func TestScorecardServiceWaiterSurvivesFirstCallerCancel(t *testing.T) {
	store := newGatedWriteStore()
	svc := newTestScorecardService(t, scorecardRepo(), store)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.GetOrCreate(firstCtx, "US11000001B2", FormatSVG)
		firstErr <- err
	}()
	<-store.exists
	select {
	case <-store.writing:
	case <-time.After(2 * time.Second):
		t.Fatalf("first caller never reached the store write")
	}

	second := make(chan *Scorecard, 1)
	go func() {
		got, err := svc.GetOrCreate(context.Background(), "US11000001B2", FormatSVG)
		if err != nil {
			t.Errorf("second caller: %v", err)
		}
		second <- got
	}()
	<-store.exists
	// Let the second caller join the in-flight render.
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("first caller: want context.Canceled got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("first caller did not return after cancel")
	}

	close(store.release)
	select {
	case got := <-second:
		if got == nil || got.Fallback || got.CacheControl != CacheControlImmutable {
			t.Fatalf("second caller got fallback: %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("second caller did not finish")
	}
	if _, ok := store.Object("patent-images/US11000001B2.svg"); !ok {
		t.Fatalf("shared render was not stored")
	}
}

type failingRenderer struct{ scorecard.Renderer }

func (failingRenderer) Render(patent.ScorecardInput) ([]byte, error) {
	return nil, errors.New("font missing")
}

func TestScorecardServiceRegenerateRendersBeforeWriting(t *testing.T) {
	store := objectstore.NewMemory("")
	svc := newTestScorecardService(t, scorecardRepo(), store).(*scorecardService)
	svc.renderers[FormatPNG] = failingRenderer{Renderer: pngExtRenderer{}}

	if _, err := svc.Regenerate(context.Background(), "US11000001B2"); err == nil {
		t.Fatalf("Regenerate must surface render failures")
	}
	if store.Writes() != 0 {
		t.Fatalf("render failure still wrote %d objects", store.Writes())
	}
}

type pngExtRenderer struct{}

func (pngExtRenderer) Render(patent.ScorecardInput) ([]byte, error) { return nil, nil }
func (pngExtRenderer) ContentType() string { return "image/png" }
func (pngExtRenderer) Ext() string { return "png" }
