package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/metromap/pkg/cache"
	"github.com/matzehuels/metromap/pkg/observability"
)

// gatedCache is an in-memory cache whose reads block until open is closed.
type gatedCache struct {
	open    chan struct{}
	entered chan struct{}
	once    sync.Once

	mu   sync.Mutex
	data map[string][]byte
}

func newGatedCache() *gatedCache {
	return &gatedCache{open: make(chan struct{}), entered: make(chan struct{}), data: map[string][]byte{}}
}

func (g *gatedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	g.once.Do(func() { close(g.entered) })
	select {
	case <-g.open:
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	d, ok := g.data[key]
	return d, ok, nil
}

func (g *gatedCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.data[key] = data
	return nil
}

func (g *gatedCache) Delete(context.Context, string) error { return nil }
func (g *gatedCache) Close() error                         { return nil }

var _ cache.Cache = (*gatedCache)(nil)

type countingPipeline struct {
	observability.NoopPipelineHooks
	layouts atomic.Int32
}

func (c *countingPipeline) OnLayoutStart(context.Context, int, int) { c.layouts.Add(1) }

func TestRunnerComputesConcurrentLayoutOnce(t *testing.T) {
	counter := &countingPipeline{}
	observability.Install(observability.Registry{Pipeline: counter})
	t.Cleanup(observability.Reset)

	gc := newGatedCache()
	runner := NewRunner(gc, nil, nil)
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	errc := make(chan error, callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := runner.ComputeLayout(ctx, careerMap(), DefaultOptions())
			errc <- err
		}()
	}

	<-gc.entered
	time.Sleep(20 * time.Millisecond)
	close(gc.open)
	wg.Wait()
	close(errc)

	for err := range errc {
		if err != nil {
			t.Fatalf("ComputeLayout: %v", err)
		}
	}
	if n := counter.layouts.Load(); n != 1 {
		t.Errorf("layout computed %d times, want 1", n)
	}
}

type countingCacheHooks struct {
	observability.NoopCacheHooks
	mu     sync.Mutex
	hits   map[string]int
	misses map[string]int
	stores map[string]int
}

func (c *countingCacheHooks) OnCacheLookup(_ context.Context, stage string, hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit {
		c.hits[stage]++
	} else {
		c.misses[stage]++
	}
}

func (c *countingCacheHooks) OnCacheStore(_ context.Context, stage string, _ int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stores[stage]++
}

func TestRunnerReportsCacheEvents(t *testing.T) {
	hooks := &countingCacheHooks{hits: map[string]int{}, misses: map[string]int{}, stores: map[string]int{}}
	observability.Install(observability.Registry{Cache: hooks})
	t.Cleanup(observability.Reset)

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	ctx := context.Background()

	opts := DefaultOptions()
	opts.Formats = []string{FormatSVG, FormatDOT}
	for range 2 {
		l, err := runner.ComputeLayout(ctx, careerMap(), opts)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := runner.Render(ctx, l, opts); err != nil {
			t.Fatal(err)
		}
	}

	const layout, artifact = observability.StageLayout, observability.StageArtifact
	if hooks.misses[layout] != 1 || hooks.hits[layout] != 1 || hooks.stores[layout] != 1 {
		t.Errorf("layout events: misses %d hits %d stores %d", hooks.misses[layout], hooks.hits[layout], hooks.stores[layout])
	}
	if hooks.misses[artifact] != 2 || hooks.hits[artifact] != 2 || hooks.stores[artifact] != 2 {
		t.Errorf("artifact events: misses %d hits %d stores %d", hooks.misses[artifact], hooks.hits[artifact], hooks.stores[artifact])
	}
}
