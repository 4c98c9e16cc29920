package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	NoopStoreHooks
	ops []string
}

func (r *recordingStore) OnStoreOp(_ context.Context, backend, op string, _ time.Duration, err error) {
	entry := backend + "." + op
	if err != nil {
		entry += "!"
	}
	r.ops = append(r.ops, entry)
}

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	assert.IsType(t, NoopPipelineHooks{}, Pipeline())
	assert.IsType(t, NoopCacheHooks{}, Cache())
	assert.IsType(t, NoopStoreHooks{}, Store())
	assert.IsType(t, NoopHTTPHooks{}, HTTP())
}

func TestInstallKeepsNoopForNilFields(t *testing.T) {
	t.Cleanup(Reset)

	rec := &recordingStore{}
	Install(Registry{Store: rec})

	assert.Same(t, rec, Store())
	assert.IsType(t, NoopPipelineHooks{}, Pipeline())
	assert.IsType(t, NoopHTTPHooks{}, HTTP())

	ctx := context.Background()
	Store().OnStoreOp(ctx, "memory", "Save", time.Millisecond, nil)
	Store().OnStoreOp(ctx, "mongo", "Get", time.Millisecond, errors.New("boom"))
	assert.Equal(t, []string{"memory.Save", "mongo.Get!"}, rec.ops)

	Reset()
	assert.IsType(t, NoopStoreHooks{}, Store())
}

func TestActiveReturnsCopy(t *testing.T) {
	t.Cleanup(Reset)

	Install(Registry{Store: &recordingStore{}})
	r := Active()
	r.Store = nil

	assert.NotNil(t, Store())
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	r := LogHooks(logger)
	ctx := context.Background()

	r.Pipeline.OnLayoutStart(ctx, 9, 3)
	r.Pipeline.OnLayoutComplete(ctx, LayoutEvent{Stations: 9, Interchanges: 2, Collisions: 1}, time.Millisecond, nil)
	r.Pipeline.OnRenderComplete(ctx, []string{"svg"}, time.Millisecond, errors.New("no dot"))
	r.Cache.OnCacheLookup(ctx, StageLayout, true)
	r.Store.OnStoreOp(ctx, "file", "List", time.Millisecond, nil)
	r.HTTP.OnResponse(ctx, "GET", "/api/v1/maps/{id}", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{
		"layout start", "interchanges=2", "render failed",
		"stage=layout", "op=List", "/api/v1/maps/",
	} {
		require.True(t, strings.Contains(out, want), "missing %q in:\n%s", want, out)
	}
}

func TestLogHooksRespectLevel(t *testing.T) {
	var buf bytes.Buffer
	r := LogHooks(log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel}))
	ctx := context.Background()

	r.Cache.OnCacheStore(ctx, StageArtifact, 512)
	assert.Empty(t, buf.String())

	r.Store.OnStoreOp(ctx, "neo4j", "Delete", time.Millisecond, errors.New("unreachable"))
	assert.Contains(t, buf.String(), "store call failed")
}
