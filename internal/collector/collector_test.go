package collector

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/tinytelemetry/boxinfo/internal/console"
	"github.com/tinytelemetry/boxinfo/internal/duckdb"
	"github.com/tinytelemetry/boxinfo/internal/otlpexport"
	"github.com/tinytelemetry/boxinfo/internal/panel"
	"github.com/tinytelemetry/boxinfo/internal/sysfs"
)

type staticPanel struct {
	id, cmd string
}

func (p staticPanel) ID() string    { return p.id }
func (p staticPanel) Title() string { return "Panel " + p.id }
func (p staticPanel) Open(b *panel.Builder) {
	b.Line("header")
	if p.cmd != "" {
		b.Exec(p.cmd, nil)
	}
}

type recordingObserver struct {
	mu     sync.Mutex
	states map[string]string
	used   float64
}

func (o *recordingObserver) ObserveCollection(id, state string, _ int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.states == nil {
		o.states = map[string]string{}
	}
	o.states[id] = state
}

func (o *recordingObserver) ObserveMemory(_ int64, used float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.used = used
}

type recordingPusher struct {
	mu     sync.Mutex
	gauges []otlpexport.Gauge
}

func (p *recordingPusher) Export(_ context.Context, _ time.Time, g []otlpexport.Gauge) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gauges = append(p.gauges, g...)
	return nil
}

func newTestStore(t *testing.T) *duckdb.Store {
	t.Helper()
	store, err := duckdb.NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestRoot(t *testing.T) sysfs.FS {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, "proc", "meminfo")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	meminfo := "MemTotal: 1000 kB\nMemFree: 200 kB\nBuffers: 50 kB\nCached: 50 kB\n"
	if err := os.WriteFile(path, []byte(meminfo), 0644); err != nil {
		t.Fatal(err)
	}
	return sysfs.New(root)
}

func TestCollectOnceStoresSnapshots(t *testing.T) {
	store := newTestStore(t)
	obs := &recordingObserver{}
	pusher := &recordingPusher{}
	runner := console.RunnerFunc(func(_ context.Context, cmd string) console.Result {
		if cmd == "ok" {
			return console.Result{Output: "line one\nline two\n"}
		}
		return console.Result{ExitStatus: 1}
	})

	c, err := New(Config{
		Panels:   []panel.Source{staticPanel{id: "good", cmd: "ok"}, staticPanel{id: "bad", cmd: "fail"}},
		Runner:   runner,
		Store:    store,
		FS:       newTestRoot(t),
		Observer: obs,
		Pusher:   pusher,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if failed := c.CollectOnce(context.Background()); failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}

	good, err := store.LatestSnapshot("good")
	if err != nil {
		t.Fatalf("LatestSnapshot(good): %v", err)
	}
	if good.State != "ready" || len(good.Lines) != 3 || good.Lines[2] != "line two" {
		t.Errorf("good = %+v", good)
	}
	bad, err := store.LatestSnapshot("bad")
	if err != nil {
		t.Fatalf("LatestSnapshot(bad): %v", err)
	}
	if bad.State != "failed" || bad.Lines[1] != panel.ErrorText {
		t.Errorf("bad = %+v", bad)
	}
	if obs.states["good"] != "ready" || obs.states["bad"] != "failed" {
		t.Errorf("observed = %v", obs.states)
	}
	if len(pusher.gauges) != 4 {
		t.Errorf("pushed %d gauges, want 4", len(pusher.gauges))
	}
}

func TestSampleMemory(t *testing.T) {
	store := newTestStore(t)
	obs := &recordingObserver{}
	c, err := New(Config{Store: store, FS: newTestRoot(t), Observer: obs})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := c.SampleMemory(context.Background()); err != nil {
		t.Fatalf("SampleMemory: %v", err)
	}
	samples, err := store.MemoryHistory(10)
	if err != nil {
		t.Fatalf("MemoryHistory: %v", err)
	}
	if len(samples) != 1 || samples[0].UsedPercent != 70 || samples[0].TotalKB != 1000 {
		t.Errorf("samples = %+v", samples)
	}
	if obs.used != 70 {
		t.Errorf("observed used = %v", obs.used)
	}
}

func TestSampleMemoryMissingMeminfo(t *testing.T) {
	c, err := New(Config{Store: newTestStore(t), FS: sysfs.New(t.TempDir())})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.SampleMemory(context.Background()); err == nil {
		t.Fatal("expected error without /proc/meminfo")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	store := newTestStore(t)
	c, err := New(Config{
		Panels:         []panel.Source{staticPanel{id: "p"}},
		Store:          store,
		FS:             newTestRoot(t),
		Interval:       10 * time.Millisecond,
		MemoryInterval: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	panels, err := store.ListPanels()
	if err != nil {
		t.Fatalf("ListPanels: %v", err)
	}
	if len(panels) != 1 || panels[0].Snapshots < 2 {
		t.Errorf("panels = %+v, want repeated collections", panels)
	}
}

func TestNewRequiresStore(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error without store")
	}
}
