// Package collector renders panels headlessly on a schedule and records
// the results: snapshots and memory samples go to the store, gauges to
// Prometheus and, when configured, to an OTLP endpoint.
package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tinytelemetry/boxinfo/internal/console"
	"github.com/tinytelemetry/boxinfo/internal/model"
	"github.com/tinytelemetry/boxinfo/internal/otlpexport"
	"github.com/tinytelemetry/boxinfo/internal/panel"
	"github.com/tinytelemetry/boxinfo/internal/sysfs"
)

// Observer receives collection results; *metrics.Recorder implements it.
type Observer interface {
	ObserveCollection(panel, state string, lines int, duration time.Duration)
	ObserveMemory(totalKB int64, usedPercent float64)
}

// Pusher sends gauges to a remote endpoint; *otlpexport.Exporter implements it.
type Pusher interface {
	Export(ctx context.Context, at time.Time, gauges []otlpexport.Gauge) error
}

// Config holds the collector dependencies and schedule.
type Config struct {
	Panels     []panel.Source
	Runner     console.Runner
	Translator panel.Translator
	Store      model.SnapshotWriter
	FS         sysfs.FS
	Observer   Observer
	Pusher     Pusher

	// Interval between panel collections.
	Interval time.Duration
	// MemoryInterval between memory samples.
	MemoryInterval time.Duration
}

// Collector runs the collection loops.
type Collector struct {
	cfg Config
	now func() time.Time
}

// New validates cfg and fills in default intervals.
func New(cfg Config) (*Collector, error) {
	if cfg.Store == nil {
		return nil, errors.New("collector: store is required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = model.DefaultCollectInterval
	}
	if cfg.MemoryInterval <= 0 {
		cfg.MemoryInterval = model.DefaultMemorySampleInterval
	}
	return &Collector{cfg: cfg, now: time.Now}, nil
}

// Run collects immediately and then on every tick until ctx is done.
func (c *Collector) Run(ctx context.Context) error {
	c.CollectOnce(ctx)
	if err := c.SampleMemory(ctx); err != nil {
		log.Printf("collector: memory sample: %v", err)
	}

	panels := time.NewTicker(c.cfg.Interval)
	defer panels.Stop()
	memory := time.NewTicker(c.cfg.MemoryInterval)
	defer memory.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-panels.C:
			c.CollectOnce(ctx)
		case <-memory.C:
			if err := c.SampleMemory(ctx); err != nil {
				log.Printf("collector: memory sample: %v", err)
			}
		}
	}
}

// CollectOnce renders every panel once and stores the snapshots. It
// returns how many panels ended in the Failed state.
func (c *Collector) CollectOnce(ctx context.Context) int {
	failed := 0
	var gauges []otlpexport.Gauge
	for _, src := range c.cfg.Panels {
		if ctx.Err() != nil {
			break
		}
		snap, took := c.collect(ctx, src)
		if snap.State == panel.Failed.String() {
			failed++
		}
		if _, err := c.cfg.Store.InsertSnapshot(snap); err != nil {
			log.Printf("collector: storing %s: %v", snap.PanelID, err)
		}
		if c.cfg.Observer != nil {
			c.cfg.Observer.ObserveCollection(snap.PanelID, snap.State, len(snap.Lines), took)
		}
		gauges = append(gauges,
			otlpexport.Gauge{Name: "boxinfo.panel.lines", Value: float64(len(snap.Lines)), Attrs: map[string]string{"panel": snap.PanelID}},
			otlpexport.Gauge{Name: "boxinfo.panel.collect_duration", Unit: "s", Value: took.Seconds(), Attrs: map[string]string{"panel": snap.PanelID}},
		)
	}
	c.push(ctx, gauges)
	log.Printf("collector: collected %d panels (%d failed)", len(c.cfg.Panels), failed)
	return failed
}

func (c *Collector) collect(ctx context.Context, src panel.Source) (model.Snapshot, time.Duration) {
	ctrl := panel.NewController(src, panel.WithTranslator(c.cfg.Translator))
	defer ctrl.Close()

	start := c.now()
	state := panel.Collect(ctx, ctrl, c.cfg.Runner)
	took := c.now().Sub(start)

	return model.Snapshot{
		PanelID:     src.ID(),
		Title:       src.Title(),
		State:       state.String(),
		Lines:       ctrl.Lines(),
		CollectedAt: start,
	}, took
}

// SampleMemory stores one memory sample read from /proc/meminfo.
func (c *Collector) SampleMemory(ctx context.Context) error {
	info, err := c.cfg.FS.ReadMemInfo()
	if err != nil {
		return fmt.Errorf("reading meminfo: %w", err)
	}
	usage := info.Usage()
	sample := model.MemorySample{
		At:          c.now(),
		TotalKB:     usage.TotalKB,
		FreeKB:      usage.FreeKB,
		UsedPercent: usage.UsedPercent,
	}
	if err := c.cfg.Store.InsertMemorySample(sample); err != nil {
		return fmt.Errorf("storing sample: %w", err)
	}
	if c.cfg.Observer != nil {
		c.cfg.Observer.ObserveMemory(sample.TotalKB, sample.UsedPercent)
	}
	c.push(ctx, []otlpexport.Gauge{
		{Name: "boxinfo.memory.used", Unit: "%", Value: sample.UsedPercent},
		{Name: "boxinfo.memory.total", Unit: "KiBy", Value: float64(sample.TotalKB)},
	})
	return nil
}

func (c *Collector) push(ctx context.Context, gauges []otlpexport.Gauge) {
	if c.cfg.Pusher == nil || len(gauges) == 0 {
		return
	}
	if err := c.cfg.Pusher.Export(ctx, c.now(), gauges); err != nil {
		log.Printf("collector: %v", err)
	}
}
