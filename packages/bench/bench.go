package bench

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shaurasan/SnapShotTool/packages/capture"
	"github.com/shaurasan/SnapShotTool/packages/display"
	"github.com/shaurasan/SnapShotTool/packages/host"
	"golang.org/x/time/rate"
)

// Config describes a bench run against a single panel.
type Config struct {
	Panel  string
	Count  int
	Warmup int
	Rate   float64 // captures per second, 0 means unpaced
	Width  int
	Height int
	Filter display.Filter
	Mode   display.Mode
}

// Bench repeatedly captures one panel and aggregates latency percentiles.
// Captures run one at a time; the host is never driven concurrently.
type Bench struct {
	log *slog.Logger
}

// Option configures a Bench.
type Option func(*Bench)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Bench) {
		if l != nil {
			b.log = l
		}
	}
}

// New creates a Bench.
func New(opts ...Option) *Bench {
	b := &Bench{log: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run executes the bench. Warmup captures are taken first and excluded from
// the summary. Output files land in a throwaway directory that is removed
// when the run finishes.
func (b *Bench) Run(ctx context.Context, h host.Host, cfg Config) (*Summary, error) {
	if cfg.Count < 1 {
		return nil, fmt.Errorf("capture count must be positive")
	}
	if !h.PanelExists(cfg.Panel) {
		return nil, fmt.Errorf("panel %q: %w", cfg.Panel, host.ErrPanelNotFound)
	}

	var limiter *rate.Limiter
	if cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}

	dir, err := os.MkdirTemp("", "takesnap_bench_")
	if err != nil {
		return nil, fmt.Errorf("creating bench dir: %w", err)
	}
	defer os.RemoveAll(dir)

	capturer := capture.New(capture.WithLogger(b.log))
	metrics := NewMetrics()
	total := cfg.Warmup + cfg.Count

	b.log.Info("bench starting", "panel", cfg.Panel, "captures", cfg.Count,
		"warmup", cfg.Warmup, "rate", cfg.Rate)

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		if i == cfg.Warmup {
			metrics.Start()
		}

		result := capturer.Capture(h, capture.Request{
			Panel:  cfg.Panel,
			Path:   filepath.Join(dir, fmt.Sprintf("bench_%04d.jpg", i)),
			Width:  cfg.Width,
			Height: cfg.Height,
			Filter: cfg.Filter,
			Mode:   cfg.Mode,
		})

		if i < cfg.Warmup {
			b.log.Debug("warmup capture", "iteration", i, "duration", result.Duration)
			continue
		}
		metrics.Record(result.Duration, result.Passed)
	}

	metrics.Stop()
	return metrics.GetSummary(), nil
}
