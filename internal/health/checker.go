// Package health probes the state database and the data directory on a
// timer. A failed probe may carry a repair step that runs right away; the
// next pass shows whether it worked.
package health

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/roadmap-labs/roadmap/internal/infra/metrics"
)

// DefaultInterval is how often Run repeats the probes.
const DefaultInterval = 60 * time.Second

const pingTimeout = 5 * time.Second

// Pinger is a storage handle that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type probe struct {
	name   string
	test   func(ctx context.Context) error
	repair func() error
}

// Status is the last outcome of one probe, as served by /health.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Checker owns the probes and their latest results.
type Checker struct {
	probes   []probe
	interval time.Duration

	mu     sync.RWMutex
	report []Status
}

// NewChecker probes db with a ping and dataDir with a scratch file.
// A missing data directory is recreated.
func NewChecker(db Pinger, dataDir string) *Checker {
	pingDB := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return db.Ping(ctx)
	}
	return &Checker{
		interval: DefaultInterval,
		probes: []probe{
			{name: "sqlite", test: pingDB},
			{
				name:   "data_dir",
				test:   func(context.Context) error { return checkWritable(dataDir) },
				repair: func() error { return os.MkdirAll(dataDir, 0700) },
			},
		},
	}
}

// Run probes once immediately, then every interval until ctx ends.
func (c *Checker) Run(ctx context.Context) {
	c.RunOnce(ctx)
	t := time.NewTicker(c.interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			c.RunOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce probes everything now, records the report and returns a copy.
func (c *Checker) RunOnce(ctx context.Context) []Status {
	report := make([]Status, 0, len(c.probes))
	for _, p := range c.probes {
		report = append(report, c.runProbe(ctx, p))
	}
	c.mu.Lock()
	c.report = report
	c.mu.Unlock()
	return append([]Status(nil), report...)
}

func (c *Checker) runProbe(ctx context.Context, p probe) Status {
	st := Status{Name: p.name, Healthy: true, CheckedAt: time.Now()}
	err := p.test(ctx)
	if err == nil {
		metrics.HealthCheckStatus.WithLabelValues(p.name).Set(1)
		return st
	}

	st.Healthy, st.Error = false, err.Error()
	metrics.HealthCheckStatus.WithLabelValues(p.name).Set(0)
	entry := log.WithField("check", p.name)
	entry.WithError(err).Warn("health check failed")
	if p.repair != nil {
		metrics.HealthRecoveries.WithLabelValues(p.name).Inc()
		if rerr := p.repair(); rerr != nil {
			entry.WithError(rerr).Error("health recovery failed")
		} else {
			entry.Info("health recovery applied")
		}
	}
	return st
}

// Statuses returns a copy of the latest report. Empty before the first pass.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Status(nil), c.report...)
}

// IsHealthy reports whether every probe in the latest report passed.
// It is true before the first pass.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, st := range c.report {
		if !st.Healthy {
			return false
		}
	}
	return true
}

// checkWritable fails unless dir is a directory that accepts a new file.
func checkWritable(dir string) error {
	fi, err := os.Stat(dir)
	switch {
	case err != nil:
		return fmt.Errorf("check data dir: %w", err)
	case !fi.IsDir():
		return fmt.Errorf("data dir %s is a file", dir)
	}
	scratch, err := os.CreateTemp(dir, ".health-*")
	if err != nil {
		return fmt.Errorf("data dir not writable: %w", err)
	}
	scratch.Close()
	return os.Remove(scratch.Name())
}
