package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/roadmap-labs/roadmap/internal/api"
	"github.com/roadmap-labs/roadmap/internal/app/tracker"
	"github.com/roadmap-labs/roadmap/internal/curriculum"
	"github.com/roadmap-labs/roadmap/internal/health"
	"github.com/roadmap-labs/roadmap/internal/infra/sqlite"
	"github.com/roadmap-labs/roadmap/internal/jobs"
)

// Daemon is the roadmap runtime. It wires together all services.
type Daemon struct {
	Config     Config
	Home       string
	DeviceID   string
	DB         *sqlite.DB
	Curriculum *curriculum.Curriculum
	Tracker    *tracker.Tracker
	Health     *health.Checker
	Jobs       *jobs.Scheduler
	Server     *api.Server

	cancel    context.CancelFunc
	logCloser io.Closer
}

// New loads the config, configures logging and opens the daemon in the
// roadmap home.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	closer, err := ConfigureLogging(cfg.Logging, os.Stderr)
	if err != nil {
		return nil, err
	}

	d, err := Open(roadmapHome(), cfg)
	if err != nil {
		closer.Close()
		return nil, err
	}
	d.logCloser = closer
	return d, nil
}

// Open creates a Daemon rooted at home with the given configuration and
// loads the learner's state.
func Open(home string, cfg Config) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	cat, err := loadCurriculum(cfg.Curriculum.File)
	if err != nil {
		return nil, err
	}

	db, err := sqlite.Open(home)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx := context.Background()
	deviceID, err := db.DeviceID(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("device id: %w", err)
	}

	tr := tracker.New(db, cat, tracker.Options{
		Location:     loc,
		DismissAfter: cfg.DismissAfter(),
	})
	if err := tr.Load(ctx); err != nil {
		tr.Close()
		db.Close()
		return nil, fmt.Errorf("load state: %w", err)
	}

	srv := api.NewServer(tr, cat)
	srv.SetCORSOrigins(cfg.API.CORSOrigins)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}
	checker := health.NewChecker(db, home)
	srv.SetHealth(checker)

	log.WithFields(log.Fields{
		"home":     home,
		"device":   deviceID,
		"timezone": loc.String(),
		"stages":   len(cat.Stages()),
	}).Debug("daemon opened")

	return &Daemon{
		Config:     cfg,
		Home:       home,
		DeviceID:   deviceID,
		DB:         db,
		Curriculum: cat,
		Tracker:    tr,
		Health:     checker,
		Jobs:       jobs.NewScheduler(tr, cfg.Streak.CheckSchedule, loc),
		Server:     srv,
	}, nil
}

func loadCurriculum(path string) (*curriculum.Curriculum, error) {
	if path == "" {
		return curriculum.Load()
	}
	cat, err := curriculum.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("curriculum %s: %w", path, err)
	}
	return cat, nil
}

// Serve listens on the configured address and blocks until SIGINT, SIGTERM
// or ctx is done.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := d.Config.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	fmt.Printf("roadmap serving on http://%s\n", ln.Addr())
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", ln.Addr())
	}
	return d.ServeListener(ctx, ln)
}

// ServeListener runs the API on ln together with the background jobs and
// health loop, shutting everything down gracefully when ctx is done.
func (d *Daemon) ServeListener(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	defer cancel()

	if err := d.Jobs.Start(ctx); err != nil {
		ln.Close()
		return fmt.Errorf("start jobs: %w", err)
	}
	defer d.Jobs.Stop()

	go d.Health.Run(ctx)

	httpServer := &http.Server{
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", ln.Addr().String()).Info("http server started")
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	if err := d.Tracker.Save(shutdownCtx); err != nil {
		log.WithError(err).Error("save state on shutdown")
	}
	log.Info("http server stopped")
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Tracker != nil {
		d.Tracker.Close()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
	if d.logCloser != nil {
		_ = d.logCloser.Close()
	}
}
