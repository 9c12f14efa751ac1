package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"smartshelf/internal/catalog"
	"smartshelf/internal/config"
	"smartshelf/internal/hardware"
	"smartshelf/internal/ingest"
	"smartshelf/internal/logging"
	"smartshelf/internal/preflight"
	"smartshelf/internal/shelves"
	"smartshelf/internal/staging"
)

const (
	lockFileName         = "smartshelf.lock"
	scratchSweepInterval = time.Hour
	shutdownTimeout      = 5 * time.Second
)

// Daemon coordinates the API server and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *catalog.Store
	trigger hardware.Trigger
	api     *apiServer

	lockPath string
	lock     *flock.Flock

	running  atomic.Bool
	addrOnce sync.Once
	ready    chan struct{}
	addr     string
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Address      string
	DatabasePath string
	LockFilePath string
}

// New constructs a daemon. The trigger is normally chosen by hardware.Select
// and is closed together with the store by Close.
func New(cfg *config.Config, store *catalog.Store, trigger hardware.Trigger, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || trigger == nil {
		return nil, errors.New("daemon requires config, store, and hardware trigger")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	pinned := hardware.NewSerialized(trigger, hardware.NewPinLocker(cfg.Paths.LockDir))
	lockPath := filepath.Join(cfg.Paths.LockDir, lockFileName)
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		trigger:  pinned,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		ready:    make(chan struct{}),
	}
	d.api = newAPIServer(cfg,
		store,
		ingest.NewService(cfg, store, logger),
		shelves.NewOpener(store, pinned, logger),
		logger,
	)
	return d, nil
}

// Handler exposes the API routes without starting a listener.
func (d *Daemon) Handler() http.Handler {
	return d.api.routes()
}

// Run acquires the daemon lock, removes stale scratch directories and serves
// the API until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return errors.New("daemon already running")
	}
	defer d.running.Store(false)

	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another smartshelf daemon instance is already running")
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("failed to release daemon lock", logging.Error(err))
		}
	}()

	for _, check := range preflight.Failed(preflight.RunAll(d.cfg)) {
		logging.WarnWithContext(d.logger, "preflight check failed", "preflight_failed", check.Detail,
			logging.String("check", check.Name))
	}
	d.sweepScratch(ctx)

	listener, err := net.Listen("tcp", strings.TrimSpace(d.cfg.Paths.APIBind))
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	server := &http.Server{
		Handler:           d.api.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	d.addrOnce.Do(func() {
		d.addr = listener.Addr().String()
		close(d.ready)
	})
	d.logger.Info("smartshelf daemon started",
		logging.String("address", d.addr),
		logging.String("lock", d.lockPath),
		logging.String("database", d.store.Path()),
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	group.Go(func() error {
		ticker := time.NewTicker(scratchSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-groupCtx.Done():
				return nil
			case <-ticker.C:
				d.sweepScratch(groupCtx)
			}
		}
	})

	err = group.Wait()
	d.logger.Info("smartshelf daemon stopped")
	return err
}

// Ready is closed once the API listener is bound.
func (d *Daemon) Ready() <-chan struct{} {
	return d.ready
}

// Close releases the hardware driver and the catalog.
func (d *Daemon) Close() error {
	return errors.Join(d.trigger.Close(), d.store.Close())
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	status := Status{
		Running:      d.running.Load(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
	}
	select {
	case <-d.ready:
		status.Address = d.addr
	default:
	}
	return status
}

func (d *Daemon) sweepScratch(ctx context.Context) {
	maxAge := time.Duration(d.cfg.Ingest.StaleScratchHours) * time.Hour
	result := staging.CleanStale(ctx, d.cfg.Paths.TmpRoot, maxAge, d.logger)
	if len(result.Removed) > 0 || len(result.Errors) > 0 {
		d.logger.Info("stale scratch sweep",
			logging.Int("removed", len(result.Removed)),
			logging.Int("errors", len(result.Errors)),
		)
	}
}
