package preview

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/gzhttp"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/puggle/internal/config"
	derrors "git.home.luguber.info/inful/puggle/internal/foundation/errors"
	"git.home.luguber.info/inful/puggle/internal/logfields"
	"git.home.luguber.info/inful/puggle/internal/metrics"
	"git.home.luguber.info/inful/puggle/internal/site"
)

// Rebuild triggers.
const (
	ReasonInitial = "initial"
	ReasonWatch   = "watch"
	ReasonPoll    = "poll"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	// ConfigPath is reloaded when the file changes. Empty disables reloading.
	ConfigPath string
	// Root is the directory watched for changes. Empty uses ".".
	Root string
	// Listener overrides the address from the preview config.
	Listener net.Listener
	// Debounce is the quiet period before a rebuild. Zero uses DefaultDebounce.
	Debounce time.Duration
	Logger   *slog.Logger
}

// buildStatus tracks the outcome of the latest build.
type buildStatus struct {
	mu        sync.RWMutex
	lastError error
	builds    int
}

func (bs *buildStatus) setError(err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastError = err
}

func (bs *buildStatus) setSuccess() {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastError = nil
	bs.builds++
}

func (bs *buildStatus) err() error {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.lastError
}

func (bs *buildStatus) successful() int {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.builds
}

// Server serves dest_dir and rebuilds the site on source changes.
type Server struct {
	opts     Options
	logger   *slog.Logger
	destDir  string
	preview  config.PreviewConfig
	registry *prom.Registry
	recorder *metrics.PrometheusRecorder
	hub      *LiveReloadHub
	status   buildStatus

	cfgMu        sync.RWMutex
	cfg          *config.Config
	reloadConfig atomic.Bool
	filter       atomic.Pointer[Filter]
	watcher      atomic.Pointer[Watcher]
}

// NewServer creates a preview server for cfg. The served directory and
// listener settings are fixed for the server's lifetime.
func NewServer(cfg *config.Config, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Root == "" {
		opts.Root = "."
	}
	reg := prom.NewRegistry()
	s := &Server{
		opts:     opts,
		logger:   logger,
		destDir:  cfg.DestDir,
		preview:  cfg.Preview,
		registry: reg,
		recorder: metrics.NewPrometheusRecorder(reg),
		hub:      NewLiveReloadHub(),
		cfg:      cfg,
	}
	filter := NewFilter(cfg, opts.ConfigPath)
	s.filter.Store(&filter)
	reg.MustRegister(prom.NewGaugeFunc(prom.GaugeOpts{
		Namespace: "puggle",
		Name:      "livereload_clients",
		Help:      "Connected live reload clients",
	}, func() float64 { return float64(s.hub.Clients()) }))
	return s
}

// Config returns the configuration used by the next build.
func (s *Server) Config() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// LastError returns the error of the latest build, if it failed.
func (s *Server) LastError() error {
	return s.status.err()
}

// Builds returns the number of successful builds.
func (s *Server) Builds() int {
	return s.status.successful()
}

// Handler returns the HTTP handler: static files, live reload and metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	var files http.Handler = http.FileServer(http.Dir(s.destDir))
	if s.preview.LiveReloadEnabled() {
		files = injectLiveReloadScript(files)
		mux.Handle("/livereload", s.hub)
		mux.HandleFunc("/livereload.js", serveLiveReloadScript)
	}
	mux.Handle("/metrics", metrics.HTTPHandler(s.registry))
	mux.Handle("/", gzhttp.GzipHandler(files))
	return chain(s.logger, mux)
}

// Filter returns the watch filter for the current configuration.
func (s *Server) Filter() Filter {
	return *s.filter.Load()
}

// NoteChange records a changed source path. A change to the configuration
// file makes the next rebuild reload it.
func (s *Server) NoteChange(path string) {
	if s.opts.ConfigPath != "" && s.Filter().IsConfig(path) {
		s.reloadConfig.Store(true)
	}
}

// Rebuild runs one build and notifies live reload clients.
func (s *Server) Rebuild(ctx context.Context, reason string) error {
	s.recorder.IncRebuildTrigger(reason)

	if s.reloadConfig.Swap(false) {
		cfg, err := config.Load(s.opts.ConfigPath)
		if err != nil {
			s.logger.Warn("Config reload failed; keeping previous config", logfields.Error(err))
			s.fail(err)
			return err
		}
		if cfg.DestDir != s.destDir {
			s.logger.Warn("dest_dir changed; restart the server to serve the new directory",
				logfields.Path(cfg.DestDir))
		}
		s.cfgMu.Lock()
		s.cfg = cfg
		s.cfgMu.Unlock()
		s.updateFilter(cfg)
		s.logger.Info("Configuration reloaded", logfields.Path(s.opts.ConfigPath))
	}

	s.logger.Info("Rebuilding site", slog.String("reason", reason))
	res, err := site.NewBuilder(s.Config()).
		WithRecorder(s.recorder).
		WithLogger(s.logger).
		Build(ctx)
	if err != nil {
		s.fail(err)
		return err
	}
	s.status.setSuccess()
	s.hub.Broadcast(res.BuildID)
	return nil
}

// updateFilter points the watch filter at the reloaded templates_dir and
// dest_dir.
func (s *Server) updateFilter(cfg *config.Config) {
	filter := NewFilter(cfg, s.opts.ConfigPath)
	if filter == s.Filter() {
		return
	}
	s.filter.Store(&filter)
	if w := s.watcher.Load(); w != nil {
		w.SetFilter(filter, s.opts.Root)
	}
	s.logger.Info("Watch filter updated",
		slog.String("templates_dir", filter.TemplatesDir),
		slog.String("dest_dir", filter.DestDir))
}

func (s *Server) fail(err error) {
	s.status.setError(err)
	s.hub.Broadcast("error:" + strconv.FormatInt(time.Now().UnixNano(), 10))
}

// Run builds the site, serves it, and rebuilds on changes until ctx is done.
// A failing initial build is logged and the server still starts.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Rebuild(ctx, ReasonInitial); err != nil {
		s.logger.Error("Initial build failed", logfields.Error(err))
	}

	ln := s.opts.Listener
	if ln == nil {
		var err error
		ln, err = net.Listen("tcp", s.preview.Addr())
		if err != nil {
			return derrors.ServerError("failed to bind preview listener").
				WithCause(err).
				WithContext("addr", s.preview.Addr()).
				Build()
		}
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()
	s.logger.Info("Preview server listening",
		logfields.Addr(ln.Addr().String()),
		slog.Bool("live_reload", s.preview.LiveReloadEnabled()))

	watcher, err := NewWatcher(s.opts.Root, s.Filter(), s.logger)
	if err != nil {
		s.logger.Warn("File watching disabled", logfields.Error(err))
	}
	var changes <-chan string
	if watcher != nil {
		s.watcher.Store(watcher)
		defer func() {
			s.watcher.Store(nil)
			_ = watcher.Close()
		}()
		go watcher.Run(ctx)
		changes = watcher.Changes()
	}

	requests := make(chan string, 1)
	request := func(reason string) {
		select {
		case requests <- reason:
		default:
		}
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case reason := <-requests:
				_ = s.Rebuild(ctx, reason)
			}
		}
	}()

	debouncer := NewDebouncer(s.opts.Debounce)
	defer debouncer.Stop()

	if interval := s.preview.PollInterval; interval > 0 {
		poller, err := NewPoller(interval, func() { request(ReasonPoll) })
		if err != nil {
			s.logger.Warn("Poll rebuilds disabled", logfields.Error(err))
		} else {
			poller.Start()
			defer func() { _ = poller.Stop() }()
		}
	}

	for {
		select {
		case <-ctx.Done():
			return s.shutdown(srv, &wg)
		case path, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			s.NoteChange(path)
			debouncer.Trigger()
		case <-debouncer.C():
			request(ReasonWatch)
		case err := <-serveErr:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return derrors.ServerError("preview server stopped").WithCause(err).Build()
		}
	}
}

func (s *Server) shutdown(srv *http.Server, wg *sync.WaitGroup) error {
	s.logger.Info("Shutting down preview server")
	s.hub.Shutdown()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	wg.Wait()
	return nil
}
