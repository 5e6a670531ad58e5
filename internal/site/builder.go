// Package site builds the output tree: entry pages, alias stubs, listing
// pages and feeds.
package site

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/puggle/internal/config"
	"git.home.luguber.info/inful/puggle/internal/feed"
	"git.home.luguber.info/inful/puggle/internal/logfields"
	"git.home.luguber.info/inful/puggle/internal/metadata"
	"git.home.luguber.info/inful/puggle/internal/metrics"
	"git.home.luguber.info/inful/puggle/internal/templates"
)

// Result summarizes a finished build.
type Result struct {
	BuildID  string
	Entries  int
	Aliases  int
	Listings int
	Feeds    int
	Duration time.Duration
	Index    *Index
}

// Builder runs full site builds for one configuration.
type Builder struct {
	cfg      *config.Config
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewBuilder creates a builder with no metrics and the default logger.
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{
		cfg:      cfg,
		recorder: metrics.NoopRecorder{},
	}
}

// WithRecorder sets the metrics recorder.
func (b *Builder) WithRecorder(r metrics.Recorder) *Builder {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	b.recorder = r
	return b
}

// WithLogger sets the logger. A nil logger uses slog.Default at build time.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// Config returns the configuration the builder was created with.
func (b *Builder) Config() *config.Config { return b.cfg }

// Build renders every page. The first error aborts the build; files
// written before it are left in place.
//
// Pages with entries are processed first so every listing template sees
// the complete index. ctx is checked between entries.
func (b *Builder) Build(ctx context.Context) (res *Result, err error) {
	start := time.Now()
	res = &Result{BuildID: uuid.NewString(), Index: NewIndex()}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(logfields.BuildID(res.BuildID))

	defer func() {
		res.Duration = time.Since(start)
		b.recorder.ObserveBuildDuration(res.Duration)
		if err != nil {
			b.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
			logger.Error("Build failed", logfields.Error(err), logfields.Duration(res.Duration))
			return
		}
		b.recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)
		logger.Info("Build complete",
			slog.Int("entries", res.Entries),
			slog.Int("aliases", res.Aliases),
			slog.Int("listings", res.Listings),
			slog.Int("feeds", res.Feeds),
			logfields.Duration(res.Duration))
	}()

	logger.Info("Starting build",
		logfields.Count(len(b.cfg.Pages)),
		logfields.Path(b.cfg.DestDir))

	env, err := templates.New(b.cfg.TemplatesDir)
	if err != nil {
		return res, err
	}
	feeds := feed.NewBuffer()

	stageStart := time.Now()
	if err := b.renderEntries(ctx, env, res, feeds, logger); err != nil {
		return res, err
	}
	b.recorder.ObserveStageDuration(metrics.StageEntries, time.Since(stageStart))

	stageStart = time.Now()
	if err := b.renderListings(ctx, env, res, logger); err != nil {
		return res, err
	}
	b.recorder.ObserveStageDuration(metrics.StageListings, time.Since(stageStart))

	stageStart = time.Now()
	base := b.cfg.Base()
	for _, f := range feeds.Feeds() {
		path, err := f.WriteFile(b.cfg.DestDir, base)
		if err != nil {
			return res, err
		}
		res.Feeds++
		b.recorder.IncFeedWritten(f.Page)
		logger.Info("Feed written", logfields.Page(f.Page), logfields.Path(path), logfields.Count(len(f.Items)))
	}
	b.recorder.ObserveStageDuration(metrics.StageFeeds, time.Since(stageStart))

	return res, nil
}

func (b *Builder) renderEntries(ctx context.Context, env *templates.Environment, res *Result, feeds *feed.Buffer, logger *slog.Logger) error {
	base := b.cfg.Base()
	for _, page := range b.cfg.Pages {
		if !page.HasEntries() {
			continue
		}
		var list []*metadata.Metadata
		res.Index.Set(page.Name, list)

		for _, entry := range page.Entries {
			files, err := EntryFiles(entry)
			if err != nil {
				return err
			}
			var items []feed.Item
			for _, src := range files {
				if err := ctx.Err(); err != nil {
					return err
				}
				rendered, err := RenderEntry(b.cfg, env, page.Name, entry.TemplatePath, src, logger)
				if err != nil {
					return err
				}
				res.Entries++
				res.Aliases += len(rendered.Aliases)
				b.recorder.IncEntryRendered(page.Name)
				for range rendered.Aliases {
					b.recorder.IncAliasWritten(page.Name)
				}
				list = append(list, rendered.Metadata)

				if page.RSS {
					item, err := feed.NewItem(env, base, page.Name, rendered.Metadata, rendered.Partial)
					if err != nil {
						return err
					}
					items = append(items, item)
				}
			}
			res.Index.Set(page.Name, list)
			if page.RSS {
				feeds.Append(page, items...)
			}
		}
		logger.Info("Page entries rendered", logfields.Page(page.Name), logfields.Count(len(list)))
	}
	return nil
}

func (b *Builder) renderListings(ctx context.Context, env *templates.Environment, res *Result, logger *slog.Logger) error {
	pages := res.Index.TemplateValue()
	order := res.Index.Pages()
	for _, page := range b.cfg.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := env.RenderNamed(page.TemplatePath, templates.Context{"pages": pages, "page_order": order})
		if err != nil {
			return err
		}
		target := filepath.Join(b.cfg.DestDir, page.Name, indexFile)
		if err := writeFile(target, out); err != nil {
			return err
		}
		res.Listings++
		logger.Info("Page written", logfields.Page(page.Name), logfields.Template(page.TemplatePath), logfields.Path(target))
	}
	return nil
}
