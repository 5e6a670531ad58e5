package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/puggle/internal/config"
	"git.home.luguber.info/inful/puggle/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct{}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(root.ConfigPath)
	if err != nil {
		return err
	}
	res, err := RunBuild(ctx, cfg, g)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Built %d entries, %d listings, %d feeds into %s in %s\n",
		res.Entries, res.Listings, res.Feeds, cfg.DestDir, res.Duration.Round(time.Millisecond))
	return nil
}

// RunBuild renders cfg once.
func RunBuild(ctx context.Context, cfg *config.Config, g *Global) (*site.Result, error) {
	return site.NewBuilder(cfg).WithLogger(logger(g)).Build(ctx)
}
