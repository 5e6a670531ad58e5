package commands

import (
	"context"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/puggle/internal/config"
	"git.home.luguber.info/inful/puggle/internal/preview"
)

// ServerCmd implements the 'server' command.
type ServerCmd struct {
	Host         string `name:"host" help:"Override preview.host"`
	Port         int    `short:"p" name:"port" help:"Override preview.port"`
	NoLiveReload bool   `name:"no-live-reload" help:"Disable live reload script injection"`
}

func (s *ServerCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(root.ConfigPath)
	if err != nil {
		return err
	}
	s.apply(cfg)
	return preview.NewServer(cfg, preview.Options{
		ConfigPath: root.ConfigPath,
		Logger:     logger(g),
	}).Run(ctx)
}

func (s *ServerCmd) apply(cfg *config.Config) {
	if s.Host != "" {
		cfg.Preview.Host = s.Host
	}
	if s.Port != 0 {
		cfg.Preview.Port = s.Port
	}
	if s.NoLiveReload {
		off := false
		cfg.Preview.LiveReload = &off
	}
}
