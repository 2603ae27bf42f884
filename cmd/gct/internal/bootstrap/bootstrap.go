package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rusq/gcodethumb"
	"github.com/rusq/gcodethumb/cmd/gct/internal/cfg"
	"github.com/rusq/gcodethumb/config"
)

// Config returns the configuration, loaded from the file set by the flags,
// with the command line overrides applied.
func Config(ctx context.Context) (*config.Config, error) {
	c, err := config.Load(cfg.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.MinSize > 0 {
		c.MinThumbnailSize = cfg.MinSize
	}
	slog.DebugContext(ctx, "configuration loaded", "min_thumbnail_size", c.MinThumbnailSize, "font", c.Font.Name)
	return c, nil
}

// Processor returns the thumbnail processor.
func Processor(ctx context.Context) (*gcodethumb.Processor, error) {
	c, err := Config(ctx)
	if err != nil {
		return nil, err
	}
	p, err := gcodethumb.New(c, gcodethumb.WithDryRun(cfg.DryRun))
	if err != nil {
		return nil, fmt.Errorf("failed to create processor: %w", err)
	}
	cfg.RegisterSigInfoReporter(p.Report)
	return p, nil
}
