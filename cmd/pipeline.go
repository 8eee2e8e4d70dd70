package cmd

import (
	"fmt"

	"github.com/KaramelBytes/cnodash/internal/dataset"
	"github.com/KaramelBytes/cnodash/internal/pipeline"
)

// buildPipeline validates the effective config and wires loader and pipeline.
func buildPipeline() (*pipeline.Pipeline, *dataset.Loader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	opt, err := cfg.ReadOptions()
	if err != nil {
		return nil, nil, err
	}
	loader, err := dataset.NewLoader(cfg.CacheSize, opt, logger.Named("loader"))
	if err != nil {
		return nil, nil, err
	}
	src := pipeline.Sources{AreasPath: cfg.AreasPath, RegistryPath: cfg.RegistryPath}
	p, err := pipeline.New(src, loader, cfg.CacheSize, logger.Named("pipeline"))
	if err != nil {
		return nil, nil, err
	}
	return p, loader, nil
}
