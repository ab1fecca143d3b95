package plugins

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vksamples/vktools/config"
	"github.com/vksamples/vktools/plugins/encoder"
	"github.com/vksamples/vktools/plugins/structuretype"
	"github.com/vksamples/vktools/registry"
)

// Plugin is a header generator driven by the registry.
type Plugin interface {
	Name() string
	Generate() error
}

var (
	_ Plugin = &structuretype.Plugin{}
	_ Plugin = &encoder.Plugin{}
)

func GenerateCode(cfg *config.Config) error {
	reg, err := registry.Load(cfg.Registry)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	var generators []Plugin

	// structuretype
	if cfg.Generators.StructureType.IsDefined() {
		generators = append(generators, structuretype.New(cfg, reg))
	}

	// encoder
	if cfg.Generators.Encoder.IsDefined() {
		generators = append(generators, encoder.New(cfg, reg))
	}

	for _, g := range generators {
		log.WithField("plugin", g.Name()).Debug("running generator")
		if err := g.Generate(); err != nil {
			return fmt.Errorf("%s failed: %w", g.Name(), err)
		}
	}

	return nil
}
