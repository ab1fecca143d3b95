package main

import (
	"fmt"

	"github.com/vksamples/vktools/config"
	"github.com/vksamples/vktools/plugins"
)

func run(cfgFile string) error {
	if cfgFile == "" {
		var err error
		cfgFile, err = config.FindConfigFile(".", config.DefaultFilenames)
		if err != nil {
			return fmt.Errorf("failed to find config file: %w", err)
		}
	}

	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}

	if err := plugins.GenerateCode(cfg); err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}
	return nil
}
