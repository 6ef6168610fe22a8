// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/healthdash/internal/secrets"
	"github.com/pdiddy/healthdash/pkg/types"
)

// envKeyReplacer maps "provider.base_url" to HEALTHDASH_PROVIDER_BASE_URL.
var envKeyReplacer = strings.NewReplacer(".", "_")

// setDefaults registers every config key so environment variables and
// Unmarshal see it even when no file sets it.
func setDefaults(d types.Config) {
	viper.SetDefault("classifier.default_year", d.Classifier.DefaultYear)

	viper.SetDefault("provider.base_url", d.Provider.BaseURL)
	viper.SetDefault("provider.timeout", d.Provider.Timeout)
	viper.SetDefault("provider.max_retries", d.Provider.MaxRetries)
	viper.SetDefault("provider.api_key", d.Provider.APIKey)
	viper.SetDefault("provider.user_agent", d.Provider.UserAgent)

	viper.SetDefault("raster.settle_delay", d.Raster.SettleDelay)
	viper.SetDefault("raster.scale", d.Raster.Scale)
	viper.SetDefault("raster.viewport_width", d.Raster.ViewportWidth)
	viper.SetDefault("raster.chrome_bin", d.Raster.ChromeBin)

	viper.SetDefault("export.output_dir", d.Export.OutputDir)
	viper.SetDefault("export.frame_delay", d.Export.FrameDelay)
	viper.SetDefault("export.author", d.Export.Author)

	viper.SetDefault("store.dir", d.Store.Dir)
	viper.SetDefault("store.max_results", d.Store.MaxResults)

	viper.SetDefault("server.addr", d.Server.Addr)
	viper.SetDefault("server.fetch_delay", d.Server.FetchDelay)
}

// loadConfig resolves flags, environment, config file and defaults into
// a Config. Empty flag values fall back to the layers below them.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("reading configuration: %w", err)
	}

	d := types.DefaultConfig()
	if cfg.Export.OutputDir == "" {
		cfg.Export.OutputDir = d.Export.OutputDir
	}
	if cfg.Store.Dir == "" {
		cfg.Store.Dir = d.Store.Dir
	}
	cfg.Provider.APIKey = loadedSecrets.Get(secrets.IndicatorsAPIKey, cfg.Provider.APIKey)
	return cfg, nil
}
