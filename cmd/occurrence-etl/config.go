// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/occurrence-etl/internal/logging"
	"github.com/pdiddy/occurrence-etl/internal/mongostore"
	"github.com/pdiddy/occurrence-etl/internal/store"
	"github.com/pdiddy/occurrence-etl/pkg/types"
)

const (
	defaultRawDir       = "data/raw"
	defaultProcessedDir = "data/processed"
	defaultAddr         = ":8080"
)

func setDefaults() {
	viper.SetDefault("raw_dir", defaultRawDir)
	viper.SetDefault("processed_dir", defaultProcessedDir)
	viper.SetDefault("store.path", store.DefaultPath)
	viper.SetDefault("store.mongo_uri", mongostore.DefaultURI)
	viper.SetDefault("serve.addr", defaultAddr)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", logging.FormatText)

	// Unset so the database named in the mongo uri applies.
	viper.BindEnv("store.mongo_database")

	// Conventional names used by hosting platforms.
	viper.BindEnv("store.mongo_uri", "OCCURRENCE_ETL_STORE_MONGO_URI", "MONGO_URI")
	viper.BindEnv("serve.addr", "OCCURRENCE_ETL_SERVE_ADDR", "PORT")
}

// loadConfig assembles the configuration from defaults, the config file,
// the environment and flags, in increasing precedence.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("parsing configuration: %w", err)
	}
	cfg.Serve.Addr = normalizeAddr(cfg.Serve.Addr)
	return cfg, nil
}

// normalizeAddr accepts a bare port such as PORT=5000.
func normalizeAddr(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return defaultAddr
	}
	if !strings.Contains(addr, ":") {
		return ":" + addr
	}
	return addr
}
