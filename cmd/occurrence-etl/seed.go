// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/occurrence-etl/internal/api"
	"github.com/pdiddy/occurrence-etl/internal/mongostore"
	"github.com/pdiddy/occurrence-etl/internal/seed"
	"github.com/pdiddy/occurrence-etl/internal/store"
	"github.com/pdiddy/occurrence-etl/pkg/types"
)

const (
	backendSQLite = "sqlite"
	backendMongo  = "mongo"
)

// recordStore is a store that can be both seeded and served.
type recordStore interface {
	seed.Target
	api.Source
}

var seedCmd = &cobra.Command{
	Use:   "seed [dataset...]",
	Short: "Import JSON Lines outputs into a record store",
	Long: `Seed reads each dataset's JSON Lines output and replaces that dataset's
records in the chosen store: the local SQLite database (default) or MongoDB
(store.mongo_uri, or MONGO_URI). The file is validated before anything is
deleted; an empty file clears the dataset.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().Bool("all", false, "seed every dataset in the catalog")
	seedCmd.Flags().String("target", backendSQLite, "store to seed: sqlite or mongo")

	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	target, _ := cmd.Flags().GetString("target")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	datasets, err := selectDatasets(cfg, args, all)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rs, closeStore, err := openRecordStore(ctx, cfg.Store, target)
	if err != nil {
		return err
	}
	defer closeStore()

	var failed int
	for _, ds := range datasets {
		n, err := seed.Seed(ctx, rs, ds.Name, ds.OutputPath, os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			logger.Error().Err(err).Str("dataset", ds.Name).Str("target", target).Msg("seed failed")
			failed++
			continue
		}
		logger.Info().Str("dataset", ds.Name).Str("target", target).Int("records", n).Msg("seeded")
	}
	if failed > 0 {
		return fmt.Errorf("%d dataset(s) failed seeding", failed)
	}
	return nil
}

// openRecordStore opens the SQLite or MongoDB record store. The returned
// func releases it.
func openRecordStore(ctx context.Context, cfg types.StoreConfig, backend string) (recordStore, func(), error) {
	switch backend {
	case backendSQLite, "":
		st, err := store.NewStore(cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug().Str("path", st.Path()).Msg("opened sqlite store")
		return st, func() { st.Close() }, nil
	case backendMongo:
		st, err := mongostore.Connect(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return st, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			st.Close(closeCtx)
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q: use %s or %s", backend, backendSQLite, backendMongo)
	}
}
