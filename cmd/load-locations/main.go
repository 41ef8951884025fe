package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"queryquest/internal/catalog"
	"queryquest/internal/config"
	"queryquest/internal/db"
	"queryquest/internal/logger"
)

func main() {
	cobra.CheckErr(newCmd().Execute())
}

type options struct {
	file   string
	dryRun bool
}

func newCmd() *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:           "load-locations",
		Short:         "Load locations, states and animals into the game schema.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	addFlags(cmd.Flags(), &opts)
	return cmd
}

func addFlags(fs *pflag.FlagSet, opts *options) {
	fs.StringVarP(&opts.file, "file", "f", "", "seed file (json or yaml); the built-in catalog when empty")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "validate the seed file without writing")
}

func run(ctx context.Context, opts options) error {
	if err := config.LoadDotEnv(".env.local", ".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Setup(cfg.LogLevel, cfg.LogPretty)

	seeds, err := catalog.LoadSeed(opts.file)
	if err != nil {
		return err
	}
	if opts.dryRun {
		log.Info().Int("locations", len(seeds)).Msg("seed file is valid")
		return nil
	}

	conn, err := db.Open(cfg.DatabaseURL, db.PoolConfig{MaxOpenConns: 2})
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer func() {
		_ = db.Close(conn)
	}()

	inserted, err := catalog.NewStore(conn).Seed(ctx, seeds)
	if err != nil {
		return fmt.Errorf("loading locations: %w", err)
	}
	log.Info().Int("locations", inserted).Msg("loaded locations")
	return nil
}
