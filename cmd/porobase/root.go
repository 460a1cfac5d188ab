package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/porolink/porobase"
	"github.com/porolink/porobase/adapter/identity"
	"github.com/porolink/porobase/adapter/memstore"
)

var (
	snapshotPath string
	logLevel     string

	store  *memstore.Memstore
	client *porobase.Client
)

var logLevelMap = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

var rootCmd = &cobra.Command{
	Use:               "porobase",
	Short:             "Porolink data store console",
	Long:              "Inspect and manipulate a porolink parcel marketplace data store: documents, realtime changes, accounts and parcel lifecycle.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&snapshotPath, "data", "d", "", "snapshot file path (default $POROBASE_DATA)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (default $POROBASE_LOG_LEVEL or warn)")

	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(trackCmd)
}

// setup wires the shared client. Environment comes from the process plus
// an optional .env file; explicit flags win over both.
func setup(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()
	if snapshotPath == "" {
		snapshotPath = os.Getenv("POROBASE_DATA")
	}
	if logLevel == "" {
		logLevel = os.Getenv("POROBASE_LOG_LEVEL")
	}

	level, ok := logLevelMap[strings.ToLower(logLevel)]
	if !ok {
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	storeOpts := []memstore.Option{memstore.WithLogger(logger)}
	if snapshotPath != "" {
		storeOpts = append(storeOpts, memstore.WithSnapshotFile(snapshotPath))
	}
	store = memstore.NewMemstore(storeOpts...)
	if err := store.LoadSnapshot(cmd.Context()); err != nil {
		return err
	}

	idOpts := []identity.Option{identity.WithLogger(logger)}
	if secret := os.Getenv("POROBASE_JWT_SECRET"); secret != "" {
		idOpts = append(idOpts, identity.WithSecret([]byte(secret)))
	}

	client = porobase.New(
		porobase.WithStore(store),
		porobase.WithIdentity(identity.NewIdentity(idOpts...)),
		porobase.WithLogger(logger),
	)
	return nil
}

// persist writes the snapshot after a mutating command.
func persist(ctx context.Context) error {
	return store.PersistSnapshot(ctx)
}
