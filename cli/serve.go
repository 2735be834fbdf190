package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stsysd/tasuku/api"
	"github.com/stsysd/tasuku/config"
	"github.com/stsysd/tasuku/db"
	"github.com/stsysd/tasuku/logger"
	"github.com/stsysd/tasuku/repository"
	"github.com/stsysd/tasuku/seed"
	"github.com/stsysd/tasuku/store"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the tasuku HTTP server.

Examples:
  tasuku serve --port 8080
  tasuku serve --store sqlite --seed=false
  TASUKU_SEED_FILE=tasks.yml tasuku serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, v)
		},
	}
}

func runServe(cmd *cobra.Command, v *viper.Viper) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	log := logger.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, cleanup, err := newServer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	return server.Run(ctx, cfg.Addr())
}

// openStore は設定に応じたストアを初期化します。
func openStore(cfg *config.Config) (store.TaskStore, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		// SQLiteストアの初期化（マイグレーション関数を渡す）
		sqliteStore, err := store.NewSQLiteStore(db.Migrate)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		return sqliteStore, nil
	default:
		return store.NewMemoryStore(), nil
	}
}

// loadSeeds は投入するサンプルタスクを返します。
func loadSeeds(cfg *config.Config) ([]seed.Task, error) {
	if !cfg.Seed {
		return nil, nil
	}
	if cfg.SeedFile == "" {
		return seed.Defaults(), nil
	}
	return seed.LoadFile(cfg.SeedFile)
}

// newServer はストア・リポジトリ・シードを準備してサーバーを生成します。
// 返される関数でストアを閉じます。
func newServer(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*api.Server, func(), error) {
	st, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := st.Close(); err != nil {
			log.WithError(err).Warn("failed to close store")
		}
	}

	repo, err := repository.NewTaskRepository(ctx, st, nil)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	seeds, err := loadSeeds(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	created, err := seed.Apply(ctx, repo, seeds)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if len(created) > 0 {
		log.WithField("count", len(created)).Info("sample tasks created")
	}

	log.WithFields(logrus.Fields{
		"store": cfg.Store,
		"port":  cfg.Port,
	}).Debug("configuration loaded")

	return api.NewServer(repo, cfg, log), cleanup, nil
}
