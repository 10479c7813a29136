package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/vk-tinder/internal/logger"
	"github.com/spigell/vk-tinder/internal/storage"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create database tables",
	Run: func(_ *cobra.Command, _ []string) {
		withStorage(func(ctx context.Context, store *storage.Storage, logger *zap.Logger) error {
			if err := store.EnsureSchema(ctx); err != nil {
				return err
			}
			logger.Info("database is ready")
			return nil
		})
	},
}

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Print favorite matches as JSON",
	Run: func(_ *cobra.Command, _ []string) {
		withStorage(func(ctx context.Context, store *storage.Storage, _ *zap.Logger) error {
			favorites, err := store.Favorites(ctx)
			if err != nil {
				return err
			}

			pretty, err := favorites.Pretty()
			if err != nil {
				return err
			}
			fmt.Println(pretty)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initDBCmd)
	rootCmd.AddCommand(favoritesCmd)
}

func withStorage(fn func(context.Context, *storage.Storage, *zap.Logger) error) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	dsn := viper.GetString("database.dsn")
	if dsn == "" {
		logger.Fatal("database dsn is required", zap.String("hint", "set VK_DATABASE_DSN or database.dsn in the config"))
	}

	store, err := storage.Connect(ctx, dsn, logger)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer store.Close()

	if err := fn(ctx, store, logger); err != nil {
		logger.Fatal("database command failed", zap.Error(err))
	}
}
