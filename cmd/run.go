package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/vk-tinder/internal/cache"
	"github.com/spigell/vk-tinder/internal/filtering"
	"github.com/spigell/vk-tinder/internal/logger"
	"github.com/spigell/vk-tinder/internal/profile"
	"github.com/spigell/vk-tinder/internal/secrets"
	"github.com/spigell/vk-tinder/internal/session"
	"github.com/spigell/vk-tinder/internal/storage"
	"github.com/spigell/vk-tinder/internal/vk"
)

const (
	PromptContinue     = "Continue"
	PromptFavorite     = "Add to favorites"
	PromptBlacklist    = "Add to blacklist"
	PromptPrintJSON    = "Print JSON"
	PromptOutputAgain  = "Output again"
	PromptQuitAndSave  = "Quit and export"
	PromptBack         = "back"
	tokenFileHint      = "set VK_TOKEN or VK_TOKEN_FILE environment variable or the 'token-file' key in the configuration file, 'vk-tinder auth' creates the file"
	maxLoggedInterests = 80
)

var (
	errExit      = errors.New("exit requested")
	errNextRound = errors.New("next round requested")
)

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptContinue, PromptFavorite, PromptBlacklist, PromptPrintJSON, PromptOutputAgain, PromptQuitAndSave},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Search candidates and triage them interactively",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntP("rounds", "r", 0, "run the given number of rounds without prompts and export the result")
	runCmd.Flags().StringP("output", "o", "", "a file for exported matches (default is output.json)")
	runCmd.Flags().Bool("no-blacklist", false, "do not exclude blacklisted profiles")

	viper.BindPFlag("output", runCmd.Flags().Lookup("output"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the vk-tinder", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	client, err := newClient(ctx, config, logger)
	if err != nil {
		logger.Fatal("loading vk token", zap.Error(err), zap.String("hint", tokenFileHint))
	}

	store, err := storage.Connect(ctx, config.Database.DSN, logger)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal("preparing database", zap.Error(err))
	}

	if lists := connectCache(ctx, config.Redis, logger); lists != nil {
		client.Cache = lists
		defer lists.Close()
	}

	me, err := client.Me()
	if err != nil {
		logger.Fatal("getting the token owner profile", zap.Error(err))
	}

	logReference(logger, me)

	rounds, _ := cmd.Flags().GetInt("rounds")
	interactive := rounds <= 0

	ref, err := prepareReference(ctx, store, me, config, interactive)
	if err != nil {
		logger.Fatal("preparing reference", zap.Error(err))
	}

	sess, err := session.New(ref, &session.Deps{
		Fetcher: client,
		Store:   store,
		Filters: prepareFilters(cmd, me, store, logger),
		Logger:  logger,
	}, session.Options{
		Weights:        *config.Weights,
		TopK:           config.TopK,
		MaxEmptyRounds: config.MaxEmptyRounds,
		Search:         *config.Search,
	})
	if err != nil {
		logger.Fatal("starting session", zap.Error(err))
	}

	logger.Info("session started", zap.String("session_id", sess.ID), zap.String("reference", ref.String()))

	if !interactive {
		if err := runRounds(ctx, sess, rounds, config.Output, logger); err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		return
	}

	for {
		matches, err := sess.Round(ctx)
		if err != nil {
			if errors.Is(err, session.ErrNoCandidates) {
				logger.Info("exiting", zap.String("reason", err.Error()))
				return
			}
			logger.Fatal("round failed", zap.Error(err))
		}

		printMatches(matches)

		for {
			_, action, err := prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}

			err = handleAction(ctx, action, sess, config, logger)
			if errors.Is(err, errNextRound) {
				break
			}
			if errors.Is(err, errExit) {
				return
			}
			if err != nil {
				logger.Error("action failed", zap.String("action", action), zap.Error(err))
			}
		}
	}
}

func handleAction(ctx context.Context, action string, sess *session.Session, config *Config, logger *zap.Logger) error {
	matches := sess.Matches()

	switch action {
	case PromptContinue:
		return errNextRound
	case PromptFavorite:
		m, err := chooseMatch(matches, "Whom to add to favorites?")
		if err != nil || m == nil {
			return err
		}
		return sess.Favorite(ctx, *m)
	case PromptBlacklist:
		m, err := chooseMatch(matches, "Whom to add to blacklist?")
		if err != nil || m == nil {
			return err
		}
		return sess.Blacklist(ctx, *m)
	case PromptPrintJSON:
		pretty, err := matches.Pretty()
		if err != nil {
			return err
		}
		fmt.Println(pretty)
		return nil
	case PromptOutputAgain:
		printMatches(matches)
		return nil
	case PromptQuitAndSave:
		output := config.Output
		if err := matches.ToFile(output); err != nil {
			logger.Warn("export to configured file failed, using a temporary one", zap.String("output", output), zap.Error(err))
			if output, err = matches.DumpToTmpFile(); err != nil {
				return fmt.Errorf("export matches: %w", err)
			}
		}
		logger.Info("exiting", zap.String("reason", "got quit from prompt"), zap.String("output", output))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func runRounds(ctx context.Context, sess *session.Session, rounds int, output string, logger *zap.Logger) error {
	var all profile.Matches
	for i := 0; i < rounds; i++ {
		matches, err := sess.Round(ctx)
		if errors.Is(err, session.ErrNoCandidates) {
			logger.Info("stopping early", zap.Int("round", i+1), zap.String("reason", err.Error()))
			break
		}
		if err != nil {
			return err
		}
		all = append(all, matches...)
	}

	if err := all.ToFile(output); err != nil {
		return fmt.Errorf("export matches: %w", err)
	}

	logger.Info("matches exported", zap.Int("count", all.Len()), zap.String("output", output))
	return nil
}

func newClient(ctx context.Context, config *Config, logger *zap.Logger) (*vk.Client, error) {
	token, err := secrets.Load(secrets.Source{
		Name: "vk token",
		Env:  "VK_TOKEN",
		File: strings.TrimSpace(config.TokenFile),
	})
	if err != nil {
		return nil, err
	}

	client := vk.New(ctx, logger, token)

	// The service token is optional, users.get falls back to the user token.
	file := strings.TrimSpace(config.ServiceTokenFile)
	serviceToken, err := secrets.Load(secrets.Source{Name: "vk service token", Env: "VK_SERVICE_TOKEN", File: file})
	switch {
	case err == nil:
		client.WithServiceToken(serviceToken)
	case file != "":
		return nil, err
	}

	if config.VK.UserAgent != "" {
		client.UserAgent = config.VK.UserAgent
	}
	client.RetryAttempts = config.VK.RetryAttempts
	client.RetryDelay = config.VK.RetryDelay

	return client, nil
}

func connectCache(ctx context.Context, cfg *cache.Config, logger *zap.Logger) *cache.Lists {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	lists, err := cache.Connect(ctx, cfg)
	if err != nil {
		logger.Warn("running without graph cache", zap.Error(err))
		return nil
	}

	logger.Debug("graph cache enabled", zap.String("addr", cfg.Addr), zap.Duration("ttl", cfg.TTL))
	return lists
}

func prepareFilters(cmd *cobra.Command, me *profile.Profile, store *storage.Storage, logger *zap.Logger) *filtering.Filtering {
	filters := filtering.New([]filtering.Filter{
		filtering.NewSelf(me.ID),
		filtering.NewDeactivated(logger),
		filtering.NewBlacklist(&filtering.BlacklistDeps{
			Store:  store,
			Logger: logger,
		}),
	}, logger)

	if cmd != nil {
		if skip, _ := cmd.Flags().GetBool("no-blacklist"); skip {
			filters.DisableByName("blacklist", "disabled by --no-blacklist")
		}
	}

	for _, status := range filters.Describe() {
		logger.Debug("filter configured",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
		)
	}

	return filters
}

func printMatches(matches profile.Matches) {
	if matches.Len() == 0 {
		fmt.Println("Nobody suitable on this page.")
		return
	}

	for _, line := range matches.Lines() {
		fmt.Println(line)
	}
}
