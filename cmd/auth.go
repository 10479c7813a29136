package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/vk-tinder/internal/logger"
	"github.com/spigell/vk-tinder/internal/vk"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Get a VK user token and save it to the token file",
	Run: func(cmd *cobra.Command, _ []string) {
		auth(cmd)
	},
}

func init() {
	rootCmd.AddCommand(authCmd)

	authCmd.Flags().Int("app-id", 0, "VK application id used for authorization")
	authCmd.Flags().String("scope", vk.DefaultScope, "requested permissions")

	viper.BindPFlag("vk.app-id", authCmd.Flags().Lookup("app-id"))
}

func auth(cmd *cobra.Command) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	appID := viper.GetInt("vk.app-id")
	if appID <= 0 {
		logger.Fatal("application id is required", zap.String("hint", "set vk.app-id in the config or pass --app-id"))
	}

	tokenFile := strings.TrimSpace(viper.GetString("token-file"))
	scope, _ := cmd.Flags().GetString("scope")

	fmt.Println("Open the link below, allow access and paste the url from the address bar.")
	fmt.Println(vk.AuthorizeURL(appID, scope))

	p := promptui.Prompt{
		Label: "Redirect url",
		Validate: func(input string) error {
			_, err := vk.ParseRedirect(strings.TrimSpace(input))
			return err
		},
	}

	redirect, err := p.Run()
	if err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}

	token, err := vk.ParseRedirect(strings.TrimSpace(redirect))
	if err != nil {
		logger.Fatal("parsing redirect url", zap.Error(err))
	}

	if err := os.WriteFile(tokenFile, []byte(token+"\n"), 0o600); err != nil {
		logger.Fatal("saving token", zap.Error(err), zap.String("file", tokenFile))
	}

	logger.Info("token saved", zap.String("file", tokenFile))
}
