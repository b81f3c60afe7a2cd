package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/scoutjar/scoutjar-talent/internal/secrets"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in as a talent and store the session",
	Run: func(cmd *cobra.Command, _ []string) {
		login(cmd)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		a := newApplication(ctx)
		defer a.Close()

		n := a.account.SignOut(ctx)
		if n.IsFailure() {
			a.exitWith(cmd.OutOrStdout(), n)
		}
		a.show(cmd.OutOrStdout(), n)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)

	loginCmd.Flags().StringP("email", "e", "", "account email. Prompted for when unset.")
	loginCmd.Flags().StringP("password-file", "p", "", "file containing the account password. Prompted for when unset.")

	viper.BindPFlag("email", loginCmd.Flags().Lookup("email"))
	viper.BindPFlag("password-file", loginCmd.Flags().Lookup("password-file"))
}

func login(cmd *cobra.Command) {
	ctx := context.Background()
	a := newApplication(ctx)
	defer a.Close()

	out := cmd.OutOrStdout()

	email := strings.TrimSpace(a.config.Email)
	if email == "" {
		prompt := promptui.Prompt{Label: "Email"}
		value, err := prompt.Run()
		if err != nil {
			a.logger.Fatal("reading email", zap.Error(err))
		}
		email = value
	}

	password, err := resolvePassword(a.config)
	if err != nil {
		a.logger.Fatal(
			"loading the password",
			zap.Error(err),
			zap.String("hint", "set SCOUTJAR_PASSWORD_FILE environment variable or the 'password-file' key in the configuration file"),
		)
	}

	n, err := a.account.Login(ctx, email, password)
	if err != nil {
		a.logger.Debug("login rejected", zap.Error(err))
		a.exitWith(out, n)
	}
	a.show(out, n)

	// Warm up the feed so the first `feed` run starts from a persisted mode.
	result := a.boot.Run(ctx)
	a.logger.Info("session ready",
		zap.String("mode", string(result.Mode)),
		zap.Int("jobs", result.Jobs),
		zap.Int("applied", result.Applied),
	)
}

// resolvePassword reads the password file when configured and falls back
// to an interactive masked prompt.
func resolvePassword(config *Config) (string, error) {
	password, err := secrets.Load(secrets.Source{
		Name: "password",
		File: config.PasswordFile,
		Env:  "SCOUTJAR_PASSWORD",
	})
	if err == nil {
		return password, nil
	}
	if !errors.Is(err, secrets.ErrNotConfigured) {
		return "", err
	}

	prompt := promptui.Prompt{Label: "Password", Mask: '*'}
	return prompt.Run()
}
