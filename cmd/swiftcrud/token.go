package main

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/khaledsukkar2/swiftcrud/internal/cli/ui"
	"github.com/khaledsukkar2/swiftcrud/internal/config"
	"github.com/khaledsukkar2/swiftcrud/internal/web/auth"
)

var tokenSubject string

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "admin", "Subject claim for the issued token")
	tokenCmd.AddCommand(hashPasswordCmd)
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for write-protected resources",
	Long: `Verify the admin password against auth.password_hash and print a signed
bearer token. Requires auth to be enabled in swiftcrud.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if !cfg.Auth.Enabled {
			return fmt.Errorf("auth is disabled in the configuration")
		}
		if cfg.Auth.PasswordHash == "" {
			return fmt.Errorf("auth.password_hash is not configured, generate one with: swiftcrud token hash-password")
		}

		var password string
		prompt := &survey.Password{Message: "Password:"}
		if err := survey.AskOne(prompt, &password, survey.WithValidator(survey.Required)); err != nil {
			return err
		}

		if !auth.CheckPassword(password, cfg.Auth.PasswordHash) {
			ui.Error(os.Stderr, "password does not match auth.password_hash")
			return fmt.Errorf("invalid password")
		}

		tokens := auth.NewTokenService(cfg.Auth.Secret, cfg.Auth.TokenTTL)
		token, err := tokens.Generate(tokenSubject)
		if err != nil {
			return fmt.Errorf("failed to generate token: %w", err)
		}

		fmt.Println(token)
		return nil
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Hash a password for the auth.password_hash setting",
	RunE: func(cmd *cobra.Command, args []string) error {
		var password string
		prompt := &survey.Password{Message: "Password to hash:"}
		if err := survey.AskOne(prompt, &password, survey.WithValidator(survey.Required)); err != nil {
			return err
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}

		fmt.Println(hash)
		return nil
	},
}
