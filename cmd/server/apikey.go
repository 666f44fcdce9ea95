package main

import (
	"errors"
	"fmt"

	"github.com/rpggio/demobox/internal/config"
	"github.com/rpggio/demobox/internal/sqlite"
	"github.com/spf13/cobra"
)

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage identity tokens for signed-in users",
}

var (
	apikeyUser        string
	apikeyToken       string
	apikeyDescription string
)

var apikeyAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a bearer token for a user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if apikeyUser == "" || apikeyToken == "" {
			return errors.New("--user and --token are required")
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		db, err := openDB(cfg.DB.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := sqlite.NewAPIKeyRepository(db).Add(cmd.Context(), apikeyToken, apikeyUser, apikeyDescription); err != nil {
			return fmt.Errorf("add api key: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "token registered for %s\n", apikeyUser)
		return nil
	},
}

var apikeyRevokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke a bearer token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if apikeyToken == "" {
			return errors.New("--token is required")
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		db, err := openDB(cfg.DB.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := sqlite.NewAPIKeyRepository(db).Revoke(cmd.Context(), apikeyToken); err != nil {
			return fmt.Errorf("revoke api key: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "token revoked")
		return nil
	},
}

func init() {
	apikeyAddCmd.Flags().StringVar(&apikeyUser, "user", "", "user ID the token signs in as")
	apikeyAddCmd.Flags().StringVar(&apikeyToken, "token", "", "bearer token")
	apikeyAddCmd.Flags().StringVar(&apikeyDescription, "description", "", "free-form note")
	apikeyRevokeCmd.Flags().StringVar(&apikeyToken, "token", "", "bearer token")

	apikeyCmd.AddCommand(apikeyAddCmd)
	apikeyCmd.AddCommand(apikeyRevokeCmd)
}
