package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"flightsurety/core/auth"
	"flightsurety/core/config"
	"flightsurety/types/ids"
)

var tokenCmd = &cobra.Command{
	Use:   "token <address>",
	Short: "Issue a bearer token for a caller address",
	Long:  "Signs an HS256 token with the node's JWT secret. Intended for development networks.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caller, err := ids.ParseAddress(args[0])
		if err != nil {
			return err
		}
		if err := config.LoadEnvFiles(".env"); err != nil {
			return err
		}
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if cfg.JWTSecret == "" {
			return errors.New("no JWT secret configured (FLIGHTSURETY_JWTSECRET)")
		}
		chainID, _ := cmd.Flags().GetString("chain")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		tok, err := auth.IssueToken([]byte(cfg.JWTSecret), caller, chainID, ttl)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("chain", "flightsurety-dev", "Chain ID claim")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime, 0 for none")
	rootCmd.AddCommand(tokenCmd)
}
