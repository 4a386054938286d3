package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/templui/filenest/internal/config"
	"github.com/templui/filenest/internal/service"
)

func TokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <user_id>",
		Short: "Issue a bearer token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			tokens := service.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry, cfg.IsProduction())

			token, err := tokens.Issue(args[0])
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			fmt.Println(token)
			return nil
		},
	}
}
