package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guttosm/farepath-service/config"
	"github.com/guttosm/farepath-service/internal/service"
)

func tokenCmd() *cobra.Command {
	var (
		operator string
		roles    []string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator JWT for the search profile and record endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if cfg.Auth.JWTSecretKey == "" {
				return errors.New("JWT_SECRET_KEY is not set")
			}

			tokens := service.NewTokenService(service.NewTokenConfigFromAuthConfig(cfg.Auth))
			resp, err := tokens.Issue(operator, roles)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires in %ds\n", resp.ExpiresIn)
			return nil
		},
	}

	cmd.Flags().StringVarP(&operator, "operator", "o", "", "operator name stored in the token")
	cmd.Flags().StringSliceVarP(&roles, "role", "r", nil, "roles to grant (viewer, admin); defaults to viewer")
	_ = cmd.MarkFlagRequired("operator")

	return cmd
}
