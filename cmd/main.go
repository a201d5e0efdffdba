// Package main is the entry point for the farepath service.
//
// @title           Fare Path Service API
// @version         1.0.0
// @description     Combinatorial fare path search: prices an itinerary by combining per-passenger fare paths into ranked solutions.
//
// @contact.name   API Support
// @contact.email  support@example.com
// @contact.url    https://github.com/guttosm/farepath-service
//
// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT
//
// @host      localhost:8080
// @BasePath  /
//
// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
// @description                 API key for the pricing endpoint. Required if authentication is enabled.
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Operator JWT issued by `farepath token`, as "Bearer <token>".
//
// @tag.name        Pricing
// @tag.description Fare path pricing transactions and their records
//
// @tag.name        Search Profiles
// @tag.description Stored search limits overriding the server defaults
//
// @tag.name        Health
// @tag.description Health check endpoints
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/guttosm/farepath-service/docs" // swagger docs
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "farepath",
		Short:         "Fare path search engine",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(priceCmd())
	rootCmd.AddCommand(tokenCmd())

	return rootCmd
}
