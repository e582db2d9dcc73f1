package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	kcbridge "kcbridge/internal"
	"kcbridge/internal/keycloak"
	"kcbridge/internal/remoteschema"
	"kcbridge/internal/server"

	"github.com/spf13/cobra"
)

var remoteSchemaCmd = &cobra.Command{
	Use:   "remote-schema",
	Short: "Start the GraphQL remote schema",
	Long:  "Serves the keycloak query at /graphql, resolving the bearer token's subject to the user's Keycloak profile",
	Run: func(cmd *cobra.Command, args []string) {
		applyServeFlags(cmd)
		if config.Server.Port == 0 {
			config.Server.Port = kcbridge.DefaultRemoteSchemaPort
		}

		kc := keycloak.NewClient(
			config.Keycloak.Host,
			config.Keycloak.Username,
			config.Keycloak.Password,
			config.Keycloak.Timeout,
		)
		router, err := remoteschema.NewRouter(kc)
		if err != nil {
			fmt.Printf("failed to build schema: %v\n", err)
			os.Exit(1)
		}
		s := server.New(config.Server.Host, config.Server.Port)
		s.Handler = router

		if config.Options.Verbose {
			fmt.Printf("Remote schema listening on %s\n", s.Addr)
		}
		err = s.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			fmt.Printf("Remote schema server closed.\n")
		} else if err != nil {
			fmt.Printf("failed to start server: %v", err)
		}
	},
}

func init() {
	addServeFlags(remoteSchemaCmd)
	rootCmd.AddCommand(remoteSchemaCmd)
}
