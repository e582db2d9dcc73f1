package cmd

import (
	"errors"
	"fmt"
	"net/http"

	kcbridge "kcbridge/internal"
	"kcbridge/internal/action"
	"kcbridge/internal/keycloak"
	"kcbridge/internal/server"

	"github.com/spf13/cobra"
)

var actionCmd = &cobra.Command{
	Use:   "action",
	Short: "Start the Hasura action endpoint",
	Long:  "Serves POST /keycloak, resolving the x-hasura-user-id session variable to the user's Keycloak profile",
	Run: func(cmd *cobra.Command, args []string) {
		applyServeFlags(cmd)
		if config.Server.Port == 0 {
			config.Server.Port = kcbridge.DefaultActionPort
		}

		kc := keycloak.NewClient(
			config.Keycloak.Host,
			config.Keycloak.Username,
			config.Keycloak.Password,
			config.Keycloak.Timeout,
		)
		s := server.New(config.Server.Host, config.Server.Port)
		s.Handler = action.NewRouter(kc)

		if config.Options.Verbose {
			fmt.Printf("Action endpoint listening on %s\n", s.Addr)
		}
		err := s.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			fmt.Printf("Action endpoint server closed.\n")
		} else if err != nil {
			fmt.Printf("failed to start server: %v", err)
		}
	},
}

func init() {
	addServeFlags(actionCmd)
	rootCmd.AddCommand(actionCmd)
}
