package cmd

import (
	"github.com/spf13/cobra"
)

// flag values shared by the serve commands; applied over the loaded config
// only when actually set, so config files and env defaults keep working
var (
	serveHost        string
	servePort        int
	keycloakHost     string
	keycloakUsername string
	keycloakPassword string
)

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&serveHost, "host", "0.0.0.0", "set the listening host")
	cmd.Flags().IntVar(&servePort, "port", 0, "set the listening port")
	cmd.Flags().StringVar(&keycloakHost, "keycloak.host", "", "set the Keycloak host")
	cmd.Flags().StringVar(&keycloakUsername, "keycloak.username", "", "set the Keycloak admin username")
	cmd.Flags().StringVar(&keycloakPassword, "keycloak.password", "", "set the Keycloak admin password")
}

func applyServeFlags(cmd *cobra.Command) {
	if cmd.Flags().Changed("host") {
		config.Server.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		config.Server.Port = servePort
	}
	if cmd.Flags().Changed("keycloak.host") {
		config.Keycloak.Host = keycloakHost
	}
	if cmd.Flags().Changed("keycloak.username") {
		config.Keycloak.Username = keycloakUsername
	}
	if cmd.Flags().Changed("keycloak.password") {
		config.Keycloak.Password = keycloakPassword
	}
}
