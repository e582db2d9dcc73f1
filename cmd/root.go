package cmd

import (
	"fmt"
	"log/slog"
	"os"

	kcbridge "kcbridge/internal"

	"github.com/davidallendj/go-utils/pathx"
	"github.com/spf13/cobra"
)

var (
	confPath = ""
	verbose  = false
	config   kcbridge.Config
)
var rootCmd = &cobra.Command{
	Use:   "kcbridge",
	Short: "Glue services bridging Keycloak with Hasura actions and remote schemas",
	Run: func(cmd *cobra.Command, args []string) {

	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start CLI: %s", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVarP(&confPath, "config", "c", "", "set the config path")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose output")
}

func initConfig() {
	// load config if found, otherwise fall back to env-derived defaults
	if confPath != "" {
		exists, err := pathx.PathExists(confPath)
		if err != nil {
			fmt.Printf("failed to load config\n")
			os.Exit(1)
		} else if exists {
			config = kcbridge.LoadConfig(confPath)
		} else {
			config = kcbridge.NewConfig()
		}
	} else {
		config = kcbridge.NewConfig()
	}
	if verbose {
		config.Options.Verbose = true
	}

	level := slog.LevelInfo
	if config.Options.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
