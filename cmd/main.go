package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glefebvre/moviesearch/internal/config"
	"github.com/glefebvre/moviesearch/internal/logger"
)

const version = "v0.1.0"

var rootCmd = &cobra.Command{
	Use:   "moviesearch",
	Short: "Moviesearch searches OMDb and keeps a list of favourite movies",
	Long: `Moviesearch queries the OMDb catalog by title or IMDb id, shows movie
details with poster fallbacks, and keeps a persistent list of favourite movies.

Run "moviesearch serve" to expose the same state over an HTTP API.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of Moviesearch",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Moviesearch %s\n", version)
	},
}

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./config.yml)")
	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	// Skip config loading for version command
	if len(os.Args) > 1 && os.Args[1] == "version" {
		return
	}

	if err := config.LoadFile(configFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Get()
	logger.InitializeLoggers(cfg.GetAppLogLevel(), cfg.GetStorageLogLevel(), logger.FileConfig{
		Path:       cfg.Logging.File.Path,
		MaxSizeMB:  cfg.Logging.File.MaxSizeMB,
		MaxBackups: cfg.Logging.File.MaxBackups,
		MaxAgeDays: cfg.Logging.File.MaxAgeDays,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
