// Package cmd provides the CLI commands for mapctl.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	storeDir string
	verbose  bool
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "mapctl",
	Short: "Mapping CLI - capture web text into your knowledge base",
	Long: `mapctl manages the local Mapping vault: sessions, integration
secrets, and manual captures.

Get started:
  mapctl init                Set a password and store your API keys
  mapctl session new NAME    Start a knowledge session
  mapctl capture "text"      Capture text into the active session

Examples:
  mapctl init
  mapctl session new "Research A"
  mapctl capture "The mitochondria is the powerhouse of the cell." --url https://example.com
  mapctl status`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.mapping/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store", "", "store directory (default ~/.mapping)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	viper.BindPFlag("store", rootCmd.PersistentFlags().Lookup("store"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".mapping")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("MAPPING")
	viper.AutomaticEnv()

	// Load config file if it exists.
	_ = viper.ReadInConfig()
}
