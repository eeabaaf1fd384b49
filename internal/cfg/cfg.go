// Package cfg owns the command line surface and configuration loading.
// Settings are validated once here, before the poll loop starts; a bad
// config is the only error allowed to terminate the process.
package cfg

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "dfwatch",
	Short: "dfwatch polls Digital Foundry for new supporter videos and downloads them",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Flags().Lookup("help").Changed {
			return nil // Stop further execution if help is invoked
		}
		viper.Set("execute", true)
		return nil
	},
}

// init sets up root flags and binds them into Viper.
func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the TOML config file")
	rootCmd.PersistentFlags().Int("debug", 0, "Debug level (0-2)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

// Execute parses the command line.
func Execute() error {
	return rootCmd.Execute()
}

// ShouldRun reports whether the root command decided the daemon should
// start (false for e.g. --help).
func ShouldRun() bool {
	return viper.GetBool("execute")
}

// DebugLevel returns the --debug flag value.
func DebugLevel() int {
	return viper.GetInt("debug")
}

// ConfigFile returns the --config flag value.
func ConfigFile() string {
	return viper.GetString("config")
}
