package cmd

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "jsbundle",
	Short: "Bundle ECMAScript modules into self-contained scripts",
	Long: `jsbundle follows the import/export graph from one or more entry
scripts and emits self-contained output files with every module's
top-level declarations lifted into a single scope and renamed to avoid
collisions.`,
}

// Execute adds all child commands and runs the root command. Called once
// from main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./jsbundle.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose logging output")
	viper.BindPFlag("configFile", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile := viper.GetString("configFile"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("jsbundle")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	viper.AutomaticEnv()
	if viper.GetBool("verbose") {
		pterm.EnableDebugMessages()
	}
	if err := viper.ReadInConfig(); err == nil {
		pterm.Debug.Println("using config file:", viper.ConfigFileUsed())
	}
}
