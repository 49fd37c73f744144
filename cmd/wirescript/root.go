package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:          "wirescript",
	Short:        "WireScript wireframe toolchain",
	Long:         "WireScript parses, validates, and formats .ws wireframe documents.",
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().Bool("no-includes", false, "Parse only, do not resolve include forms")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("no_includes", rootCmd.PersistentFlags().Lookup("no-includes"))
}

func initConfig() {
	viper.SetEnvPrefix("WIRESCRIPT")
	viper.AutomaticEnv()
}
