package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/piwi3910/SlabNest/internal/model"
	"github.com/piwi3910/SlabNest/internal/project"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var (
	// Global flags
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "slabnest",
	Short: "Nest irregular shapes onto a sheet",
	Long: `SlabNest places polygonal parts onto a rectangular sheet, searching
placement orders and rotations with a genetic algorithm to maximise material use.

Examples:
  slabnest run job.yaml --pdf layout.pdf          # Nest a job and draw it
  slabnest run --sheet 2440x1220 --shapes parts.csv
  slabnest compare job.yaml                       # Compare settings side by side
  slabnest config show                            # Print saved defaults`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	defer klog.Flush()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	fs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(fs)
	rootCmd.PersistentFlags().AddGoFlagSet(fs)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", project.DefaultConfigPath(),
		"application config file")
}

// loadAppConfig reads the saved defaults named by --config.
func loadAppConfig() (model.AppConfig, error) {
	app, err := project.LoadAppConfig(configPath)
	if err != nil {
		return model.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return app, nil
}
