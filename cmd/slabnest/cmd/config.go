package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/piwi3910/SlabNest/internal/model"
	"github.com/piwi3910/SlabNest/internal/project"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or reset the saved defaults",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved defaults as JSON",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		app, err := loadAppConfig()
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(app, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(c.OutOrStdout(), string(data))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	Run: func(c *cobra.Command, args []string) {
		fmt.Fprintln(c.OutOrStdout(), configPath)
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Overwrite the config file with the built-in defaults",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		if err := project.SaveAppConfig(configPath, model.DefaultAppConfig()); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Fprintf(c.OutOrStdout(), "Wrote defaults to %s\n", configPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configPathCmd, configResetCmd)
}
