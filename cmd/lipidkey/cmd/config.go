package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/LipidKey/internal/config"
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Manage the LipidKey configuration file",
	Annotations: map[string]string{"skipSetup": "true"},
}

var configInitCmd = &cobra.Command{
	Use:         "init [path]",
	Short:       "Write a commented sample configuration",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{"skipSetup": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			var err error
			if path, err = config.DefaultConfigPath(); err != nil {
				return err
			}
		}
		if err := config.CreateSample(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
}
