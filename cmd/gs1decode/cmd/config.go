package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/MeKo-Tech/gs1decode/internal/config"
	"github.com/spf13/cobra"
)

// configCmd represents the config command.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration or write a default config file",
	Long: `Print the configuration resolved from defaults, the config file,
GS1DECODE_* environment variables and global flags as YAML.

With --init, write a configuration file containing the defaults instead.

Examples:
  gs1decode config
  gs1decode config --init gs1decode.yaml
  GS1DECODE_SERVER_PORT=9090 gs1decode config`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		initFile, _ := cmd.Flags().GetString("init")
		if cmd.Flags().Changed("init") {
			if initFile == "" {
				initFile = config.ConfigFileName + ".yaml"
			}
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(initFile); err == nil && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", initFile)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to check config file: %w", err)
			}
			if err := config.GenerateDefaultConfigFile(initFile); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", initFile)
			return nil
		}

		cfg := GetConfig()
		data, err := config.MarshalYAML(cfg)
		if err != nil {
			return err
		}

		if info, _ := cmd.Flags().GetBool("info"); info {
			GetConfigLoader().PrintConfigInfo(cmd.ErrOrStderr())
		}
		_, _ = cmd.OutOrStdout().Write(data)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().String("init", "", "write a default configuration file (default gs1decode.yaml)")
	configCmd.Flags().Lookup("init").NoOptDefVal = config.ConfigFileName + ".yaml"
	configCmd.Flags().Bool("force", false, "overwrite an existing file with --init")
	configCmd.Flags().Bool("info", false, "print the config file used and the search paths to stderr")
}
