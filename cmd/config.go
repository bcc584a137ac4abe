// file: cmd/config.go
// version: 1.0.0
// guid: 5a0c3e81-6d2f-4b7a-9c14-e8f2b6d07a39

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jdfalk/movie-recommender/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or write the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to a YAML file",
	Long: `Write the effective configuration (defaults, config file, environment
and flags merged) to $HOME/.movie-recommender.yaml or --path. The TMDB API
key is never written; keep it in the environment or a .env file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		if path == "" {
			path = config.ConfigFilePath()
		}
		force, _ := cmd.Flags().GetBool("force")
		if err := config.SaveConfigToFile(config.AppConfig, path, force); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := config.AppConfig.YAML()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprint(out, string(data))

		showSecrets, _ := cmd.Flags().GetBool("show-secrets")
		switch {
		case config.AppConfig.TMDBAPIKey == "":
			fmt.Fprintln(out, "# tmdb.api_key: (not set)")
		case showSecrets:
			fmt.Fprintf(out, "# tmdb.api_key: %s\n", config.AppConfig.TMDBAPIKey)
		default:
			fmt.Fprintln(out, "# tmdb.api_key: (set)")
		}
		if err := config.AppConfig.Validate(); err != nil {
			fmt.Fprintf(out, "# invalid: %v\n", err)
		}
		return nil
	},
}

func init() {
	configInitCmd.Flags().String("path", "", "file to write (default is $HOME/"+config.DefaultFileName+")")
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
	configShowCmd.Flags().Bool("show-secrets", false, "print the TMDB API key")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
