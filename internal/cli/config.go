package cli

import (
	"github.com/spf13/cobra"

	"github.com/clintrovert/recli/internal/config"
	"github.com/clintrovert/recli/internal/github"
)

func (a *app) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Store the GitHub token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.printer.Field("Create a token at", github.TokenSettingsURL(a.cfg.GitHubHost))

			token, err := a.prompts.Input(cmd.Context(), "GitHub token:", true)
			if err != nil {
				return err
			}
			if token == "" {
				a.printer.Warn("No token entered, nothing saved")
				return nil
			}

			if err := config.Save(a.configPath, map[string]string{config.TokenKey: token}); err != nil {
				return err
			}

			a.printer.Success("Configuration saved to " + a.configPath)
			return nil
		},
	}
}
