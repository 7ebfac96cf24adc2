package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clintrovert/recli/internal/prompt"
	"github.com/clintrovert/recli/internal/scaffold"
)

var (
	errProjectNameRequired = errors.New("project name is required")
	errOverwriteDeclined   = errors.New("directory already exists, not overwritten")
)

func (a *app) createCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "create [projectName]",
		Aliases: []string{"c"},
		Short:   "Scaffold a project from a template",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var name string
			if len(args) == 1 {
				name = args[0]
			} else {
				var err error
				name, err = a.prompts.Input(ctx, "Project name:", false)
				if err != nil {
					return err
				}
			}
			name = strings.TrimSpace(name)
			if name == "" {
				return errProjectNameRequired
			}
			a.printer.Field("Project name", name)

			dest := filepath.Join(a.workDir, name)
			exists, err := scaffold.Exists(dest)
			if err != nil {
				return err
			}
			if exists {
				if !force {
					overwrite, err := a.prompts.Confirm(ctx, "Directory already exists, overwrite?")
					if err != nil {
						return err
					}
					if !overwrite {
						return errOverwriteDeclined
					}
				}
				a.printer.Warn("Removing existing directory " + dest)
				if err := os.RemoveAll(dest); err != nil {
					return fmt.Errorf("failed to remove %s: %w", dest, err)
				}
			}

			templates, err := a.catalog()
			if err != nil {
				return err
			}

			options := make([]prompt.Option, len(templates))
			for i, tpl := range templates {
				options[i] = prompt.Option{Name: tpl.Name, Description: tpl.Description}
			}
			idx, err := a.prompts.Select(ctx, "Choose a template", options)
			if err != nil {
				return err
			}

			if err := scaffold.NewScaffolder(a.errOut, a.logger).Create(ctx, dest, templates[idx]); err != nil {
				return err
			}

			a.printer.Success(name + " created")
			a.printer.Line("")
			a.printer.Line("  cd " + name)
			a.printer.Line("  npm i")
			a.printer.Line("  npm start")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing directory")

	return cmd
}

// catalog returns the configured templates, falling back to the built-in set
func (a *app) catalog() ([]scaffold.Template, error) {
	if len(a.cfg.Templates) == 0 {
		return a.templates, nil
	}

	templates, err := scaffold.ParseTemplates(a.cfg.Templates)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return a.templates, nil
	}
	return templates, nil
}
