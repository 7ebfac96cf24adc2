package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clintrovert/recli/internal/openapi"
)

var errSchemaURLRequired = errors.New("usage: re api <url> [options], url is required")

func (a *app) apiCommand() *cobra.Command {
	var (
		namespace string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "api <url>",
		Short: "Prepare an OpenAPI schema for client generation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
				return errSchemaURLRequired
			}

			loader := openapi.NewLoader(a.httpClient, a.logger)
			schema, err := loader.Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			schema = loader.Prepare(schema)

			if err := openapi.Write(output, schema); err != nil {
				return err
			}

			a.printer.Field("Namespace", namespace)
			a.printer.Field("Schema", output)
			for _, c := range loader.Controllers(schema) {
				a.printer.Heading(c.Name)
				for _, op := range c.Operations {
					a.printer.Line("  " + op)
				}
			}
			a.printer.Success(fmt.Sprintf("Schema written to %s", output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&namespace, "namespace", "n", openapi.DefaultNamespace, "API namespace")
	cmd.Flags().StringVarP(&output, "output", "o", "openapi.json", "file the prepared schema is written to")

	return cmd
}
