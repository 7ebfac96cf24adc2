package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clintrovert/recli/internal/auth"
	"github.com/clintrovert/recli/internal/gitrepo"
	"github.com/clintrovert/recli/internal/workflow"
)

func (a *app) pullRequestCommand() *cobra.Command {
	var sourceBranch string

	cmd := &cobra.Command{
		Use:     "pull-request [targetBranch]",
		Aliases: []string{"pr"},
		Short:   "Create and merge a pull request, current branch into " + workflow.DefaultTargetBranch + " by default",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var targetBranch string
			if len(args) == 1 {
				targetBranch = args[0]
			}
			return a.runPullRequest(cmd, targetBranch, sourceBranch)
		},
	}

	cmd.Flags().StringVarP(&sourceBranch, "branch", "b", "", "source branch (defaults to the current branch)")

	return cmd
}

func (a *app) runPullRequest(cmd *cobra.Command, targetBranch, sourceBranch string) error {
	ctx := cmd.Context()

	client, err := a.newHostingClient(a.cfg, a.logger)
	if err != nil {
		return err
	}

	if err := auth.NewGate(a.cfg, client, a.logger).Validate(ctx); err != nil {
		return err
	}

	repo, err := gitrepo.NewInspector(a.workDir, a.cfg.GitHubHost, a.logger).Inspect()
	if err != nil {
		return err
	}

	target := workflow.ResolveTarget(repo, targetBranch, sourceBranch)
	a.printer.Summary(repo, target)

	engine := workflow.NewEngine(client, a.prompts, a.printer, a.logger)
	result, err := engine.Run(ctx, repo, target)
	if err != nil {
		return err
	}

	a.logger.Debug("pull request workflow finished",
		zap.String("outcome", result.Outcome.String()),
		zap.Bool("created", result.Created),
	)

	return nil
}
