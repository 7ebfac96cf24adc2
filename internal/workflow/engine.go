package workflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clintrovert/recli/internal/github"
	"github.com/clintrovert/recli/pkg/types"
)

// DefaultTargetBranch is merged into when no target is given
const DefaultTargetBranch = "beta"

// HostingClient is the subset of the hosting API the workflow drives
type HostingClient interface {
	BranchExists(ctx context.Context, owner, repo, branch string) (bool, error)
	ListOpenPullRequests(ctx context.Context, owner, repo string) ([]types.PullRequest, error)
	CreatePullRequest(ctx context.Context, owner, repo, title, head, base string) (*types.PullRequest, error)
	MergePullRequest(ctx context.Context, owner, repo string, number int) error
}

// Confirmer asks the user a yes/no question
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Reporter is told about every user-visible step of a run
type Reporter interface {
	PullRequestFound(pr types.PullRequest)
	PullRequestCreated(pr types.PullRequest)
	CreationDeclined(target types.MergeTarget)
	ManualMergeRequired(pr types.PullRequest)
	MergeDeclined(pr types.PullRequest)
	PullRequestMerged(pr types.PullRequest)
}

// Outcome is how a run that did not fail ended
type Outcome int

const (
	OutcomeMerged Outcome = iota
	OutcomeCreationDeclined
	OutcomeMergeDeclined
	OutcomeManualMergeRequired
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMerged:
		return "merged"
	case OutcomeCreationDeclined:
		return "creation declined"
	case OutcomeMergeDeclined:
		return "merge declined"
	case OutcomeManualMergeRequired:
		return "manual merge required"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result describes a completed run
type Result struct {
	Outcome     Outcome
	PullRequest *types.PullRequest
	Created     bool
}

// Engine runs the branch-to-branch pull request workflow
type Engine struct {
	client    HostingClient
	confirmer Confirmer
	reporter  Reporter
	logger    *zap.Logger
}

// NewEngine creates a new workflow engine
func NewEngine(client HostingClient, confirmer Confirmer, reporter Reporter, logger *zap.Logger) *Engine {
	return &Engine{
		client:    client,
		confirmer: confirmer,
		reporter:  reporter,
		logger:    logger,
	}
}

// ResolveTarget applies the defaults for an omitted target or source branch
func ResolveTarget(repo *types.RepoInfo, targetBranch, sourceBranch string) types.MergeTarget {
	if targetBranch == "" {
		targetBranch = DefaultTargetBranch
	}
	if sourceBranch == "" {
		sourceBranch = repo.Branch
	}
	return types.MergeTarget{
		SourceBranch: sourceBranch,
		TargetBranch: targetBranch,
	}
}

// Run validates both branches, finds or creates the pull request and merges
// it. Declined prompts and protected targets end the run without an error.
func (e *Engine) Run(ctx context.Context, repo *types.RepoInfo, target types.MergeTarget) (*Result, error) {
	if target.SourceBranch == target.TargetBranch {
		return nil, fmt.Errorf("%w: %s", ErrSameBranch, target.SourceBranch)
	}

	e.logger.Debug("starting pull request workflow",
		zap.String("owner", repo.OwnerName),
		zap.String("repo", repo.RepoName),
		zap.String("source", target.SourceBranch),
		zap.String("target", target.TargetBranch),
	)

	// Step 1: Both branches must exist
	for _, branch := range []string{target.SourceBranch, target.TargetBranch} {
		if err := e.validateBranch(ctx, repo, branch); err != nil {
			return nil, err
		}
	}

	// Step 2: Reuse an open pull request between the branches
	pr, err := e.findOpenPullRequest(ctx, repo, target)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	if pr != nil {
		e.reporter.PullRequestFound(*pr)
	} else {
		// Step 3: Create one after confirmation
		pr, err = e.createPullRequest(ctx, repo, target)
		if err != nil {
			return nil, err
		}
		if pr == nil {
			e.reporter.CreationDeclined(target)
			return &Result{Outcome: OutcomeCreationDeclined}, nil
		}
		result.Created = true
		e.reporter.PullRequestCreated(*pr)
	}
	result.PullRequest = pr

	// Step 4: Merge unless the target is protected
	if github.IsProtectedBranch(target.TargetBranch) {
		e.reporter.ManualMergeRequired(*pr)
		result.Outcome = OutcomeManualMergeRequired
		return result, nil
	}

	merged, err := e.mergePullRequest(ctx, repo, pr)
	if err != nil {
		return nil, err
	}
	if !merged {
		e.reporter.MergeDeclined(*pr)
		result.Outcome = OutcomeMergeDeclined
		return result, nil
	}

	e.reporter.PullRequestMerged(*pr)
	result.Outcome = OutcomeMerged
	return result, nil
}

func (e *Engine) validateBranch(ctx context.Context, repo *types.RepoInfo, branch string) error {
	exists, err := e.client.BranchExists(ctx, repo.OwnerName, repo.RepoName, branch)
	if err != nil {
		return &RemoteAPIError{Op: "check branch " + branch, Err: err}
	}
	if !exists {
		return &BranchNotFoundError{Branch: branch}
	}
	return nil
}

// findOpenPullRequest returns the first open pull request from source into
// target in API order, or nil
func (e *Engine) findOpenPullRequest(ctx context.Context, repo *types.RepoInfo, target types.MergeTarget) (*types.PullRequest, error) {
	prs, err := e.client.ListOpenPullRequests(ctx, repo.OwnerName, repo.RepoName)
	if err != nil {
		return nil, &RemoteAPIError{Op: "list open pull requests", Err: err}
	}

	for i := range prs {
		if prs[i].HeadRef == target.SourceBranch && prs[i].BaseRef == target.TargetBranch {
			return &prs[i], nil
		}
	}
	return nil, nil
}

// createPullRequest returns nil without error when the user declines
func (e *Engine) createPullRequest(ctx context.Context, repo *types.RepoInfo, target types.MergeTarget) (*types.PullRequest, error) {
	question := fmt.Sprintf("Merge %s into %s, create a pull request?", target.SourceBranch, target.TargetBranch)
	ok, err := e.confirmer.Confirm(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to read confirmation: %w", err)
	}
	if !ok {
		return nil, nil
	}

	title := github.GeneratePRTitle(target.SourceBranch, target.TargetBranch)
	pr, err := e.client.CreatePullRequest(ctx, repo.OwnerName, repo.RepoName, title, target.SourceBranch, target.TargetBranch)
	if err != nil {
		return nil, &RemoteAPIError{Op: "create pull request", Err: err}
	}
	return pr, nil
}

func (e *Engine) mergePullRequest(ctx context.Context, repo *types.RepoInfo, pr *types.PullRequest) (bool, error) {
	ok, err := e.confirmer.Confirm(ctx, fmt.Sprintf("Merge pull request #%d?", pr.Number))
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	if !ok {
		return false, nil
	}

	if err := e.client.MergePullRequest(ctx, repo.OwnerName, repo.RepoName, pr.Number); err != nil {
		return false, &RemoteAPIError{Op: fmt.Sprintf("merge pull request #%d", pr.Number), Err: err}
	}
	return true, nil
}
