package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clintrovert/recli/pkg/types"
)

type fakeHosting struct {
	branches map[string]bool
	open     []types.PullRequest
	created  *types.PullRequest

	branchErr error
	listErr   error
	createErr error
	mergeErr  error

	calls []string
}

func (f *fakeHosting) BranchExists(ctx context.Context, owner, repo, branch string) (bool, error) {
	f.calls = append(f.calls, "branch:"+branch)
	if f.branchErr != nil {
		return false, f.branchErr
	}
	return f.branches[branch], nil
}

func (f *fakeHosting) ListOpenPullRequests(ctx context.Context, owner, repo string) ([]types.PullRequest, error) {
	f.calls = append(f.calls, "list")
	return f.open, f.listErr
}

func (f *fakeHosting) CreatePullRequest(ctx context.Context, owner, repo, title, head, base string) (*types.PullRequest, error) {
	f.calls = append(f.calls, fmt.Sprintf("create:%s/%s:%s:%s:%s", owner, repo, title, head, base))
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func (f *fakeHosting) MergePullRequest(ctx context.Context, owner, repo string, number int) error {
	f.calls = append(f.calls, fmt.Sprintf("merge:%s/%s:%d", owner, repo, number))
	return f.mergeErr
}

func (f *fakeHosting) mutations() []string {
	var out []string
	for _, c := range f.calls {
		if strings.HasPrefix(c, "create:") || strings.HasPrefix(c, "merge:") {
			out = append(out, c)
		}
	}
	return out
}

type scriptedConfirmer struct {
	answers   []bool
	err       error
	questions []string
}

func (s *scriptedConfirmer) Confirm(ctx context.Context, question string) (bool, error) {
	s.questions = append(s.questions, question)
	if s.err != nil {
		return false, s.err
	}
	if len(s.answers) == 0 {
		return false, nil
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

type recordingReporter struct {
	events []string
}

func (r *recordingReporter) PullRequestFound(pr types.PullRequest) {
	r.events = append(r.events, "found:"+pr.HTMLURL)
}

func (r *recordingReporter) PullRequestCreated(pr types.PullRequest) {
	r.events = append(r.events, "created:"+pr.HTMLURL)
}

func (r *recordingReporter) CreationDeclined(target types.MergeTarget) {
	r.events = append(r.events, "creation-declined")
}

func (r *recordingReporter) ManualMergeRequired(pr types.PullRequest) {
	r.events = append(r.events, "manual:"+pr.HTMLURL)
}

func (r *recordingReporter) MergeDeclined(pr types.PullRequest) {
	r.events = append(r.events, "merge-declined")
}

func (r *recordingReporter) PullRequestMerged(pr types.PullRequest) {
	r.events = append(r.events, fmt.Sprintf("merged:%d", pr.Number))
}

var repo = &types.RepoInfo{OwnerName: "octo", RepoName: "app", Branch: "feature/x"}

func newEngine(h *fakeHosting, c *scriptedConfirmer) (*Engine, *recordingReporter) {
	r := &recordingReporter{}
	return NewEngine(h, c, r, zap.NewNop()), r
}

func pr(number int, head, base string) types.PullRequest {
	return types.PullRequest{
		Number:  number,
		HTMLURL: fmt.Sprintf("https://github.com/octo/app/pull/%d", number),
		HeadRef: head,
		BaseRef: base,
		State:   types.PullRequestOpen,
	}
}

func TestResolveTarget(t *testing.T) {
	assert.Equal(t, types.MergeTarget{SourceBranch: "feature/x", TargetBranch: "beta"}, ResolveTarget(repo, "", ""))
	assert.Equal(t, types.MergeTarget{SourceBranch: "hotfix", TargetBranch: "release"}, ResolveTarget(repo, "release", "hotfix"))
}

func TestRunCreatesThenMerges(t *testing.T) {
	created := pr(17, "feature/x", "beta")
	h := &fakeHosting{
		branches: map[string]bool{"feature/x": true, "beta": true},
		open:     []types.PullRequest{pr(3, "feature/y", "beta")},
		created:  &created,
	}
	c := &scriptedConfirmer{answers: []bool{true, true}}
	engine, reporter := newEngine(h, c)

	result, err := engine.Run(t.Context(), repo, types.MergeTarget{SourceBranch: "feature/x", TargetBranch: "beta"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeMerged, result.Outcome)
	assert.True(t, result.Created)
	assert.Equal(t, 17, result.PullRequest.Number)
	assert.Equal(t, []string{
		"branch:feature/x",
		"branch:beta",
		"list",
		"create:octo/app:Merge feature/x into beta:feature/x:beta",
		"merge:octo/app:17",
	}, h.calls)
	assert.Equal(t, []string{
		"Merge feature/x into beta, create a pull request?",
		"Merge pull request #17?",
	}, c.questions)
	assert.Equal(t, []string{"created:https://github.com/octo/app/pull/17", "merged:17"}, reporter.events)
}

func TestRunMissingBranchStopsBeforePullRequestCalls(t *testing.T) {
	tests := []struct {
		name     string
		branches map[string]bool
		missing  string
	}{
		{name: "source missing", branches: map[string]bool{"beta": true}, missing: "feature/x"},
		{name: "target missing", branches: map[string]bool{"feature/x": true}, missing: "beta"},
		{name: "both missing", branches: map[string]bool{}, missing: "feature/x"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := &fakeHosting{branches: tc.branches, open: []types.PullRequest{pr(1, "feature/x", "beta")}}
			c := &scriptedConfirmer{answers: []bool{true, true}}
			engine, _ := newEngine(h, c)

			_, err := engine.Run(t.Context(), repo, types.MergeTarget{SourceBranch: "feature/x", TargetBranch: "beta"})

			var notFound *BranchNotFoundError
			require.ErrorAs(t, err, &notFound)
			assert.Equal(t, tc.missing, notFound.Branch)
			assert.NotContains(t, h.calls, "list")
			assert.Empty(t, h.mutations())
			assert.Empty(t, c.questions)
		})
	}
}

func TestRunExistingPullRequestIsNeverRecreated(t *testing.T) {
	h := &fakeHosting{
		branches: map[string]bool{"feature/x": true, "beta": true},
		open: []types.PullRequest{
			pr(2, "feature/x", "main"),
			pr(5, "feature/x", "beta"),
			pr(9, "feature/x", "beta"),
		},
	}
	c := &scriptedConfirmer{answers: []bool{true}}
	engine, reporter := newEngine(h, c)

	result, err := engine.Run(t.Context(), repo, types.MergeTarget{SourceBranch: "feature/x", TargetBranch: "beta"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeMerged, result.Outcome)
	assert.False(t, result.Created)
	assert.Equal(t, 5, result.PullRequest.Number, "first match in API order wins")
	assert.Equal(t, []string{"merge:octo/app:5"}, h.mutations())
	assert.Equal(t, []string{"found:https://github.com/octo/app/pull/5", "merged:5"}, reporter.events)
}

func TestRunCreationDeclinedMutatesNothing(t *testing.T) {
	h := &fakeHosting{branches: map[string]bool{"feature/x": true, "beta": true}}
	c := &scriptedConfirmer{answers: []bool{false}}
	engine, reporter := newEngine(h, c)

	result, err := engine.Run(t.Context(), repo, types.MergeTarget{SourceBranch: "feature/x", TargetBranch: "beta"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeCreationDeclined, result.Outcome)
	assert.Nil(t, result.PullRequest)
	assert.Empty(t, h.mutations())
	assert.Equal(t, []string{"creation-declined"}, reporter.events)
}

func TestRunMergeDeclinedLeavesPullRequestOpen(t *testing.T) {
	created := pr(8, "feature/x", "beta")
	h := &fakeHosting{branches: map[string]bool{"feature/x": true, "beta": true}, created: &created}
	c := &scriptedConfirmer{answers: []bool{true, false}}
	engine, _ := newEngine(h, c)

	result, err := engine.Run(t.Context(), repo, types.MergeTarget{SourceBranch: "feature/x", TargetBranch: "beta"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeMergeDeclined, result.Outcome)
	assert.True(t, result.Created)
	assert.Equal(t, []string{"create:octo/app:Merge feature/x into beta:feature/x:beta"}, h.mutations())
}

func TestRunProtectedTargetIsNeverMerged(t *testing.T) {
	for _, target := range []string{"main", "master"} {
		t.Run(target, func(t *testing.T) {
			t.Run("existing pull request", func(t *testing.T) {
				h := &fakeHosting{
					branches: map[string]bool{"feature/x": true, target: true},
					open:     []types.PullRequest{pr(4, "feature/x", target)},
				}
				c := &scriptedConfirmer{answers: []bool{true, true}}
				engine, reporter := newEngine(h, c)

				result, err := engine.Run(t.Context(), repo, types.MergeTarget{SourceBranch: "feature/x", TargetBranch: target})
				require.NoError(t, err)

				assert.Equal(t, OutcomeManualMergeRequired, result.Outcome)
				assert.Empty(t, h.mutations())
				assert.Empty(t, c.questions)
				assert.Equal(t, []string{
					"found:https://github.com/octo/app/pull/4",
					"manual:https://github.com/octo/app/pull/4",
				}, reporter.events)
			})

			t.Run("created pull request", func(t *testing.T) {
				created := pr(6, "feature/x", target)
				h := &fakeHosting{branches: map[string]bool{"feature/x": true, target: true}, created: &created}
				c := &scriptedConfirmer{answers: []bool{true, true}}
				engine, _ := newEngine(h, c)

				result, err := engine.Run(t.Context(), repo, types.MergeTarget{SourceBranch: "feature/x", TargetBranch: target})
				require.NoError(t, err)

				assert.Equal(t, OutcomeManualMergeRequired, result.Outcome)
				assert.Len(t, h.mutations(), 1)
				assert.NotContains(t, h.calls, "merge:octo/app:6")
				assert.Len(t, c.questions, 1)
			})
		})
	}
}

func TestRunTwiceDecliningHasNoSideEffects(t *testing.T) {
	h := &fakeHosting{branches: map[string]bool{"feature/x": true, "beta": true}}
	c := &scriptedConfirmer{answers: []bool{false, false}}
	engine, _ := newEngine(h, c)

	for i := 0; i < 2; i++ {
		result, err := engine.Run(t.Context(), repo, types.MergeTarget{SourceBranch: "feature/x", TargetBranch: "beta"})
		require.NoError(t, err)
		assert.Equal(t, OutcomeCreationDeclined, result.Outcome)
	}
	assert.Empty(t, h.mutations())
}

func TestRunSameBranchRejected(t *testing.T) {
	h := &fakeHosting{}
	engine, _ := newEngine(h, &scriptedConfirmer{})

	_, err := engine.Run(t.Context(), repo, types.MergeTarget{SourceBranch: "beta", TargetBranch: "beta"})
	assert.ErrorIs(t, err, ErrSameBranch)
	assert.Empty(t, h.calls)
}

func TestRunRemoteFailures(t *testing.T) {
	boom := errors.New("boom")
	target := types.MergeTarget{SourceBranch: "feature/x", TargetBranch: "beta"}
	created := pr(11, "feature/x", "beta")

	tests := []struct {
		name   string
		host   *fakeHosting
		wantOp string
	}{
		{
			name:   "branch lookup",
			host:   &fakeHosting{branchErr: boom},
			wantOp: "check branch feature/x",
		},
		{
			name:   "list",
			host:   &fakeHosting{branches: map[string]bool{"feature/x": true, "beta": true}, listErr: boom},
			wantOp: "list open pull requests",
		},
		{
			name:   "create",
			host:   &fakeHosting{branches: map[string]bool{"feature/x": true, "beta": true}, createErr: boom},
			wantOp: "create pull request",
		},
		{
			name:   "merge",
			host:   &fakeHosting{branches: map[string]bool{"feature/x": true, "beta": true}, created: &created, mergeErr: boom},
			wantOp: "merge pull request #11",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			engine, _ := newEngine(tc.host, &scriptedConfirmer{answers: []bool{true, true}})

			_, err := engine.Run(t.Context(), repo, target)

			var apiErr *RemoteAPIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.wantOp, apiErr.Op)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestRunConfirmationFailure(t *testing.T) {
	h := &fakeHosting{branches: map[string]bool{"feature/x": true, "beta": true}}
	engine, _ := newEngine(h, &scriptedConfirmer{err: errors.New("no tty")})

	_, err := engine.Run(t.Context(), repo, types.MergeTarget{SourceBranch: "feature/x", TargetBranch: "beta"})
	require.Error(t, err)
	assert.Empty(t, h.mutations())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "merged", OutcomeMerged.String())
	assert.Equal(t, "manual merge required", OutcomeManualMergeRequired.String())
	assert.Equal(t, "outcome(42)", Outcome(42).String())
}
