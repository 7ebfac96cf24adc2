package types

// PullRequestState is the hosting API state of a pull request
type PullRequestState string

const (
	PullRequestOpen   PullRequestState = "open"
	PullRequestClosed PullRequestState = "closed"
)

// PullRequest is a snapshot of a pull request as returned by the hosting API
type PullRequest struct {
	Number  int
	HTMLURL string
	BaseRef string
	HeadRef string
	State   PullRequestState
}
