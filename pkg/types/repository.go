package types

import (
	"time"
)

// RepoInfo contains facts about the local repository, derived once per run
type RepoInfo struct {
	Branch              string
	RepoName            string
	OwnerName           string
	LatestCommitMessage string
	LatestCommitTime    time.Time
	RemoteURL           string
}

// MergeTarget is the source/target branch pair a pull request run operates on
type MergeTarget struct {
	SourceBranch string
	TargetBranch string
}
