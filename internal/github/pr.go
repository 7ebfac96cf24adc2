package github

import "fmt"

// protectedBranches are never merged programmatically
var protectedBranches = map[string]struct{}{
	"main":   {},
	"master": {},
}

// GeneratePRTitle generates the title of a branch-to-branch pull request
func GeneratePRTitle(sourceBranch, targetBranch string) string {
	return fmt.Sprintf("Merge %s into %s", sourceBranch, targetBranch)
}

// IsProtectedBranch reports whether branch is a primary branch that must be
// merged by hand
func IsProtectedBranch(branch string) bool {
	_, ok := protectedBranches[branch]
	return ok
}

// TokenSettingsURL returns the page where a personal access token can be created
func TokenSettingsURL(host string) string {
	if host == "" {
		host = PublicHost
	}
	return "https://" + host + "/settings/tokens"
}
