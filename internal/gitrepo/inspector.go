package gitrepo

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"

	"github.com/clintrovert/recli/pkg/types"
)

const (
	remoteName   = "origin"
	detachedHead = "HEAD"
)

var (
	// ErrNotRepository is returned when the directory is not inside a git repository
	ErrNotRepository = errors.New("not inside a git repository")
	// ErrNoRemote is returned when the repository has no origin remote
	ErrNoRemote = errors.New("no origin remote configured")
	// ErrNoCommits is returned when HEAD does not point at a commit yet
	ErrNoCommits = errors.New("repository has no commits")
	// ErrRemoteURLUnparseable is returned when the origin URL does not name host/owner/repo
	ErrRemoteURLUnparseable = errors.New("remote url does not match <host>[:/]<owner>/<name>")
)

// Inspector derives repository facts from local git state
type Inspector struct {
	dir    string
	host   string
	logger *zap.Logger
}

// NewInspector creates an inspector for the repository containing dir whose
// origin is expected on host
func NewInspector(dir, host string, logger *zap.Logger) *Inspector {
	return &Inspector{
		dir:    dir,
		host:   host,
		logger: logger,
	}
}

// Inspect reads the current branch, latest commit and origin remote
func (i *Inspector) Inspect() (*types.RepoInfo, error) {
	r, err := git.PlainOpenWithOptions(i.dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, i.dir)
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	head, err := r.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, ErrNoCommits
		}
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	branch := detachedHead
	if head.Name().IsBranch() {
		branch = head.Name().Short()
	}

	commit, err := r.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to read latest commit: %w", err)
	}

	remote, err := r.Remote(remoteName)
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return nil, ErrNoRemote
		}
		return nil, fmt.Errorf("failed to get remote: %w", err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return nil, ErrNoRemote
	}
	remoteURL := urls[0]

	owner, name, err := ParseRemoteURL(i.host, remoteURL)
	if err != nil {
		return nil, err
	}

	info := &types.RepoInfo{
		Branch:              branch,
		RepoName:            name,
		OwnerName:           owner,
		LatestCommitMessage: strings.TrimSpace(commit.Message),
		LatestCommitTime:    commit.Committer.When,
		RemoteURL:           remoteURL,
	}

	i.logger.Debug("inspected repository",
		zap.String("owner", info.OwnerName),
		zap.String("repo", info.RepoName),
		zap.String("branch", info.Branch),
		zap.String("remote_url", info.RemoteURL),
	)

	return info, nil
}

// ParseRemoteURL extracts owner and repository name from an https or scp-style
// remote URL on host. The host must start the URL or follow a slash or user@,
// and may carry a port.
func ParseRemoteURL(host, remoteURL string) (string, string, error) {
	pattern := regexp.MustCompile(`(?:^|[/@])(?i:` + regexp.QuoteMeta(host) + `)(?::\d+)?[:/]([^/]+)/([^/]+?)(?:\.git)?/?$`)

	match := pattern.FindStringSubmatch(strings.TrimSpace(remoteURL))
	if match == nil {
		return "", "", fmt.Errorf("%w: %q", ErrRemoteURLUnparseable, remoteURL)
	}
	return match[1], match[2], nil
}
