package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"
)

// Template is a project skeleton hosted in a git repository
type Template struct {
	Name        string
	Description string
	URL         string
	Branch      string
}

// Templates is the built-in catalog offered by `re create` when RE_TEMPLATES is unset
var Templates = []Template{
	{
		Name:        "react-admin",
		Description: "React + Umi Max admin dashboard",
		URL:         "https://github.com/clintrovert/re-template-admin.git",
		Branch:      "main",
	},
	{
		Name:        "react-h5",
		Description: "React mobile H5 application",
		URL:         "https://github.com/clintrovert/re-template-h5.git",
		Branch:      "main",
	},
	{
		Name:        "node-lib",
		Description: "TypeScript library with tsup and vitest",
		URL:         "https://github.com/clintrovert/re-template-lib.git",
		Branch:      "main",
	},
}

// ErrInvalidTemplate is returned for a catalog entry that is not name=url[#branch]
var ErrInvalidTemplate = errors.New("invalid template entry")

// ParseTemplates builds a catalog from name=url[#branch] entries. Blank entries
// are skipped.
func ParseTemplates(entries []string) ([]Template, error) {
	var templates []Template
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, rawURL, ok := strings.Cut(entry, "=")
		name, rawURL = strings.TrimSpace(name), strings.TrimSpace(rawURL)
		if !ok || name == "" || rawURL == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTemplate, entry)
		}

		url, branch, _ := strings.Cut(rawURL, "#")
		templates = append(templates, Template{
			Name:        name,
			Description: url,
			URL:         url,
			Branch:      branch,
		})
	}
	return templates, nil
}

// Scaffolder materialises templates on disk
type Scaffolder struct {
	logger   *zap.Logger
	depth    int
	progress io.Writer
}

// NewScaffolder creates a scaffolder that writes clone progress to progress
func NewScaffolder(progress io.Writer, logger *zap.Logger) *Scaffolder {
	return &Scaffolder{
		logger:   logger,
		depth:    1,
		progress: progress,
	}
}

// Exists reports whether dest is already present
func Exists(dest string) (bool, error) {
	_, err := os.Stat(dest)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", dest, err)
}

// Create clones tpl into dest and strips the template's history
func (s *Scaffolder) Create(ctx context.Context, dest string, tpl Template) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	opts := &git.CloneOptions{
		URL:          tpl.URL,
		Depth:        s.depth,
		SingleBranch: true,
		Progress:     s.progress,
	}
	if tpl.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(tpl.Branch)
	}

	if _, err := git.PlainCloneContext(ctx, dest, false, opts); err != nil {
		os.RemoveAll(dest)
		return fmt.Errorf("failed to clone template %s: %w", tpl.Name, err)
	}

	if err := os.RemoveAll(filepath.Join(dest, git.GitDirName)); err != nil {
		return fmt.Errorf("failed to remove template history: %w", err)
	}

	s.logger.Info("created project",
		zap.String("template", tpl.Name),
		zap.String("path", dest),
	)

	return nil
}
