package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/clintrovert/recli/pkg/types"
)

const timeLayout = "2006-01-02 15:04:05"

// Printer writes user-facing console output
type Printer struct {
	out io.Writer
	now func() time.Time

	labelStyle   lipgloss.Style
	valueStyle   lipgloss.Style
	okStyle      lipgloss.Style
	warnStyle    lipgloss.Style
	errStyle     lipgloss.Style
	dimStyle     lipgloss.Style
	linkStyle    lipgloss.Style
	commitStyle  lipgloss.Style
	headingStyle lipgloss.Style
}

// NewPrinter creates a printer whose colors follow the capabilities of out
func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)

	return &Printer{
		out: out,
		now: time.Now,

		labelStyle:   r.NewStyle().Faint(true),
		valueStyle:   r.NewStyle().Bold(true),
		okStyle:      r.NewStyle().Foreground(lipgloss.Color("2")),
		warnStyle:    r.NewStyle().Foreground(lipgloss.Color("214")),
		errStyle:     r.NewStyle().Foreground(lipgloss.Color("196")),
		dimStyle:     r.NewStyle().Faint(true),
		linkStyle:    r.NewStyle().Foreground(lipgloss.Color("39")).Underline(true),
		commitStyle:  r.NewStyle().Foreground(lipgloss.Color("205")),
		headingStyle: r.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
	}
}

// Field prints a "label: value" line
func (p *Printer) Field(label, value string) {
	fmt.Fprintf(p.out, "%s %s\n", p.labelStyle.Render(label+":"), p.valueStyle.Render(value))
}

// Heading prints a section title
func (p *Printer) Heading(text string) {
	fmt.Fprintln(p.out, p.headingStyle.Render(text))
}

// Line prints plain text
func (p *Printer) Line(text string) {
	fmt.Fprintln(p.out, text)
}

// Success prints a confirmation line
func (p *Printer) Success(msg string) {
	fmt.Fprintln(p.out, p.okStyle.Render("✔ "+msg))
}

// Warn prints a notice that is not a failure
func (p *Printer) Warn(msg string) {
	fmt.Fprintln(p.out, p.warnStyle.Render("! "+msg))
}

// Error prints a failure and, when present, how to fix it
func (p *Printer) Error(err error, hint string) {
	fmt.Fprintln(p.out, p.errStyle.Render("✘ "+err.Error()))
	if hint != "" {
		fmt.Fprintln(p.out, p.dimStyle.Render("  "+hint))
	}
}

// Summary prints the facts a pull request run starts from
func (p *Printer) Summary(repo *types.RepoInfo, target types.MergeTarget) {
	p.Field("Repository", repo.OwnerName+"/"+repo.RepoName)
	p.Field("Source branch", target.SourceBranch)
	p.Field("Target branch", target.TargetBranch)
	fmt.Fprintf(p.out, "%s %s\n", p.labelStyle.Render("Latest commit time:"),
		p.commitStyle.Render(FormatCommitTime(repo.LatestCommitTime, p.now())))
	fmt.Fprintf(p.out, "%s %s\n", p.labelStyle.Render("Latest commit message:"),
		p.commitStyle.Render(repo.LatestCommitMessage))
}

// PullRequestFound prints the link of the open pull request being reused
func (p *Printer) PullRequestFound(pr types.PullRequest) {
	fmt.Fprintf(p.out, "%s %s\n", p.labelStyle.Render("Open pull request:"), p.linkStyle.Render(pr.HTMLURL))
}

// PullRequestCreated reports a newly opened pull request
func (p *Printer) PullRequestCreated(pr types.PullRequest) {
	p.Success(fmt.Sprintf("Pull request #%d created: %s", pr.Number, p.linkStyle.Render(pr.HTMLURL)))
}

// CreationDeclined notes that no pull request was opened
func (p *Printer) CreationDeclined(target types.MergeTarget) {
	p.Warn("Pull request creation cancelled")
}

// ManualMergeRequired points at a pull request into a protected branch
func (p *Printer) ManualMergeRequired(pr types.PullRequest) {
	p.Warn(fmt.Sprintf("Primary branches are merged by hand: %s", pr.HTMLURL))
}

// MergeDeclined notes that the pull request was left open
func (p *Printer) MergeDeclined(pr types.PullRequest) {
	p.Warn(fmt.Sprintf("Merge of pull request #%d cancelled", pr.Number))
}

// PullRequestMerged reports a completed merge
func (p *Printer) PullRequestMerged(pr types.PullRequest) {
	p.Success(fmt.Sprintf("Pull request #%d merged", pr.Number))
}

// FormatCommitTime renders t in local time followed by how long ago it was
func FormatCommitTime(t, now time.Time) string {
	return fmt.Sprintf("%s (%s)", t.Local().Format(timeLayout), humanize.RelTime(t, now, "ago", "from now"))
}
