package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/clintrovert/recli/internal/auth"
	"github.com/clintrovert/recli/internal/config"
	"github.com/clintrovert/recli/internal/github"
	"github.com/clintrovert/recli/internal/gitrepo"
	"github.com/clintrovert/recli/internal/prompt"
	"github.com/clintrovert/recli/internal/scaffold"
	"github.com/clintrovert/recli/internal/ui"
	"github.com/clintrovert/recli/internal/workflow"
)

// Version is set at build time
var Version = "dev"

// Exit codes
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitConfig   = 2
	ExitNotFound = 3
	ExitRemote   = 4
)

const schemaFetchTimeout = 30 * time.Second

type prompter interface {
	Confirm(ctx context.Context, question string) (bool, error)
	Input(ctx context.Context, question string, secret bool) (string, error)
	Select(ctx context.Context, title string, options []prompt.Option) (int, error)
}

type hostingClient interface {
	workflow.HostingClient
	auth.IdentityProber
}

type app struct {
	out    io.Writer
	errOut io.Writer

	printer    *ui.Printer
	errPrinter *ui.Printer
	prompts    prompter

	workDir    string
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger

	newHostingClient func(cfg config.Config, logger *zap.Logger) (hostingClient, error)
	templates        []scaffold.Template
	httpClient       *http.Client
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{
		out:        out,
		errOut:     errOut,
		printer:    ui.NewPrinter(out),
		errPrinter: ui.NewPrinter(errOut),
		prompts:    prompt.NewTerminal(in, out),
		logger:     zap.NewNop(),
		newHostingClient: func(cfg config.Config, logger *zap.Logger) (hostingClient, error) {
			return github.NewClient(cfg.GitHubToken, cfg.GitHubHost, logger)
		},
		templates:  scaffold.Templates,
		httpClient: &http.Client{Timeout: schemaFetchTimeout},
	}
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	return newApp(in, out, errOut).execute(ctx, args)
}

func (a *app) execute(ctx context.Context, args []string) int {
	root := a.rootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err != nil {
		a.logger.Debug("command failed", zap.Error(err))
		a.errPrinter.Error(err, hintFor(err))
	}
	_ = a.logger.Sync()

	return exitCode(err)
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "re",
		Short: "re - project scaffolding, API client preparation and pull request automation",
		Long: `re is a developer workflow CLI.

Commands:
  re create        Scaffold a project from a template
  re pull-request  Create and merge a pull request from the current branch
  re config        Store the GitHub token
  re api           Prepare an OpenAPI schema for client generation`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "enable debug logging")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path of the configuration file")

	root.AddCommand(
		a.pullRequestCommand(),
		a.configCommand(),
		a.createCommand(),
		a.apiCommand(),
	)

	return root
}

func (a *app) setup() error {
	if a.configPath == "" {
		path, err := config.DefaultPath()
		if err != nil {
			return err
		}
		a.configPath = path
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := newLogger(cfg.LogLevel, a.verbose, a.errOut)
	if err != nil {
		return err
	}
	a.logger = logger

	if a.workDir == "" {
		dir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		a.workDir = dir
	}

	return nil
}

func newLogger(level string, verbose bool, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(w), lvl)

	return zap.New(core), nil
}

func exitCode(err error) int {
	var (
		authErr     *auth.Error
		notFoundErr *workflow.BranchNotFoundError
		apiErr      *workflow.RemoteAPIError
	)

	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &authErr), errors.Is(err, config.ErrTokenMissing):
		return ExitConfig
	case errors.As(err, &notFoundErr),
		errors.Is(err, gitrepo.ErrNotRepository),
		errors.Is(err, gitrepo.ErrNoRemote),
		errors.Is(err, gitrepo.ErrNoCommits),
		errors.Is(err, gitrepo.ErrRemoteURLUnparseable):
		return ExitNotFound
	case errors.As(err, &apiErr):
		return ExitRemote
	default:
		return ExitFailure
	}
}

func hintFor(err error) string {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		return authErr.Hint
	}
	return ""
}
