// Command gosocial is a terminal client for the goSocial API. The session persists
// between invocations in the configured storage backend.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	goSocial "github.com/MrEthical07/goSocial"
	"github.com/MrEthical07/goSocial/metrics/export/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type app struct {
	// Global flags
	verbose     bool
	configPath  string
	envFiles    []string
	showMetrics bool

	logger *zap.Logger
	config goSocial.Config
	client *goSocial.Client
	stdin  *bufio.Reader
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "gosocial",
		Short: "Read and write goSocial posts from the terminal",
		Long: `gosocial talks to a goSocial GraphQL API.

Log in once and the credential is kept in local storage until it expires or you
log out. Configuration comes from --config (YAML), then .env files, then
GOSOCIAL_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a YAML config file")
	root.PersistentFlags().StringSliceVar(&a.envFiles, "env-file", nil, "Dotenv files to load (default .env if present)")
	root.PersistentFlags().BoolVar(&a.showMetrics, "metrics", false, "Print client metrics to stderr on exit")

	root.AddCommand(
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.postsCmd(),
		a.postCmd(),
		a.publishCmd(),
		a.commentCmd(),
		a.likeCmd(),
		a.deleteCmd(),
	)
	return root
}

func (a *app) setup() error {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if a.verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	cfg := goSocial.DefaultConfig()
	if a.configPath != "" {
		if cfg, err = goSocial.LoadConfigFile(a.configPath, cfg); err != nil {
			return err
		}
	}
	if cfg, err = goSocial.LoadConfigFromEnv(cfg, a.envFiles...); err != nil {
		return err
	}
	for _, w := range cfg.Lint() {
		a.logger.Debug("config warning", zap.String("code", w.Code), zap.String("message", w.Message))
	}
	a.config = cfg
	return nil
}

// session builds the client on first use so commands that fail argument
// validation never touch storage.
func (a *app) session(ctx context.Context) (*goSocial.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	c, err := goSocial.New().
		WithConfig(a.config).
		WithLogger(a.logger).
		WithAuditSink(goSocial.NewLoggerSink(a.logger)).
		Build(ctx)
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

func (a *app) teardown(stderr io.Writer) error {
	var err error
	if a.client != nil {
		if a.showMetrics {
			fmt.Fprint(stderr, prometheus.NewPrometheusExporter(a.client).Render())
		}
		err = a.client.Close()
		a.client = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return err
}

// readSecret returns flagValue or, when it is empty, the next line of stdin.
func (a *app) readSecret(cmd *cobra.Command, flagValue, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if a.stdin == nil {
		a.stdin = bufio.NewReader(cmd.InOrStdin())
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := a.stdin.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("a password is required")
	}
	return line, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
