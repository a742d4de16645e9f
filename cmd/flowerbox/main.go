package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/unbound-force/flowerbox/internal/config"
	"github.com/unbound-force/flowerbox/internal/flowerbox"
	"github.com/unbound-force/flowerbox/internal/report"
	"github.com/unbound-force/flowerbox/internal/timebox"
)

// logger is the application-wide structured logger (writes to stderr).
var logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: false,
})

// Set by build flags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	root := &cobra.Command{
		Use:   "flowerbox",
		Short: "Flowerbox — print messages in asterisk boxes and time commands",
		Long: `Flowerbox prints lines of text inside an asterisk border and
times commands, announcing their start and end in such boxes
together with the elapsed wall clock time.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(charmlog.DebugLevel)
			}
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "",
		"path to config file (default: ./"+config.FileName+" if present)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")

	root.AddCommand(newBoxCmd(&configPath))
	root.AddCommand(newRunCmd(&configPath))
	root.AddCommand(newSchemaCmd())

	return root
}

// outputFlags holds the flags shared by box and run that override
// config file values.
type outputFlags struct {
	end    string
	stderr bool
	flush  bool
	color  bool
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.end, "end", "\\n",
		"terminator written after each row (escape sequences allowed)")
	cmd.Flags().BoolVar(&f.stderr, "stderr", false,
		"write boxes to stderr instead of stdout")
	cmd.Flags().BoolVar(&f.flush, "flush", false,
		"flush the output after every row")
	cmd.Flags().BoolVar(&f.color, "color", false,
		"color the box borders when writing to a terminal")
}

// apply copies the flags the user set explicitly into cfg.
func (f *outputFlags) apply(changed func(string) bool, cfg *config.Config) {
	if changed("end") {
		cfg.End = unescape(f.end)
	}
	if changed("stderr") {
		cfg.Output = "stdout"
		if f.stderr {
			cfg.Output = "stderr"
		}
	}
	if changed("flush") {
		cfg.Flush = f.flush
	}
	if changed("color") {
		cfg.Color = f.color
	}
}

// unescape interprets Go escape sequences such as \n and \t, returning
// s unchanged when it is not a valid quoted string body.
func unescape(s string) string {
	u, err := strconv.Unquote(`"` + s + `"`)
	if err != nil {
		return s
	}
	return u
}

// loadConfig loads the config file and validates the result of the
// flag overrides.
func loadConfig(path string, override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func sink(cfg *config.Config, stdout, stderr io.Writer) io.Writer {
	if cfg.Output == "stderr" {
		return stderr
	}
	return stdout
}

func borderStyle(cfg *config.Config) *lipgloss.Style {
	if !cfg.Color {
		return nil
	}
	s := report.DefaultStyles().Border
	return &s
}

// boxParams holds the parsed flags for the box command.
type boxParams struct {
	lines  []string
	cfg    *config.Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// runBox is the extracted, testable body of the box command.
func runBox(p boxParams) error {
	lines := p.lines
	if len(lines) == 0 && p.stdin != nil {
		sc := bufio.NewScanner(p.stdin)
		for sc.Scan() {
			lines = append(lines, sc.Text())
		}
		if err := sc.Err(); err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	logger.Debug("rendering flower box", "lines", len(lines))
	err := flowerbox.Render(lines, flowerbox.Options{
		End:         flowerbox.End(p.cfg.End),
		Out:         sink(p.cfg, p.stdout, p.stderr),
		Flush:       p.cfg.Flush,
		BorderStyle: borderStyle(p.cfg),
	})
	if errors.Is(err, flowerbox.ErrInvalidInput) {
		return fmt.Errorf("nothing to print: pass lines as arguments or on stdin: %w", err)
	}
	return err
}

func newBoxCmd(configPath *string) *cobra.Command {
	var flags outputFlags

	cmd := &cobra.Command{
		Use:   "box [lines...]",
		Short: "Print lines inside a flower box",
		Long: `Print each argument as one line inside an asterisk border.
Without arguments, lines are read from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, func(c *config.Config) {
				flags.apply(cmd.Flags().Changed, c)
			})
			if err != nil {
				return err
			}
			return runBox(boxParams{
				lines:  args,
				cfg:    cfg,
				stdin:  cmd.InOrStdin(),
				stdout: cmd.OutOrStdout(),
				stderr: cmd.ErrOrStderr(),
			})
		},
	}
	flags.register(cmd)

	return cmd
}

// runParams holds the parsed flags for the run command.
type runParams struct {
	argv        []string
	cfg         *config.Config
	format      string
	interactive bool
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
}

// timeboxOptions translates cfg into timebox options writing to out.
func timeboxOptions(cfg *config.Config, out io.Writer) []timebox.Option {
	opts := []timebox.Option{
		timebox.WithDateTimeFormat(cfg.DateTimeFormat),
		timebox.WithEnd(cfg.End),
		timebox.WithOutput(out),
		timebox.WithFlush(cfg.Flush),
	}
	if cfg.EnableEnv != "" {
		opts = append(opts, timebox.WithEnabledFunc(envEnabled(cfg.EnableEnv, cfg.Enabled)))
	} else {
		opts = append(opts, timebox.WithEnabled(cfg.Enabled))
	}
	if style := borderStyle(cfg); style != nil {
		opts = append(opts, timebox.WithBorderStyle(*style))
	}
	return opts
}

// envEnabled returns a predicate reading the boolean environment
// variable name on every call. Unset or unparsable values yield
// fallback.
func envEnabled(name string, fallback bool) func() bool {
	return func() bool {
		v, ok := os.LookupEnv(name)
		if !ok {
			return fallback
		}
		on, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("ignoring non-boolean environment variable", "name", name, "value", v)
			return fallback
		}
		return on
	}
}

// runRun is the extracted, testable body of the run command.
func runRun(ctx context.Context, p runParams) error {
	if p.format != "text" && p.format != "json" {
		return fmt.Errorf("invalid format %q: must be 'text' or 'json'", p.format)
	}
	if len(p.argv) == 0 {
		return errors.New("no command given")
	}

	var rec *timebox.Record
	opts := append(timeboxOptions(p.cfg, sink(p.cfg, p.stdout, p.stderr)),
		timebox.WithName(filepath.Base(p.argv[0])),
		timebox.WithOnComplete(func(r timebox.Record) { rec = &r }),
	)

	execute := func(ctx context.Context) error {
		if p.interactive {
			return runInteractive(ctx, p.argv, p.stdout, p.stderr)
		}
		c := exec.CommandContext(ctx, p.argv[0], p.argv[1:]...)
		c.Stdin = p.stdin
		c.Stdout = p.stdout
		c.Stderr = p.stderr
		return c.Run()
	}

	logger.Debug("running command", "argv", p.argv)
	if err := timebox.Wrap(execute, opts...)(ctx); err != nil {
		logger.Debug("command failed", "err", err)
		return err
	}

	if rec == nil {
		if p.format == "json" {
			logger.Warn("announcements disabled, no timing report written")
		}
		return nil
	}
	logger.Debug("command finished", "elapsed", rec.Elapsed())

	if p.format == "json" {
		return report.WriteJSON(p.stdout, report.NewTimingReport(*rec, p.argv), version)
	}
	return nil
}

func newRunCmd(configPath *string) *cobra.Command {
	var (
		flags       outputFlags
		dtFormat    string
		disable     bool
		enableEnv   string
		format      string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "run [flags] command [args...]",
		Short: "Time a command between start and end boxes",
		Long: `Run a command, printing a start box before it and an end box
with the elapsed wall clock time after it. No end box is printed
when the command fails; its exit code is passed through.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := cmd.Flags().Changed
			cfg, err := loadConfig(*configPath, func(c *config.Config) {
				flags.apply(changed, c)
				if changed("dt-format") {
					c.DateTimeFormat = dtFormat
				}
				if changed("disable") {
					c.Enabled = !disable
				}
				if changed("enable-env") {
					c.EnableEnv = enableEnv
				}
			})
			if err != nil {
				return err
			}
			return runRun(cmd.Context(), runParams{
				argv:        args,
				cfg:         cfg,
				format:      format,
				interactive: interactive,
				stdin:       cmd.InOrStdin(),
				stdout:      cmd.OutOrStdout(),
				stderr:      cmd.ErrOrStderr(),
			})
		},
	}
	// Everything after the command name belongs to the command.
	cmd.Flags().SetInterspersed(false)

	flags.register(cmd)
	cmd.Flags().StringVar(&dtFormat, "dt-format", timebox.DefaultDateTimeFormat,
		"Go time layout of the start and end timestamps")
	cmd.Flags().BoolVar(&disable, "disable", false,
		"run the command without announcements")
	cmd.Flags().StringVar(&enableEnv, "enable-env", "",
		"boolean environment variable that switches announcements on or off")
	cmd.Flags().StringVar(&format, "format", "text",
		"output format: text, or json to also write a timing report to stdout")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false,
		"show a live stopwatch while the command runs")

	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for the timing report",
		Long: `Print the JSON Schema (Draft 2020-12) that documents the
structure of flowerbox run --format=json output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), report.Schema)
			return err
		},
	}
}
