package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	dupkeys "github.com/reoring/dupkeys"
	"github.com/reoring/dupkeys/i18n"
	"github.com/reoring/dupkeys/internal/check"
	"github.com/reoring/dupkeys/internal/config"
	"github.com/reoring/dupkeys/source/gojson"
)

const (
	exitOK       = 0
	exitFindings = 1
	exitUsage    = 2
)

// exitError carries a process exit code out of RunE.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdin)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(stderr, "dupkeys:", ee.err)
		}
		return ee.code
	}
	fmt.Fprintln(stderr, "dupkeys:", err)
	return exitUsage
}

func newRootCmd(stdin io.Reader) *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:   "dupkeys [file|-]...",
		Short: "Report keys repeated within the same JSON object",
		Long: `dupkeys scans JSON (and YAML) documents and reports every key that
appears more than once in the same object, as a dotted path.

Settings are read from dupkeys.yaml (or --config), then .env and DUPKEYS_*
environment variables, then flags. The exit status is 1 when any ERROR
finding is reported.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file (default dupkeys.yaml when present)")
	f.String("driver", "", "tokenizer: json|gojson")
	f.Int("concurrency", 0, "documents scanned in parallel")
	f.String("lang", "", "message language: en|ja")
	f.String("on-duplicate", "", "duplicate severity: error|warn|ignore")
	f.Int("max-depth", 0, "maximum nesting depth (0 disables)")
	f.Int64("max-bytes", 0, "maximum bytes per document (0 disables)")
	f.Bool("suppress-ok", false, "omit OK findings")
	f.String("format", "", "output format: json|text")
	f.BoolP("verbose", "v", false, "log progress to stderr")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return &exitError{code: exitUsage, err: err}
		}
		if err := applyFlags(cmd, &cfg); err != nil {
			return &exitError{code: exitUsage, err: err}
		}
		if err := cfg.Validate(); err != nil {
			return &exitError{code: exitUsage, err: err}
		}
		return run(cmd, cfg, args, stdin)
	}
	return cmd
}

// applyFlags overrides cfg with the flags given on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	var err error
	set := func(name string, apply func() error) {
		if err == nil && f.Changed(name) {
			err = apply()
		}
	}
	set("driver", func() (e error) { cfg.Driver, e = f.GetString("driver"); return })
	set("concurrency", func() (e error) { cfg.Concurrency, e = f.GetInt("concurrency"); return })
	set("lang", func() (e error) { cfg.Lang, e = f.GetString("lang"); return })
	set("on-duplicate", func() (e error) { cfg.OnDuplicate, e = f.GetString("on-duplicate"); return })
	set("max-depth", func() (e error) { cfg.MaxDepth, e = f.GetInt("max-depth"); return })
	set("max-bytes", func() (e error) { cfg.MaxBytes, e = f.GetInt64("max-bytes"); return })
	set("suppress-ok", func() (e error) { cfg.SuppressOK, e = f.GetBool("suppress-ok"); return })
	set("format", func() (e error) { cfg.Format, e = f.GetString("format"); return })
	set("verbose", func() (e error) { cfg.Verbose, e = f.GetBool("verbose"); return })
	return err
}

func run(cmd *cobra.Command, cfg config.Config, args []string, stdin io.Reader) error {
	logger := log.New(io.Discard, "", 0)
	if cfg.Verbose {
		logger = log.New(cmd.ErrOrStderr(), "[dupkeys] ", 0)
	}
	i18n.SetLanguage(cfg.Lang)

	var driver dupkeys.Driver = dupkeys.DefaultDriver()
	if cfg.Driver == "gojson" {
		driver = gojson.Driver()
	}
	logger.Printf("driver=%s concurrency=%d on_duplicate=%s", driver.Name(), cfg.Concurrency, cfg.OnDuplicate)

	checker, err := check.New(check.Options{
		Concurrency: cfg.Concurrency,
		OnDuplicate: cfg.Severity(),
		SuppressOK:  cfg.SuppressOK,
		Detect:      dupkeys.Options{Driver: driver, MaxDepth: cfg.MaxDepth, MaxBytes: cfg.MaxBytes},
		Logger:      logger,
	})
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}

	docs := make([]check.Document, 0, len(args))
	stdinUsed := false
	for _, a := range args {
		if a == "-" {
			if stdinUsed {
				return &exitError{code: exitUsage, err: errors.New("standard input given more than once")}
			}
			stdinUsed = true
			docs = append(docs, check.ReaderDocument("stdin", a, stdin))
			continue
		}
		docs = append(docs, check.FileDocument("files", a))
	}

	report, err := checker.Check(cmd.Context(), docs)
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}

	out := cmd.OutOrStdout()
	if cfg.Format == "text" {
		err = report.WriteText(out)
	} else {
		err = report.WriteJSON(out)
	}
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}
	logger.Printf("errors=%d warnings=%d", report.Count(check.TypeError), report.Count(check.TypeWarn))
	if report.HasErrors() {
		return &exitError{code: exitFindings}
	}
	return nil
}
