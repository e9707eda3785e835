package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"qasmgen/internal/circuitfile"
	"qasmgen/internal/driver"
	"qasmgen/internal/observ"
	"qasmgen/internal/trace"
	"qasmgen/internal/watch"
)

const noInputsMessage = "no input files and no qasmgen.toml found\nplease name the circuits to export, e.g.:\n  qasmgen export circuits/"

var exportCmd = &cobra.Command{
	Use:   "export [flags] [files|dirs...]",
	Short: "Export circuit files to OpenQASM 2.0",
	Long: `Export circuit files to OpenQASM 2.0 programs.

Directories are searched recursively for .toml, .yaml, .yml and .qcs files.
Without arguments the inputs listed in qasmgen.toml are used.`,
	RunE: runExport,
}

func init() {
	addExportFlags(exportCmd)
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("out", "o", "", "output directory (default: next to each input)")
	cmd.Flags().Bool("stdout", false, "print the program of a single input instead of writing it")
	cmd.Flags().Int("jobs", 0, "parallel exports (default: GOMAXPROCS)")
	cmd.Flags().Bool("fail-fast", false, "stop at the first failing file")
	cmd.Flags().Bool("dry-run", false, "export without writing files")
	cmd.Flags().Bool("watch", false, "re-export files when they change")
	cmd.Flags().String("ui", "auto", "user interface (auto|on|off)")
	cmd.Flags().String("pattern", "", "only export files whose name matches this glob")
}

type exportOptions struct {
	inputs   []string
	outDir   string
	jobs     int
	pattern  string
	stdout   bool
	failFast bool
	dryRun   bool
	watch    bool
	ui       progressView
	quiet    bool
	timings  bool
}

func readExportOptions(cmd *cobra.Command, args []string, manifest *projectManifest) (exportOptions, error) {
	var opts exportOptions
	var err error
	flags := cmd.Flags()
	if opts.outDir, err = flags.GetString("out"); err != nil {
		return opts, err
	}
	if opts.stdout, err = flags.GetBool("stdout"); err != nil {
		return opts, err
	}
	if opts.jobs, err = flags.GetInt("jobs"); err != nil {
		return opts, err
	}
	if opts.failFast, err = flags.GetBool("fail-fast"); err != nil {
		return opts, err
	}
	if opts.dryRun, err = flags.GetBool("dry-run"); err != nil {
		return opts, err
	}
	if opts.watch, err = flags.GetBool("watch"); err != nil {
		return opts, err
	}
	if opts.pattern, err = flags.GetString("pattern"); err != nil {
		return opts, err
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return opts, err
	}
	if opts.ui, err = parseProgressView(uiValue); err != nil {
		return opts, err
	}
	if opts.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return opts, err
	}
	if opts.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return opts, err
	}

	opts.inputs = args
	if manifest != nil {
		cfg := manifest.Config.Export
		if len(opts.inputs) == 0 {
			opts.inputs = manifest.inputs()
		}
		if !flags.Changed("out") {
			opts.outDir = manifest.outDir()
		}
		if !flags.Changed("jobs") && cfg.Jobs > 0 {
			opts.jobs = cfg.Jobs
		}
		if !flags.Changed("pattern") && cfg.Pattern != "" {
			opts.pattern = cfg.Pattern
		}
	}
	if len(opts.inputs) == 0 {
		return opts, errors.New(noInputsMessage)
	}
	if opts.jobs < 0 {
		return opts, fmt.Errorf("--jobs must not be negative, got %d", opts.jobs)
	}
	if opts.stdout && opts.watch {
		return opts, fmt.Errorf("--stdout and --watch are mutually exclusive")
	}
	return opts, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic(cmd)

	manifest, _, err := loadProjectManifest(".")
	if err != nil {
		return err
	}
	opts, err := readExportOptions(cmd, args, manifest)
	if err != nil {
		return err
	}
	files, err := driver.ExpandInputs(opts.inputs, opts.pattern)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no circuit files found in %s", strings.Join(opts.inputs, ", "))
	}

	if opts.stdout {
		return exportToStdout(cmd.OutOrStdout(), files)
	}

	ctx := cmd.Context()
	if opts.watch {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
	}

	err = exportBatch(ctx, cmd, files, opts)
	if !opts.watch {
		if err != nil {
			cmd.SilenceUsage = true
		}
		return err
	}
	if err != nil && !errors.Is(err, errExportFailed) {
		return err
	}
	return watchAndExport(ctx, cmd, opts)
}

var errExportFailed = errors.New("export failed")

func exportToStdout(out io.Writer, files []string) error {
	if len(files) != 1 {
		return fmt.Errorf("--stdout needs exactly one input file, got %d", len(files))
	}
	program, _, err := driver.LoadAndExport(files[0])
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, program)
	return err
}

func exportBatch(ctx context.Context, cmd *cobra.Command, files []string, opts exportOptions) error {
	timer := observ.NewTimer()
	req := &driver.ExportRequest{
		Files:    files,
		OutDir:   opts.outDir,
		Jobs:     opts.jobs,
		FailFast: opts.failFast,
		DryRun:   opts.dryRun,
		Timer:    timer,
	}

	var (
		res driver.ExportResult
		err error
	)
	if opts.showProgress(isTerminal(os.Stdout)) {
		res, err = runExportWithUI(ctx, "qasmgen export", req)
	} else {
		res, err = driver.ExportFiles(ctx, req)
	}
	if len(res.Files) > 0 {
		printExportResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), res, opts)
	}
	if opts.timings {
		fmt.Fprint(cmd.OutOrStdout(), timer.Summary())
	}
	if err != nil {
		return err
	}
	if failed := res.Failed(); failed > 0 {
		return fmt.Errorf("%w: %d of %d files", errExportFailed, failed, len(res.Files))
	}
	return nil
}

func printExportResult(out, errOut io.Writer, res driver.ExportResult, opts exportOptions) {
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed, color.Bold)
	verb := "exported"
	if opts.dryRun {
		verb = "checked"
	}
	for _, f := range res.Files {
		if f.Err != nil {
			bad.Fprint(errOut, "error")
			fmt.Fprintf(errOut, " %s: %v\n", displayPath(f.Input), f.Err)
			continue
		}
		if opts.quiet {
			continue
		}
		ok.Fprint(out, verb)
		if opts.dryRun {
			fmt.Fprintf(out, " %s (%d gates)\n", displayPath(f.Input), f.Gates)
		} else {
			fmt.Fprintf(out, " %s -> %s (%d gates)\n", displayPath(f.Input), displayPath(f.Output), f.Gates)
		}
	}
}

func watchAndExport(ctx context.Context, cmd *cobra.Command, opts exportOptions) error {
	w, err := watch.New(watch.Config{Paths: opts.inputs, Extensions: circuitfile.Extensions})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close()

	if !opts.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "watching %s (Ctrl+C to stop)\n", strings.Join(opts.inputs, ", "))
	}
	tracer := trace.FromContext(ctx)
	return w.Watch(ctx, func(paths []string) {
		files := filterPattern(paths, opts.pattern)
		if len(files) == 0 {
			return
		}
		if err := exportBatch(ctx, cmd, files, opts); err != nil && !errors.Is(err, errExportFailed) {
			trace.Error(tracer, trace.ScopeDriver, "watch export", err, trace.CurrentSpan(ctx))
			fmt.Fprintf(cmd.ErrOrStderr(), "export: %v\n", err)
		}
	})
}

func filterPattern(paths []string, pattern string) []string {
	if pattern == "" {
		return paths
	}
	out := paths[:0:0]
	for _, p := range paths {
		if ok, _ := filepath.Match(pattern, filepath.Base(p)); ok {
			out = append(out, p)
		}
	}
	return out
}

// displayPath shortens paths below the working directory.
func displayPath(path string) string {
	cwd, err := os.Getwd()
	if err != nil || path == "" {
		return path
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
