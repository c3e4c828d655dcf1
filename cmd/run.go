package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"catalogrecon/catalog"
	"catalogrecon/config"
	"catalogrecon/importer"
	"catalogrecon/internal/logging"
	"catalogrecon/output"
	"catalogrecon/reconcile"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// maxListedWarnings caps the row warnings logged individually per run.
const maxListedWarnings = 5

// ioOptions are the input/output flags every reconciliation command shares.
type ioOptions struct {
	Input        string
	InputFormat  string
	Encodings    []string
	Output       string
	OutputFormat string
	SummaryPath  string
	DryRun       bool
}

func bindIOFlags(cmd *cobra.Command, opts *ioOptions) {
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Primary input file or <db>#<table> source (required)")
	cmd.Flags().StringVar(&opts.InputFormat, "input-format", "", "Input format override: csv|tsv|excel|sqlite|postgres (default: inferred)")
	cmd.Flags().StringArrayVar(&opts.Encodings, "encoding", nil, "Encoding candidate, tried in order (repeatable, overrides input.encodings)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output file path (default: <input-dir>/<input-base>_<operation>_<timestamp>.<ext>)")
	cmd.Flags().StringVar(&opts.OutputFormat, "format", "", "Output format: csv|tsv|excel (default: from --output extension or output.format)")
	cmd.Flags().StringVar(&opts.SummaryPath, "summary-output", "", "Also write the run summary as csv/tsv/xlsx to this path")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Compute and print the summary without writing output")
	_ = cmd.MarkFlagRequired("input")
}

// run carries what one command invocation needs: validated config, a logger
// tagged with the run id, and reader options.
type run struct {
	operation string
	opts      ioOptions
	cfg       *config.Config
	logger    *zap.Logger
	reader    importer.Options
	out       io.Writer
	started   time.Time
}

func startRun(out io.Writer, operation string, opts ioOptions) (*run, error) {
	if strings.TrimSpace(opts.Input) == "" {
		return nil, fmt.Errorf("--input is required")
	}

	cfg, err := config.LoadAndValidate()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	logger = logging.WithRunID(logger, uuid.NewString()).With(zap.String("operation", operation))

	reader, err := readerOptions(cfg, opts)
	if err != nil {
		return nil, err
	}

	logger.Info("run started", zap.String("input", opts.Input), zap.Strings("encodings", reader.Encodings), zap.Bool("dry_run", opts.DryRun))
	return &run{
		operation: operation,
		opts:      opts,
		cfg:       cfg,
		logger:    logger,
		reader:    reader,
		out:       out,
		started:   time.Now(),
	}, nil
}

func readerOptions(cfg *config.Config, opts ioOptions) (importer.Options, error) {
	delimiter, err := cfg.Input.DelimiterRune()
	if err != nil {
		return importer.Options{}, err
	}

	encodings := cfg.Input.Encodings
	if len(opts.Encodings) > 0 {
		if err := importer.ValidateEncodings(opts.Encodings); err != nil {
			return importer.Options{}, err
		}
		encodings = opts.Encodings
	}

	return importer.Options{
		Format:     opts.InputFormat,
		Encodings:  encodings,
		Delimiter:  delimiter,
		LazyQuotes: cfg.Input.LazyQuotes,
		Sheet:      cfg.Input.Sheet,
	}, nil
}

// load reads one source. References may be given with their own format via
// the address alone; the --input-format override applies to the primary only.
func (r *run) load(path string, primary bool) (*catalog.RecordSet, error) {
	options := r.reader
	if !primary {
		options.Format = ""
	}

	set, err := importer.Load(path, options)
	if err != nil {
		r.logger.Error("load failed", zap.String("source", path), zap.Error(err))
		return nil, err
	}

	r.logger.Info("source loaded",
		zap.String("source", set.Source),
		zap.String("encoding", set.Encoding),
		zap.Int("rows", set.Len()),
		zap.Int("warnings", len(set.Warnings)),
	)
	return set, nil
}

func (r *run) loadAll(paths []string) ([]*catalog.RecordSet, error) {
	sets := make([]*catalog.RecordSet, 0, len(paths))
	for _, path := range paths {
		set, err := r.load(path, false)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}

func (r *run) outputFormat() string {
	if strings.TrimSpace(r.opts.OutputFormat) != "" {
		return r.opts.OutputFormat
	}
	if strings.TrimSpace(r.opts.Output) != "" {
		return output.DetectFormat(r.opts.Output)
	}
	return r.cfg.Output.Format
}

func (r *run) outputPath(format string) string {
	if strings.TrimSpace(r.opts.Output) != "" {
		return r.opts.Output
	}
	return output.DerivedPath(r.opts.Input, r.operation, format, r.cfg.Output.Directory, r.started)
}

// extraOutput is a record set written next to the main result.
type extraOutput struct {
	Path string
	Set  *catalog.RecordSet
}

// target is a validated output file that has not been written yet.
type target struct {
	path    string
	writer  output.Writer
	set     *catalog.RecordSet
	existed bool
}

// finish verifies the summary, resolves and validates every output target,
// then writes them and prints the summary. Nothing is written when a count
// check or any target fails validation.
func (r *run) finish(summary *reconcile.Summary, result *catalog.RecordSet, extras ...extraOutput) error {
	defer func() { _ = r.logger.Sync() }()

	if err := summary.Verify(); err != nil {
		r.logger.Error("count reconciliation failed", zap.Error(err))
		return err
	}
	r.logWarnings(summary.Warnings)

	targets, err := r.plan(result, extras)
	if err != nil {
		r.logger.Error("output rejected", zap.Error(err))
		return err
	}
	if r.opts.DryRun {
		summary.Note("dry run: no output written")
	}

	written := make([]target, 0, len(targets))
	for _, t := range targets {
		if err := r.write(t); err != nil {
			rollback(written)
			return err
		}
		written = append(written, t)
	}
	if len(targets) > 0 {
		summary.Output = targets[0].path
		if _, ok := targets[0].writer.(*output.ExcelWriter); ok {
			if blank := output.TrailingBlankRecords(result); blank > 0 {
				summary.Note(fmt.Sprintf("%d trailing all-blank rows are not kept by xlsx readers", blank))
			}
		}
	}

	if r.opts.SummaryPath != "" {
		if err := output.WriteSummary(r.opts.SummaryPath, output.DetectFormat(r.opts.SummaryPath), summary); err != nil {
			rollback(written)
			return err
		}
	}

	if err := summary.Render(r.out); err != nil {
		return fmt.Errorf("print summary: %w", err)
	}
	if r.opts.SummaryPath != "" {
		fmt.Fprintf(r.out, "Summary written to %s\n", r.opts.SummaryPath)
	}
	if summary.Output != "" {
		fmt.Fprintf(r.out, "Wrote %d rows to %s\n", result.Len(), summary.Output)
	}

	r.logger.Info("run finished",
		zap.Int("rows", result.Len()),
		zap.String("output", summary.Output),
		zap.Duration("elapsed", time.Since(r.started)),
	)
	return nil
}

// plan resolves the main output and extras into targets and checks the
// summary path. Dry runs return no targets but are validated the same way.
func (r *run) plan(result *catalog.RecordSet, extras []extraOutput) ([]target, error) {
	format := r.outputFormat()
	primary, err := r.prepare(r.outputPath(format), format, result)
	if err != nil {
		return nil, err
	}

	targets := []target{primary}
	for _, extra := range extras {
		t, err := r.prepare(extra.Path, output.DetectFormat(extra.Path), extra.Set)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}

	paths := make([]string, 0, len(targets)+1)
	for _, t := range targets {
		paths = append(paths, t.path)
	}
	if r.opts.SummaryPath != "" {
		if err := guardInputOverwrite(r.opts.SummaryPath, r.opts.Input); err != nil {
			return nil, err
		}
		if err := output.ValidateSummaryFormat(output.DetectFormat(r.opts.SummaryPath)); err != nil {
			return nil, err
		}
		paths = append(paths, r.opts.SummaryPath)
	}
	if err := distinctPaths(paths); err != nil {
		return nil, err
	}

	if r.opts.DryRun {
		return nil, nil
	}
	return targets, nil
}

func (r *run) prepare(path, format string, set *catalog.RecordSet) (target, error) {
	if err := guardInputOverwrite(path, r.opts.Input); err != nil {
		return target{}, err
	}
	writer, err := output.WriterForFormat(format)
	if err != nil {
		return target{}, err
	}
	_, statErr := os.Stat(path)
	return target{path: path, writer: writer, set: set, existed: statErr == nil}, nil
}

func (r *run) write(t target) error {
	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}
	if err := t.writer.Write(t.path, t.set); err != nil {
		r.logger.Error("write failed", zap.String("output", t.path), zap.Error(err))
		return err
	}
	return nil
}

// rollback removes files this run created. Files that existed before the run
// were replaced atomically and are left alone.
func rollback(written []target) {
	for _, t := range written {
		if !t.existed {
			_ = os.Remove(t.path)
		}
	}
}

func distinctPaths(paths []string) error {
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve output path %s: %w", path, err)
		}
		if _, exists := seen[abs]; exists {
			return fmt.Errorf("output path %s is used twice", path)
		}
		seen[abs] = struct{}{}
	}
	return nil
}

func (r *run) logWarnings(warnings []catalog.RowWarning) {
	for i, warning := range warnings {
		if i == maxListedWarnings {
			r.logger.Warn("further row warnings omitted", zap.Int("count", len(warnings)-maxListedWarnings))
			return
		}
		r.logger.Warn("row skipped or repaired",
			zap.String("source", warning.Source),
			zap.Int("row", warning.Row),
			zap.String("reason", warning.Message),
		)
	}
}

func guardInputOverwrite(outputPath, inputPath string) error {
	out, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve output path %s: %w", outputPath, err)
	}
	in, err := filepath.Abs(inputPath)
	if err != nil {
		return nil
	}
	if out == in {
		return fmt.Errorf("output path %s would overwrite the input", outputPath)
	}
	return nil
}
