package cmd

import (
	"fmt"
	"io"
	"strings"

	"catalogrecon/reconcile"

	"github.com/spf13/cobra"
)

type filterOptions struct {
	ioOptions
	References     []string
	Key            string
	ReferenceKey   string
	Mode           string
	ExcludedOutput string
}

var filterOpts filterOptions

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Split records by whether their key appears in reference sources.",
	Long: `Partition the primary records by membership of their normalized key in the union of
the reference key sets, keeping input order.

Modes:
- keep-matching: write records whose key is present in a reference (e.g. products still stocked)
- keep-non-matching: write records whose key is absent (e.g. drop records listed for deletion)

Records with an empty key never match. The default mode comes from filter.mode.
With --excluded-output the other side of the partition is written as well.`,
	Example: `
  # Keep products that are still stocked
  catalogrecon filter -i products.csv -r stocked.csv --mode keep-matching

  # Drop products listed in two deletion lists, matching SKU against part numbers
  catalogrecon filter -i products.csv -r delete_a.csv -r delete_b.csv --reference-key part_number --mode keep-non-matching

  # Reference keys from a SQLite table
  catalogrecon filter -i products.csv -r catalog.db#stock
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFilter(cmd.OutOrStdout(), filterOpts)
	},
}

func runFilter(out io.Writer, opts filterOptions) error {
	if len(opts.References) == 0 {
		return fmt.Errorf("at least one --reference is required")
	}

	run, err := startRun(out, "filter", opts.ioOptions)
	if err != nil {
		return err
	}

	modeValue := opts.Mode
	if strings.TrimSpace(modeValue) == "" {
		modeValue = run.cfg.Filter.Mode
	}
	mode, err := reconcile.ParseMode(modeValue)
	if err != nil {
		return err
	}

	set, err := run.load(opts.Input, true)
	if err != nil {
		return err
	}
	references, err := run.loadAll(opts.References)
	if err != nil {
		return err
	}

	referenceKey := opts.ReferenceKey
	if strings.TrimSpace(referenceKey) == "" {
		referenceKey = opts.Key
	}
	keys := reconcile.NewKeySet()
	for _, reference := range references {
		referenceKeys, err := reconcile.BuildKeySet(reference, run.cfg.KeyField(referenceKey))
		if err != nil {
			return err
		}
		keys.Merge(referenceKeys)
	}

	result, err := reconcile.Partition(set, run.cfg.KeyField(opts.Key), keys, mode)
	if err != nil {
		return err
	}

	summary := result.Summary()
	summary.AddInput(set)
	for _, reference := range references {
		summary.AddInput(reference)
	}
	summary.Count("reference_keys", keys.Len())

	var extras []extraOutput
	if opts.ExcludedOutput != "" {
		extras = append(extras, extraOutput{Path: opts.ExcludedOutput, Set: result.Excluded})
		if !opts.DryRun {
			summary.Note(fmt.Sprintf("excluded records written to %s", opts.ExcludedOutput))
		}
	}

	return run.finish(summary, result.Retained, extras...)
}

func init() {
	rootCmd.AddCommand(filterCmd)

	bindIOFlags(filterCmd, &filterOpts.ioOptions)
	filterCmd.Flags().StringArrayVarP(&filterOpts.References, "reference", "r", nil, "Reference file or <db>#<table> source (repeatable, required)")
	filterCmd.Flags().StringVarP(&filterOpts.Key, "key", "k", "sku", "Primary key field")
	filterCmd.Flags().StringVar(&filterOpts.ReferenceKey, "reference-key", "", "Reference key field (default: same as --key)")
	filterCmd.Flags().StringVar(&filterOpts.Mode, "mode", "", "keep-matching|keep-non-matching (default: filter.mode)")
	filterCmd.Flags().StringVar(&filterOpts.ExcludedOutput, "excluded-output", "", "Also write the excluded records to this path")
}
