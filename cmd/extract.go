package cmd

import (
	"fmt"
	"io"

	"catalogrecon/reconcile"

	"github.com/spf13/cobra"
)

type extractOptions struct {
	ioOptions
	Columns     []string
	RequireKeys []string
}

var extractOpts extractOptions

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Write a reduced column set of the input.",
	Long: `Project the input onto the given columns, in the given order. Output headers are the
requested names, so "-c sku" yields a "sku" column whichever alias the input used.

Rows with an empty value in any --require-key column are dropped and counted.`,
	Example: `
  # SKU and handle list from a Shopify export
  catalogrecon extract -i products_export.csv -c sku -c handle -c title

  # Only rows that carry a SKU
  catalogrecon extract -i products_export.csv -c sku -c title --require-key sku -o skus.csv
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(cmd.OutOrStdout(), extractOpts)
	},
}

func runExtract(out io.Writer, opts extractOptions) error {
	if len(opts.Columns) == 0 {
		return fmt.Errorf("at least one --column is required")
	}

	run, err := startRun(out, "extract", opts.ioOptions)
	if err != nil {
		return err
	}

	set, err := run.load(opts.Input, true)
	if err != nil {
		return err
	}

	result, err := reconcile.Extract(set, run.cfg.KeyFields(opts.Columns), run.cfg.KeyFields(opts.RequireKeys))
	if err != nil {
		return err
	}

	summary := result.Summary()
	summary.AddInput(set)
	return run.finish(summary, result.Set)
}

func init() {
	rootCmd.AddCommand(extractCmd)

	bindIOFlags(extractCmd, &extractOpts.ioOptions)
	extractCmd.Flags().StringArrayVarP(&extractOpts.Columns, "column", "c", nil, "Column to extract, in output order (repeatable, required)")
	extractCmd.Flags().StringArrayVar(&extractOpts.RequireKeys, "require-key", nil, "Drop rows with an empty value in this column (repeatable)")
}
