package cmd

import (
	"io"

	"catalogrecon/reconcile"

	"github.com/spf13/cobra"
)

type dedupeOptions struct {
	ioOptions
	Keys []string
}

var dedupeOpts dedupeOptions

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Remove records whose key repeats an earlier record's key.",
	Long: `Keep the first record for every normalized key on every key field and drop the rest.

Keys are compared after normalization (trim, "-" removed, upper case), so "ab-1" and "AB1 "
collide. Empty keys never collide. A record is dropped when any of its keys was already
claimed by a kept record on the same field; it is counted under the first colliding field.

Key names such as sku or handle resolve through the columns section of the configuration;
any other name is taken as a literal header. The output is verified to hold no duplicate
on any key field before it is written.`,
	Example: `
  # Deduplicate a Shopify export by SKU
  catalogrecon dedupe -i products_export.csv

  # Deduplicate by SKU and URL handle, writing Excel
  catalogrecon dedupe -i products_export.csv -k sku -k handle -o cleaned.xlsx

  # Preview counts only
  catalogrecon dedupe -i products_export.csv -k handle --dry-run
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDedupe(cmd.OutOrStdout(), dedupeOpts)
	},
}

func runDedupe(out io.Writer, opts dedupeOptions) error {
	run, err := startRun(out, "dedupe", opts.ioOptions)
	if err != nil {
		return err
	}

	set, err := run.load(opts.Input, true)
	if err != nil {
		return err
	}

	result, err := reconcile.Deduplicate(set, run.cfg.KeyFields(opts.Keys))
	if err != nil {
		return err
	}

	summary := result.Summary()
	summary.AddInput(set)
	return run.finish(summary, result.Set)
}

func init() {
	rootCmd.AddCommand(dedupeCmd)

	bindIOFlags(dedupeCmd, &dedupeOpts.ioOptions)
	dedupeCmd.Flags().StringArrayVarP(&dedupeOpts.Keys, "key", "k", []string{"sku"}, "Key field to deduplicate on (repeatable)")
}
