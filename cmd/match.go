package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"catalogrecon/catalog"
	"catalogrecon/config"
	"catalogrecon/reconcile"

	"github.com/spf13/cobra"
)

type matchOptions struct {
	ioOptions
	References       []string
	Rules            []string
	Columns          []string
	ReferenceColumns []string
	Only             string
}

var matchOpts matchOptions

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match every primary record against reference sources.",
	Long: `Produce one report row per primary record, marked matched or unmatched.

Rules are tried in the order given; the first rule whose primary key is non-empty and
present in its reference index wins. A reference index keeps the first record per key.

Rule syntax: <primary-field>=<reference-field>[@N]
N is the 1-based position of the reference in the -r list (default 1). Field names
resolve through the columns section of the configuration, otherwise they are headers.
Rules whose primary column is missing are skipped and reported.

Report columns: the primary columns (or --column selection), then match_status,
match_rule, match_field, match_key, then any --reference-column values from the
matched reference record.`,
	Example: `
  # Match Shopify variants against a supplier sheet by SKU
  catalogrecon match -i products.csv -r xorosoft.csv --rule "sku=part_number"

  # Try SKU first, then fall back to URL handle on a second reference
  catalogrecon match -i products.csv -r xorosoft.csv -r legacy.csv \
    --rule "sku=part_number" --rule "handle=handle@2" --reference-column title

  # Only list records without a match
  catalogrecon match -i products.csv -r catalog.db#products --only unmatched
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMatch(cmd.OutOrStdout(), matchOpts)
	},
}

// matchRule is one parsed --rule value.
type matchRule struct {
	Primary   string
	Reference string
	// Source is the 1-based reference position.
	Source int
}

func (r matchRule) String() string {
	return fmt.Sprintf("%s=%s@%d", r.Primary, r.Reference, r.Source)
}

func parseMatchRule(value string) (matchRule, error) {
	primary, reference, ok := strings.Cut(value, "=")
	if !ok {
		return matchRule{}, fmt.Errorf("invalid rule %q (expected <primary-field>=<reference-field>[@N])", value)
	}

	rule := matchRule{Primary: strings.TrimSpace(primary), Source: 1}
	if idx := strings.LastIndex(reference, "@"); idx >= 0 {
		source, err := strconv.Atoi(strings.TrimSpace(reference[idx+1:]))
		if err != nil || source < 1 {
			return matchRule{}, fmt.Errorf("invalid rule %q: reference position must be a number >= 1", value)
		}
		rule.Source = source
		reference = reference[:idx]
	}
	rule.Reference = strings.TrimSpace(reference)

	if rule.Primary == "" || rule.Reference == "" {
		return matchRule{}, fmt.Errorf("invalid rule %q: both fields are required", value)
	}
	return rule, nil
}

// buildRules parses rule values and indexes each reference field once.
func buildRules(cfg *config.Config, values []string, references []*catalog.RecordSet) ([]reconcile.Rule, error) {
	indexes := make(map[string]*reconcile.Index)
	rules := make([]reconcile.Rule, 0, len(values))
	for _, value := range values {
		parsed, err := parseMatchRule(value)
		if err != nil {
			return nil, err
		}
		if parsed.Source > len(references) {
			return nil, fmt.Errorf("rule %s refers to reference %d, but only %d given", value, parsed.Source, len(references))
		}

		cacheKey := fmt.Sprintf("%d\x00%s", parsed.Source, strings.ToLower(parsed.Reference))
		index, ok := indexes[cacheKey]
		if !ok {
			index, err = reconcile.BuildIndex(references[parsed.Source-1], cfg.KeyField(parsed.Reference))
			if err != nil {
				return nil, err
			}
			indexes[cacheKey] = index
		}

		rules = append(rules, reconcile.Rule{
			Name:    parsed.String(),
			Primary: cfg.KeyField(parsed.Primary),
			Index:   index,
		})
	}
	return rules, nil
}

func runMatch(out io.Writer, opts matchOptions) error {
	if len(opts.References) == 0 {
		return fmt.Errorf("at least one --reference is required")
	}

	run, err := startRun(out, "match", opts.ioOptions)
	if err != nil {
		return err
	}

	primary, err := run.load(opts.Input, true)
	if err != nil {
		return err
	}
	references, err := run.loadAll(opts.References)
	if err != nil {
		return err
	}

	ruleValues := opts.Rules
	if len(ruleValues) == 0 {
		ruleValues = []string{"sku=sku"}
	}
	rules, err := buildRules(run.cfg, ruleValues, references)
	if err != nil {
		return err
	}

	outcome, err := reconcile.NewMatcher(rules...).Match(primary)
	if err != nil {
		return err
	}

	report, notes, err := reconcile.BuildReport(primary, outcome, reconcile.ReportOptions{
		Columns:          run.cfg.KeyFields(opts.Columns),
		ReferenceColumns: run.cfg.KeyFields(opts.ReferenceColumns),
		Only:             strings.ToLower(strings.TrimSpace(opts.Only)),
	})
	if err != nil {
		return err
	}

	summary := outcome.Summary()
	summary.AddInput(primary)
	for _, reference := range references {
		summary.AddInput(reference)
	}
	for _, index := range outcome.Indexes {
		if index.Duplicates > 0 {
			summary.Note(fmt.Sprintf("%s has %d repeated %s keys; first record per key used", index.Source(), index.Duplicates, index.Column))
		}
	}
	for _, note := range notes {
		summary.Note(note)
	}
	summary.Count("report_rows", report.Len())

	return run.finish(summary, report)
}

func init() {
	rootCmd.AddCommand(matchCmd)

	bindIOFlags(matchCmd, &matchOpts.ioOptions)
	matchCmd.Flags().StringArrayVarP(&matchOpts.References, "reference", "r", nil, "Reference file or <db>#<table> source (repeatable, required)")
	matchCmd.Flags().StringArrayVar(&matchOpts.Rules, "rule", nil, "Match rule <primary-field>=<reference-field>[@N], tried in order (default: sku=sku)")
	matchCmd.Flags().StringArrayVarP(&matchOpts.Columns, "column", "c", nil, "Primary column to keep in the report (repeatable, default: all)")
	matchCmd.Flags().StringArrayVar(&matchOpts.ReferenceColumns, "reference-column", nil, "Reference column to copy from the matched record (repeatable)")
	matchCmd.Flags().StringVar(&matchOpts.Only, "only", "", "Limit report rows to matched|unmatched")
}
