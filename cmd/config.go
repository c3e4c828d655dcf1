package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage catalogrecon configuration file values.",
	Long: `Create, edit, display, and delete the catalogrecon configuration file.

The configuration stores defaults shared by every command:
- columns.<name>: header aliases for logical key names (sku, handle, part_number, title)
- input.encodings / input.sheet / input.delimiter / input.lazy_quotes
- output.format / output.directory
- filter.mode
- log.level / log.format

Every key can be overridden from the environment with the CATALOGRECON_ prefix,
e.g. CATALOGRECON_OUTPUT_FORMAT=excel.`,
	Example: `
  # Create default config in $HOME/.catalogrecon.yaml
  catalogrecon config create

  # Show active config and source file
  catalogrecon config show

  # Open active config in editor (creates example if missing)
  catalogrecon config edit

  # Delete active config file
  catalogrecon config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
