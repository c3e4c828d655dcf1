/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"catalogrecon/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	envFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "catalogrecon",
	Short: "Deduplicate, match, filter, and extract product-catalog exports.",
	Long: `
**********************************************
*             CATALOG RECON                  *
**********************************************

This CLI reconciles product-catalog exports (Shopify product CSVs, supplier sheets,
database snapshots): it removes duplicate keys, matches records across sources, splits
records by reference key sets, and extracts column subsets. Every run prints a summary
whose counts are checked before any output is written.

Supported input formats:
- CSV/TSV: .csv, .txt, .tsv (encoding tried from input.encodings)
- Excel: .xlsx, .xlsm
- SQLite table: <file.db>#<table>
- PostgreSQL table: postgres://...#<table>
`,
	Example: `
  # Create configuration file
  catalogrecon config create

  # Remove duplicate SKUs and URL handles
  catalogrecon dedupe -i products_export.csv -k sku -k handle

  # Keep only products still listed as stocked
  catalogrecon filter -i products_export.csv -r stocked.csv --mode keep-matching

  # Match variants against a supplier sheet, SKU first then handle
  catalogrecon match -i products_export.csv -r xorosoft.csv --rule "sku=part_number" --rule "handle=handle"

  # Extract SKU and title columns
  catalogrecon extract -i products_export.csv -c sku -c title --require-key sku
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.catalogrecon.yaml, then ./.catalogrecon.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "envFile", ".env", "Environment file loaded before config (ignored when missing)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if err := config.LoadDotEnv(envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".catalogrecon" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".catalogrecon")
	}

	config.ConfigureEnv(viper.GetViper())

	// Defaults apply when no config file is found.
	if err := viper.ReadInConfig(); err != nil {
		if cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Reading config file %s failed: %v\n", cfgFile, err)
		}
	}
}
