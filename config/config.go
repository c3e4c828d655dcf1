package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"catalogrecon/importer"
	"catalogrecon/reconcile"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "CATALOGRECON"

	KeyColumns         = "columns"
	KeyInputEncodings  = "input.encodings"
	KeyInputSheet      = "input.sheet"
	KeyInputDelimiter  = "input.delimiter"
	KeyInputLazyQuotes = "input.lazy_quotes"
	KeyOutputFormat    = "output.format"
	KeyOutputDirectory = "output.directory"
	KeyFilterMode      = "filter.mode"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
)

type Config struct {
	Columns map[string][]string `mapstructure:"columns" validate:"required"`
	Input   InputConfig         `mapstructure:"input"`
	Output  OutputConfig        `mapstructure:"output"`
	Filter  FilterConfig        `mapstructure:"filter"`
	Log     LogConfig           `mapstructure:"log"`
}

type InputConfig struct {
	Encodings  []string `mapstructure:"encodings" validate:"required,min=1,dive,required"`
	Sheet      string   `mapstructure:"sheet"`
	Delimiter  string   `mapstructure:"delimiter"`
	LazyQuotes bool     `mapstructure:"lazy_quotes"`
}

type OutputConfig struct {
	Format    string `mapstructure:"format" validate:"required,oneof=csv tsv excel xlsx"`
	Directory string `mapstructure:"directory"`
}

type FilterConfig struct {
	Mode string `mapstructure:"mode" validate:"required"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn warning error"`
	Format string `mapstructure:"format" validate:"required,oneof=console json"`
}

// DefaultColumns maps logical key names to the headers they appear under in
// Shopify exports and supplier sheets. Header matching ignores case, spaces,
// "_" and "-".
func DefaultColumns() map[string][]string {
	return map[string][]string{
		"sku":         {"sku", "Variant SKU"},
		"handle":      {"url handle", "handle"},
		"part_number": {"part_number", "item number"},
		"title":       {"title", "name"},
	}
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// ConfigureEnv binds CATALOGRECON_* environment variables, e.g.
// CATALOGRECON_OUTPUT_FORMAT for output.format.
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv loads path into the process environment when it exists.
// Variables already set are not overridden.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# catalogrecon configuration

# Logical key names and the column headers they may appear under.
# Header matching ignores case, spaces, "_" and "-".
columns:
  sku: ["sku", "Variant SKU"]
  handle: ["url handle", "handle"]
  part_number: ["part_number", "item number"]
  title: ["title", "name"]

input:
  # Tried in order; the first encoding that decodes and parses wins.
  encodings: ["utf-8", "utf-16", "latin-1"]
  sheet: ""
  delimiter: ","
  lazy_quotes: false

output:
  format: "csv"
  # Empty writes next to the primary input.
  directory: ""

filter:
  mode: "keep-matching"

log:
  level: "info"
  format: "console"
`
}

// KeyField resolves a logical key name through the configured aliases.
// Unknown names are taken as literal header names.
func (c *Config) KeyField(name string) reconcile.KeyField {
	name = strings.TrimSpace(name)
	if aliases, ok := c.Columns[strings.ToLower(name)]; ok && len(aliases) > 0 {
		return reconcile.Field(name, aliases...)
	}
	return reconcile.Field(name)
}

// KeyFields resolves each name with KeyField.
func (c *Config) KeyFields(names []string) []reconcile.KeyField {
	fields := make([]reconcile.KeyField, 0, len(names))
	for _, name := range names {
		fields = append(fields, c.KeyField(name))
	}
	return fields
}

// LogicalNames returns the configured logical key names, sorted.
func (c *Config) LogicalNames() []string {
	return sortedKeys(c.Columns)
}

// DelimiterRune returns the configured field delimiter, or 0 for the reader default.
func (c InputConfig) DelimiterRune() (rune, error) {
	switch value := c.Delimiter; strings.ToLower(value) {
	case "":
		return 0, nil
	case `\t`, "tab", "\t":
		return '\t', nil
	default:
		runes := []rune(value)
		if len(runes) != 1 {
			return 0, fmt.Errorf("delimiter must be a single character, got %q", value)
		}
		return runes[0], nil
	}
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateColumns(cfg.Columns); err != nil {
		return nil, err
	}
	if err := importer.ValidateEncodings(cfg.Input.Encodings); err != nil {
		return nil, fmt.Errorf("validation failed: input.encodings: %w", err)
	}
	if _, err := cfg.Input.DelimiterRune(); err != nil {
		return nil, fmt.Errorf("validation failed: input.delimiter: %w", err)
	}
	if _, err := reconcile.ParseMode(cfg.Filter.Mode); err != nil {
		return nil, fmt.Errorf("validation failed: filter.mode: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	for name, aliases := range DefaultColumns() {
		v.SetDefault(KeyColumns+"."+name, aliases)
	}
	v.SetDefault(KeyInputEncodings, importer.DefaultEncodings)
	v.SetDefault(KeyInputSheet, "")
	v.SetDefault(KeyInputDelimiter, ",")
	v.SetDefault(KeyInputLazyQuotes, false)
	v.SetDefault(KeyOutputFormat, "csv")
	v.SetDefault(KeyOutputDirectory, "")
	v.SetDefault(KeyFilterMode, string(reconcile.ModeKeepMatching))
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

func validateColumns(columns map[string][]string) error {
	for _, name := range sortedKeys(columns) {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("validation failed: columns has an empty logical name")
		}
		aliases := columns[name]
		if len(aliases) == 0 {
			return fmt.Errorf("validation failed: columns.%s needs at least one header name", name)
		}
		for i, alias := range aliases {
			if strings.TrimSpace(alias) == "" {
				return fmt.Errorf("validation failed: columns.%s[%d] is empty", name, i)
			}
		}
	}
	return nil
}

func sortedKeys(values map[string][]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
