package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"catalogrecon/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the active config in an editor.",
	Long: `Open the active catalogrecon config file in $VISUAL, $EDITOR or vi.

A missing config file is created from the example template first. The edited file is
validated when the editor exits; if it is invalid, the previous content is restored and
the rejected version is kept next to it with an ".invalid" suffix.`,
	Example: `
  # Edit active config
  catalogrecon config edit

  # Edit a project-local config with a specific editor
  EDITOR="code --wait" catalogrecon --configFile ./.catalogrecon.yaml config edit
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := resolveConfigPath(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}

		created, err := ensureConfigFileWithTemplate(configPath)
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("No config file found. Created example config at: %s\n", configPath)
		}

		previous, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("reading config failed: %w", err)
		}

		editorCommand, err := buildEditorCommand(resolveEditorValue(os.Getenv("VISUAL"), os.Getenv("EDITOR")), configPath)
		if err != nil {
			return err
		}
		editorCommand.Stdin = os.Stdin
		editorCommand.Stdout = os.Stdout
		editorCommand.Stderr = os.Stderr
		if err := editorCommand.Run(); err != nil {
			return fmt.Errorf("opening editor failed: %w", err)
		}

		rejected, err := validateEditedConfig(configPath, previous)
		if err != nil {
			return err
		}
		if rejected != "" {
			return fmt.Errorf("config in %s is invalid, previous version restored, edited version kept at %s", configPath, rejected)
		}

		fmt.Printf("Configuration saved and validated: %s\n", configPath)
		return nil
	},
}

// validateEditedConfig checks the file at path. When it does not validate, the
// edited content moves to "<path>.invalid", previous is written back and the
// path of the rejected copy is returned.
func validateEditedConfig(path string, previous []byte) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading edited config failed: %w", err)
	}

	_, validateErr := config.ValidateYAMLContent(content)
	if validateErr == nil {
		return "", nil
	}

	fmt.Fprintf(os.Stderr, "Config validation failed: %v\n", validateErr)
	rejected := path + ".invalid"
	if err := os.WriteFile(rejected, content, 0o600); err != nil {
		return "", fmt.Errorf("keeping rejected config failed: %w", err)
	}
	if err := os.WriteFile(path, previous, 0o600); err != nil {
		return "", fmt.Errorf("restoring previous config failed: %w", err)
	}
	return rejected, nil
}

// resolveConfigPath picks the --configFile flag, then the file viper loaded,
// then $HOME/.catalogrecon.yaml.
func resolveConfigPath(configFileFlag, configFileUsed string) (string, error) {
	for _, candidate := range []string{configFileFlag, configFileUsed} {
		if strings.TrimSpace(candidate) != "" {
			return candidate, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".catalogrecon.yaml"), nil
}

func ensureConfigFileWithTemplate(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("checking config file failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating config directory failed: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.ExampleYAML()), 0o600); err != nil {
		return false, fmt.Errorf("creating example config failed: %w", err)
	}
	return true, nil
}

func resolveEditorValue(visual, editor string) string {
	for _, candidate := range []string{visual, editor} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return "vi"
}

func buildEditorCommand(editorValue, configPath string) (*exec.Cmd, error) {
	fields := strings.Fields(editorValue)
	if len(fields) == 0 {
		return nil, fmt.Errorf("editor command is empty")
	}
	return exec.Command(fields[0], append(fields[1:], configPath)...), nil
}

func init() {
	configCmd.AddCommand(configEditCmd)
}
