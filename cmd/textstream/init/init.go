// Package initcmder provides the init command for initializing a local
// .textstream directory in the current working directory.
package initcmder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/textstream/pkg/config"
)

const (
	dirName = ".textstream"
)

const initLongDesc string = `Initialize a new .textstream/ directory in the current working directory.

Creates a local .textstream/ directory that takes precedence over the default
~/.textstream/ directory for configuration and the last completion used by
"textstream complete --continue".

Use --preset to write a config.toml for a known endpoint:
  openai     https://api.openai.com/v1/completions
  llamacpp   a local llama.cpp server on http://localhost:8080/completion
  replay     a local "textstream replay" server

Examples:
  textstream init
  textstream init --preset llamacpp`

const initShortDesc string = "Initialize a local .textstream/ directory"

type initCommander struct {
	preset string
}

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "",
		fmt.Sprintf("Write a config.toml for an endpoint preset (%s)", strings.Join(config.ValidPresetNames(), ", ")))

	return cmd
}

func (c *initCommander) run(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	var preset *config.Config
	if c.preset != "" {
		var err error
		preset, err = config.PresetConfig(c.preset)
		if err != nil {
			return err
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		fmt.Fprintf(out, "Already initialized: %s\n", dir)
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("checking .textstream directory: %w", err)
	default:
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .textstream directory: %w", err)
		}
		fmt.Fprintf(out, "Initialized .textstream directory: %s\n", dir)
	}

	if preset == nil {
		return nil
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfger.SaveConfig(preset); err != nil {
		return err
	}

	fmt.Fprintf(out, "Wrote %s preset to %s\n", strings.ToLower(c.preset), cfger.GetTarget())
	return nil
}
