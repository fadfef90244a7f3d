package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/mediacanon/internal/config"
	"github.com/AnyUserName/mediacanon/internal/tools"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Check that the external image tools are installed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		return checkTools(cmd.OutOrStdout(), tools.NewRegistry(cfg.ToolOptions()))
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

func checkTools(w io.Writer, reg *tools.Registry) error {
	for _, name := range reg.Available() {
		printSuccess(w, "%s", name)
	}
	missing := reg.Missing()
	for _, name := range missing {
		printError(w, "%s not found in PATH", name)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrToolsMissing, strings.Join(missing, ", "))
	}
	return nil
}
