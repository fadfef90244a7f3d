package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version    = "dev"
	verbose    bool
	configPath string
	logger     = newLogger(os.Stderr, log.InfoLevel)
)

var rootCmd = &cobra.Command{
	Use:   "mediacanon",
	Short: "Pick one canonical file per asset in a web upload tree",
	Long: `mediacanon walks a directory of uploaded web assets, groups the many
renditions of each logical asset (villa-1200x800.jpg, villa-600x400@2x.jpg,
villa.png ...) and keeps the best one, converting it to the canonical
encoding when needed.

The chosen files are written to catalog.json together with a browsable
gallery.html.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetLevel(log.DebugLevel)
		}
	},
}

// Execute runs the root command. Cancelling ctx stops a running scan.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file")
	rootCmd.Version = buildVersion()
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"mediacanon %s (%s/%s, %s)\n",
		rootCmd.Version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// newLogger creates the run logger. Timestamps are formatted as
// "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Prefix:          "mediacanon",
		Level:           level,
	})
}

// buildVersion prefers the module version stamped by `go install`.
func buildVersion() string {
	if version != "dev" {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return version
}
