package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/mediacanon/internal/catalog"
)

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_catalog>",
	Short: "Display statistics for a built catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	path, err := catalogPath(args[0])
	if err != nil {
		return err
	}
	c, err := catalog.ReadJSON(path)
	if err != nil {
		return err
	}
	printStats(cmd.OutOrStdout(), c)
	return nil
}

// catalogPath accepts either catalog.json or the directory holding it.
func catalogPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, catalog.FileName)
	}
	return path, nil
}

func printStats(w io.Writer, c *catalog.Catalog) {
	printTitle(w, "mediacanon catalog")
	printKeyValue(w, "Version", fmt.Sprint(c.Version))
	printKeyValue(w, "Generated", c.GeneratedAt)
	printKeyValue(w, "Root", c.Root)
	printKeyValue(w, "Profile", c.Profile)
	fmt.Fprintln(w)

	s := c.Stats
	printCount(w, "Files scanned", s.FilesScanned)
	printCount(w, "Entries", len(c.Entries))
	printKeyValue(w, "Total size", formatBytes(s.TotalBytes))
	fmt.Fprintln(w)

	// Per-kind breakdown.
	type kindStat struct {
		count   int
		members int
		bytes   int64
	}
	kinds := map[string]kindStat{}
	outcomes := map[string]int{}
	for _, e := range c.Entries {
		ks := kinds[e.Kind]
		ks.count++
		ks.members += e.Members
		ks.bytes += e.Size
		kinds[e.Kind] = ks
		outcomes[e.Outcome]++
	}
	fmt.Fprintln(w, "  "+styleDim.Render("Kind breakdown:"))
	for _, k := range []string{"image", "vector", "static"} {
		if ks, ok := kinds[k]; ok {
			fmt.Fprintf(w, "    %-7s %5d entries  %6d renditions  %s\n", k, ks.count, ks.members, formatBytes(ks.bytes))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  "+styleDim.Render("Canonical encoding:"))
	for _, o := range []string{"canonical", "converted", "reused", "convert-failed", "convert-skipped"} {
		if n := outcomes[o]; n > 0 {
			fmt.Fprintf(w, "    %-16s %5d\n", o, n)
		}
	}
	fmt.Fprintln(w)

	// Top 10 heaviest entries.
	if len(c.Entries) > 0 {
		items := make([]catalog.Entry, len(c.Entries))
		copy(items, c.Entries)
		sort.SliceStable(items, func(i, j int) bool { return items[i].Size > items[j].Size })
		n := min(len(items), 10)
		fmt.Fprintf(w, "  %s\n", styleDim.Render(fmt.Sprintf("Top %d heaviest:", n)))
		for _, e := range items[:n] {
			dims := ""
			if e.Width > 0 && e.Height > 0 {
				dims = fmt.Sprintf("%dx%d", e.Width, e.Height)
			}
			fmt.Fprintf(w, "    %-40s %9s  %s\n", truncKey(e.Path, 40), formatBytes(e.Size), dims)
		}
		fmt.Fprintln(w)
	}

	if len(s.LearnedFormats) > 0 {
		printWarning(w, "unknown formats treated as static: %s", strings.Join(s.LearnedFormats, ", "))
		fmt.Fprintln(w)
	}
}
