package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/AnyUserName/mediacanon/internal/catalog"
	"github.com/AnyUserName/mediacanon/internal/config"
	"github.com/AnyUserName/mediacanon/internal/media"
	"github.com/AnyUserName/mediacanon/internal/pipeline"
	"github.com/AnyUserName/mediacanon/internal/tools"
)

// ErrToolsMissing is returned when identify/convert are not installed and
// the run was not told to degrade.
var ErrToolsMissing = errors.New("required tools missing")

type buildOptions struct {
	OutDir       string
	ConfigPath   string
	Profile      string
	Quality      int
	Workers      int
	Thumbnails   bool
	NoHTML       bool
	AllowMissing bool
	SkipHidden   bool
	NativeProbe  bool
}

var buildOpts buildOptions

var buildCmd = &cobra.Command{
	Use:   "build <root>",
	Short: "Select one representative per asset and write the catalog",
	Long: `Scans root recursively, classifies every file as image, vector or static,
groups renditions of the same asset by slug and keeps the best member of
each group (largest pixel area, then largest file).

Image representatives are converted to the canonical encoding of the
profile (webp by default); the converted file is written next to the
original and reused on later runs. Nothing under root is deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildOpts.OutDir, "out", "o", "./catalog_out", "output directory for catalog.json and gallery.html")
	buildCmd.Flags().StringVarP(&buildOpts.Profile, "profile", "p", "", "canonical encoding profile ("+strings.Join(config.ProfileNames(), ", ")+")")
	buildCmd.Flags().IntVarP(&buildOpts.Quality, "quality", "q", 0, "converter quality 1-100 (0 = profile default)")
	buildCmd.Flags().IntVarP(&buildOpts.Workers, "workers", "w", 0, "clusters selected in parallel (0 = config value, 1 = sequential)")
	buildCmd.Flags().BoolVar(&buildOpts.Thumbnails, "thumbnails", false, "write JPEG thumbnails for image entries")
	buildCmd.Flags().BoolVar(&buildOpts.NoHTML, "no-html", false, "skip gallery.html")
	buildCmd.Flags().BoolVar(&buildOpts.AllowMissing, "allow-missing-tools", false, "run without identify/convert (no probing, no conversion)")
	buildCmd.Flags().BoolVar(&buildOpts.SkipHidden, "skip-hidden", false, "skip dot-files and dot-directories")
	buildCmd.Flags().BoolVar(&buildOpts.NativeProbe, "native-probe", false, "read image headers in-process when identify cannot")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	buildOpts.ConfigPath = configPath
	return build(cmd.Context(), args[0], buildOpts, logger, cmd.OutOrStdout())
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts buildOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return cfg, err
	}
	if opts.Profile != "" {
		cfg.ApplyProfile(opts.Profile)
	}
	if opts.Quality > 0 {
		cfg.Canonical.Quality = opts.Quality
	}
	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}
	if opts.SkipHidden {
		cfg.Scan.SkipHidden = true
	}
	if opts.NativeProbe {
		cfg.Tools.Native = true
	}
	return cfg, cfg.Validate()
}

func build(ctx context.Context, root string, opts buildOptions, logger *log.Logger, w io.Writer) error {
	start := time.Now()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	absOut, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	reg := tools.NewRegistry(cfg.ToolOptions())
	if missing := reg.Missing(); len(missing) > 0 {
		if !opts.AllowMissing {
			return fmt.Errorf("%w: %s not found in PATH (install ImageMagick or pass --allow-missing-tools)",
				ErrToolsMissing, strings.Join(missing, ", "))
		}
		logger.Warn("running without tools", "missing", strings.Join(missing, ", "))
	}

	logger.Debug("build", "root", absRoot, "out", absOut, "profile", cfg.Profile,
		"canonical", cfg.Canonical.Extension, "quality", cfg.Canonical.Quality, "workers", cfg.Workers)
	logger.Debug(reg.String())

	classifier := media.NewClassifier(cfg.ClassifierFormats(), reg.FormatProbes(), logger)
	dims := media.NewDimensionProber(reg.DimensionProbes(), logger)
	selector := pipeline.NewSelector(dims, reg.Converter(), cfg.Canonical, logger)

	p := pipeline.New(pipeline.Config{
		Root:    absRoot,
		Workers: cfg.Workers,
		Collect: pipeline.CollectOptions{
			ProgressEvery: cfg.Scan.ProgressEvery,
			SkipHidden:    cfg.Scan.SkipHidden,
			Exclude:       []string{absOut},
		},
	}, classifier, selector, logger)

	res, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	if err := os.MkdirAll(absOut, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	cat, err := catalog.FromResult(res, absOut, cfg.Profile)
	if err != nil {
		return err
	}

	if opts.Thumbnails {
		th := catalog.NewThumbnailer(filepath.Join(absOut, catalog.ThumbDir))
		if _, err := th.Apply(ctx, cat, absOut, logger); err != nil {
			return fmt.Errorf("thumbnails: %w", err)
		}
	}

	written := []string{filepath.Join(absOut, catalog.FileName)}
	if err := catalog.WriteJSON(cat, written[0]); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	if !opts.NoHTML {
		gallery := filepath.Join(absOut, catalog.GalleryName)
		if err := catalog.WriteHTML(cat, gallery); err != nil {
			return err
		}
		written = append(written, gallery)
	}
	logger.Info("wrote catalog", "path", written[len(written)-1], "items", len(cat.Entries))

	printBuildReport(w, cat, res.Stats, written, time.Since(start))
	return nil
}

func printBuildReport(w io.Writer, c *catalog.Catalog, s pipeline.Stats, written []string, elapsed time.Duration) {
	printTitle(w, "mediacanon build complete")

	printCount(w, "Files scanned", s.FilesScanned)
	if s.FilesSkipped > 0 {
		printCount(w, "Unreadable", s.FilesSkipped)
	}
	printCount(w, "Representatives", len(c.Entries))
	printKeyValue(w, "Kinds", fmt.Sprintf("%d image, %d vector, %d static", s.Images, s.Vectors, s.Statics))
	printKeyValue(w, "Canonical", fmt.Sprintf("%d converted, %d reused", s.Converted, s.Reused))
	printKeyValue(w, "Total size", formatBytes(c.Stats.TotalBytes))
	printKeyValue(w, "Time", elapsed.Round(time.Millisecond).String())
	fmt.Fprintln(w)

	if s.ConvertFailed > 0 {
		printWarning(w, "%d conversions failed, originals kept", s.ConvertFailed)
	}
	if s.ConvertSkipped > 0 {
		printWarning(w, "%d images not converted (no converter)", s.ConvertSkipped)
	}
	if len(s.LearnedFormats) > 0 {
		printWarning(w, "unknown formats treated as static: %s", strings.Join(s.LearnedFormats, ", "))
	}

	// Largest clusters first.
	if len(c.Entries) > 0 {
		top := make([]catalog.Entry, len(c.Entries))
		copy(top, c.Entries)
		sort.SliceStable(top, func(i, j int) bool { return top[i].Members > top[j].Members })
		n := min(len(top), 5)
		if top[0].Members > 1 {
			fmt.Fprintln(w, "  "+styleDim.Render("Most renditions:"))
			for _, e := range top[:n] {
				if e.Members < 2 {
					break
				}
				fmt.Fprintf(w, "    %-40s %3d %s %s\n", truncKey(e.Slug, 40), e.Members, iconArrow, e.Path)
			}
			fmt.Fprintln(w)
		}
	}

	for _, p := range written {
		printFile(w, p)
	}
	printSuccess(w, "Wrote %s with %d items.", filepath.Base(written[len(written)-1]), len(c.Entries))
	fmt.Fprintln(w)
}
