package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/AnyUserName/mediacanon/internal/media"
)

// ErrRootNotDir is returned when the scan root is missing or not a directory.
var ErrRootNotDir = errors.New("root is not a readable directory")

// AssetFile is one physical file observed during a scan.
type AssetFile struct {
	// Path is the absolute path to the file on disk.
	Path string
	// Size is the file size in bytes.
	Size int64
	// Kind is the media kind of the cluster the file belongs to.
	Kind media.Kind
}

// Cluster groups the files that represent one logical asset.
type Cluster struct {
	Slug  string
	Kind  media.Kind
	Files []AssetFile
}

type clusterKey struct {
	kind media.Kind
	slug string
}

// ClusterSet maps (kind, slug) to clusters, remembering first-seen order.
// Keying on kind as well as slug keeps "foo.txt.jpg" (image, slug "foo.txt")
// and "foo.txt" (static) in separate clusters instead of one mixed cluster.
type ClusterSet struct {
	index    map[clusterKey]int
	clusters []*Cluster
}

func newClusterSet() *ClusterSet {
	return &ClusterSet{index: make(map[clusterKey]int)}
}

// Add places f into the cluster for (kind, slug), creating it on first use.
func (s *ClusterSet) Add(slug string, f AssetFile) {
	k := clusterKey{kind: f.Kind, slug: slug}
	i, ok := s.index[k]
	if !ok {
		i = len(s.clusters)
		s.index[k] = i
		s.clusters = append(s.clusters, &Cluster{Slug: slug, Kind: f.Kind})
	}
	s.clusters[i].Files = append(s.clusters[i].Files, f)
}

// Len returns the number of clusters.
func (s *ClusterSet) Len() int { return len(s.clusters) }

// Clusters returns the clusters in first-seen order.
func (s *ClusterSet) Clusters() []*Cluster { return s.clusters }

// Lookup returns the cluster for (kind, slug).
func (s *ClusterSet) Lookup(kind media.Kind, slug string) (*Cluster, bool) {
	i, ok := s.index[clusterKey{kind: kind, slug: slug}]
	if !ok {
		return nil, false
	}
	return s.clusters[i], true
}

// CollectOptions tunes the directory walk.
type CollectOptions struct {
	// ProgressEvery logs a progress line every N files (0 disables).
	ProgressEvery int
	// SkipHidden skips dot-directories and dot-files.
	SkipHidden bool
	// Exclude lists absolute directories not to descend into, e.g. an
	// output directory nested under the root.
	Exclude []string
}

// ScanStats summarizes a walk.
type ScanStats struct {
	Files   int // regular files placed in clusters
	Skipped int // entries that could not be read
}

// Collect walks root, classifies every regular file and groups the files
// into clusters by (kind, slug). Unreadable entries are logged and skipped;
// only a bad root or a cancelled context fails the walk.
func Collect(ctx context.Context, root string, cls *media.Classifier, opts CollectOptions, logger *log.Logger) (*ClusterSet, ScanStats, error) {
	var stats ScanStats
	info, err := os.Stat(root)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %v", ErrRootNotDir, err)
	}
	if !info.IsDir() {
		return nil, stats, fmt.Errorf("%w: %s", ErrRootNotDir, root)
	}
	if _, err := os.ReadDir(root); err != nil {
		return nil, stats, fmt.Errorf("%w: %v", ErrRootNotDir, err)
	}

	exclude := make(map[string]bool, len(opts.Exclude))
	for _, p := range opts.Exclude {
		exclude[filepath.Clean(p)] = true
	}

	set := newClusterSet()
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// Permission denied etc: log and keep walking.
			logger.Warn("skipping unreadable entry", "path", path, "err", err)
			stats.Skipped++
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		hidden := opts.SkipHidden && path != root && strings.HasPrefix(d.Name(), ".")
		if d.IsDir() {
			if hidden || (path != root && exclude[path]) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}

		fi, err := fileInfo(path, d)
		if err != nil {
			logger.Warn("skipping unreadable file", "path", path, "err", err)
			stats.Skipped++
			return nil
		}
		if !fi.Mode().IsRegular() {
			return nil
		}

		kind := cls.Classify(ctx, path)
		set.Add(media.Slug(path, kind), AssetFile{Path: path, Size: fi.Size(), Kind: kind})
		stats.Files++
		if opts.ProgressEvery > 0 && stats.Files%opts.ProgressEvery == 0 {
			logger.Info("scanning", "files", stats.Files)
		}
		return nil
	})
	if err != nil {
		return nil, stats, err
	}

	logger.Info("scan complete", "files", stats.Files, "clusters", set.Len(), "skipped", stats.Skipped)
	return set, stats, nil
}

// fileInfo stats d, following a symlink so links to regular files count as
// files. Links to directories are not descended into.
func fileInfo(path string, d fs.DirEntry) (fs.FileInfo, error) {
	if d.Type()&fs.ModeSymlink != 0 {
		return os.Stat(path)
	}
	return d.Info()
}
