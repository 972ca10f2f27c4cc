package sync

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/entrydrive/syncbox/internal/utils"
	"github.com/entrydrive/syncbox/pkg/entrystate"
)

const defaultScanWorkers = 8

// EntryStatus is one scanned entry's classification.
type EntryStatus struct {
	// Path is the entry path relative to the scan root, forward slashes.
	Path string
	// State is the resolved sync state. Malformed entries report
	// StateNotSet here with Err carrying the decode failure.
	State entrystate.SyncState
	// Size of the entry in bytes.
	Size int64
	// Err is non-nil only for malformed sidecar records.
	Err error
}

// ScanSummary aggregates a scan.
type ScanSummary struct {
	NotSet     int
	Synced     int
	Refresh    int
	Malformed  int
	TotalBytes uint64
}

// ScanResult is the outcome of one full tree scan.
type ScanResult struct {
	Entries []EntryStatus
	Summary ScanSummary
}

// Scanner walks a drive root and resolves every entry's sync state. Sidecar
// files themselves are never reported as entries; ignore rules and an
// optional doublestar include pattern filter the rest. Each entry is an
// independent point-in-time resolve; the scan is not a consistent snapshot
// of the whole tree.
type Scanner struct {
	root   string
	ignore *IgnoreList

	// Pattern is an optional doublestar glob matched against the
	// root-relative path, e.g. "**/*.txt". Empty matches everything.
	Pattern string

	// Workers bounds concurrent resolves. Zero means defaultScanWorkers.
	Workers int
}

func NewScanner(root string) (*Scanner, error) {
	root, err := utils.ResolvePath(root)
	if err != nil {
		return nil, fmt.Errorf("resolve scan root: %w", err)
	}
	if !utils.DirExists(root) {
		return nil, fmt.Errorf("scan root %q is not a directory", root)
	}

	return &Scanner{
		root:   root,
		ignore: NewIgnoreList(root),
	}, nil
}

// Scan walks the tree, resolves entries concurrently and returns per-entry
// states plus a summary. Entries come back sorted by walk order.
func (s *Scanner) Scan(ctx context.Context) (*ScanResult, error) {
	if s.Pattern != "" && !doublestar.ValidatePattern(s.Pattern) {
		return nil, fmt.Errorf("invalid pattern %q", s.Pattern)
	}

	type candidate struct {
		relPath string
		size    int64
	}

	var candidates []candidate
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("walk %s: %w", path, walkErr)
		}
		if path == s.root {
			return nil
		}

		relPath, err := filepath.Rel(s.root, path)
		if err != nil {
			return fmt.Errorf("walk rel path: %w", err)
		}
		relPath = utils.NormPath(relPath)

		if s.ignore.ShouldIgnore(relPath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if entrystate.IsSidecarPath(path) {
			return nil
		}
		if s.Pattern != "" {
			if ok, _ := doublestar.Match(s.Pattern, relPath); !ok {
				return nil
			}
		}

		info, err := d.Info()
		if err != nil {
			slog.Warn("failed to stat entry", "path", path, "error", err)
			return nil
		}

		candidates = append(candidates, candidate{relPath: relPath, size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	workers := s.Workers
	if workers <= 0 {
		workers = defaultScanWorkers
	}

	result := &ScanResult{Entries: make([]EntryStatus, len(candidates))}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			state, err := entrystate.Resolve(filepath.Join(s.root, filepath.FromSlash(c.relPath)))
			result.Entries[i] = EntryStatus{
				Path:  c.relPath,
				State: state,
				Size:  c.size,
				Err:   err,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, e := range result.Entries {
		result.Summary.TotalBytes += uint64(e.Size)
		switch {
		case e.Err != nil:
			result.Summary.Malformed++
		case e.State == entrystate.StateSynced:
			result.Summary.Synced++
		case e.State == entrystate.StateRefresh:
			result.Summary.Refresh++
		default:
			result.Summary.NotSet++
		}
	}

	return result, nil
}
