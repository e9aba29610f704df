// Package discovery turns user-supplied paths into the files a batch will
// process.
//
// Only regular files become work items. Symbolic links and special files
// found inside a directory are skipped, so recursive expansion can never
// follow a link cycle. Top-level paths are resolved with os.Stat and may be
// symlinks.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Kind classifies a top-level input path.
type Kind int

const (
	KindNotFound Kind = iota
	KindFile
	KindDir
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "directory"
	case KindOther:
		return "other"
	default:
		return "not found"
	}
}

// ErrNotFound is returned for inputs that do not exist.
var ErrNotFound = errors.New("path does not exist")

// ErrUnsupportedKind is returned for inputs that are neither file nor directory.
var ErrUnsupportedKind = errors.New("path is neither file nor directory")

// MetadataError wraps a failure to read filesystem metadata for Path.
type MetadataError struct {
	Path string
	Err  error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("failed to read metadata for %s: %v", e.Path, e.Err)
}

func (e *MetadataError) Unwrap() error { return e.Err }

// SkippedError lists nested directories a recursive expansion could not
// read. The entries found elsewhere are returned alongside it.
type SkippedError struct {
	Dirs []*MetadataError
}

func (e *SkippedError) Error() string {
	if len(e.Dirs) == 1 {
		return e.Dirs[0].Error()
	}
	return fmt.Sprintf("%d directories skipped, first: %v", len(e.Dirs), e.Dirs[0])
}

func (e *SkippedError) Unwrap() []error {
	errs := make([]error, len(e.Dirs))
	for i, d := range e.Dirs {
		errs[i] = d
	}
	return errs
}

// Entry is a discovered file. RelDir is the file's directory relative to the
// directory argument it was found in; it is empty for direct children and for
// files passed on the command line.
type Entry struct {
	Path   string
	RelDir string
}

// Classify reports whether path is a file, a directory, or missing.
func Classify(path string) (Kind, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return KindNotFound, nil
		}
		return KindNotFound, &MetadataError{Path: path, Err: err}
	}

	switch {
	case info.Mode().IsRegular():
		return KindFile, nil
	case info.IsDir():
		return KindDir, nil
	default:
		return KindOther, nil
	}
}

// Expand lists the regular files in dir. When recursive is false only the
// immediate children are returned. Results are sorted by path. In recursive
// mode the entries may come with a *SkippedError for unreadable
// subdirectories.
func Expand(dir string, recursive bool) ([]Entry, error) {
	if !recursive {
		return expandFlat(dir)
	}
	return expandTree(dir)
}

func expandFlat(dir string) ([]Entry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		if !de.Type().IsRegular() {
			continue
		}
		entries = append(entries, Entry{Path: filepath.Join(dir, de.Name())})
	}

	sortEntries(entries)
	return entries, nil
}

func expandTree(dir string) ([]Entry, error) {
	// WalkDir does not descend into a symlinked root, so walk its target and
	// report paths under the name the user gave.
	root, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory %s: %w", dir, err)
	}

	return walkTree(os.DirFS(root), dir)
}

// walkTree collects the regular files of fsys. Paths are reported under dir.
// A nested directory that cannot be read is skipped and listed in a
// *SkippedError returned together with the other entries.
func walkTree(fsys fs.FS, dir string) ([]Entry, error) {
	var (
		entries []Entry
		skipped []*MetadataError
	)

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == "." || d == nil || !d.IsDir() {
				return err
			}
			skipped = append(skipped, &MetadataError{Path: filepath.Join(dir, filepath.FromSlash(p)), Err: err})
			return fs.SkipDir
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel := filepath.FromSlash(p)
		relDir := filepath.Dir(rel)
		if relDir == "." {
			relDir = ""
		}

		entries = append(entries, Entry{Path: filepath.Join(dir, rel), RelDir: relDir})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dir, err)
	}

	sortEntries(entries)

	if len(skipped) > 0 {
		return entries, &SkippedError{Dirs: skipped}
	}
	return entries, nil
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
}

// Resolve classifies path and returns the entries it contributes to a batch.
// A file yields itself; a directory yields its expansion.
func Resolve(path string, recursive bool) ([]Entry, error) {
	kind, err := Classify(path)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindFile:
		return []Entry{{Path: path}}, nil
	case KindDir:
		return Expand(path, recursive)
	case KindNotFound:
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedKind)
	}
}
