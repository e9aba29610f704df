package discovery

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.png")

	cases := []struct {
		path string
		want Kind
	}{
		{filepath.Join(dir, "a.png"), KindFile},
		{dir, KindDir},
		{filepath.Join(dir, "missing.png"), KindNotFound},
	}
	for _, tc := range cases {
		got, err := Classify(tc.path)
		if err != nil {
			t.Fatalf("Classify(%s): %v", tc.path, err)
		}
		if got != tc.want {
			t.Errorf("Classify(%s) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestExpand_FlatRegularFilesOnly(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.png")
	touch(t, dir, "a.png")
	mkdir(t, dir, "nested")
	touch(t, filepath.Join(dir, "nested"), "c.png")
	if err := os.Symlink(filepath.Join(dir, "a.png"), filepath.Join(dir, "link.png")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	entries, err := Expand(dir, false)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	want := []string{"a.png", "b.png"}
	if got := names(entries); !equal(got, want) {
		t.Errorf("got %v, want %v (symlinks and subdirectories excluded)", got, want)
	}
	for _, e := range entries {
		if e.RelDir != "" {
			t.Errorf("%s: RelDir = %q, want empty", e.Path, e.RelDir)
		}
	}
}

func TestExpand_EmptyDir(t *testing.T) {
	entries, err := Expand(t.TempDir(), false)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}

func TestExpand_RecursivePreservesRelativeDir(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "top.png")
	mkdir(t, dir, filepath.Join("2024", "june"))
	touch(t, filepath.Join(dir, "2024"), "y.png")
	touch(t, filepath.Join(dir, "2024", "june"), "z.png")

	entries, err := Expand(dir, true)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	got := map[string]string{}
	for _, e := range entries {
		got[filepath.Base(e.Path)] = e.RelDir
	}
	want := map[string]string{
		"top.png": "",
		"y.png":   "2024",
		"z.png":   filepath.Join("2024", "june"),
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for name, rel := range want {
		if got[name] != rel {
			t.Errorf("%s: RelDir = %q, want %q", name, got[name], rel)
		}
	}
}

func TestExpand_RecursiveIgnoresSymlinkCycle(t *testing.T) {
	dir := t.TempDir()
	mkdir(t, dir, "sub")
	touch(t, filepath.Join(dir, "sub"), "a.png")
	if err := os.Symlink(dir, filepath.Join(dir, "sub", "loop")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	entries, err := Expand(dir, true)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d entries, want 1", len(entries))
	}
}

// lockedDirFS fails to list the directory named locked.
type lockedDirFS struct {
	fstest.MapFS
	locked string
}

func (f lockedDirFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if name == f.locked {
		return nil, fs.ErrPermission
	}
	return f.MapFS.ReadDir(name)
}

func TestWalkTree_SkipsUnreadableSubdir(t *testing.T) {
	fsys := lockedDirFS{
		MapFS: fstest.MapFS{
			"a.png":          {Data: []byte("a")},
			"locked/b.png":   {Data: []byte("b")},
			"ok/c.png":       {Data: []byte("c")},
			"ok/deep/d.webp": {Data: []byte("d")},
		},
		locked: "locked",
	}

	entries, err := walkTree(fsys, "photos")

	var skipped *SkippedError
	if !errors.As(err, &skipped) {
		t.Fatalf("got %v, want *SkippedError", err)
	}
	if len(skipped.Dirs) != 1 || skipped.Dirs[0].Path != filepath.Join("photos", "locked") {
		t.Errorf("skipped = %+v", skipped.Dirs)
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Errorf("err does not wrap the read failure: %v", err)
	}

	want := []Entry{
		{Path: filepath.Join("photos", "a.png")},
		{Path: filepath.Join("photos", "ok", "c.png"), RelDir: "ok"},
		{Path: filepath.Join("photos", "ok", "deep", "d.webp"), RelDir: filepath.Join("ok", "deep")},
	}
	if len(entries) != len(want) {
		t.Fatalf("got %+v, want %+v", entries, want)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestWalkTree_UnreadableRootFails(t *testing.T) {
	fsys := lockedDirFS{MapFS: fstest.MapFS{"a.png": {}}, locked: "."}

	entries, err := walkTree(fsys, "photos")
	if err == nil || entries != nil {
		t.Fatalf("got %v, %v, want a hard failure", entries, err)
	}
	var skipped *SkippedError
	if errors.As(err, &skipped) {
		t.Error("root failure must not be reported as skipped")
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.png")

	entries, err := Resolve(filepath.Join(dir, "a.png"), false)
	if err != nil || len(entries) != 1 {
		t.Fatalf("file: got %v, %v", entries, err)
	}

	entries, err = Resolve(dir, false)
	if err != nil || len(entries) != 1 {
		t.Fatalf("dir: got %v, %v", entries, err)
	}

	_, err = Resolve(filepath.Join(dir, "missing"), false)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing: got %v, want ErrNotFound", err)
	}
}

// --- Helpers ---

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte{}, 0o644); err != nil {
		t.Fatalf("touch %s: %v", name, err)
	}
}

func mkdir(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, name), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", name, err)
	}
}

func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = filepath.Base(e.Path)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
