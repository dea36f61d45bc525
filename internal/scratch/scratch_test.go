package scratch

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestScratchFile(t *testing.T) {
	base := t.TempDir()

	t.Run("create write read remove", func(t *testing.T) {
		f, err := New(base)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		if !strings.HasPrefix(f.Path(), base+string(filepath.Separator)) {
			t.Errorf("Path() = %q, want it under %q", f.Path(), base)
		}
		if filepath.Base(f.Path()) != "secret" {
			t.Errorf("file name = %q, want %q", filepath.Base(f.Path()), "secret")
		}

		w, err := f.Create()
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if _, err := io.WriteString(w, "hunter2"); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		w.Close()

		r, err := f.Open()
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		got, _ := io.ReadAll(r)
		r.Close()
		if string(got) != "hunter2" {
			t.Errorf("contents = %q, want %q", got, "hunter2")
		}

		dir := filepath.Dir(f.Path())
		if err := f.Remove(); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Error("private directory should not exist after Remove")
		}
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		f, err := New(base)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if err := f.Remove(); err != nil {
			t.Fatalf("first Remove failed: %v", err)
		}
		if err := f.Remove(); err != nil {
			t.Errorf("second Remove failed: %v", err)
		}
	})

	t.Run("remove takes editor leftovers", func(t *testing.T) {
		f, err := New(base)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		swap := filepath.Join(filepath.Dir(f.Path()), ".secret.swp")
		if err := os.WriteFile(swap, []byte("swap"), 0o600); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		if err := f.Remove(); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if _, err := os.Stat(swap); !os.IsNotExist(err) {
			t.Error("swap file should not survive Remove")
		}
	})

	t.Run("private permissions", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("POSIX permissions")
		}
		f, err := New(base)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer f.Remove()

		dirInfo, err := os.Stat(filepath.Dir(f.Path()))
		if err != nil {
			t.Fatalf("Stat failed: %v", err)
		}
		if perm := dirInfo.Mode().Perm(); perm != 0o700 {
			t.Errorf("dir mode = %o, want 700", perm)
		}
		fileInfo, err := os.Stat(f.Path())
		if err != nil {
			t.Fatalf("Stat failed: %v", err)
		}
		if perm := fileInfo.Mode().Perm(); perm&0o077 != 0 {
			t.Errorf("file mode = %o, want no group/other bits", perm)
		}
	})

	t.Run("separate files do not collide", func(t *testing.T) {
		a, err := New(base)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer a.Remove()
		b, err := New(base)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer b.Remove()
		if a.Path() == b.Path() {
			t.Errorf("both scratch files at %q", a.Path())
		}
	})
}

func TestScratchMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrNoScratchDir) {
		t.Errorf("New() error = %v, want ErrNoScratchDir", err)
	}

	file := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	_, err = New(file)
	if !errors.Is(err, ErrNoScratchDir) {
		t.Errorf("New(file) error = %v, want ErrNoScratchDir", err)
	}
}
