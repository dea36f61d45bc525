// Package storetest provides a fake vault CLI for tests that exercise the
// real subprocess plumbing.
//
// The fake is a POSIX shell script named "vault" that understands
//
//	vault read -field=<f> <path>
//	vault write <path> <f>=-
//
// and keeps every secret as a file under a data directory.
package storetest

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

const script = `#!/bin/sh
data='%s'
printf '%%s\n' "$*" >> "$data/.calls"
case "$1" in
read)
	path="$3"
	if [ ! -f "$data/$path" ]; then
		echo "No value found at $path" >&2
		exit 1
	fi
	cat "$data/$path"
	;;
write)
	path="$2"
	if [ -f "$data/.fail-write" ]; then
		echo "permission denied" >&2
		exit 2
	fi
	mkdir -p "$(dirname "$data/$path")"
	cat > "$data/$path.tmp" && mv "$data/$path.tmp" "$data/$path"
	;;
*)
	echo "unsupported command $1" >&2
	exit 64
	;;
esac
`

// Vault is a fake vault CLI installed in a test's temporary directory.
type Vault struct {
	// Bin is the absolute path of the fake executable.
	Bin string
	// Dir holds one file per stored secret, at Dir/<path>.
	Dir string
}

// New installs a fake vault. Tests calling it are skipped on Windows.
func New(t testing.TB) *Vault {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake vault requires a POSIX shell")
	}
	root := t.TempDir()
	v := &Vault{
		Bin: filepath.Join(root, "bin", "vault"),
		Dir: filepath.Join(root, "data"),
	}
	if err := os.MkdirAll(filepath.Dir(v.Bin), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.MkdirAll(v.Dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	WriteScript(t, v.Bin, fmt.Sprintf(script, v.Dir))
	return v
}

// Put stores payload at path (e.g. "password-store/mail").
func (v *Vault) Put(t testing.TB, path, payload string) {
	t.Helper()
	full := filepath.Join(v.Dir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(payload), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}
}

// Get returns the payload stored at path and whether it exists.
func (v *Vault) Get(t testing.TB, path string) (string, bool) {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(v.Dir, filepath.FromSlash(path)))
	if os.IsNotExist(err) {
		return "", false
	}
	if err != nil {
		t.Fatalf("read secret: %v", err)
	}
	return string(b), true
}

// FailWrites makes every later write exit with status 2.
func (v *Vault) FailWrites(t testing.TB) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(v.Dir, ".fail-write"), nil, 0o600); err != nil {
		t.Fatalf("write marker: %v", err)
	}
}

// Calls returns the argument lists the fake was invoked with, in order.
func (v *Vault) Calls(t testing.TB) []string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(v.Dir, ".calls"))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read calls: %v", err)
	}
	return strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
}

// WriteScript writes an executable shell script to path.
func WriteScript(t testing.TB, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write script %s: %v", path, err)
	}
}
