/*
Copyright © 2025 Logicos Software

cmd_test.go runs the commands end to end against a fake vault client,
editor and password generator.
*/
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"vaultpass/internal/qr"
	"vaultpass/internal/store/storetest"
)

// isolate keeps the developer's environment and config file out of a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	for _, env := range os.Environ() {
		key, _, _ := strings.Cut(env, "=")
		if strings.HasPrefix(key, "VAULTPASS_") || key == "EDITOR" {
			t.Setenv(key, "")
		}
	}
}

// resetFlags restores every flag of c and its subcommands to its default,
// since rootCmd is shared by all tests.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

type result struct {
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	if args == nil {
		// cobra falls back to os.Args for nil.
		args = []string{}
	}
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

type fixture struct {
	vault   *storetest.Vault
	bin     string
	scratch string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	isolate(t)
	return &fixture{
		vault:   storetest.New(t),
		bin:     t.TempDir(),
		scratch: t.TempDir(),
	}
}

func (f *fixture) script(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(f.bin, name)
	storetest.WriteScript(t, path, "#!/bin/sh\n"+body+"\n")
	return path
}

// flags are the global flags pointing at the fixture.
func (f *fixture) flags(extra ...string) []string {
	return append([]string{
		"--vault-bin=" + f.vault.Bin,
		"--scratch-dir=" + f.scratch,
	}, extra...)
}

func TestReadCommand(t *testing.T) {
	f := newFixture(t)
	f.vault.Put(t, "password-store/mail", "hunter2\n")

	res := execute(t, "", f.flags("mail")...)
	if res.err != nil {
		t.Fatalf("read failed: %v", res.err)
	}
	if res.stdout != "hunter2\n" {
		t.Errorf("stdout = %q, want %q", res.stdout, "hunter2\n")
	}
	if calls := f.vault.Calls(t); len(calls) != 1 {
		t.Errorf("vault called %d times, want 1: %v", len(calls), calls)
	}
}

func TestReadMissingSecret(t *testing.T) {
	f := newFixture(t)

	res := execute(t, "", f.flags("missing-secret")...)
	if res.err == nil {
		t.Fatal("expected an error for a missing secret")
	}

	var buf bytes.Buffer
	printError(&buf, res.err, false)
	if !strings.Contains(buf.String(), "vault failed") {
		t.Errorf("error output = %q, want it to contain %q", buf.String(), "vault failed")
	}
	if got := ClassifyError(res.err).Category; got != ErrCategoryStore {
		t.Errorf("Category = %v, want Store", got)
	}
	if !strings.Contains(res.stderr, "No value found at password-store/missing-secret") {
		t.Errorf("vault stderr not passed through: %q", res.stderr)
	}
}

func TestReadNamespaceFromEnvironment(t *testing.T) {
	f := newFixture(t)
	f.vault.Put(t, "team/mail", "shared")
	t.Setenv("VAULTPASS_NAMESPACE", "team")

	res := execute(t, "", f.flags("mail")...)
	if res.err != nil {
		t.Fatalf("read failed: %v", res.err)
	}
	if res.stdout != "shared" {
		t.Errorf("stdout = %q, want %q", res.stdout, "shared")
	}
}

func TestEditCommand(t *testing.T) {
	f := newFixture(t)
	f.vault.Put(t, "password-store/mail", "old")
	t.Setenv("EDITOR", f.script(t, "editor", `for last; do :; done; printf 'new' > "$last"`))

	res := execute(t, "", append([]string{"edit"}, f.flags("mail")...)...)
	if res.err != nil {
		t.Fatalf("edit failed: %v", res.err)
	}
	if got, _ := f.vault.Get(t, "password-store/mail"); got != "new" {
		t.Errorf("stored = %q, want %q", got, "new")
	}
	entries, err := os.ReadDir(f.scratch)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("scratch directory not cleaned up: %v", entries)
	}
}

func TestEditCommandEditorFails(t *testing.T) {
	f := newFixture(t)
	f.vault.Put(t, "password-store/mail", "old")
	t.Setenv("EDITOR", f.script(t, "editor", `exit 1`))

	res := execute(t, "", append([]string{"edit"}, f.flags("mail")...)...)
	if got := ClassifyError(res.err); got == nil || got.Category != ErrCategoryEditor {
		t.Fatalf("error = %v, want an Editor error", res.err)
	}
	if got, _ := f.vault.Get(t, "password-store/mail"); got != "old" {
		t.Errorf("stored = %q, want it unchanged", got)
	}
}

func TestGenerateCommand(t *testing.T) {
	tests := []struct {
		name     string
		existing bool
		stdin    string
		args     []string
		want     string
		prompted bool
	}{
		{name: "new secret", want: "fresh\n"},
		{name: "existing declined", existing: true, stdin: "n\n", want: "old", prompted: true},
		{name: "existing accepted", existing: true, stdin: "y\n", want: "fresh\n", prompted: true},
		{name: "existing no answer", existing: true, stdin: "", want: "old", prompted: true},
		{name: "existing with --yes", existing: true, args: []string{"--yes"}, want: "fresh\n"},
		{name: "existing with -y", existing: true, args: []string{"-y"}, want: "fresh\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.existing {
				f.vault.Put(t, "password-store/mail", "old")
			}
			gen := f.script(t, "genpass", "echo fresh")

			args := append([]string{"generate", "--generator=" + gen}, tt.args...)
			res := execute(t, tt.stdin, append(args, f.flags("mail")...)...)
			if res.err != nil {
				t.Fatalf("generate failed: %v", res.err)
			}
			if got, _ := f.vault.Get(t, "password-store/mail"); got != tt.want {
				t.Errorf("stored = %q, want %q", got, tt.want)
			}
			prompted := strings.Contains(res.stderr, `A password already exists for "mail". Overwrite? [y/N]: `)
			if prompted != tt.prompted {
				t.Errorf("prompted = %v, want %v (stderr %q)", prompted, tt.prompted, res.stderr)
			}
		})
	}
}

func TestQRCommand(t *testing.T) {
	f := newFixture(t)
	f.vault.Put(t, "password-store/wifi", "WIFI:S:home;T:WPA;P:hunter2;;")

	res := execute(t, "", append([]string{"qr"}, f.flags("wifi")...)...)
	if res.err != nil {
		t.Fatalf("qr failed: %v", res.err)
	}
	want, err := qr.Render([]byte("WIFI:S:home;T:WPA;P:hunter2;;"))
	if err != nil {
		t.Fatal(err)
	}
	if res.stdout != want+"\n" {
		t.Errorf("stdout does not match the rendered code:\n%s", res.stdout)
	}
}

func TestCommandLineErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want ErrorCategory
	}{
		{"no secret", nil, ErrCategoryInput},
		{"edit without secret", []string{"edit"}, ErrCategoryInput},
		{"too many secrets", []string{"a", "b"}, ErrCategoryInput},
		{"qr with two secrets", []string{"qr", "a", "b"}, ErrCategoryInput},
		{"unknown flag", []string{"--bogus", "mail"}, ErrCategoryInput},
		{"unknown backend", []string{"--backend=etcd", "mail"}, ErrCategoryConfig},
		{"unknown log level", []string{"--log-level=loud", "mail"}, ErrCategoryConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			res := execute(t, "", tt.args...)
			if res.err == nil {
				t.Fatal("expected an error")
			}
			if got := ClassifyError(res.err).Category; got != tt.want {
				t.Errorf("Category = %v, want %v (%v)", got, tt.want, res.err)
			}
		})
	}
}

func TestMissingVaultBinary(t *testing.T) {
	isolate(t)
	res := execute(t, "", "--vault-bin=vaultpass-test-no-such-vault", "mail")

	vpe := ClassifyError(res.err)
	if vpe == nil || vpe.Category != ErrCategoryStore || !strings.HasPrefix(vpe.Message, "vault client not found") {
		t.Errorf("error = %v, want vault client not found", res.err)
	}
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	// An invalid setting must not break version.
	t.Setenv("VAULTPASS_BACKEND", "etcd")

	res := execute(t, "", "version")
	if res.err != nil {
		t.Fatalf("version failed: %v", res.err)
	}
	for _, want := range []string{"vaultpass", "Version:", "Git Commit:"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("version output missing %q:\n%s", want, res.stdout)
		}
	}
}
