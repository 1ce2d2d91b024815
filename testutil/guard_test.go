package testutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPredicates(t *testing.T) {
	cases := []struct {
		name string
		fn   func(string) bool
		in   string
		want bool
	}{
		{"transport http", TransportImportForbidden, "net/http", true},
		{"transport httptest", TransportImportForbidden, "net/http/httptest", true},
		{"transport adapters", TransportImportForbidden, "launchdash/internal/adapters/dashboard", true},
		{"transport url", TransportImportForbidden, "net/url", false},
		{"application export", ApplicationImportForbidden, "launchdash/internal/export", true},
		{"application storage", ApplicationImportForbidden, "launchdash/internal/storage", true},
		{"application prefix only", ApplicationImportForbidden, "launchdash/internal/exporter", false},
		{"application blob", ApplicationImportForbidden, "launchdash/internal/blob", false},
		{"infra", InfraImportForbidden, "launchdash/internal/infra/blob/s3", true},
		{"infra facade", InfraImportForbidden, "launchdash/internal/blob", false},
	}
	for _, c := range cases {
		if got := c.fn(c.in); got != c.want {
			t.Fatalf("%s: predicate(%q)=%v want %v", c.name, c.in, got, c.want)
		}
	}
}

func writePackage(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestDirectImportViolations(t *testing.T) {
	dir := writePackage(t, map[string]string{
		"a.go":      "package tmp\nimport \"net/http\"\nvar _ = http.MethodGet\n",
		"b.go":      "package tmp\nimport \"fmt\"\nvar _ = fmt.Sprint\n",
		"a_test.go": "package tmp\nimport \"launchdash/internal/export\"\n",
		"notes.txt": "net/http",
	})
	viols, err := directImportViolations(dir, TransportImportForbidden)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 || viols[0] != "net/http (in a.go)" {
		t.Fatalf("unexpected violations %v", viols)
	}
	AssertNoDirectImports(t, dir, ApplicationImportForbidden, "test files are skipped")
}

func TestDirectImportViolationsErrors(t *testing.T) {
	if _, err := directImportViolations(filepath.Join(t.TempDir(), "missing"), TransportImportForbidden); err == nil {
		t.Fatalf("expected missing dir error")
	}
	dir := writePackage(t, map[string]string{"bad.go": "package tmp\nimport (\n"})
	if _, err := directImportViolations(dir, TransportImportForbidden); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestTransitiveDependencyViolations(t *testing.T) {
	orig := goListDeps
	defer func() { goListDeps = orig }()

	goListDeps = func(string) ([]byte, error) {
		return []byte("fmt\nlaunchdash/internal/launch\n\nlaunchdash/internal/export\n"), nil
	}
	viols, _, err := transitiveDependencyViolations("./...", ApplicationImportForbidden)
	if err != nil || len(viols) != 1 || viols[0] != "launchdash/internal/export" {
		t.Fatalf("unexpected result %v %v", viols, err)
	}

	goListDeps = func(string) ([]byte, error) { return []byte("boom"), errors.New("exit 1") }
	if _, out, err := transitiveDependencyViolations("./...", ApplicationImportForbidden); err == nil || string(out) != "boom" {
		t.Fatalf("expected go list failure, got %v %q", err, out)
	}
}

type captureFatal struct{ msg string }

func (c *captureFatal) Fatalf(format string, args ...any) { c.msg = fmt.Sprintf(format, args...) }

func TestFailIfViolations(t *testing.T) {
	c := &captureFatal{}
	failIfViolations(c, "forbidden direct imports", "none", nil)
	if c.msg != "" {
		t.Fatalf("unexpected failure %q", c.msg)
	}
	failIfViolations(c, "forbidden direct imports", "domain stays pure", []string{"net/http (in a.go)"})
	if !strings.Contains(c.msg, "domain stays pure") || !strings.Contains(c.msg, "net/http (in a.go)") {
		t.Fatalf("unexpected message %q", c.msg)
	}
}
