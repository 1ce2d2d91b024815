package sqldocs

import (
	"strings"
	"testing"
)

func TestBundlesCreateStateTable(t *testing.T) {
	for name, ddl := range map[string]string{"sqlite": SQLite, "postgres": Postgres} {
		upper := strings.ToUpper(ddl)
		if !strings.Contains(upper, "CREATE TABLE IF NOT EXISTS STATE") {
			t.Fatalf("%s bundle missing state table: %s", name, ddl)
		}
		if !strings.Contains(upper, "BUCKET TEXT PRIMARY KEY") {
			t.Fatalf("%s bundle missing bucket key", name)
		}
	}
	if !strings.Contains(Postgres, "JSONB") {
		t.Fatalf("postgres payload should be JSONB")
	}
}
