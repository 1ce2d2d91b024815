package postgres_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"launchdash/internal/export"
	"launchdash/internal/infra/persistence/postgres"
	"launchdash/internal/infra/persistence/postgres/testutil"
)

func openStub(t *testing.T) (*sql.DB, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := postgres.OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	t.Cleanup(restore)
	return db, conn
}

func TestNewStoreCreatesStateTable(t *testing.T) {
	_, conn := openStub(t)
	store, err := postgres.NewStore(context.Background(), "")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if store.DB() == nil {
		t.Fatalf("expected db handle")
	}
	var sawDDL bool
	for _, stmt := range conn.Execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE IF NOT EXISTS STATE") {
			sawDDL = true
		}
	}
	if !sawDDL {
		t.Fatalf("expected state table DDL, got %v", conn.Execs)
	}
}

func TestSaveSnapshotsAndRehydrates(t *testing.T) {
	ctx := context.Background()
	db, conn := openStub(t)
	store, err := postgres.NewStore(ctx, "postgres://stub")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.SaveExport(ctx, export.Record{ID: "exp-9", Site: "ALL", Status: export.StatusQueued}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.AppendAudit(ctx, export.AuditEntry{ID: "1", ExportID: "exp-9", Status: export.StatusQueued}); err != nil {
		t.Fatalf("audit: %v", err)
	}
	if rows := conn.Rows("state"); len(rows) != 2 {
		t.Fatalf("expected one row per bucket, got %d", len(rows))
	}

	restore := postgres.OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	reopened, err := postgres.NewStore(ctx, "postgres://stub")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, ok, err := reopened.GetExport(ctx, "exp-9")
	if err != nil || !ok || got.Site != "ALL" {
		t.Fatalf("unexpected rehydrated record %+v ok=%v err=%v", got, ok, err)
	}
	entries, _ := reopened.ListAudit(ctx, "exp-9")
	if len(entries) != 1 {
		t.Fatalf("expected rehydrated audit entry, got %d", len(entries))
	}
}

func TestNewStorePingFailure(t *testing.T) {
	_, conn := openStub(t)
	conn.FailPing = true
	if _, err := postgres.NewStore(context.Background(), ""); err == nil {
		t.Fatalf("expected ping failure")
	}
}

func TestSaveCommitFailure(t *testing.T) {
	ctx := context.Background()
	_, conn := openStub(t)
	store, err := postgres.NewStore(ctx, "")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	conn.FailCommit = true
	if err := store.SaveExport(ctx, export.Record{ID: "x"}); err == nil {
		t.Fatalf("expected commit failure")
	}
}
