package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestExportObjectName(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	name := ExportObjectName(at)

	if !strings.HasPrefix(name, "exports/2024-03-09T14-05-07Z-") {
		t.Fatalf("unexpected object name %q", name)
	}
	if !strings.HasSuffix(name, ".json") || strings.Contains(name, ":") {
		t.Fatalf("object name %q is not a portable key", name)
	}
	if ExportObjectName(at) == name {
		t.Fatal("object names taken at the same instant must differ")
	}
}

func TestArchiveObjectKey(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"a.json":          "exports/a.json",
		"/a.json":         "exports/a.json",
		"exports/a.json":  "exports/a.json",
		"/exports/a.json": "exports/a.json",
	}
	for in, want := range cases {
		if got := ArchiveObjectKey(in); got != want {
			t.Fatalf("ArchiveObjectKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMinIODisabled(t *testing.T) {
	t.Parallel()

	svc := &MinIOService{}
	if svc.Enabled() {
		t.Fatal("service without client reported enabled")
	}
	if _, err := svc.ListExports(context.Background()); !errors.Is(err, ErrArchiveDisabled) {
		t.Fatalf("ListExports error = %v, want ErrArchiveDisabled", err)
	}
	if _, err := svc.FetchExport(context.Background(), "a.json"); !errors.Is(err, ErrArchiveDisabled) {
		t.Fatalf("FetchExport error = %v, want ErrArchiveDisabled", err)
	}
}
