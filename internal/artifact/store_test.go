package artifact

import (
	"bytes"
	"context"
	"testing"

	"github.com/codi-diyt/actividades/internal/model"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}

	artifact := model.Artifact{
		Format:   model.FormatPlainText,
		Filename: "reporte_anual_narrativo_2025.md",
		MIME:     "text/markdown; charset=utf-8",
		Content:  []byte("# Reporte Anual de Actividades 2025\n"),
	}

	path, err := store.Save(ctx, "abc-123", artifact)
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if path != "abc-123/reporte_anual_narrativo_2025.md" {
		t.Fatalf("path=%q", path)
	}

	got, err := store.Load(ctx, path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !bytes.Equal(got, artifact.Content) {
		t.Fatalf("contenido distinto tras el round trip")
	}
}

func TestFileStoreRemove(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}

	artifact := model.Artifact{
		Format:   model.FormatPlainText,
		Filename: "reporte_anual_narrativo_2025.md",
		MIME:     "text/markdown; charset=utf-8",
		Content:  []byte("# Reporte\n"),
	}
	path, err := store.Save(ctx, "perdedor-1", artifact)
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}

	if err := store.Remove(ctx, "perdedor-1"); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if _, err := store.Load(ctx, path); err == nil {
		t.Fatalf("Load(%q) debería fallar tras Remove", path)
	}

	for _, bad := range []string{"", "..", "a/b", `a\b`} {
		if err := store.Remove(ctx, bad); err == nil {
			t.Fatalf("Remove(%q) debería fallar", bad)
		}
	}
}

func TestFileStoreRejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}

	for _, bad := range []string{"../fuera.md", "/etc/passwd", "a/../../fuera.md"} {
		if _, err := store.Load(ctx, bad); err == nil {
			t.Fatalf("Load(%q) debería fallar", bad)
		}
	}
}
