package service

import (
	"errors"
	"testing"
	"time"

	"github.com/codi-diyt/actividades/internal/model"
	"github.com/codi-diyt/actividades/internal/pkg/config"
)

func testNormalizerConfig() config.NormalizerConfig {
	return config.NormalizerConfig{
		DateFormats: []string{"2006-01-02", "02/01/2006", "2006/01/02", "02-01-2006"},
	}
}

func baseRecord() model.ActivityRecord {
	return model.ActivityRecord{
		ID:                "F1-pub-1",
		Category:          model.CategoryPublicacion,
		OwnerName:         "dra. maría lópez",
		OwnerEmail:        "Maria.Lopez@uni.edu",
		Title:             "  Estudio   sobre  grafos  ",
		Status:            "publicado",
		RawDate:           "2025-03-10",
		SubmissionID:      1,
		SubmissionVersion: 1,
		SubmittedAt:       time.Date(2025, 3, 12, 9, 30, 0, 0, time.UTC),
	}
}

func TestNormalizeCleansFields(t *testing.T) {
	n := NewNormalizer(testNormalizerConfig())

	got, err := n.Normalize(baseRecord())
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}

	if got.Title != "Estudio sobre grafos" {
		t.Fatalf("title=%q, want %q", got.Title, "Estudio sobre grafos")
	}
	if got.OwnerEmail != "maria.lopez@uni.edu" {
		t.Fatalf("email=%q, want %q", got.OwnerEmail, "maria.lopez@uni.edu")
	}
	if got.OwnerName != "Dra. María López" {
		t.Fatalf("name=%q, want %q", got.OwnerName, "Dra. María López")
	}
	if got.Status != model.StatusPublicado {
		t.Fatalf("status=%q, want %q", got.Status, model.StatusPublicado)
	}
	if !got.Date.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date=%v, want 2025-03-10", got.Date)
	}
}

func TestNormalizeEmailShapes(t *testing.T) {
	n := NewNormalizer(testNormalizerConfig())

	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"User..Name@@uni.edu", "user.name@uni.edu", false},
		{"  UPPER@UNI.EDU ", "upper@uni.edu", false},
		{"sin-arroba.uni.edu", "", true},
		{"dos@arrobas@con.puntos@x.y", "", true},
		{"", "", true},
	}

	for _, c := range cases {
		rec := baseRecord()
		rec.OwnerEmail = c.in
		got, err := n.Normalize(rec)
		if c.wantErr {
			if !errors.Is(err, model.ErrMalformedInput) {
				t.Fatalf("email %q: err=%v, want ErrMalformedInput", c.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("email %q: unexpected error: %v", c.in, err)
		}
		if got.OwnerEmail != c.want {
			t.Fatalf("email %q: got %q, want %q", c.in, got.OwnerEmail, c.want)
		}
	}
}

func TestNormalizeDateFormatsInOrder(t *testing.T) {
	n := NewNormalizer(testNormalizerConfig())

	cases := []struct {
		raw  string
		want time.Time
	}{
		{"2025-07-01", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
		{"01/07/2025", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
		{"2025/07/01", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
		{"01-07-2025", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		rec := baseRecord()
		rec.RawDate = c.raw
		got, err := n.Normalize(rec)
		if err != nil {
			t.Fatalf("date %q: %v", c.raw, err)
		}
		if !got.Date.Equal(c.want) {
			t.Fatalf("date %q: got %v, want %v", c.raw, got.Date, c.want)
		}
	}

	rec := baseRecord()
	rec.RawDate = "julio 1, 2025"
	if _, err := n.Normalize(rec); !errors.Is(err, model.ErrUnparseableDate) {
		t.Fatalf("err=%v, want ErrUnparseableDate", err)
	}
}

func TestNormalizeMissingDateFallsBackToSubmission(t *testing.T) {
	n := NewNormalizer(testNormalizerConfig())

	rec := baseRecord()
	rec.RawDate = ""
	got, err := n.Normalize(rec)
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	want := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	if !got.Date.Equal(want) {
		t.Fatalf("date=%v, want %v (fecha de envío)", got.Date, want)
	}
}

func TestNormalizeNumericFields(t *testing.T) {
	n := NewNormalizer(testNormalizerConfig())

	rec := baseRecord()
	rec.Category = model.CategoryCurso
	rec.Status = ""
	rec.RawHours = "40"
	got, err := n.Normalize(rec)
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if got.Hours != 40 {
		t.Fatalf("hours=%d, want 40", got.Hours)
	}
	if got.Status != model.BucketUnspecified {
		t.Fatalf("status=%q, want %q", got.Status, model.BucketUnspecified)
	}

	for _, bad := range []string{"-5", "cuarenta", "4.5"} {
		rec.RawHours = bad
		if _, err := n.Normalize(rec); !errors.Is(err, model.ErrInvalidNumeric) {
			t.Fatalf("hours %q: err=%v, want ErrInvalidNumeric", bad, err)
		}
	}
}

func TestNormalizeRejectsUnknownStatus(t *testing.T) {
	n := NewNormalizer(testNormalizerConfig())

	rec := baseRecord()
	rec.Status = "EN_PRENSA"
	if _, err := n.Normalize(rec); !errors.Is(err, model.ErrMalformedInput) {
		t.Fatalf("err=%v, want ErrMalformedInput", err)
	}
}

func TestNormalizeAllCollectsIssues(t *testing.T) {
	n := NewNormalizer(testNormalizerConfig())

	good := baseRecord()
	bad := baseRecord()
	bad.ID = "F2-pub-1"
	bad.OwnerEmail = "sin-arroba"

	out, issues := n.NormalizeAll([]model.ActivityRecord{good, bad})
	if len(out) != 1 {
		t.Fatalf("normalized=%d, want 1", len(out))
	}
	if len(issues) != 1 || issues[0].RecordID != "F2-pub-1" {
		t.Fatalf("issues=%v, want una entrada para F2-pub-1", issues)
	}
}
