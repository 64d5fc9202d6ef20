package service

import (
	"testing"
	"time"

	"github.com/codi-diyt/actividades/internal/model"
	"github.com/codi-diyt/actividades/internal/pkg/config"
)

func testDedupConfig() config.DedupConfig {
	return config.DedupConfig{
		Threshold:      0.85,
		TitleWeight:    0.6,
		DateWeight:     0.25,
		OwnerWeight:    0.15,
		DateWindowDays: 7,
	}
}

func normRec(id, title, email string, date time.Time) model.NormalizedRecord {
	return model.NormalizedRecord{
		SourceID:          id,
		Category:          model.CategoryCurso,
		OwnerEmail:        email,
		OwnerName:         "Dra. Ana Ruiz",
		Title:             title,
		Status:            model.BucketUnspecified,
		Date:              date,
		SubmissionVersion: 1,
		SubmittedAt:       date,
	}
}

func TestGroupMergesNearDuplicates(t *testing.T) {
	d := NewDeduplicator(testDedupConfig())
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	a := normRec("F1", "Intro to Algebra", "ana@uni.edu", day)
	b := normRec("F2", "Intro. to Algebra!!", "ana@uni.edu", day.AddDate(0, 0, 3))

	if score := d.Score(a, b); score < 0.85 {
		t.Fatalf("score=%v, want >= 0.85", score)
	}

	groups := d.Group([]model.NormalizedRecord{a, b})
	if len(groups) != 1 {
		t.Fatalf("groups=%d, want 1", len(groups))
	}
	if groups[0].Size() != 2 {
		t.Fatalf("size=%d, want 2", groups[0].Size())
	}
}

func TestGroupDifferentOwnersNeverMerge(t *testing.T) {
	d := NewDeduplicator(testDedupConfig())
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	a := normRec("F1", "Curso de Redes", "ana@uni.edu", day)
	b := normRec("F2", "Curso de Redes", "beto@uni.edu", day)

	if score := d.Score(a, b); score != 0 {
		t.Fatalf("score=%v, want 0 entre distintos docentes", score)
	}
	groups := d.Group([]model.NormalizedRecord{a, b})
	if len(groups) != 2 {
		t.Fatalf("groups=%d, want 2", len(groups))
	}
}

func TestGroupDifferentCategoriesNeverMerge(t *testing.T) {
	d := NewDeduplicator(testDedupConfig())
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	a := normRec("F1", "Aprendizaje Profundo", "ana@uni.edu", day)
	b := normRec("F2", "Aprendizaje Profundo", "ana@uni.edu", day)
	b.Category = model.CategoryPublicacion

	groups := d.Group([]model.NormalizedRecord{a, b})
	if len(groups) != 2 {
		t.Fatalf("groups=%d, want 2", len(groups))
	}
}

func TestGroupOrderIndependence(t *testing.T) {
	d := NewDeduplicator(testDedupConfig())
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	recs := []model.NormalizedRecord{
		normRec("F1", "Intro to Algebra", "ana@uni.edu", day),
		normRec("F2", "Intro Algebra", "ana@uni.edu", day.AddDate(0, 0, 2)),
		normRec("F3", "Curso de Redes", "ana@uni.edu", day),
	}
	perms := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 2, 0}}

	var first []model.DuplicateGroup
	for i, p := range perms {
		in := make([]model.NormalizedRecord, len(recs))
		for j, idx := range p {
			in[j] = recs[idx]
		}
		groups := d.Group(in)
		if i == 0 {
			first = groups
			continue
		}
		if len(groups) != len(first) {
			t.Fatalf("perm %d: groups=%d, want %d", i, len(groups), len(first))
		}
		for j := range groups {
			if groups[j].Canonical.SourceID != first[j].Canonical.SourceID {
				t.Fatalf("perm %d: canonical[%d]=%s, want %s",
					i, j, groups[j].Canonical.SourceID, first[j].Canonical.SourceID)
			}
			if groups[j].Size() != first[j].Size() {
				t.Fatalf("perm %d: size[%d]=%d, want %d", i, j, groups[j].Size(), first[j].Size())
			}
		}
	}
}

func TestGroupTransitiveClosure(t *testing.T) {
	d := NewDeduplicator(testDedupConfig())
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	// A~B y B~C superan el umbral; A~C no (14 días de distancia)
	a := normRec("F1", "Seminario de Datos", "ana@uni.edu", day)
	b := normRec("F2", "Seminario de Datos", "ana@uni.edu", day.AddDate(0, 0, 7))
	c := normRec("F3", "Seminario de Datos", "ana@uni.edu", day.AddDate(0, 0, 14))

	if s := d.Score(a, c); s >= d.cfg.Threshold {
		t.Fatalf("score(a,c)=%v, debería quedar bajo el umbral", s)
	}

	groups := d.Group([]model.NormalizedRecord{a, b, c})
	if len(groups) != 1 {
		t.Fatalf("groups=%d, want 1 (cierre transitivo)", len(groups))
	}
	if groups[0].Size() != 3 {
		t.Fatalf("size=%d, want 3", groups[0].Size())
	}
}

func TestPickCanonical(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	v1 := normRec("F2", "Curso A", "ana@uni.edu", day)
	v2 := normRec("F1", "Curso A", "ana@uni.edu", day)
	v2.SubmissionVersion = 2

	got := pickCanonical([]model.NormalizedRecord{v1, v2})
	if got.SourceID != "F1" {
		t.Fatalf("canonical=%s, want F1 (mayor versión)", got.SourceID)
	}

	// Misma versión: gana la presentación más reciente
	newer := normRec("F3", "Curso A", "ana@uni.edu", day)
	newer.SubmittedAt = day.Add(48 * time.Hour)
	got = pickCanonical([]model.NormalizedRecord{v1, newer})
	if got.SourceID != "F3" {
		t.Fatalf("canonical=%s, want F3 (más reciente)", got.SourceID)
	}

	// Empate total: gana el SourceID menor
	twinA := normRec("F5", "Curso A", "ana@uni.edu", day)
	twinB := normRec("F4", "Curso A", "ana@uni.edu", day)
	got = pickCanonical([]model.NormalizedRecord{twinA, twinB})
	if got.SourceID != "F4" {
		t.Fatalf("canonical=%s, want F4", got.SourceID)
	}
}

func TestTitleSimilarityFolding(t *testing.T) {
	if sim := titleSimilarity("Intro to Algebra", "¡INTRO ALGEBRA!"); sim != 1 {
		t.Fatalf("sim=%v, want 1 tras plegado", sim)
	}
	if sim := titleSimilarity("Curso de Redes", "Taller de Biología"); sim > 0.5 {
		t.Fatalf("sim=%v, want <= 0.5 para títulos distintos", sim)
	}
}
