package service

import (
	"strings"
	"testing"
	"time"

	"github.com/codi-diyt/actividades/internal/model"
	"github.com/codi-diyt/actividades/internal/pkg/config"
)

func testSnapshot(period model.PeriodKey) *model.MetricsSnapshot {
	return &model.MetricsSnapshot{
		Period:        period,
		AsOf:          time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		TotalRecords:  3,
		TotalDocentes: 2,
		Monthly:       map[string]int{"2025-03": 3},
		Categories: map[model.Category]model.CategoryMetrics{
			model.CategoryCurso: {
				Count:    2,
				Hours:    60,
				Buckets:  map[string]int{model.BucketUnspecified: 2},
				Examples: []string{"Curso de Redes", "Curso de Datos"},
			},
			model.CategoryEvento: {
				Count:    1,
				Buckets:  map[string]int{model.StatusPonente: 1},
				Examples: []string{"Congreso X"},
			},
		},
	}
}

func TestSynthesizeAnnualOmitsEmptyCategories(t *testing.T) {
	s := NewSynthesizer(config.NarrativeConfig{ExampleCap: 5})
	req := model.ReportRequest{
		Period:  model.PeriodKey{Year: 2025},
		Kind:    model.KindAnnual,
		Formats: []model.OutputFormat{model.FormatPlainText},
	}

	n, err := s.Synthesize(req, testSnapshot(req.Period))
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}

	if n.Title != "Reporte Anual de Actividades 2025" {
		t.Fatalf("title=%q", n.Title)
	}
	if len(n.Paragraphs) != 2 {
		t.Fatalf("paragraphs=%d, want 2 (solo categorías con producción)", len(n.Paragraphs))
	}
	for _, p := range n.Paragraphs {
		if strings.Contains(p.Text, "No se reportaron") {
			t.Fatalf("el reporte anual no debe listar ausencias: %q", p.Text)
		}
	}
}

func TestSynthesizeQuarterlyReportsAbsences(t *testing.T) {
	s := NewSynthesizer(config.NarrativeConfig{ExampleCap: 5})
	req := model.ReportRequest{
		Period:  model.PeriodKey{Year: 2025, Quarter: 1},
		Kind:    model.KindQuarterly,
		Formats: []model.OutputFormat{model.FormatPlainText},
	}

	n, err := s.Synthesize(req, testSnapshot(req.Period))
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}

	if n.Title != "Resumen Trimestral Q1 2025" {
		t.Fatalf("title=%q", n.Title)
	}
	if len(n.Paragraphs) != len(model.AllCategories()) {
		t.Fatalf("paragraphs=%d, want %d (todas las categorías)", len(n.Paragraphs), len(model.AllCategories()))
	}

	absences := 0
	for _, p := range n.Paragraphs {
		if strings.HasPrefix(p.Text, "No se reportaron") {
			absences++
		}
	}
	if absences != len(model.AllCategories())-2 {
		t.Fatalf("ausencias=%d, want %d", absences, len(model.AllCategories())-2)
	}
}

func TestSynthesizeRejectsEmptySnapshot(t *testing.T) {
	s := NewSynthesizer(config.NarrativeConfig{ExampleCap: 5})
	req := model.ReportRequest{
		Period:  model.PeriodKey{Year: 2025},
		Kind:    model.KindAnnual,
		Formats: []model.OutputFormat{model.FormatPlainText},
	}
	if _, err := s.Synthesize(req, &model.MetricsSnapshot{}); err == nil {
		t.Fatalf("want error con snapshot vacío")
	}
}

func TestEnumerateExamplesCap(t *testing.T) {
	s := NewSynthesizer(config.NarrativeConfig{ExampleCap: 2})

	got := s.enumerateExamples([]string{"A", "B", "C", "D", "E"})
	if !strings.Contains(got, "y 3 más") {
		t.Fatalf("got %q, want sufijo \"y 3 más\"", got)
	}
	if strings.Contains(got, "«C»") {
		t.Fatalf("got %q, no debe listar más allá del tope", got)
	}

	exact := s.enumerateExamples([]string{"A", "B"})
	if strings.Contains(exact, "más") {
		t.Fatalf("got %q, sin sufijo cuando cabe completo", exact)
	}
}

func TestPluralize(t *testing.T) {
	if got := pluralize(1, "curso", "cursos"); got != "1 curso" {
		t.Fatalf("got %q", got)
	}
	if got := pluralize(3, "curso", "cursos"); got != "3 cursos" {
		t.Fatalf("got %q", got)
	}
	if got := pluralize(1, "docente", "docentes"); got != "1 docente" {
		t.Fatalf("got %q", got)
	}
}

func TestSynthesizeSingleDocenteUsesSingular(t *testing.T) {
	snap := testSnapshot(model.PeriodKey{Year: 2025})
	snap.TotalDocentes = 1

	s := NewSynthesizer(config.NarrativeConfig{ExampleCap: 5})
	req := model.ReportRequest{
		Period:  model.PeriodKey{Year: 2025},
		Kind:    model.KindAnnual,
		Formats: []model.OutputFormat{model.FormatPlainText},
	}
	n, err := s.Synthesize(req, snap)
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}

	if !strings.Contains(n.Intro, "la participación de 1 docente:") {
		t.Fatalf("intro=%q, want singular", n.Intro)
	}
	if strings.Contains(n.Intro, "1 docentes") {
		t.Fatalf("intro=%q, plural con conteo de uno", n.Intro)
	}

	var cursoText string
	for _, p := range n.Paragraphs {
		if p.Category == model.CategoryCurso {
			cursoText = p.Text
		}
	}
	if !strings.HasPrefix(cursoText, "1 docente se capacitó en") {
		t.Fatalf("curso=%q, want singular con verbo concordado", cursoText)
	}
}

func TestTrendPhraseUsesComparison(t *testing.T) {
	snap := testSnapshot(model.PeriodKey{Year: 2025})
	snap.Comparison = &model.PeriodComparison{
		Prior: model.PeriodKey{Year: 2024},
		Deltas: map[model.Category]model.CategoryDelta{
			model.CategoryCurso:  {Current: 2, Previous: 1, ChangePct: 100, Trend: model.TrendUp},
			model.CategoryEvento: {Current: 1, Previous: 1, ChangePct: 0, Trend: model.TrendStable},
		},
	}

	s := NewSynthesizer(config.NarrativeConfig{ExampleCap: 5})
	req := model.ReportRequest{
		Period:  model.PeriodKey{Year: 2025},
		Kind:    model.KindAnnual,
		Formats: []model.OutputFormat{model.FormatPlainText},
	}
	n, err := s.Synthesize(req, snap)
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}

	var cursoText, eventoText string
	for _, p := range n.Paragraphs {
		switch p.Category {
		case model.CategoryCurso:
			cursoText = p.Text
		case model.CategoryEvento:
			eventoText = p.Text
		}
	}
	if !strings.Contains(cursoText, "aumento del 100%") {
		t.Fatalf("curso: %q, want frase de aumento", cursoText)
	}
	if !strings.Contains(eventoText, "se mantuvo estable") {
		t.Fatalf("evento: %q, want frase estable", eventoText)
	}
}

func TestMovilidadParagraphSplitsByType(t *testing.T) {
	s := NewSynthesizer(config.NarrativeConfig{ExampleCap: 5})
	m := model.CategoryMetrics{
		Count: 3,
		Buckets: map[string]int{
			model.StatusNacional:      2,
			model.StatusInternacional: 1,
		},
		Examples: []string{"Estancia en UNAM"},
	}
	got := s.movilidadParagraph(m, nil)
	if !strings.Contains(got, "2 nacionales y 1 internacionales") {
		t.Fatalf("got %q", got)
	}
}
