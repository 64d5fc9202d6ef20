package render

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/codi-diyt/actividades/internal/model"
)

func testReport() *model.Report {
	req := model.ReportRequest{
		Period:  model.PeriodKey{Year: 2025},
		Kind:    model.KindAnnual,
		Formats: model.AllFormats(),
		AsOf:    time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	snap := &model.MetricsSnapshot{
		Period:        req.Period,
		AsOf:          req.AsOf,
		TotalRecords:  4,
		TotalDocentes: 2,
		Monthly:       map[string]int{"2025-03": 3, "2025-07": 1},
		Categories: map[model.Category]model.CategoryMetrics{
			model.CategoryCurso: {
				Count:    2,
				Hours:    60,
				Buckets:  map[string]int{model.BucketUnspecified: 2},
				Examples: []string{"Curso de Redes", "Curso de Datos"},
			},
			model.CategoryPublicacion: {
				Count:    2,
				Buckets:  map[string]int{model.StatusPublicado: 1, model.StatusEnRevision: 1},
				Examples: []string{"Estudio A", "Estudio B"},
			},
		},
	}
	return &model.Report{
		Request:  req,
		Snapshot: snap,
		Narrative: &model.Narrative{
			Title: req.Title(),
			Intro: "En el Departamento se realizaron los siguientes productos durante el período Año 2025:",
			Paragraphs: []model.CategoryParagraph{
				{Category: model.CategoryCurso, Heading: "Cursos de Capacitación", Text: "2 docentes se capacitaron en 2 cursos (60 horas en total)."},
				{Category: model.CategoryPublicacion, Heading: "Publicaciones", Text: "Se generaron 2 trabajos de publicación."},
			},
		},
	}
}

func TestRenderersAreDeterministic(t *testing.T) {
	for _, f := range model.AllFormats() {
		r, err := For(f)
		if err != nil {
			t.Fatalf("For(%s): %v", f, err)
		}
		a, err := r.Render(testReport())
		if err != nil {
			t.Fatalf("%s: primera pasada: %v", f, err)
		}
		b, err := r.Render(testReport())
		if err != nil {
			t.Fatalf("%s: segunda pasada: %v", f, err)
		}
		if !bytes.Equal(a.Content, b.Content) {
			t.Fatalf("%s: contenido distinto entre pasadas", f)
		}
		if a.Filename == "" || a.MIME == "" {
			t.Fatalf("%s: filename=%q mime=%q", f, a.Filename, a.MIME)
		}
	}
}

func TestRenderersRejectIncompleteData(t *testing.T) {
	incomplete := testReport()
	incomplete.Snapshot = nil

	for _, f := range model.AllFormats() {
		r, _ := For(f)
		if _, err := r.Render(incomplete); !errors.Is(err, model.ErrIncompleteReportData) {
			t.Fatalf("%s: err=%v, want ErrIncompleteReportData", f, err)
		}
	}
}

// extrae la fila TOTAL del markdown: "| TOTAL | n | h |"
var mdTotalRe = regexp.MustCompile(`\| TOTAL \| (\d+) \| (\d+) \|`)

func TestPlainTextMatchesSpreadsheetTotals(t *testing.T) {
	report := testReport()

	text, err := (&PlainTextRenderer{}).Render(report)
	if err != nil {
		t.Fatalf("texto: %v", err)
	}
	match := mdTotalRe.FindStringSubmatch(string(text.Content))
	if match == nil {
		t.Fatalf("no se encontró la fila TOTAL en el markdown")
	}
	mdCount, _ := strconv.Atoi(match[1])
	mdHours, _ := strconv.Atoi(match[2])

	book, err := (&SpreadsheetRenderer{}).Render(report)
	if err != nil {
		t.Fatalf("hoja de cálculo: %v", err)
	}
	xlsCount, xlsHours := readSummaryTotals(t, book.Content)

	if mdCount != xlsCount || mdHours != xlsHours {
		t.Fatalf("texto=%d/%d, hoja=%d/%d", mdCount, mdHours, xlsCount, xlsHours)
	}
	if mdCount != 4 || mdHours != 60 {
		t.Fatalf("totales=%d/%d, want 4/60", mdCount, mdHours)
	}
}

// readSummaryTotals abre el xlsx y lee la fila TOTAL de la hoja Resumen
func readSummaryTotals(t *testing.T, content []byte) (count, hours int) {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("abrir zip: %v", err)
	}
	var sheet string
	for _, f := range zr.File {
		if f.Name != "xl/worksheets/sheet1.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("abrir hoja: %v", err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("leer hoja: %v", err)
		}
		sheet = string(data)
	}
	if sheet == "" {
		t.Fatalf("no existe xl/worksheets/sheet1.xml")
	}

	totalRe := regexp.MustCompile(`<c t="inlineStr"><is><t>TOTAL</t></is></c><c><v>(\d+)</v></c><c><v>(\d+)</v></c>`)
	match := totalRe.FindStringSubmatch(sheet)
	if match == nil {
		t.Fatalf("no se encontró la fila TOTAL en la hoja Resumen")
	}
	count, _ = strconv.Atoi(match[1])
	hours, _ = strconv.Atoi(match[2])
	return count, hours
}

func TestSpreadsheetCategorySheetsMatchSummary(t *testing.T) {
	report := testReport()
	book, err := (&SpreadsheetRenderer{}).Render(report)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(book.Content), int64(len(book.Content)))
	if err != nil {
		t.Fatalf("abrir zip: %v", err)
	}

	// hojas 2..n son las de categoría; su TOTAL debe cuadrar con Count
	wantTotals := []int{2, 2} // cursos, publicaciones (orden de AllCategories)
	for i, want := range wantTotals {
		name := fmt.Sprintf("xl/worksheets/sheet%d.xml", i+2)
		var sheet string
		for _, f := range zr.File {
			if f.Name == name {
				rc, _ := f.Open()
				data, _ := io.ReadAll(rc)
				rc.Close()
				sheet = string(data)
			}
		}
		if sheet == "" {
			t.Fatalf("falta %s", name)
		}
		totalRe := regexp.MustCompile(`<c t="inlineStr"><is><t>TOTAL</t></is></c><c><v>(\d+)</v></c>`)
		match := totalRe.FindStringSubmatch(sheet)
		if match == nil {
			t.Fatalf("%s: sin fila TOTAL", name)
		}
		got, _ := strconv.Atoi(match[1])
		if got != want {
			t.Fatalf("%s: TOTAL=%d, want %d", name, got, want)
		}
	}
}

func TestSlidesStructure(t *testing.T) {
	deck, err := (&SlidesRenderer{}).Render(testReport())
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	content := string(deck.Content)

	if !strings.HasPrefix(content, "---\nmarp: true") {
		t.Fatalf("falta el frontmatter marp")
	}
	if !strings.Contains(content, "# Reporte Anual de Actividades 2025") {
		t.Fatalf("falta la diapositiva de título")
	}
	// cierre del frontmatter + resumen + 2 párrafos = 4
	if got := strings.Count(content, "\n---\n"); got != 4 {
		t.Fatalf("separadores=%d, want 4", got)
	}
}

func TestDocumentEmbedsCharts(t *testing.T) {
	doc, err := (&DocumentRenderer{}).Render(testReport())
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	content := string(doc.Content)

	if !strings.Contains(content, "<h1>Reporte Anual de Actividades 2025</h1>") {
		t.Fatalf("falta el título")
	}
	// publicaciones tiene dos cubetas y mensual dos meses: al menos dos gráficas
	if got := strings.Count(content, "data:image/png;base64,"); got < 2 {
		t.Fatalf("gráficas=%d, want >= 2", got)
	}
	if !strings.Contains(content, "Registros totales: 4") {
		t.Fatalf("faltan los datos generales")
	}
}
