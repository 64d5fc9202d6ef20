package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/codi-diyt/actividades/internal/model"
)

// PlainTextRenderer 纯文本（markdown）渲染器
// 这是对账基准格式：其他格式的汇总数字必须与这里一致。
type PlainTextRenderer struct{}

func (r *PlainTextRenderer) Format() model.OutputFormat { return model.FormatPlainText }

func (r *PlainTextRenderer) Render(report *model.Report) (model.Artifact, error) {
	if err := validateReportData(report); err != nil {
		return model.Artifact{}, err
	}

	snap := report.Snapshot
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", report.Narrative.Title)
	fmt.Fprintf(&b, "%s\n\n", report.Narrative.Intro)

	for _, p := range report.Narrative.Paragraphs {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", p.Heading, p.Text)
	}

	// 汇总表：所有类别都出现，零产出类别记 0
	b.WriteString("## Resumen por Categoría\n\n")
	b.WriteString("| Categoría | Total | Horas |\n")
	b.WriteString("|---|---|---|\n")
	totalCount, totalHours := 0, 0
	for _, c := range model.AllCategories() {
		m := snap.Category(c)
		fmt.Fprintf(&b, "| %s | %d | %d |\n", c.DisplayName(), m.Count, m.Hours)
		totalCount += m.Count
		totalHours += m.Hours
	}
	fmt.Fprintf(&b, "| TOTAL | %d | %d |\n\n", totalCount, totalHours)

	// 桶分布
	b.WriteString("## Distribución por Estado\n\n")
	for _, c := range model.AllCategories() {
		m := snap.Category(c)
		if m.Count == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s\n\n", c.DisplayName())
		for _, k := range m.BucketKeys() {
			fmt.Fprintf(&b, "- %s: %d\n", k, m.Buckets[k])
		}
		b.WriteString("\n")
	}

	// 月度分布与总体统计
	b.WriteString("## Estadísticas Generales\n\n")
	fmt.Fprintf(&b, "- Registros totales: %d\n", snap.TotalRecords)
	fmt.Fprintf(&b, "- Docentes participantes: %d\n", snap.TotalDocentes)
	fmt.Fprintf(&b, "- Fecha de corte: %s\n\n", snap.AsOf.Format("2006-01-02"))

	if len(snap.Monthly) > 0 {
		b.WriteString("### Distribución Mensual\n\n")
		for _, k := range snap.MonthKeys() {
			t, err := time.Parse("2006-01", k)
			label := k
			if err == nil {
				label = fmt.Sprintf("%s %d", model.MonthNameSpanish(t.Month()), t.Year())
			}
			fmt.Fprintf(&b, "- %s: %d\n", label, snap.Monthly[k])
		}
		b.WriteString("\n")
	}

	return model.Artifact{
		Format:   model.FormatPlainText,
		Filename: baseFilename(report.Request) + ".md",
		MIME:     "text/markdown; charset=utf-8",
		Content:  []byte(b.String()),
	}, nil
}
