package render

import (
	"encoding/base64"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/codi-diyt/actividades/internal/model"
)

// DocumentRenderer 分页文档渲染器
// 产出自包含的 HTML：叙事全文、逐类别分布表与内嵌柱状图。
type DocumentRenderer struct{}

func (r *DocumentRenderer) Format() model.OutputFormat { return model.FormatDocument }

func (r *DocumentRenderer) Render(report *model.Report) (model.Artifact, error) {
	if err := validateReportData(report); err != nil {
		return model.Artifact{}, err
	}

	snap := report.Snapshot
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html lang=\"es\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(report.Narrative.Title))
	b.WriteString(`<style>
body { font-family: Georgia, serif; max-width: 52rem; margin: 2rem auto; color: #222; }
h1 { border-bottom: 2px solid #2d5a94; padding-bottom: .3rem; }
h2 { color: #2d5a94; page-break-before: always; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #999; padding: .3rem .8rem; text-align: left; }
figure { margin: 1rem 0; }
figcaption { font-size: .85rem; color: #555; }
</style>
</head>
<body>
`)

	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(report.Narrative.Title))
	fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(report.Narrative.Intro))

	for _, p := range report.Narrative.Paragraphs {
		fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(p.Heading))
		fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(p.Text))

		m := snap.Category(p.Category)
		if m.Count == 0 {
			continue
		}

		keys := m.BucketKeys()
		b.WriteString("<table><tr><th>Estado</th><th>Cantidad</th></tr>\n")
		values := make([]int, 0, len(keys))
		for _, k := range keys {
			fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td></tr>\n", html.EscapeString(k), m.Buckets[k])
			values = append(values, m.Buckets[k])
		}
		fmt.Fprintf(&b, "<tr><td><strong>TOTAL</strong></td><td><strong>%d</strong></td></tr>\n</table>\n", m.BucketTotal())

		if len(values) > 1 {
			if png, err := barChartPNG(values, 480, 200); err == nil {
				fmt.Fprintf(&b, "<figure><img src=\"data:image/png;base64,%s\" alt=\"%s\">",
					base64.StdEncoding.EncodeToString(png), html.EscapeString(p.Heading))
				fmt.Fprintf(&b, "<figcaption>Distribución: %s</figcaption></figure>\n",
					html.EscapeString(strings.Join(keys, ", ")))
			}
		}
	}

	// 月度分布
	if len(snap.Monthly) > 0 {
		b.WriteString("<h2>Distribución Mensual</h2>\n<table><tr><th>Mes</th><th>Registros</th></tr>\n")
		var labels []string
		var values []int
		for _, k := range snap.MonthKeys() {
			label := k
			if t, err := time.Parse("2006-01", k); err == nil {
				label = fmt.Sprintf("%s %d", model.MonthNameSpanish(t.Month()), t.Year())
			}
			fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td></tr>\n", html.EscapeString(label), snap.Monthly[k])
			labels = append(labels, label)
			values = append(values, snap.Monthly[k])
		}
		b.WriteString("</table>\n")
		if len(values) > 1 {
			if png, err := barChartPNG(values, 640, 220); err == nil {
				fmt.Fprintf(&b, "<figure><img src=\"data:image/png;base64,%s\" alt=\"Distribución mensual\">",
					base64.StdEncoding.EncodeToString(png))
				fmt.Fprintf(&b, "<figcaption>Meses: %s</figcaption></figure>\n",
					html.EscapeString(strings.Join(labels, ", ")))
			}
		}
	}

	fmt.Fprintf(&b, "<h2>Datos Generales</h2>\n<p>Registros totales: %d. Docentes participantes: %d. Fecha de corte: %s.</p>\n",
		snap.TotalRecords, snap.TotalDocentes, snap.AsOf.Format("2006-01-02"))

	b.WriteString("</body>\n</html>\n")

	return model.Artifact{
		Format:   model.FormatDocument,
		Filename: baseFilename(report.Request) + ".html",
		MIME:     "text/html; charset=utf-8",
		Content:  []byte(b.String()),
	}, nil
}
