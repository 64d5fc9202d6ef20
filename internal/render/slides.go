package render

import (
	"fmt"
	"strings"

	"github.com/codi-diyt/actividades/internal/model"
)

// SlidesRenderer 幻灯片渲染器
// 产出 Marp 方言的 markdown 幻灯片：标题页、总览页、每个叙事段落一页。
type SlidesRenderer struct{}

func (r *SlidesRenderer) Format() model.OutputFormat { return model.FormatSlides }

func (r *SlidesRenderer) Render(report *model.Report) (model.Artifact, error) {
	if err := validateReportData(report); err != nil {
		return model.Artifact{}, err
	}

	snap := report.Snapshot
	var b strings.Builder

	b.WriteString("---\nmarp: true\npaginate: true\n---\n\n")

	// 标题页
	fmt.Fprintf(&b, "# %s\n\n%s\n", report.Narrative.Title, snap.Period.SpanishLabel())

	// 总览页
	b.WriteString("\n---\n\n## Resumen General\n\n")
	fmt.Fprintf(&b, "- Registros totales: **%d**\n", snap.TotalRecords)
	fmt.Fprintf(&b, "- Docentes participantes: **%d**\n", snap.TotalDocentes)
	for _, c := range model.AllCategories() {
		m := snap.Category(c)
		if m.Count == 0 {
			continue
		}
		fmt.Fprintf(&b, "- %s: **%d**\n", c.DisplayName(), m.Count)
	}

	// 每个段落一页
	for _, p := range report.Narrative.Paragraphs {
		fmt.Fprintf(&b, "\n---\n\n## %s\n\n%s\n", p.Heading, p.Text)
	}

	return model.Artifact{
		Format:   model.FormatSlides,
		Filename: baseFilename(report.Request) + "_slides.md",
		MIME:     "text/markdown; charset=utf-8",
		Content:  []byte(b.String()),
	}, nil
}
