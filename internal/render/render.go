package render

import (
	"fmt"
	"strings"

	"github.com/codi-diyt/actividades/internal/model"
)

// Renderer 单一输出格式的渲染器
// Render 只依赖报告结构本身，不读时钟也不读环境，
// 同一报告多次渲染必须产出逐字节相同的产物。
type Renderer interface {
	Format() model.OutputFormat
	Render(report *model.Report) (model.Artifact, error)
}

// For 按格式取渲染器
func For(f model.OutputFormat) (Renderer, error) {
	switch f {
	case model.FormatPlainText:
		return &PlainTextRenderer{}, nil
	case model.FormatSpreadsheet:
		return &SpreadsheetRenderer{}, nil
	case model.FormatSlides:
		return &SlidesRenderer{}, nil
	case model.FormatDocument:
		return &DocumentRenderer{}, nil
	default:
		return nil, fmt.Errorf("未知的输出格式: %q", f)
	}
}

// validateReportData 渲染前的完整性检查
// 缺字段只导致该格式失败，其余格式照常进行。
func validateReportData(report *model.Report) error {
	if report == nil || report.Snapshot == nil {
		return fmt.Errorf("%w: 缺少聚合快照", model.ErrIncompleteReportData)
	}
	if report.Narrative == nil || report.Narrative.Title == "" {
		return fmt.Errorf("%w: 缺少叙事文本", model.ErrIncompleteReportData)
	}
	if report.Snapshot.TotalRecords == 0 {
		return fmt.Errorf("%w: 快照中没有记录", model.ErrIncompleteReportData)
	}
	return nil
}

// baseFilename 产物文件名主干，如 "reporte_anual_narrativo_2025" / "reporte_resumen_trimestral_2025_q3"
func baseFilename(req model.ReportRequest) string {
	if req.Period.IsAnnual() {
		return fmt.Sprintf("reporte_%s_%d", req.Kind, req.Period.Year)
	}
	return fmt.Sprintf("reporte_%s_%d_q%d", req.Kind, req.Period.Year, req.Period.Quarter)
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func xmlEscape(s string) string {
	return xmlReplacer.Replace(s)
}
