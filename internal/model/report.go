package model

import (
	"fmt"
	"time"
)

// ReportKind 报告种类
type ReportKind string

const (
	KindAnnual    ReportKind = "anual_narrativo"    // 年度叙事报告
	KindQuarterly ReportKind = "resumen_trimestral" // 季度摘要
)

// Valid 是否为已知报告种类
func (k ReportKind) Valid() bool {
	return k == KindAnnual || k == KindQuarterly
}

// OutputFormat 输出格式
type OutputFormat string

const (
	FormatDocument    OutputFormat = "documento"    // 分页文档（HTML）
	FormatSpreadsheet OutputFormat = "hoja_calculo" // 工作簿（xlsx）
	FormatSlides      OutputFormat = "diapositivas" // 幻灯片（markdown）
	FormatPlainText   OutputFormat = "texto"        // 纯文本/标记（对账基准）
)

// AllFormats 全部支持的格式（固定顺序）
func AllFormats() []OutputFormat {
	return []OutputFormat{FormatDocument, FormatSpreadsheet, FormatSlides, FormatPlainText}
}

// Valid 是否为已知格式
func (f OutputFormat) Valid() bool {
	switch f {
	case FormatDocument, FormatSpreadsheet, FormatSlides, FormatPlainText:
		return true
	}
	return false
}

// ReportRequest 报告请求参数
type ReportRequest struct {
	Period  PeriodKey      `json:"period"`
	Kind    ReportKind     `json:"kind"`
	Formats []OutputFormat `json:"formats"`
	AsOf    time.Time      `json:"as_of"` // 认证有效性的参考日期；零值时由调用方填默认
}

// Validate 校验请求参数
func (r ReportRequest) Validate() error {
	if err := r.Period.Validate(); err != nil {
		return err
	}
	if !r.Kind.Valid() {
		return fmt.Errorf("未知的报告种类: %q", r.Kind)
	}
	if len(r.Formats) == 0 {
		return fmt.Errorf("至少需要一种输出格式")
	}
	for _, f := range r.Formats {
		if !f.Valid() {
			return fmt.Errorf("未知的输出格式: %q", f)
		}
	}
	if r.Kind == KindQuarterly && r.Period.IsAnnual() {
		return fmt.Errorf("季度摘要需要季度周期键")
	}
	return nil
}

// Title 由报告种类与周期确定的标题（确定性，标题页/首页共用）
func (r ReportRequest) Title() string {
	if r.Kind == KindQuarterly {
		return fmt.Sprintf("Resumen Trimestral Q%d %d", r.Period.Quarter, r.Period.Year)
	}
	return fmt.Sprintf("Reporte Anual de Actividades %d", r.Period.Year)
}

// CategoryParagraph 按类别组织的叙事段落
type CategoryParagraph struct {
	Category Category `json:"category"`
	Heading  string   `json:"heading"`
	Text     string   `json:"text"`
}

// Narrative 合成的叙事文本
// 纯结构化文本，不绑定任何渲染格式；排版归 Document Renderer。
type Narrative struct {
	Title      string              `json:"title"`
	Intro      string              `json:"intro"`
	Paragraphs []CategoryParagraph `json:"paragraphs"`
}

// Artifact 单一格式的渲染产物
type Artifact struct {
	Format   OutputFormat `json:"format"`
	Filename string       `json:"filename"`
	MIME     string       `json:"mime"`
	Content  []byte       `json:"-"`
}

// Report 管线对一次请求的完整输出
// 生成后归 Report Ledger 所有，创建后不可变。
type Report struct {
	Request   ReportRequest             `json:"request"`
	Snapshot  *MetricsSnapshot          `json:"snapshot"`
	Narrative *Narrative                `json:"narrative"`
	Artifacts map[OutputFormat]Artifact `json:"artifacts"`
}
