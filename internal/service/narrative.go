package service

import (
	"fmt"
	"strings"

	"github.com/codi-diyt/actividades/internal/model"
	"github.com/codi-diyt/actividades/internal/pkg/config"
)

// Synthesizer 叙事合成器
// 从聚合快照产出西语叙事文本。模板按类别标签查表分发，
// 新增类别只需在 paragraphFuncs 注册一个条目。
// 所有数字与趋势均取自快照，合成层从不自行计算。
type Synthesizer struct {
	cfg config.NarrativeConfig
}

// NewSynthesizer 创建合成器
func NewSynthesizer(cfg config.NarrativeConfig) *Synthesizer {
	return &Synthesizer{cfg: cfg}
}

// paragraphFunc 单个类别的段落模板
type paragraphFunc func(s *Synthesizer, m model.CategoryMetrics, snap *model.MetricsSnapshot) string

// paragraphFuncs 类别 -> 模板的分发表
var paragraphFuncs = map[model.Category]paragraphFunc{
	model.CategoryCurso:          (*Synthesizer).cursosParagraph,
	model.CategoryPublicacion:    (*Synthesizer).publicacionesParagraph,
	model.CategoryEvento:         (*Synthesizer).eventosParagraph,
	model.CategoryDiseno:         (*Synthesizer).disenoParagraph,
	model.CategoryMovilidad:      (*Synthesizer).movilidadParagraph,
	model.CategoryReconocimiento: (*Synthesizer).reconocimientosParagraph,
	model.CategoryCertificacion:  (*Synthesizer).certificacionesParagraph,
	model.CategoryOtra:           (*Synthesizer).otrasParagraph,
}

// Synthesize 合成叙事
// 年度报告省略零产出的类别；季度摘要为零产出类别输出
// "No se reportaron ..." 行，让缺席显式可见。
func (s *Synthesizer) Synthesize(req model.ReportRequest, snap *model.MetricsSnapshot) (*model.Narrative, error) {
	if snap == nil || snap.TotalRecords == 0 {
		return nil, fmt.Errorf("%w: 快照为空", model.ErrIncompleteReportData)
	}

	n := &model.Narrative{
		Title: req.Title(),
		Intro: fmt.Sprintf(
			"En el Departamento se realizaron los siguientes productos durante el período %s, con la participación de %s:",
			snap.Period.SpanishLabel(), pluralize(snap.TotalDocentes, "docente", "docentes")),
	}

	for _, c := range model.AllCategories() {
		m := snap.Category(c)
		if m.Count == 0 {
			if req.Kind == model.KindQuarterly {
				n.Paragraphs = append(n.Paragraphs, model.CategoryParagraph{
					Category: c,
					Heading:  c.DisplayName(),
					Text:     fmt.Sprintf("No se reportaron %s en este período.", strings.ToLower(c.DisplayName())),
				})
			}
			continue
		}

		text := paragraphFuncs[c](s, m, snap)
		if phrase := trendPhrase(snap, c); phrase != "" {
			text += " " + phrase
		}
		n.Paragraphs = append(n.Paragraphs, model.CategoryParagraph{
			Category: c,
			Heading:  c.DisplayName(),
			Text:     text,
		})
	}

	return n, nil
}

// trendPhrase 环比趋势短语；无比较数据时返回空串
func trendPhrase(snap *model.MetricsSnapshot, c model.Category) string {
	if snap.Comparison == nil {
		return ""
	}
	d, ok := snap.Comparison.Deltas[c]
	if !ok || d.Previous == 0 {
		return ""
	}
	pct := d.ChangePct
	if pct < 0 {
		pct = -pct
	}
	switch d.Trend {
	case model.TrendUp:
		return fmt.Sprintf("Esto representa un aumento del %.0f%% respecto al periodo anterior.", pct)
	case model.TrendDown:
		return fmt.Sprintf("Esto representa una disminución del %.0f%% respecto al periodo anterior.", pct)
	default:
		return "La actividad se mantuvo estable respecto al periodo anterior."
	}
}

func (s *Synthesizer) cursosParagraph(m model.CategoryMetrics, snap *model.MetricsSnapshot) string {
	verb := "se capacitaron"
	if snap.TotalDocentes == 1 {
		verb = "se capacitó"
	}
	text := fmt.Sprintf("%s %s en %s (%d horas en total)",
		pluralize(snap.TotalDocentes, "docente", "docentes"), verb,
		pluralize(m.Count, "curso", "cursos"), m.Hours)
	if ex := s.enumerateExamples(m.Examples); ex != "" {
		text += ", entre ellos: " + ex
	}
	return text + "."
}

func (s *Synthesizer) publicacionesParagraph(m model.CategoryMetrics, _ *model.MetricsSnapshot) string {
	text := fmt.Sprintf("Se generaron %s de publicación", pluralize(m.Count, "trabajo", "trabajos"))
	if detail := bucketDetail(m); detail != "" {
		text += " (" + detail + ")"
	}
	if ex := s.enumerateExamples(m.Examples); ex != "" {
		text += ", entre ellos: " + ex
	}
	return text + "."
}

func (s *Synthesizer) eventosParagraph(m model.CategoryMetrics, _ *model.MetricsSnapshot) string {
	text := fmt.Sprintf("Se participó en %s", pluralize(m.Count, "evento académico", "eventos académicos"))
	if detail := bucketDetail(m); detail != "" {
		text += " (" + detail + ")"
	}
	if ex := s.enumerateExamples(m.Examples); ex != "" {
		text += ", tales como: " + ex
	}
	return text + "."
}

func (s *Synthesizer) disenoParagraph(m model.CategoryMetrics, _ *model.MetricsSnapshot) string {
	text := fmt.Sprintf("Se liberaron %s de Diseño Curricular", pluralize(m.Count, "producto", "productos"))
	if ex := s.enumerateExamples(m.Examples); ex != "" {
		text += ", entre ellos: " + ex
	}
	return text + "."
}

func (s *Synthesizer) movilidadParagraph(m model.CategoryMetrics, _ *model.MetricsSnapshot) string {
	nac := m.Buckets[model.StatusNacional]
	intl := m.Buckets[model.StatusInternacional]
	text := fmt.Sprintf("Se realizaron %s de movilidad académica (%d nacionales y %d internacionales)",
		pluralize(m.Count, "experiencia", "experiencias"), nac, intl)
	if ex := s.enumerateExamples(m.Examples); ex != "" {
		text += ", entre ellas: " + ex
	}
	return text + "."
}

func (s *Synthesizer) reconocimientosParagraph(m model.CategoryMetrics, _ *model.MetricsSnapshot) string {
	text := fmt.Sprintf("Se obtuvieron %s", pluralize(m.Count, "reconocimiento", "reconocimientos"))
	if detail := bucketDetail(m); detail != "" {
		text += " (" + detail + ")"
	}
	if ex := s.enumerateExamples(m.Examples); ex != "" {
		text += ", entre ellos: " + ex
	}
	return text + "."
}

func (s *Synthesizer) certificacionesParagraph(m model.CategoryMetrics, _ *model.MetricsSnapshot) string {
	text := fmt.Sprintf("Se reportaron %s profesionales, de las cuales %d se encuentran vigentes y %d vencidas",
		pluralize(m.Count, "certificación", "certificaciones"), m.Active, m.Expired)
	if ex := s.enumerateExamples(m.Examples); ex != "" {
		text += ", entre ellas: " + ex
	}
	return text + "."
}

func (s *Synthesizer) otrasParagraph(m model.CategoryMetrics, _ *model.MetricsSnapshot) string {
	text := fmt.Sprintf("Se registraron %s académicas adicionales",
		pluralize(m.Count, "otra actividad", "otras actividades"))
	if ex := s.enumerateExamples(m.Examples); ex != "" {
		text += ", entre ellas: " + ex
	}
	return text + "."
}

// bucketDetail 桶分布的括号说明，如 "2 PUBLICADO, 1 EN_REVISION"
// 只有 NO_ESPECIFICADO 一个桶时省略。
func bucketDetail(m model.CategoryMetrics) string {
	keys := m.BucketKeys()
	if len(keys) == 0 || (len(keys) == 1 && keys[0] == model.BucketUnspecified) {
		return ""
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%d %s", m.Buckets[k], strings.ReplaceAll(k, "_", " ")))
	}
	return strings.Join(parts, ", ")
}

// enumerateExamples 列举条目，超出上限时以 "y N más" 收尾
func (s *Synthesizer) enumerateExamples(examples []string) string {
	if len(examples) == 0 {
		return ""
	}
	limit := s.cfg.ExampleCap
	if limit <= 0 {
		limit = len(examples)
	}
	if len(examples) <= limit {
		return joinSpanish(examples)
	}
	shown := examples[:limit]
	return fmt.Sprintf("%s y %d más", strings.Join(quoteAll(shown), ", "), len(examples)-limit)
}

// joinSpanish 西语列举："A"、"A" y "B"、"A", "B" y "C"
func joinSpanish(items []string) string {
	q := quoteAll(items)
	switch len(q) {
	case 1:
		return q[0]
	case 2:
		return q[0] + " y " + q[1]
	default:
		return strings.Join(q[:len(q)-1], ", ") + " y " + q[len(q)-1]
	}
}

func quoteAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = "«" + s + "»"
	}
	return out
}

// pluralize 西语数量短语，如 "1 curso" / "3 cursos"
func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
