package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/codi-diyt/actividades/internal/model"
	"github.com/codi-diyt/actividades/internal/pkg/config"
)

// Normalizer 记录清洗器
// 对单条记录是纯函数：同样的输入永远产出同样的 NormalizedRecord。
// 单条失败只产生诊断，不中断批次。
type Normalizer struct {
	cfg config.NormalizerConfig
}

// NewNormalizer 创建清洗器
func NewNormalizer(cfg config.NormalizerConfig) *Normalizer {
	return &Normalizer{cfg: cfg}
}

var (
	spaceRe = regexp.MustCompile(`\s+`)
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	dotsRe  = regexp.MustCompile(`\.{2,}`)
	atsRe   = regexp.MustCompile(`@{2,}`)

	// 教师姓名里的学位敬称，清洗时保留规范写法
	honorifics = map[string]string{
		"dr.": "Dr.", "dr": "Dr.",
		"dra.": "Dra.", "dra": "Dra.",
		"mtro.": "Mtro.", "mtro": "Mtro.",
		"mtra.": "Mtra.", "mtra": "Mtra.",
	}
)

// NormalizeAll 批量清洗
// 返回清洗成功的记录与失败记录的 (ID, 原因) 诊断列表。
func (n *Normalizer) NormalizeAll(records []model.ActivityRecord) ([]model.NormalizedRecord, []model.RecordIssue) {
	out := make([]model.NormalizedRecord, 0, len(records))
	var issues []model.RecordIssue

	for _, rec := range records {
		norm, err := n.Normalize(rec)
		if err != nil {
			issues = append(issues, model.RecordIssue{RecordID: rec.ID, Reason: err.Error()})
			continue
		}
		out = append(out, norm)
	}
	return out, issues
}

// Normalize 清洗单条记录
func (n *Normalizer) Normalize(rec model.ActivityRecord) (model.NormalizedRecord, error) {
	var zero model.NormalizedRecord

	if !rec.Category.Valid() {
		return zero, fmt.Errorf("%w: categoría %q", model.ErrMalformedInput, rec.Category)
	}

	title := CleanText(rec.Title)
	if title == "" {
		return zero, fmt.Errorf("%w: título vacío", model.ErrMalformedInput)
	}

	email, err := normalizeEmail(rec.OwnerEmail)
	if err != nil {
		return zero, err
	}

	status, err := normalizeStatus(rec.Category, rec.Status)
	if err != nil {
		return zero, err
	}

	// 活动日期：原始为空时回退到提交日期（原系统按提交日期归期）
	date, err := n.parseDate(rec.RawDate)
	if err != nil {
		return zero, err
	}
	if date.IsZero() {
		date = truncateToDay(rec.SubmittedAt)
	}

	var endDate *time.Time
	if strings.TrimSpace(rec.RawEndDate) != "" {
		d, err := n.parseDate(rec.RawEndDate)
		if err != nil {
			return zero, err
		}
		endDate = &d
	}

	hours, err := parseNonNegative("horas", rec.RawHours)
	if err != nil {
		return zero, err
	}
	amount, err := parseNonNegative("cantidad", rec.RawAmount)
	if err != nil {
		return zero, err
	}

	return model.NormalizedRecord{
		SourceID:          rec.ID,
		Category:          rec.Category,
		OwnerName:         NormalizeName(rec.OwnerName),
		OwnerEmail:        email,
		Title:             title,
		Status:            status,
		Date:              date,
		EndDate:           endDate,
		Hours:             hours,
		Amount:            amount,
		Label:             strings.ToUpper(CleanText(rec.Label)),
		SubmissionID:      rec.SubmissionID,
		SubmissionVersion: rec.SubmissionVersion,
		SubmittedAt:       rec.SubmittedAt,
	}, nil
}

// CleanText 去首尾空白并折叠内部连续空白
func CleanText(s string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// NormalizeName 规范化人名：折叠空白、逐词首字母大写、保留学位敬称
func NormalizeName(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		if h, ok := honorifics[strings.ToLower(w)]; ok {
			words[i] = h
			continue
		}
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

// titleWord 首字母大写其余小写（按 rune 处理，西语重音字符安全）
func titleWord(w string) string {
	runes := []rune(strings.ToLower(w))
	if len(runes) == 0 {
		return w
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// normalizeEmail 小写、去空白、折叠重复的点与 @，再做形状校验
func normalizeEmail(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	e = dotsRe.ReplaceAllString(e, ".")
	e = atsRe.ReplaceAllString(e, "@")

	if !emailRe.MatchString(e) {
		return "", fmt.Errorf("%w: correo institucional %q", model.ErrMalformedInput, email)
	}
	return e, nil
}

// normalizeStatus 规范化枚举状态
// 缺失归入 NO_ESPECIFICADO；有枚举集合的类别拒绝未知值。
func normalizeStatus(c model.Category, raw string) (string, error) {
	s := strings.ToUpper(strings.ReplaceAll(CleanText(raw), " ", "_"))
	if s == "" {
		return model.BucketUnspecified, nil
	}

	known := model.KnownStatuses(c)
	if known == nil {
		// 该类别没有枚举字段，保留规范化后的值
		return s, nil
	}
	for _, k := range known {
		if s == k {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: estado %q no válido para %s", model.ErrMalformedInput, raw, c)
}

// parseDate 按配置顺序尝试日期格式；输入为空返回零值
func (n *Normalizer) parseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range n.cfg.DateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateToDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", model.ErrUnparseableDate, raw)
}

// parseNonNegative 解析非负整数；空串视为 0（未填写）
// 负数或非数字返回 ErrInvalidNumeric，绝不静默归零。
func parseNonNegative(field, raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	v := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %s=%q", model.ErrInvalidNumeric, field, raw)
		}
		v = v*10 + int(r-'0')
		if v > 1<<30 {
			return 0, fmt.Errorf("%w: %s=%q 超出范围", model.ErrInvalidNumeric, field, raw)
		}
	}
	return v, nil
}

// truncateToDay 去掉时刻部分，统一为 UTC 日历日期
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
