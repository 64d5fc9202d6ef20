package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/codi-diyt/actividades/internal/model"
)

// Aggregator 周期聚合器
// 从去重后的规范记录集计算周期快照。纯计算，无状态：
// 同样的记录集、周期与 as-of 日期永远产出同样的快照。
type Aggregator struct{}

// NewAggregator 创建聚合器
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// CanonicalInPeriod 取各重复组的规范记录并按周期过滤
// 组员不参与统计，只有规范记录计入指标。
func CanonicalInPeriod(groups []model.DuplicateGroup, period model.PeriodKey) []model.NormalizedRecord {
	var out []model.NormalizedRecord
	for _, g := range groups {
		if period.Contains(g.Canonical.Date) {
			out = append(out, g.Canonical)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceID < out[j].SourceID })
	return out
}

// Aggregate 聚合一个周期的快照
// 周期内没有任何记录时拒绝并返回 ErrEmptyPeriod，绝不产出全零报告。
func (a *Aggregator) Aggregate(records []model.NormalizedRecord, period model.PeriodKey, asOf time.Time) (*model.MetricsSnapshot, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", model.ErrEmptyPeriod, period.Label())
	}

	snap := &model.MetricsSnapshot{
		Period:     period,
		AsOf:       asOf,
		Monthly:    make(map[string]int),
		Categories: make(map[model.Category]model.CategoryMetrics),
	}

	docentes := make(map[string]struct{})
	titles := make(map[model.Category]map[string]struct{})

	for _, r := range records {
		if !period.Contains(r.Date) {
			continue
		}
		snap.TotalRecords++
		docentes[r.OwnerEmail] = struct{}{}
		snap.Monthly[r.Date.Format("2006-01")]++

		m := snap.Categories[r.Category]
		if m.Buckets == nil {
			m.Buckets = make(map[string]int)
		}
		m.Count++

		switch r.Category {
		case model.CategoryCurso:
			m.Hours += r.Hours
			m.Buckets[model.BucketUnspecified]++
		case model.CategoryCertificacion:
			if certificationActive(r, asOf) {
				m.Active++
				m.Buckets["VIGENTE"]++
			} else {
				m.Expired++
				m.Buckets["VENCIDA"]++
			}
		case model.CategoryOtra:
			label := r.Label
			if label == "" {
				label = model.BucketUnspecified
			}
			m.Buckets[label]++
		default:
			// 带枚举字段的类别按状态分桶；缺失已在清洗层归入 NO_ESPECIFICADO
			m.Buckets[r.Status]++
		}

		if titles[r.Category] == nil {
			titles[r.Category] = make(map[string]struct{})
		}
		if _, seen := titles[r.Category][r.Title]; !seen {
			titles[r.Category][r.Title] = struct{}{}
			m.Examples = append(m.Examples, r.Title)
		}

		snap.Categories[r.Category] = m
	}

	snap.TotalDocentes = len(docentes)
	return snap, nil
}

// certificationActive 认证在 as-of 日期是否仍有效
// 没有截止日期视为长期有效。
func certificationActive(r model.NormalizedRecord, asOf time.Time) bool {
	if r.EndDate == nil {
		return true
	}
	day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	return !r.EndDate.Before(day)
}

// Compare 计算当前快照相对上一周期的逐类别差值
// 变化在 ±5% 以内视为持平；上期为零而本期有产出记为 100% 增长。
// 叙事层只消费这里的结果，不得自行重算。
func (a *Aggregator) Compare(current, previous *model.MetricsSnapshot) *model.PeriodComparison {
	cmp := &model.PeriodComparison{
		Prior:  current.Period.Prior(),
		Deltas: make(map[model.Category]model.CategoryDelta),
	}

	for _, c := range model.AllCategories() {
		cur := current.Category(c).Count
		prev := 0
		if previous != nil {
			prev = previous.Category(c).Count
		}
		if cur == 0 && prev == 0 {
			continue
		}

		d := model.CategoryDelta{Current: cur, Previous: prev}
		switch {
		case prev == 0:
			d.ChangePct = 100
			d.Trend = model.TrendUp
		default:
			d.ChangePct = 100 * float64(cur-prev) / float64(prev)
			switch {
			case math.Abs(d.ChangePct) <= 5:
				d.Trend = model.TrendStable
			case d.ChangePct > 0:
				d.Trend = model.TrendUp
			default:
				d.Trend = model.TrendDown
			}
		}
		cmp.Deltas[c] = d
	}
	return cmp
}

// AggregateWithComparison 聚合当前周期并附带环比
// 上一周期为空属正常情况（首个周期），按全零基线比较而不报错。
func (a *Aggregator) AggregateWithComparison(groups []model.DuplicateGroup, period model.PeriodKey, asOf time.Time) (*model.MetricsSnapshot, error) {
	current, err := a.Aggregate(CanonicalInPeriod(groups, period), period, asOf)
	if err != nil {
		return nil, err
	}

	var previous *model.MetricsSnapshot
	priorRecords := CanonicalInPeriod(groups, period.Prior())
	if len(priorRecords) > 0 {
		previous, err = a.Aggregate(priorRecords, period.Prior(), asOf)
		if err != nil {
			return nil, err
		}
	}

	current.Comparison = a.Compare(current, previous)
	return current, nil
}
