package model

import (
	"sort"
	"time"
)

// CategoryMetrics 单个类别在一个周期内的聚合指标
type CategoryMetrics struct {
	Count    int            `json:"count"`
	Hours    int            `json:"hours,omitempty"`    // 仅培训课程
	Buckets  map[string]int `json:"buckets,omitempty"`  // 状态/类型分布，含 NO_ESPECIFICADO
	Active   int            `json:"active,omitempty"`   // 仅认证：as-of 时仍有效
	Expired  int            `json:"expired,omitempty"`  // 仅认证：as-of 时已过期
	Examples []string       `json:"examples,omitempty"` // 去重后的条目标题（确定顺序）
}

// BucketKeys 排序后的桶键（渲染与哈希的确定性依赖它）
func (m CategoryMetrics) BucketKeys() []string {
	keys := make([]string, 0, len(m.Buckets))
	for k := range m.Buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BucketTotal 各桶之和；守恒性质要求它等于 Count
func (m CategoryMetrics) BucketTotal() int {
	total := 0
	for _, n := range m.Buckets {
		total += n
	}
	return total
}

// Trend 环比趋势分类
type Trend string

const (
	TrendUp     Trend = "aumento"
	TrendDown   Trend = "disminucion"
	TrendStable Trend = "estable"
)

// CategoryDelta 类别环比差值
// 所有差值由聚合器统一计算，叙事层不得自行重算。
type CategoryDelta struct {
	Current   int     `json:"current"`
	Previous  int     `json:"previous"`
	ChangePct float64 `json:"change_pct"`
	Trend     Trend   `json:"trend"`
}

// PeriodComparison 与上一周期的逐字段比较
type PeriodComparison struct {
	Prior  PeriodKey                  `json:"prior"`
	Deltas map[Category]CategoryDelta `json:"deltas"`
}

// MetricsSnapshot 一个周期的聚合快照
// 每次报告请求都从当前规范记录集重新计算，幂等重算是契约而非缓存。
type MetricsSnapshot struct {
	Period        PeriodKey                    `json:"period"`
	AsOf          time.Time                    `json:"as_of"`
	TotalRecords  int                          `json:"total_records"`
	TotalDocentes int                          `json:"total_docentes"` // 参与教师数（按邮箱去重）
	Monthly       map[string]int               `json:"monthly"`        // "2025-03" -> 条数
	Categories    map[Category]CategoryMetrics `json:"categories"`
	Comparison    *PeriodComparison            `json:"comparison,omitempty"`
}

// Category 取某类别指标；类别无条目时返回零值
func (s *MetricsSnapshot) Category(c Category) CategoryMetrics {
	if s.Categories == nil {
		return CategoryMetrics{}
	}
	return s.Categories[c]
}

// MonthKeys 排序后的月份键
func (s *MetricsSnapshot) MonthKeys() []string {
	keys := make([]string, 0, len(s.Monthly))
	for k := range s.Monthly {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
