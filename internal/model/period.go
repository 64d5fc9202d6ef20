package model

import (
	"fmt"
	"time"
)

// PeriodKey 聚合周期键：年份 + 可选季度
// Quarter 为 0 表示年度键，1-4 表示季度键。
type PeriodKey struct {
	Year    int `json:"year"`
	Quarter int `json:"quarter,omitempty"`
}

// Validate 校验周期键
func (k PeriodKey) Validate() error {
	if k.Year < 2000 || k.Year > 2200 {
		return fmt.Errorf("年份超出范围: %d", k.Year)
	}
	if k.Quarter < 0 || k.Quarter > 4 {
		return fmt.Errorf("季度必须在 0-4 之间: %d", k.Quarter)
	}
	return nil
}

// IsAnnual 是否为年度键
func (k PeriodKey) IsAnnual() bool { return k.Quarter == 0 }

// Annual 返回父年度键；季度键的范围总在其父年度键之内
func (k PeriodKey) Annual() PeriodKey { return PeriodKey{Year: k.Year} }

// Range 周期的日历范围 [start, end)
func (k PeriodKey) Range() (time.Time, time.Time) {
	if k.IsAnnual() {
		start := time.Date(k.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0)
	}
	start := time.Date(k.Year, time.Month((k.Quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 3, 0)
}

// Contains 日期是否落在周期范围内（按日历日期比较，忽略时刻）
func (k PeriodKey) Contains(t time.Time) bool {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	start, end := k.Range()
	return !d.Before(start) && d.Before(end)
}

// Prior 上一个同粒度周期（环比比较用）
func (k PeriodKey) Prior() PeriodKey {
	if k.IsAnnual() {
		return PeriodKey{Year: k.Year - 1}
	}
	if k.Quarter == 1 {
		return PeriodKey{Year: k.Year - 1, Quarter: 4}
	}
	return PeriodKey{Year: k.Year, Quarter: k.Quarter - 1}
}

// Label 短标签，如 "2025" / "Q3 2025"
func (k PeriodKey) Label() string {
	if k.IsAnnual() {
		return fmt.Sprintf("%d", k.Year)
	}
	return fmt.Sprintf("Q%d %d", k.Quarter, k.Year)
}

// SpanishLabel 西语周期名，如 "Año 2025" / "3er Trimestre 2025"
func (k PeriodKey) SpanishLabel() string {
	if k.IsAnnual() {
		return fmt.Sprintf("Año %d", k.Year)
	}
	return fmt.Sprintf("%s Trimestre %d", QuarterNameSpanish(k.Quarter), k.Year)
}

// QuarterNameSpanish 季度序数词
func QuarterNameSpanish(q int) string {
	switch q {
	case 1:
		return "1er"
	case 2:
		return "2do"
	case 3:
		return "3er"
	case 4:
		return "4to"
	}
	return fmt.Sprintf("%d", q)
}

// MonthNameSpanish 西语月份名（1-12）
func MonthNameSpanish(m time.Month) string {
	names := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	if m < 1 || m > 12 {
		return fmt.Sprintf("Mes %d", m)
	}
	return names[m-1]
}
