package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codi-diyt/actividades/internal/model"
	"github.com/codi-diyt/actividades/internal/schema"
)

// LedgerRepository 报告台账仓储
type LedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository 创建仓储
func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Record 追加台账条目
// content_hash 带唯一索引：并发的相同请求只有第一个写入成功，
// 第二个返回 model.ErrLedgerConflict，调用方降级为读取已有条目。
func (r *LedgerRepository) Record(ctx context.Context, entry *schema.LedgerEntry) error {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "content_hash"}},
		DoNothing: true,
	}).Create(entry)
	if res.Error != nil {
		return fmt.Errorf("写入台账失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrLedgerConflict
	}
	return nil
}

// FindByHash 按输入内容哈希查找已有条目；不存在时返回 nil
func (r *LedgerRepository) FindByHash(ctx context.Context, hash string) (*schema.LedgerEntry, error) {
	var entry schema.LedgerEntry
	err := r.db.WithContext(ctx).Where("content_hash = ?", hash).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询台账失败: %w", err)
	}
	return &entry, nil
}

// List 按生成时间倒序列出台账（limit<=0 表示不限）
func (r *LedgerRepository) List(ctx context.Context, limit int) ([]schema.LedgerEntry, error) {
	var entries []schema.LedgerEntry
	q := r.db.WithContext(ctx).Order("generated_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("查询台账历史失败: %w", err)
	}
	return entries, nil
}

// LedgerStats 台账使用统计
type LedgerStats struct {
	Total         int64            `json:"total"`
	ByKind        map[string]int64 `json:"by_kind"`
	ByFormat      map[string]int64 `json:"by_format"`
	LastGenerated *time.Time       `json:"last_generated,omitempty"`
}

// Stats 汇总历史报告的种类与格式分布
func (r *LedgerRepository) Stats(ctx context.Context) (*LedgerStats, error) {
	entries, err := r.List(ctx, 0)
	if err != nil {
		return nil, err
	}

	stats := &LedgerStats{
		ByKind:   make(map[string]int64),
		ByFormat: make(map[string]int64),
	}
	for i := range entries {
		e := &entries[i]
		stats.Total++
		stats.ByKind[e.Kind]++
		for _, f := range e.Formats {
			stats.ByFormat[f]++
		}
		if stats.LastGenerated == nil || e.GeneratedAt.After(*stats.LastGenerated) {
			t := e.GeneratedAt
			stats.LastGenerated = &t
		}
	}
	return stats, nil
}
