package service

import (
	"context"

	"github.com/codi-diyt/actividades/internal/model"
	"github.com/codi-diyt/actividades/internal/schema"
)

// RecordSource 已审批记录的来源
type RecordSource interface {
	// FetchApproved 拉取当前全部已审批的活动记录
	FetchApproved(ctx context.Context) ([]model.ActivityRecord, error)
}

// ArtifactStore 渲染产物存储
type ArtifactStore interface {
	// Save 保存产物，返回台账可引用的存储路径
	Save(ctx context.Context, reportID string, artifact model.Artifact) (string, error)
	// Load 按存储路径读回产物内容
	Load(ctx context.Context, path string) ([]byte, error)
	// Remove 删除某报告的全部产物（写台账竞争失败时回收）
	Remove(ctx context.Context, reportID string) error
}

// LedgerStore 报告台账
// *repository.LedgerRepository 满足该接口。
type LedgerStore interface {
	Record(ctx context.Context, entry *schema.LedgerEntry) error
	FindByHash(ctx context.Context, hash string) (*schema.LedgerEntry, error)
}
