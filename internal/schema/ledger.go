package schema

import "time"

// LedgerEntry 报告台账条目
// 记录每次报告生成的参数、输入内容哈希与产物位置。台账只追加不删除，
// 清理归外部备份工具负责。相同 ContentHash 的请求直接复用已有产物。
type LedgerEntry struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"` // UUID
	Kind        string    `gorm:"size:32;index" json:"kind"`    // anual_narrativo | resumen_trimestral
	Year        int       `gorm:"index" json:"year"`
	Quarter     int       `gorm:"default:0" json:"quarter"` // 0 表示年度
	AsOf        string    `gorm:"size:10" json:"as_of"`     // YYYY-MM-DD
	Formats     JSONArray `gorm:"type:text" json:"formats"`
	ContentHash string    `gorm:"size:64;uniqueIndex" json:"content_hash"` // 规范记录集+参数的 SHA-256
	RecordCount int       `gorm:"default:0" json:"record_count"`           // 参与聚合的规范记录数
	Docentes    int       `gorm:"default:0" json:"docentes"`               // 参与教师数
	Artifacts   JSONMap   `gorm:"type:text" json:"artifacts"`              // 格式 -> 存储路径
	GeneratedAt time.Time `json:"generated_at"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "report_ledger"
}

// SchemaMeta 数据库 schema 版本单行表（ID=1），作为升级门闸
type SchemaMeta struct {
	ID            int       `gorm:"primaryKey"`
	SchemaVersion int       `gorm:"not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (SchemaMeta) TableName() string {
	return "schema_meta"
}
