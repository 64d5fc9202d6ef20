package model

import "time"

// ActivityRecord 一条可报告的学术活动（来自已审批的提交）
// 字段保持原始字符串形态，清洗由 Normalizer 负责。
type ActivityRecord struct {
	ID         string   `json:"id"`       // 稳定记录标识，如 "F123-pub-2"
	Category   Category `json:"category"` // 所属类别
	OwnerName  string   `json:"owner_name"`
	OwnerEmail string   `json:"owner_email"` // 机构邮箱

	Title      string `json:"title"`                 // 课程名/论文题目/活动名/描述
	Status     string `json:"status,omitempty"`      // 类别相关的枚举值（原样）
	RawDate    string `json:"date,omitempty"`        // 活动日期（自由格式）
	RawEndDate string `json:"end_date,omitempty"`    // 认证有效期截止（可选）
	RawHours   string `json:"hours,omitempty"`       // 培训课程学时
	RawAmount  string `json:"amount,omitempty"`      // 其他活动数量（可选）
	Label      string `json:"label,omitempty"`       // 其他活动的自由类别标签

	// 溯源：指回原始提交及其版本
	SubmissionID      int64     `json:"submission_id"`
	SubmissionVersion int       `json:"submission_version"`
	SubmittedAt       time.Time `json:"submitted_at"`
}

// NormalizedRecord 清洗后的记录
// 日期是无时区的日历日期；文本已去空白并规范大小写；数值已验证非负。
// 每条 NormalizedRecord 通过 SourceID 对应且仅对应一条 ActivityRecord。
type NormalizedRecord struct {
	SourceID   string
	Category   Category
	OwnerName  string
	OwnerEmail string

	Title   string
	Status  string     // 规范化后的枚举值，缺失为 NO_ESPECIFICADO
	Date    time.Time  // 活动日期；原始为空时回退到提交日期
	EndDate *time.Time // 认证有效期截止，nil 表示长期有效
	Hours   int
	Amount  int
	Label   string

	SubmissionID      int64
	SubmissionVersion int
	SubmittedAt       time.Time
}

// DuplicateGroup 被判定为同一真实活动的记录集合
// 组之间互不相交；Canonical 的选取对相同输入是确定的。
type DuplicateGroup struct {
	Canonical NormalizedRecord
	Records   []NormalizedRecord
}

// Size 组内记录数
func (g DuplicateGroup) Size() int { return len(g.Records) }

// RecordIssue 单条记录的清洗/评分诊断
// 调用方收集后随报告一起上报，不中断其余记录的处理。
type RecordIssue struct {
	RecordID string `json:"record_id"`
	Reason   string `json:"reason"`
}
