package model

import "errors"

// 逐条记录错误：收集诊断后跳过该记录，处理继续
var (
	ErrMalformedInput  = errors.New("campo malformado")      // 邮箱等字段形状不合法
	ErrUnparseableDate = errors.New("fecha no interpretable") // 日期不匹配任何已配置格式
	ErrInvalidNumeric  = errors.New("valor numérico inválido") // 数值字段为负或非数字
)

// 管线级错误
var (
	// ErrIncompleteReportData 某格式渲染时缺少必需字段；仅该格式失败，其余格式照常完成
	ErrIncompleteReportData = errors.New("datos de reporte incompletos")
	// ErrEmptyPeriod 周期内没有规范记录；是否接受空报告由调用方决定
	ErrEmptyPeriod = errors.New("periodo sin registros")
	// ErrLedgerConflict 相同请求哈希的并发写冲突；第二个写入者降级为读取第一个的结果
	ErrLedgerConflict = errors.New("conflicto de ledger")
)
