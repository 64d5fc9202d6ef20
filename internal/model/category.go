package model

// Category 学术活动类别
// 每个类别的载荷字段形状是固定的，一条记录只能属于一个类别。
type Category string

const (
	CategoryCurso          Category = "cursos_capacitacion"    // 培训课程
	CategoryPublicacion    Category = "publicaciones"          // 出版物
	CategoryEvento         Category = "eventos_academicos"     // 学术活动/会议
	CategoryDiseno         Category = "diseno_curricular"      // 课程设计
	CategoryMovilidad      Category = "experiencias_movilidad" // 学术交流
	CategoryReconocimiento Category = "reconocimientos"        // 荣誉/表彰
	CategoryCertificacion  Category = "certificaciones"        // 职业认证
	CategoryOtra           Category = "otras_actividades"      // 其他学术活动
)

// AllCategories 固定遍历顺序，保证聚合与渲染的确定性
func AllCategories() []Category {
	return []Category{
		CategoryCurso,
		CategoryPublicacion,
		CategoryEvento,
		CategoryDiseno,
		CategoryMovilidad,
		CategoryReconocimiento,
		CategoryCertificacion,
		CategoryOtra,
	}
}

// DisplayName 类别的西语展示名（报告标题用）
func (c Category) DisplayName() string {
	switch c {
	case CategoryCurso:
		return "Cursos de Capacitación"
	case CategoryPublicacion:
		return "Publicaciones"
	case CategoryEvento:
		return "Eventos Académicos"
	case CategoryDiseno:
		return "Diseño Curricular"
	case CategoryMovilidad:
		return "Experiencias de Movilidad"
	case CategoryReconocimiento:
		return "Reconocimientos"
	case CategoryCertificacion:
		return "Certificaciones"
	case CategoryOtra:
		return "Otras Actividades Académicas"
	default:
		return string(c)
	}
}

// Valid 是否为已知类别
func (c Category) Valid() bool {
	switch c {
	case CategoryCurso, CategoryPublicacion, CategoryEvento, CategoryDiseno,
		CategoryMovilidad, CategoryReconocimiento, CategoryCertificacion, CategoryOtra:
		return true
	}
	return false
}

// 各类别的枚举状态值（与原始提交表单一致）
const (
	// 出版物状态
	StatusAceptado   = "ACEPTADO"
	StatusEnRevision = "EN_REVISION"
	StatusPublicado  = "PUBLICADO"
	StatusRechazado  = "RECHAZADO"

	// 活动参与类型
	StatusOrganizador  = "ORGANIZADOR"
	StatusParticipante = "PARTICIPANTE"
	StatusPonente      = "PONENTE"

	// 交流类型
	StatusNacional      = "NACIONAL"
	StatusInternacional = "INTERNACIONAL"

	// 荣誉类型
	StatusGrado      = "GRADO"
	StatusPremio     = "PREMIO"
	StatusDistincion = "DISTINCION"
)

// BucketUnspecified 可选枚举字段缺失时的统计桶
// 缺失值归入该桶而不是丢弃，保证各桶之和等于类别总数。
const BucketUnspecified = "NO_ESPECIFICADO"

// KnownStatuses 类别允许的状态值集合；无枚举字段的类别返回 nil
func KnownStatuses(c Category) []string {
	switch c {
	case CategoryPublicacion:
		return []string{StatusAceptado, StatusEnRevision, StatusPublicado, StatusRechazado}
	case CategoryEvento:
		return []string{StatusOrganizador, StatusParticipante, StatusPonente}
	case CategoryMovilidad:
		return []string{StatusNacional, StatusInternacional}
	case CategoryReconocimiento:
		return []string{StatusGrado, StatusPremio, StatusDistincion}
	}
	return nil
}
