package kb

import "strings"

// Unlabeled 聚合统计时缺失字段的占位值
const Unlabeled = "未標註"

// 允许参与过滤与统计的四个结构化字段
const (
	FieldConfigurationItem = "configurationItem"
	FieldSubcategory       = "subcategory"
	FieldRoleComponent     = "roleComponent"
	FieldLocation          = "location"
)

// AllowedFields 允许的字段列表（固定顺序）
var AllowedFields = []string{
	FieldConfigurationItem,
	FieldSubcategory,
	FieldRoleComponent,
	FieldLocation,
}

// IsAllowedField 判断字段名是否在允许列表中（区分大小写）
func IsAllowedField(name string) bool {
	for _, f := range AllowedFields {
		if f == name {
			return true
		}
	}
	return false
}

// CanonicalField 将字段名解析为规范写法（不区分大小写）
// 返回规范字段名及是否命中
func CanonicalField(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	for _, f := range AllowedFields {
		if strings.EqualFold(f, trimmed) {
			return f, true
		}
	}
	return "", false
}

// Record 知识库元数据条目
// 字段均为可选，JSON 键名与持久化格式保持一致
type Record struct {
	ConfigurationItem string `json:"configurationItem,omitempty"`
	Subcategory       string `json:"subcategory,omitempty"`
	RoleComponent     string `json:"roleComponent,omitempty"`
	Location          string `json:"location,omitempty"`
	Text              string `json:"text,omitempty"`
	Solution          string `json:"solution,omitempty"`
	AnalysisTime      string `json:"analysisTime,omitempty"`
}

// FieldValue 按字段名取值，未知字段返回空串
func (r *Record) FieldValue(name string) string {
	switch name {
	case FieldConfigurationItem:
		return r.ConfigurationItem
	case FieldSubcategory:
		return r.Subcategory
	case FieldRoleComponent:
		return r.RoleComponent
	case FieldLocation:
		return r.Location
	}
	return ""
}

// FieldOrUnlabeled 按字段名取值，空值返回占位值（聚合统计用）
func (r *Record) FieldOrUnlabeled(name string) string {
	if v := r.FieldValue(name); v != "" {
		return v
	}
	return Unlabeled
}
