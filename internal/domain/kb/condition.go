package kb

import (
	"fmt"
	"strings"
)

// Condition 单个 field=value 过滤条件
type Condition struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Matches 模糊包含匹配：大小写不敏感、首尾空白容错，
// 记录字段值包含期望值即命中（非相等比较，改成相等会降低召回）
func (c Condition) Matches(r *Record) bool {
	actual := strings.ToLower(strings.TrimSpace(r.FieldValue(c.Field)))
	expected := strings.ToLower(strings.TrimSpace(c.Value))
	return strings.Contains(actual, expected)
}

func (c Condition) String() string {
	return fmt.Sprintf("%s=%s", c.Field, c.Value)
}

// MatchAll 记录是否同时满足全部条件（AND 语义）
func MatchAll(r *Record, conds []Condition) bool {
	for _, c := range conds {
		if !c.Matches(r) {
			return false
		}
	}
	return true
}

// FilterRecords 按条件集做合取过滤
func FilterRecords(records []Record, conds []Condition) []Record {
	matched := make([]Record, 0)
	for i := range records {
		if MatchAll(&records[i], conds) {
			matched = append(matched, records[i])
		}
	}
	return matched
}
