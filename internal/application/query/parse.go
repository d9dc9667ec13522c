package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/casewise/backend/internal/domain/kb"
)

// 模型输出清理与结构化解析。
// 模型常把结果包进 markdown 代码块、加 json 语言标签、带引号或
// 在 JSON 前后夹说明文字，这里统一做尽力而为的提取；
// 格式异常是常态输入，解析失败返回 error 而非 panic。

var (
	jsonArrayPattern  = regexp.MustCompile(`(?s)\[\s*\{.*?\}\s*\]`)
	jsonObjectPattern = regexp.MustCompile(`(?s)\{.*?\}`)
)

// StripFences 去除 markdown 代码块包裹与 json 语言标签
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.Contains(s, "```") {
		parts := strings.Split(s, "```")
		if len(parts) >= 2 {
			s = strings.TrimSpace(parts[1])
		}
	}
	s = strings.TrimPrefix(s, "json")
	return strings.TrimSpace(s)
}

// StripQuotes 去除首尾成对的引号
func StripQuotes(s string) string {
	s = strings.TrimSpace(s)
	for len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'' || first == '`') {
			s = strings.TrimSpace(s[1 : len(s)-1])
			continue
		}
		break
	}
	return s
}

// NormalizeFieldReply 字段名回复的完整清理：去包裹、去引号、小写
func NormalizeFieldReply(raw string) string {
	return strings.ToLower(StripQuotes(StripFences(raw)))
}

// ExtractJSONArray 从回复中提取首个形如 [{...}] 的 JSON 数组子串
func ExtractJSONArray(raw string) (string, bool) {
	match := jsonArrayPattern.FindString(raw)
	return match, match != ""
}

// ExtractJSONObject 从回复中提取首个形如 {...} 的 JSON 对象子串
func ExtractJSONObject(raw string) (string, bool) {
	match := jsonObjectPattern.FindString(raw)
	return match, match != ""
}

// DecodeConditions 解析过滤条件数组
func DecodeConditions(jsonStr string) ([]kb.Condition, error) {
	var conds []kb.Condition
	if err := sonic.Unmarshal([]byte(jsonStr), &conds); err != nil {
		return nil, fmt.Errorf("decode conditions: %w", err)
	}
	return conds, nil
}

// DecodeCondition 解析单个过滤条件对象
func DecodeCondition(jsonStr string) (kb.Condition, error) {
	var cond kb.Condition
	if err := sonic.Unmarshal([]byte(jsonStr), &cond); err != nil {
		return kb.Condition{}, fmt.Errorf("decode condition: %w", err)
	}
	return cond, nil
}

// truncateRunes 按字符数截断（多字节安全）
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
