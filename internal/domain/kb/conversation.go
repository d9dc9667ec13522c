package kb

// 会话角色
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Context 一次查询的结构化上下文，挂在会话最后一条消息上，
// 供后续追问（延伸查询）解析先前的过滤条件
type Context struct {
	Type    Intent      `json:"type"`
	Query   string      `json:"query"`
	Filters []Condition `json:"filters,omitempty"`
	Summary string      `json:"summary,omitempty"`
}

// Turn 会话中的一条消息
type Turn struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Context *Context `json:"context,omitempty"`
}
