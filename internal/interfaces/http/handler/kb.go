package handler

import (
	"net/http"
	"sort"
	"strings"

	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/casewise/backend/internal/domain/kb"
	applog "github.com/casewise/backend/internal/infrastructure/log"
	"github.com/casewise/backend/internal/infrastructure/storage"
	"github.com/casewise/backend/internal/interfaces/http/response"
)

// KBHandler 知识库运维接口处理器
type KBHandler struct {
	metadata *storage.MetadataFile
	logger   *slog.Logger
}

// NewKBHandler 创建知识库处理器
func NewKBHandler(metadata *storage.MetadataFile) *KBHandler {
	return &KBHandler{
		metadata: metadata,
		logger:   applog.NewModuleLogger("http", "kb"),
	}
}

// StatusResponse 知识库状态响应
type StatusResponse struct {
	Path  string                `json:"path"`
	Stats storage.MetadataStats `json:"stats"`
}

// Status 知识库元数据文件状态
// GET /api/v1/kb/status
func (h *KBHandler) Status(c *gin.Context) {
	if _, err := h.metadata.Load(c.Request.Context()); err != nil {
		response.ErrorWithDetail(c, http.StatusInternalServerError, 500, "failed to load metadata", err.Error())
		return
	}

	response.Success(c, StatusResponse{
		Path:  h.metadata.Path(),
		Stats: h.metadata.Stats(),
	})
}

// FieldInfo 单个允许字段的取值概览
type FieldInfo struct {
	Field  string   `json:"field"`
	Values []string `json:"values"`
	Count  int      `json:"count"`
}

// Fields 允许字段及其实际取值
// GET /api/v1/kb/fields
func (h *KBHandler) Fields(c *gin.Context) {
	records, err := h.metadata.Load(c.Request.Context())
	if err != nil {
		response.ErrorWithDetail(c, http.StatusInternalServerError, 500, "failed to load metadata", err.Error())
		return
	}

	fields := make([]FieldInfo, 0, len(kb.AllowedFields))
	for _, field := range kb.AllowedFields {
		seen := make(map[string]struct{})
		values := make([]string, 0)
		for i := range records {
			v := strings.TrimSpace(records[i].FieldValue(field))
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
		sort.Strings(values)
		fields = append(fields, FieldInfo{
			Field:  field,
			Values: values,
			Count:  len(values),
		})
	}

	response.Success(c, gin.H{"fields": fields})
}
