package query

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casewise/backend/internal/domain/kb"
)

func filterRecords() []kb.Record {
	return []kb.Record{
		{Subcategory: "Login/Access", Location: "Taipei HQ", Text: "User cannot log in after password reset"},
		{Subcategory: "Login/Access", Location: "Taichung", Text: "SSO redirect loop on portal"},
		{Subcategory: "Crash", Location: "Taipei HQ", Text: "App server crashed under load"},
	}
}

// TestFilterEngine_Run 测试完整过滤流程
func TestFilterEngine_Run(t *testing.T) {
	gw := &fakeGateway{results: []kb.InferResult{
		ok("```json\n[{\"field\": \"subcategory\", \"value\": \"Login\"}, {\"field\": \"location\", \"value\": \"Tai\"}]\n```"),
	}}
	e := NewFilterEngine(gw, &fakeStore{records: filterRecords()}, testModels(), testTimeouts())

	reply, conds := e.Run(context.Background(), "login issues in Taiwan offices")

	require.Len(t, conds, 2)
	assert.True(t, strings.HasPrefix(reply, "🔎 Top matches for:"))
	assert.Contains(t, reply, "• subcategory = Login/Access")
	assert.Contains(t, reply, "• location = Taichung, Taipei HQ", "实际命中值去重排序")
	assert.Contains(t, reply, "- User cannot log in after password reset")
	assert.Contains(t, reply, "- SSO redirect loop on portal")
	assert.NotContains(t, reply, "crashed")

	// prompt 中带有库内实际词汇约束
	assert.Contains(t, gw.calls[0].Prompt, "location: [Taichung, Taipei HQ]")
}

// TestFilterEngine_NoMatches 测试零命中回报条件本身
func TestFilterEngine_NoMatches(t *testing.T) {
	gw := &fakeGateway{results: []kb.InferResult{
		ok(`[{"field": "location", "value": "Kaohsiung"}]`),
	}}
	e := NewFilterEngine(gw, &fakeStore{records: filterRecords()}, testModels(), testTimeouts())

	reply, conds := e.Run(context.Background(), "cases in Kaohsiung")

	assert.Equal(t, "🔍 No results found for: location=Kaohsiung", reply)
	assert.Len(t, conds, 1, "零命中时条件仍然返回供上下文保存")
}

// TestFilterEngine_SoftErrors 测试各类软错误路径
func TestFilterEngine_SoftErrors(t *testing.T) {
	t.Run("输出中无 JSON 数组", func(t *testing.T) {
		gw := &fakeGateway{results: []kb.InferResult{ok("I could not find any filters.")}}
		e := NewFilterEngine(gw, &fakeStore{records: filterRecords()}, testModels(), testTimeouts())

		reply, conds := e.Run(context.Background(), "whatever")
		assert.Equal(t, "⚠️ Failed to extract valid JSON array from model output.", reply)
		assert.Nil(t, conds)
	})

	t.Run("JSON 解码失败", func(t *testing.T) {
		gw := &fakeGateway{results: []kb.InferResult{ok(`[{"field": 123}]`)}}
		e := NewFilterEngine(gw, &fakeStore{records: filterRecords()}, testModels(), testTimeouts())

		reply, _ := e.Run(context.Background(), "whatever")
		assert.True(t, strings.HasPrefix(reply, "⚠️ JSON decode error:"))
	})

	t.Run("全部条件字段非法", func(t *testing.T) {
		gw := &fakeGateway{results: []kb.InferResult{
			ok(`[{"field": "severity", "value": "high"}]`),
		}}
		e := NewFilterEngine(gw, &fakeStore{records: filterRecords()}, testModels(), testTimeouts())

		reply, conds := e.Run(context.Background(), "high severity cases")
		assert.Equal(t, "⚠️ No valid filters extracted from the query.", reply)
		assert.Nil(t, conds)
	})

	t.Run("元数据加载失败", func(t *testing.T) {
		e := NewFilterEngine(&fakeGateway{}, &fakeStore{err: errBoom}, testModels(), testTimeouts())
		reply, _ := e.Run(context.Background(), "whatever")
		assert.Equal(t, "⚠️ Failed to load metadata: boom", reply)
	})

	t.Run("模型调用失败", func(t *testing.T) {
		gw := &fakeGateway{results: []kb.InferResult{timedOut("deadline exceeded")}}
		e := NewFilterEngine(gw, &fakeStore{records: filterRecords()}, testModels(), testTimeouts())
		reply, _ := e.Run(context.Background(), "whatever")
		assert.Equal(t, "⚠️ Failed to parse or search: deadline exceeded", reply)
	})
}

// TestFilterEngine_MixedValidity 测试非法字段条件静默丢弃、合法条件继续生效
func TestFilterEngine_MixedValidity(t *testing.T) {
	gw := &fakeGateway{results: []kb.InferResult{
		ok(`[{"field": "severity", "value": "high"}, {"field": "subcategory", "value": "crash"}]`),
	}}
	e := NewFilterEngine(gw, &fakeStore{records: filterRecords()}, testModels(), testTimeouts())

	reply, conds := e.Run(context.Background(), "high severity crashes")

	require.Len(t, conds, 1)
	assert.Equal(t, "subcategory", conds[0].Field)
	assert.Contains(t, reply, "App server crashed", "模糊匹配大小写不敏感")
}

// TestFilterEngine_PreviewCap 测试命中预览最多 5 条
func TestFilterEngine_PreviewCap(t *testing.T) {
	records := make([]kb.Record, 0, 8)
	for i := 0; i < 8; i++ {
		records = append(records, kb.Record{Location: "Taipei", Text: strings.Repeat("x", i+1)})
	}
	gw := &fakeGateway{results: []kb.InferResult{
		ok(`[{"field": "location", "value": "Taipei"}]`),
	}}
	e := NewFilterEngine(gw, &fakeStore{records: records}, testModels(), testTimeouts())

	reply, _ := e.Run(context.Background(), "cases in Taipei")

	previews := 0
	for _, line := range strings.Split(reply, "\n") {
		if strings.HasPrefix(line, "- ") {
			previews++
		}
	}
	assert.Equal(t, maxMatchLines, previews)
}
