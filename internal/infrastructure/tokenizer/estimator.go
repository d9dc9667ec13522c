package tokenizer

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// 在包初始化时设置离线加载器，避免运行时下载编码文件
func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// Estimator 基于 tiktoken 的 Token 数量估算器
type Estimator struct {
	encoding *tiktoken.Tiktoken
}

var (
	instance *Estimator
	once     sync.Once
	loadErr  error
)

// NewEstimator 获取估算器
// 编码加载失败时返回 nil，调用方回退到字符估算
func NewEstimator() *Estimator {
	once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			loadErr = err
			return
		}
		instance = &Estimator{encoding: enc}
	})

	if loadErr != nil {
		return nil
	}
	return instance
}

// CountTokens 计算文本的 Token 数量
// estimator 为 nil 时按 4 字符 1 token 粗估
func (e *Estimator) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	if e == nil || e.encoding == nil {
		return (len(text) + 3) / 4
	}
	return len(e.encoding.Encode(text, nil, nil))
}
