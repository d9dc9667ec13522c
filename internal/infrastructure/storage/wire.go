package storage

import "github.com/google/wire"

// ProviderSet Storage 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	NewMetadataFile,   // 知识库元数据文件
	NewTranscriptDir,  // 会话记录目录
)
