package infrastructure

import (
	"github.com/casewise/backend/internal/infrastructure/config"
	"github.com/casewise/backend/internal/infrastructure/embedding"
	"github.com/casewise/backend/internal/infrastructure/inference"
	"github.com/casewise/backend/internal/infrastructure/storage"
	"github.com/casewise/backend/internal/infrastructure/vector"
	"github.com/casewise/backend/internal/infrastructure/watcher"
	"github.com/google/wire"
)

// ProviderSet Infrastructure 层总 ProviderSet
var ProviderSet = wire.NewSet(
	config.ProviderSet,
	storage.ProviderSet,
	embedding.NewClient,
	vector.NewIndex,
	inference.NewGateway,
	watcher.NewKBWatcher,
)
