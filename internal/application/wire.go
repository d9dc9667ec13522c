package application

import (
	"github.com/casewise/backend/internal/application/query"
	"github.com/google/wire"
)

// ProviderSet Application 层总 ProviderSet
var ProviderSet = wire.NewSet(
	query.ProviderSet,
)
