package query

import "github.com/google/wire"

// ProviderSet Query 应用层 ProviderSet
var ProviderSet = wire.NewSet(
	NewClassifier,
	NewStatsEngine,
	NewFilterEngine,
	NewValuesEngine,
	NewTrendEngine,
	NewSolutionEngine,
	NewSemanticEngine,
	NewFollowUpResolver,
	NewContextStore,
	NewRouter,
)
