package batch

import "go.uber.org/fx"

// register bulky of batch module
var NewBatchModule = fx.Options(
	fx.Provide(NewJobPublisher),
	fx.Provide(NewRunner),
)
