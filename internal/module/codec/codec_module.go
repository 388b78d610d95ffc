package codec

import (
	"github.com/DODOEX/huffcodec/internal/module/codec/controller"
	"github.com/DODOEX/huffcodec/internal/module/codec/repository"
	"github.com/DODOEX/huffcodec/internal/module/codec/service"
	"go.uber.org/fx"
)

// register bulky of codec module
var NewCodecModule = fx.Options(
	// register repository of codec module
	fx.Provide(repository.NewJobRepository),

	// register service of codec module
	fx.Provide(service.NewArtifactStore),
	fx.Provide(service.NewCodecService),

	// register controller of codec module
	fx.Provide(controller.NewCodecController),
	fx.Provide(controller.NewJobController),
	fx.Provide(controller.NewOtherController),

	fx.Provide(controller.NewController),
)
