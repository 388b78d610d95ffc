package bootstrap

import (
	"context"
	"time"

	"github.com/DODOEX/huffcodec/internal/application"
	"github.com/DODOEX/huffcodec/internal/database"
	"github.com/DODOEX/huffcodec/internal/module/batch"
	"github.com/DODOEX/huffcodec/internal/module/codec"
	"github.com/DODOEX/huffcodec/internal/module/codec/controller"
	"github.com/DODOEX/huffcodec/internal/module/shared"
	"github.com/DODOEX/huffcodec/utils"
	"github.com/DODOEX/huffcodec/utils/config"
	"github.com/rs/zerolog"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/fx"

	fxzerolog "github.com/efectn/fx-zerolog"
	"github.com/prometheus/client_golang/prometheus"
)

func StartCluster() {
	// 注册指标
	prometheus.MustRegister(utils.Collectors...)

	fx.New(
		// provide modules
		shared.NewSharedModule,
		codec.NewCodecModule,
		batch.NewBatchModule,

		// application
		fx.Provide(application.NewApplication),

		// define options
		fx.WithLogger(fxzerolog.Init()),
		fx.StartTimeout(5*time.Minute),
		fx.StopTimeout(5*time.Minute),

		// launch
		fx.Invoke(InitCluster),
	).Run()
}

// function to start webserver
func InitCluster(
	lifecycle fx.Lifecycle,
	conf *config.Conf,
	logger zerolog.Logger,
	database *database.Database,
	amqp *shared.Amqp,
	etcd *clientv3.Client,
	redis *shared.RedisClient,
	watcher *shared.WatcherClient,
	controller *controller.Controller,
	app *application.Application,
	runner batch.Runner,
) {
	logger = logger.With().Str("name", "cluster").Logger()

	lifecycle.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				var i = 1

				if err := database.Connect(ctx); err != nil {
					logger.Error().Err(err).Msgf("%d- An unknown error interrupted when to connect the Database!", i)
				} else {
					logger.Info().Msgf("%d- Connected the Database succesfully!", i)
				}
				i++

				if err := redis.Connect(ctx); err != nil {
					logger.Error().Err(err).Msgf("%d- An unknown error interrupted when to connect the Redis!", i)
				} else {
					logger.Info().Msgf("%d- Connected the Redis succesfully!", i)
				}
				i++

				if err := amqp.Connect(ctx); err != nil {
					logger.Error().Err(err).Msgf("%d- An unknown error occurred when to connect the Amqp!", i)
				} else {
					logger.Info().Msgf("%d- Connected the Amqp succesfully!", i)
				}
				i++

				// 监控 batch targets 配置文件
				if etcd != nil && conf.Exists(shared.KoanfEtcdBatchConfigToken) {
					watcher.OnChanaged(conf.String(shared.KoanfEtcdBatchConfigToken), func(path string, value []byte) {
						if err := shared.SetBatchTargets(conf, value); err != nil {
							logger.Error().Err(err).Msgf("Error loading watch config: %s", path)
							return
						}
						targets, err := config.LoadBatchTargets(conf, shared.KoanfBatchTargetsToken)
						if err != nil {
							logger.Error().Err(err).Msgf("Error loading watch config: %s", path)
							return
						}
						runner.Reload(targets)
						logger.Printf("Reload %s config.", path)
					})
					logger.Info().Msgf("%d- Watching batch targets config file...", i)
				} else {
					logger.Warn().Msgf("%d- Watch batch targets config file is disabled!", i)
				}
				i++

				if conf.Bool("batch.enable", false) {
					go func() {
						profiles, err := runner.RunAll(context.Background())
						if err != nil {
							logger.Error().Err(err).Msg("An unknown error occurred when to run the batch!")
						}
						logger.Info().Msgf("Finished %d batch runs.", len(profiles))
					}()
					logger.Info().Msgf("%d- Started the batch runner...", i)
				}

				go func() {
					controller.RegisterRoutes()

					logger.Info().Msg("🚀 " + app.AppName + " is running! listen on http://" + app.Hostname + ":" + app.Port)
					if err := app.Run(); err != nil {
						logger.Error().Err(err).Msg("An unknown error occurred when to run server!")
					}
				}()

				return nil
			},
			OnStop: func(ctx context.Context) error {
				logger.Info().Msg("Running cleanup tasks...")

				var i = 1

				if err := app.Shutdown(ctx); err != nil {
					logger.Error().Err(err).Msgf("%d- An unknown error occurred when to shutdown the Server!", i)
				} else {
					logger.Info().Msgf("%d- Shutdown the Server succesfully!", i)
				}
				i++

				if err := runner.Stop(ctx); err != nil {
					logger.Error().Err(err).Msgf("%d- An unknown error occurred when to stop the batch runner!", i)
				} else {
					logger.Info().Msgf("%d- Stopped the batch runner succesfully!", i)
				}
				i++

				if etcd != nil {
					if err := etcd.Close(); err != nil {
						logger.Error().Err(err).Msgf("%d- An unknown error occurred when to closed the etcd!", i)
					} else {
						logger.Info().Msgf("%d- Closed the ETCD succesfully!", i)
					}
				}
				i++

				if err := redis.Close(); err != nil {
					logger.Error().Err(err).Msgf("%d- An unknown error occurred when to closed the redis!", i)
				} else {
					logger.Info().Msgf("%d- Closed the Redis succesfully!", i)
				}
				i++

				if err := amqp.Close(); err != nil {
					logger.Error().Err(err).Msgf("%d- An unknown error occurred when to closed the amqp!", i)
				} else {
					logger.Info().Msgf("%d- Closed the Amqp succesfully!", i)
				}
				i++

				if err := database.Close(); err != nil {
					logger.Error().Err(err).Msg("An unknown error occurred when to shutdown the database!")
				} else {
					logger.Info().Msgf("%d- Closed the Database succesfully!", i)
				}

				logger.Info().Msgf("%s was successful shutdown.", app.AppName)
				logger.Info().Msg("\u001b[96msee you again👋\u001b[0m")

				return nil
			},
		},
	)
}
