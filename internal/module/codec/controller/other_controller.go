package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/DODOEX/huffcodec/internal/database"
	"github.com/DODOEX/huffcodec/internal/module/shared"
	prometheusfasthttp "github.com/gohutool/boot4go-prometheus/fasthttp"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/errgroup"
)

type otherController struct {
	logger  zerolog.Logger
	amqp    *shared.Amqp
	rclient *shared.RedisClient
	db      *database.Database
}

type OtherController interface {
	HandleK8sHealthz(ctx *fasthttp.RequestCtx)
	HandleMetrics(ctx *fasthttp.RequestCtx)
}

func NewOtherController(
	logger zerolog.Logger,
	amqp *shared.Amqp,
	rclient *shared.RedisClient,
	db *database.Database,
) OtherController {
	controller := &otherController{
		logger:  logger.With().Str("name", "other_controller").Logger(),
		amqp:    amqp,
		rclient: rclient,
		db:      db,
	}

	return controller
}

// Only the backends that were configured are checked.
func (o *otherController) HandleK8sHealthz(ctx *fasthttp.RequestCtx) {
	_ctx, cancel := context.WithTimeout(ctx, 3*time.Second) // fasthttp 默认超时 3s
	defer cancel()

	g, gctx := errgroup.WithContext(_ctx)

	if o.rclient != nil && o.rclient.Client != nil {
		g.Go(func() error {
			return o.rclient.Client.Ping(gctx).Err()
		})
	}

	if o.db.Connected() {
		g.Go(func() error {
			return o.db.DB.WithContext(gctx).Exec("SELECT 1").Error
		})
	}

	if o.amqp != nil && o.amqp.Conn != nil {
		g.Go(func() error {
			if o.amqp.Conn.IsClosed() {
				return fmt.Errorf("amqp connection is closed")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		o.logger.Error().Stack().Err(err).Send()
		ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
	} else {
		ctx.Success("application/text", []byte("ok"))
	}
}

func (o *otherController) HandleMetrics(ctx *fasthttp.RequestCtx) {
	prometheusfasthttp.PrometheusHandler(prometheusfasthttp.HandlerOpts{})(ctx)
}
