package controller

import (
	"github.com/DODOEX/huffcodec/internal/application"
	"github.com/DODOEX/huffcodec/internal/common"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

type Controller struct {
	app   *application.Application
	Codec CodecController
	Job   JobController
	Other OtherController
}

func NewController(
	app *application.Application,
	codec CodecController,
	job JobController,
	other OtherController,
) *Controller {
	return &Controller{
		app:   app,
		Codec: codec,
		Job:   job,
		Other: other,
	}
}

// register routes of codec module
func (c *Controller) RegisterRoutes() {
	// define routes
	c.app.Router.GET("/metrics", c.Other.HandleMetrics)
	c.app.Router.GET("/k8s/healthz", c.Other.HandleK8sHealthz)

	c.app.Router.POST("/compress", c.Codec.HandleCompress)
	c.app.Router.POST("/decompress", c.Codec.HandleDecompress)
	c.app.Router.GET("/artifacts/{key}", c.Codec.HandleArtifact)
	c.app.Router.GET("/artifacts/{key}/content", c.Codec.HandleArtifactContent)

	c.app.Router.POST("/jobs", c.Job.HandleCreateJob)
	c.app.Router.GET("/jobs/{id}", c.Job.HandleGetJob)
	c.app.Router.GET("/runs/{id}", c.Job.HandleGetRun)
	c.app.Router.GET("/targets", c.Job.HandleListTargets)
	c.app.Router.POST("/targets/{name}/run", c.Job.HandleRunTarget)
}

func setHeaders(ctx *fasthttp.RequestCtx, appName string) {
	ctx.Response.Header.Set("Access-Control-Allow-Headers", "*")
	ctx.Response.Header.Set("Access-Control-Allow-Methods", "*")
	ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
	ctx.Response.Header.Set("Access-Control-Expose-Headers", "*")
	ctx.Response.Header.Set("Referrer-Policy", "same-origin")
	ctx.Response.Header.Set("Server", appName)
}

func respond(ctx *fasthttp.RequestCtx, appName string, statusCode int, contentType string, body []byte) {
	setHeaders(ctx, appName)
	ctx.Response.Header.SetContentType(contentType)
	ctx.SetBody(body)
	ctx.SetStatusCode(statusCode)
}

func respondError(ctx *fasthttp.RequestCtx, logger zerolog.Logger, appName string, err common.HTTPErrors) {
	if err.StatusCode() >= 500 {
		logger.Error().Str(zerolog.ErrorFieldName, err.String()).Send()
	} else {
		logger.Warn().Str(zerolog.ErrorFieldName, err.String()).Send()
	}
	respond(ctx, appName, err.StatusCode(), "application/json; charset=utf-8", err.Body())
}
