package controller

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/DODOEX/huffcodec/internal/common"
	"github.com/DODOEX/huffcodec/internal/core/codec"
	"github.com/DODOEX/huffcodec/internal/core/huffman"
	"github.com/DODOEX/huffcodec/internal/module/codec/service"
	"github.com/DODOEX/huffcodec/utils/config"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const (
	contentTypeContainer = "application/x-huffcodec"
	contentTypeBinary    = "application/octet-stream"
	contentTypeText      = "text/plain; charset=utf-8"
)

type codecController struct {
	logger       zerolog.Logger
	codecService service.CodecService
	appName      string
}

type CodecController interface {
	HandleCompress(ctx *fasthttp.RequestCtx)
	HandleDecompress(ctx *fasthttp.RequestCtx)
	HandleArtifact(ctx *fasthttp.RequestCtx)
	HandleArtifactContent(ctx *fasthttp.RequestCtx)
}

func NewCodecController(
	logger zerolog.Logger,
	conf *config.Conf,
	codecService service.CodecService,
) CodecController {
	return &codecController{
		logger:       logger.With().Str("name", "codec_controller").Logger(),
		codecService: codecService,
		appName:      conf.String("app.name", "Huffman Codec"),
	}
}

// compress the request body
// @Summary      Compress
// @Description  Huffman compress the raw body into a container
// @Param        alphabet  query  string  false  "bytes or runes"
// @Success      200
// @Failure      400  {object}  common.HTTPErrors
// @Failure      422  {object}  common.HTTPErrors
// @Router       /compress [post]
func (c *codecController) HandleCompress(ctx *fasthttp.RequestCtx) {
	start := time.Now()

	alphabet, err := huffman.ParseAlphabet(string(ctx.QueryArgs().Peek("alphabet")))
	if err != nil {
		respondError(ctx, c.logger, c.appName, common.BadRequestError("Unknown alphabet", err))
		return
	}

	result, err := c.codecService.Compress(ctx, ctx.PostBody(), alphabet)
	if err != nil {
		respondError(ctx, c.logger, c.appName, common.CodecError(err))
		return
	}

	setStatsHeaders(ctx, result.Stats)
	ctx.Response.Header.Set("X-Artifact-Key", result.Key)
	if result.Cached {
		ctx.Response.Header.Set("X-Cache", "HIT")
	} else {
		ctx.Response.Header.Set("X-Cache", "MISS")
	}
	respond(ctx, c.appName, fasthttp.StatusOK, contentTypeContainer, result.Data)

	c.logger.Info().TimeDiff("ms", time.Now(), start).Msgf("%s %s %d", ctx.Method(), ctx.RequestURI(), fasthttp.StatusOK)
}

// decompress the request body
// @Summary      Decompress
// @Description  Restore the original bytes of a container
// @Success      200
// @Failure      400  {object}  common.HTTPErrors
// @Router       /decompress [post]
func (c *codecController) HandleDecompress(ctx *fasthttp.RequestCtx) {
	start := time.Now()

	data, stats, err := c.codecService.Decompress(ctx, ctx.PostBody())
	if err != nil {
		respondError(ctx, c.logger, c.appName, common.CodecError(err))
		return
	}

	setStatsHeaders(ctx, stats)
	respond(ctx, c.appName, fasthttp.StatusOK, contentTypeOf(stats.Alphabet), data)

	c.logger.Info().TimeDiff("ms", time.Now(), start).Msgf("%s %s %d", ctx.Method(), ctx.RequestURI(), fasthttp.StatusOK)
}

func (c *codecController) HandleArtifact(ctx *fasthttp.RequestCtx) {
	key := fmt.Sprint(ctx.UserValue("key"))

	data, err := c.codecService.Artifact(ctx, key)
	if err != nil {
		respondError(ctx, c.logger, c.appName, artifactError(err))
		return
	}

	ctx.Response.Header.Set("X-Artifact-Key", key)
	respond(ctx, c.appName, fasthttp.StatusOK, contentTypeContainer, data)
}

func (c *codecController) HandleArtifactContent(ctx *fasthttp.RequestCtx) {
	key := fmt.Sprint(ctx.UserValue("key"))

	packed, err := c.codecService.Artifact(ctx, key)
	if err != nil {
		respondError(ctx, c.logger, c.appName, artifactError(err))
		return
	}

	data, stats, err := c.codecService.Decompress(ctx, packed)
	if err != nil {
		// 存储的内容不应该损坏
		respondError(ctx, c.logger, c.appName, common.InternalServerError("Stored artifact is broken", err))
		return
	}

	setStatsHeaders(ctx, stats)
	ctx.Response.Header.Set("X-Artifact-Key", key)
	respond(ctx, c.appName, fasthttp.StatusOK, contentTypeOf(stats.Alphabet), data)
}

func artifactError(err error) common.HTTPErrors {
	if errors.Is(err, service.ErrArtifactNotFound) {
		return common.NotFoundError("Artifact not found")
	}
	return common.InternalServerError("", err)
}

func contentTypeOf(alphabet huffman.Alphabet) string {
	if alphabet == huffman.Runes {
		return contentTypeText
	}
	return contentTypeBinary
}

func setStatsHeaders(ctx *fasthttp.RequestCtx, stats codec.Stats) {
	ctx.Response.Header.Set("X-Alphabet", stats.Alphabet.String())
	ctx.Response.Header.Set("X-Original-Size", strconv.FormatInt(stats.OriginalBytes, 10))
	ctx.Response.Header.Set("X-Compressed-Size", strconv.FormatInt(stats.CompressedBytes, 10))
	ctx.Response.Header.Set("X-Encoded-Bits", strconv.FormatUint(stats.EncodedBits, 10))
	ctx.Response.Header.Set("X-Symbols", strconv.FormatUint(stats.Symbols, 10))
}
