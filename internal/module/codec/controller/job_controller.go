package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/DODOEX/huffcodec/internal/common"
	"github.com/DODOEX/huffcodec/internal/database"
	"github.com/DODOEX/huffcodec/internal/database/schema"
	"github.com/DODOEX/huffcodec/internal/module/batch"
	"github.com/DODOEX/huffcodec/internal/module/codec/repository"
	"github.com/DODOEX/huffcodec/utils/config"
	"github.com/duke-git/lancet/v2/slice"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"github.com/xeipuuv/gojsonschema"
	"gorm.io/gorm"
)

// TargetSchema validates the body of POST /jobs.
const TargetSchema = `{
	"type": "object",
	"required": ["include"],
	"additionalProperties": false,
	"properties": {
		"name": {"type": "string", "maxLength": 255, "pattern": "^[A-Za-z0-9._-]*$"},
		"include": {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}},
		"exclude": {"type": "array", "items": {"type": "string", "minLength": 1}},
		"outputDir": {"type": "string"},
		"alphabet": {"type": "string", "enum": ["", "bytes", "byte", "runes", "rune", "utf8", "text"]},
		"verify": {"type": "boolean"}
	}
}`

var errOutsideRoot = errors.New("path escapes batch.root")

type jobController struct {
	logger  zerolog.Logger
	runner  batch.Runner
	repo    repository.IJobRepository
	schema  *gojsonschema.Schema
	root    string
	appName string
}

type JobController interface {
	HandleCreateJob(ctx *fasthttp.RequestCtx)
	HandleGetJob(ctx *fasthttp.RequestCtx)
	HandleGetRun(ctx *fasthttp.RequestCtx)
	HandleListTargets(ctx *fasthttp.RequestCtx)
	HandleRunTarget(ctx *fasthttp.RequestCtx)
}

func NewJobController(
	logger zerolog.Logger,
	conf *config.Conf,
	runner batch.Runner,
	repo repository.IJobRepository,
) JobController {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(TargetSchema))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to compile target schema")
	}

	return &jobController{
		logger:  logger.With().Str("name", "job_controller").Logger(),
		runner:  runner,
		repo:    repo,
		schema:  s,
		root:    conf.String("batch.root"),
		appName: conf.String("app.name", "Huffman Codec"),
	}
}

// start an ad hoc batch run
// @Summary      Create job
// @Description  Compress every file matched by the target in the background
// @Success      202
// @Failure      400  {object}  common.HTTPErrors
// @Router       /jobs [post]
func (j *jobController) HandleCreateJob(ctx *fasthttp.RequestCtx) {
	body := ctx.PostBody()

	result, err := j.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		respondError(ctx, j.logger, j.appName, common.BadRequestError("Invalid JSON", err))
		return
	}
	if !result.Valid() {
		descriptions := slice.Map(result.Errors(), func(i int, err gojsonschema.ResultError) string {
			return "'" + err.Field() + "' " + err.Description()
		})
		respondError(ctx, j.logger, j.appName, common.BadRequestError(slice.Join(descriptions, "; ")))
		return
	}

	var target common.BatchTarget
	if err := json.Unmarshal(body, &target); err != nil {
		respondError(ctx, j.logger, j.appName, common.BadRequestError("Invalid JSON", err))
		return
	}
	if target.Name == "" {
		target.Name = "adhoc"
	}
	if err := confine(j.root, &target); err != nil {
		respondError(ctx, j.logger, j.appName, common.BadRequestError("Invalid path", err))
		return
	}

	j.start(ctx, target)
}

func (j *jobController) HandleRunTarget(ctx *fasthttp.RequestCtx) {
	name := fmt.Sprint(ctx.UserValue("name"))
	target, ok := j.runner.Target(name)
	if !ok {
		respondError(ctx, j.logger, j.appName, common.NotFoundError("Unknown target", batch.ErrUnknownTarget))
		return
	}
	j.start(ctx, target)
}

func (j *jobController) start(ctx *fasthttp.RequestCtx, target common.BatchTarget) {
	runID, err := j.runner.RunAsync(target)
	if errors.Is(err, batch.ErrStopped) {
		respondError(ctx, j.logger, j.appName, common.ServiceUnavailableError("Shutting down", err))
		return
	} else if err != nil {
		respondError(ctx, j.logger, j.appName, common.BadRequestError("Invalid target", err))
		return
	}

	j.logger.Info().Str("run", runID).Str("target", target.Name).Msg("Accepted batch run")
	j.json(ctx, fasthttp.StatusAccepted, map[string]string{"runId": runID, "target": target.Name})
}

func (j *jobController) HandleGetJob(ctx *fasthttp.RequestCtx) {
	var job schema.Job
	err := j.repo.GetJobByUUID(ctx, fmt.Sprint(ctx.UserValue("id")), &job)
	if err != nil {
		respondError(ctx, j.logger, j.appName, repositoryError(err, "Job not found"))
		return
	}
	j.json(ctx, fasthttp.StatusOK, job)
}

func (j *jobController) HandleGetRun(ctx *fasthttp.RequestCtx) {
	jobs, err := j.repo.ListJobsByRun(ctx, fmt.Sprint(ctx.UserValue("id")))
	if err == nil && len(jobs) == 0 {
		err = gorm.ErrRecordNotFound
	}
	if err != nil {
		respondError(ctx, j.logger, j.appName, repositoryError(err, "Run not found"))
		return
	}
	j.json(ctx, fasthttp.StatusOK, jobs)
}

func (j *jobController) HandleListTargets(ctx *fasthttp.RequestCtx) {
	j.json(ctx, fasthttp.StatusOK, j.runner.Targets())
}

func (j *jobController) json(ctx *fasthttp.RequestCtx, statusCode int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		respondError(ctx, j.logger, j.appName, common.InternalServerError("", err))
		return
	}
	respond(ctx, j.appName, statusCode, "application/json; charset=utf-8", body)
}

func repositoryError(err error, msg string) common.HTTPErrors {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return common.NotFoundError(msg)
	case errors.Is(err, database.ErrNotConnected):
		return common.ServiceUnavailableError("Job records are disabled", err)
	}
	return common.InternalServerError("", err)
}

// confine rewrites the paths of target relative to root. An empty root
// leaves target untouched.
func confine(root string, target *common.BatchTarget) error {
	if root == "" {
		return nil
	}

	inside := func(p string) (string, error) {
		if filepath.IsAbs(p) {
			return "", errOutsideRoot
		}
		p = filepath.Clean(p)
		if p == ".." || strings.HasPrefix(p, ".."+string(filepath.Separator)) {
			return "", errOutsideRoot
		}
		return filepath.Join(root, p), nil
	}

	var err error
	for i := range target.Include {
		if target.Include[i], err = inside(target.Include[i]); err != nil {
			return err
		}
	}
	for i := range target.Exclude {
		if target.Exclude[i], err = inside(target.Exclude[i]); err != nil {
			return err
		}
	}
	if target.OutputDir != "" {
		if target.OutputDir, err = inside(target.OutputDir); err != nil {
			return err
		}
	}
	return nil
}
