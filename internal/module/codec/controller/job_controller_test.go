package controller

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DODOEX/huffcodec/internal/common"
	"github.com/DODOEX/huffcodec/internal/database"
	"github.com/DODOEX/huffcodec/internal/database/schema"
	"github.com/DODOEX/huffcodec/internal/module/batch"
	"github.com/DODOEX/huffcodec/internal/module/codec/repository"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	gomock "go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type fakeRunner struct {
	targets []common.BatchTarget
	started []common.BatchTarget
	err     error
}

func (f *fakeRunner) Targets() []common.BatchTarget { return f.targets }

func (f *fakeRunner) Target(name string) (common.BatchTarget, bool) {
	for _, t := range f.targets {
		if t.Name == name {
			return t, true
		}
	}
	return common.BatchTarget{}, false
}

func (f *fakeRunner) Reload(targets []common.BatchTarget) { f.targets = targets }

func (f *fakeRunner) Run(ctx context.Context, target common.BatchTarget) (*common.RunProfile, error) {
	return nil, errors.New("not used")
}

func (f *fakeRunner) RunAsync(target common.BatchTarget) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.started = append(f.started, target)
	return "run-1", nil
}

func (f *fakeRunner) RunAll(ctx context.Context) ([]*common.RunProfile, error) {
	return nil, nil
}

func (f *fakeRunner) Stop(ctx context.Context) error { return nil }

func createJobController(ctrl *gomock.Controller, root string) (*fakeRunner, *repository.MockIJobRepository, JobController) {
	runner := &fakeRunner{targets: []common.BatchTarget{{Name: "docs", Include: []string{"docs/*"}}}}
	repo := repository.NewMockIJobRepository(ctrl)
	conf := newConfig(map[string]any{"batch.root": root})
	return runner, repo, NewJobController(zerolog.Nop(), conf, runner, repo)
}

func TestHandleCreateJob(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	runner, _, c := createJobController(ctrl, "/data")

	ctx := newRequestCtx("POST", "/jobs", []byte(`{"include":["logs/**/*.log"],"outputDir":"out","alphabet":"runes","verify":true}`), nil)
	c.HandleCreateJob(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	var resp map[string]string
	if err := json.Unmarshal(ctx.Response.Body(), &resp); err != nil || resp["runId"] != "run-1" {
		t.Errorf("unexpected body %s", ctx.Response.Body())
	}

	if len(runner.started) != 1 {
		t.Fatalf("expected one run, got %v", runner.started)
	}
	target := runner.started[0]
	if target.Name != "adhoc" || !target.Verify || target.Alphabet != "runes" {
		t.Errorf("unexpected target %+v", target)
	}
	if target.Include[0] != filepath.Join("/data", "logs/**/*.log") || target.OutputDir != filepath.Join("/data", "out") {
		t.Errorf("expected paths under /data, got %+v", target)
	}
}

func TestHandleCreateJobInvalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	runner, _, c := createJobController(ctrl, "/data")

	for _, body := range []string{
		`not json`,
		`{}`,
		`{"include":[]}`,
		`{"include":["*"],"alphabet":"words"}`,
		`{"include":["*"],"unknown":1}`,
		`{"include":["../etc/*"]}`,
		`{"include":["/etc/*"]}`,
	} {
		ctx := newRequestCtx("POST", "/jobs", []byte(body), nil)
		c.HandleCreateJob(ctx)
		if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, ctx.Response.StatusCode())
		}
	}
	if len(runner.started) != 0 {
		t.Errorf("expected no runs, got %v", runner.started)
	}
}

func TestHandleCreateJobStopped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	runner, _, c := createJobController(ctrl, "")
	runner.err = batch.ErrStopped

	ctx := newRequestCtx("POST", "/jobs", []byte(`{"include":["*"]}`), nil)
	c.HandleCreateJob(ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", ctx.Response.StatusCode())
	}
}

func TestHandleRunTarget(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	runner, _, c := createJobController(ctrl, "")

	ctx := newRequestCtx("POST", "/targets/docs/run", nil, map[string]any{"name": "docs"})
	c.HandleRunTarget(ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusAccepted || len(runner.started) != 1 {
		t.Errorf("expected docs to start, got %d", ctx.Response.StatusCode())
	}

	ctx = newRequestCtx("POST", "/targets/nope/run", nil, map[string]any{"name": "nope"})
	c.HandleRunTarget(ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Errorf("expected 404, got %d", ctx.Response.StatusCode())
	}

	ctx = newRequestCtx("GET", "/targets", nil, nil)
	c.HandleListTargets(ctx)
	if !strings.Contains(string(ctx.Response.Body()), `"name":"docs"`) {
		t.Errorf("unexpected targets %s", ctx.Response.Body())
	}
}

func TestHandleGetJob(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, repo, c := createJobController(ctrl, "")

	found := schema.Job{UUID: "job-1", RunID: "run-1", Status: common.Success}
	repo.EXPECT().GetJobByUUID(gomock.Any(), "job-1", gomock.Any()).Return(nil).SetArg(2, found)
	repo.EXPECT().GetJobByUUID(gomock.Any(), "job-2", gomock.Any()).Return(gorm.ErrRecordNotFound)
	repo.EXPECT().GetJobByUUID(gomock.Any(), "job-3", gomock.Any()).Return(database.ErrNotConnected)

	for _, tc := range []struct {
		id     string
		status int
	}{
		{"job-1", fasthttp.StatusOK},
		{"job-2", fasthttp.StatusNotFound},
		{"job-3", fasthttp.StatusServiceUnavailable},
	} {
		ctx := newRequestCtx("GET", "/jobs/"+tc.id, nil, map[string]any{"id": tc.id})
		c.HandleGetJob(ctx)
		if ctx.Response.StatusCode() != tc.status {
			t.Errorf("%s: expected %d, got %d", tc.id, tc.status, ctx.Response.StatusCode())
		}
	}
}

func TestHandleGetRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, repo, c := createJobController(ctrl, "")

	repo.EXPECT().ListJobsByRun(gomock.Any(), "run-1").Return([]schema.Job{{UUID: "a"}, {UUID: "b"}}, nil)
	repo.EXPECT().ListJobsByRun(gomock.Any(), "run-2").Return(nil, nil)

	ctx := newRequestCtx("GET", "/runs/run-1", nil, map[string]any{"id": "run-1"})
	c.HandleGetRun(ctx)
	var jobs []schema.Job
	if err := json.Unmarshal(ctx.Response.Body(), &jobs); err != nil || len(jobs) != 2 {
		t.Errorf("unexpected body %s", ctx.Response.Body())
	}

	ctx = newRequestCtx("GET", "/runs/run-2", nil, map[string]any{"id": "run-2"})
	c.HandleGetRun(ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Errorf("expected 404, got %d", ctx.Response.StatusCode())
	}
}

func TestConfine(t *testing.T) {
	target := common.BatchTarget{Include: []string{"a/*.txt"}, Exclude: []string{"a/skip.txt"}}
	if err := confine("", &target); err != nil || target.Include[0] != "a/*.txt" {
		t.Errorf("expected untouched target, got %+v (%v)", target, err)
	}

	if err := confine("/srv", &target); err != nil {
		t.Fatal(err)
	}
	if target.Include[0] != "/srv/a/*.txt" || target.Exclude[0] != "/srv/a/skip.txt" {
		t.Errorf("unexpected target %+v", target)
	}

	for _, p := range []string{"/abs", "..", "../x", "a/../../x"} {
		if err := confine("/srv", &common.BatchTarget{Include: []string{p}}); !errors.Is(err, errOutsideRoot) {
			t.Errorf("%s: expected %v, got %v", p, errOutsideRoot, err)
		}
	}
}
