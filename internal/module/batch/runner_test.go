package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/DODOEX/huffcodec/internal/common"
	"github.com/DODOEX/huffcodec/internal/core/codec"
	"github.com/DODOEX/huffcodec/internal/core/huffman"
	"github.com/DODOEX/huffcodec/internal/database"
	"github.com/DODOEX/huffcodec/internal/database/schema"
	"github.com/DODOEX/huffcodec/internal/module/codec/repository"
	"github.com/DODOEX/huffcodec/utils/config"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	gomock "go.uber.org/mock/gomock"
)

func newConfig(value map[string]any) *config.Conf {
	k := koanf.New(".")
	conf := &config.Conf{Koanf: k}
	if err := conf.Load(confmap.Provider(value, "."), nil); err != nil {
		log.Fatal(err)
	}
	return conf
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

type recorder struct {
	mu   sync.Mutex
	jobs []*common.JobProfile
	runs []*common.RunProfile
}

func createRunner(t *testing.T, conf map[string]any, repoErr error) (*recorder, Runner) {
	ctrl := gomock.NewController(t)

	repo := repository.NewMockIJobRepository(ctrl)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(repoErr).AnyTimes()
	repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(repoErr).AnyTimes()

	rec := &recorder{}
	publisher := NewMockJobPublisher(ctrl)
	publisher.EXPECT().PublishJob(gomock.Any()).DoAndReturn(func(job *common.JobProfile) error {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.jobs = append(rec.jobs, job)
		return nil
	}).AnyTimes()
	publisher.EXPECT().PublishRun(gomock.Any()).DoAndReturn(func(run *common.RunProfile) error {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.runs = append(rec.runs, run)
		return nil
	}).AnyTimes()

	return rec, NewRunner(newConfig(conf), zerolog.Nop(), repo, publisher)
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt":                 "a",
		"sub/b.txt":             "b",
		"sub/c.log":             "c",
		"sub/d.txt":             "d",
		"old.txt.huf":           "x",
		"sub/b.txt.huf.123.tmp": "x",
	})
	out := filepath.Join(dir, "out")

	files, err := Expand(common.BatchTarget{
		Include:   []string{filepath.Join(dir, "**", "*.txt"), filepath.Join(dir, "**", "*"), ""},
		Exclude:   []string{filepath.Join(dir, "**", "*.log"), filepath.Join(dir, "sub", "d.txt")},
		OutputDir: out,
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []File{
		{Source: filepath.Join(dir, "a.txt"), Destination: filepath.Join(out, "a.txt.huf")},
		{Source: filepath.Join(dir, "sub", "b.txt"), Destination: filepath.Join(out, "sub", "b.txt.huf")},
	}
	if len(files) != len(want) {
		t.Fatalf("expected %v, got %v", want, files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("%d: expected %v, got %v", i, want[i], files[i])
		}
	}
}

func TestExpandInPlace(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "a"})

	files, err := Expand(common.BatchTarget{Include: []string{filepath.Join(dir, "a.txt")}})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].Destination != filepath.Join(dir, "a.txt.huf") {
		t.Errorf("unexpected files %v", files)
	}
}

func TestValidate(t *testing.T) {
	if _, err := validate(common.BatchTarget{}); !errors.Is(err, ErrNoInclude) {
		t.Errorf("expected %v, got %v", ErrNoInclude, err)
	}
	if _, err := validate(common.BatchTarget{Include: []string{"*"}, Alphabet: "words"}); err == nil {
		t.Error("expected unknown alphabet to fail")
	}
	if _, err := validate(common.BatchTarget{Include: []string{"*"}, Alphabet: "runes"}); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"docs/readme.md":   "# huffman\n\nthe quick brown fox jumps over the lazy dog\n",
		"docs/guide/a.md":  "aaaaaaaaaaaaaaaaaaaabbbbbbbbbbcccccd",
		"docs/guide/é.md":  "héllo wörld, ünïcödé",
		"docs/guide/empty": "",
	}
	writeFiles(t, dir, files)
	out := filepath.Join(dir, "out")

	rec, runner := createRunner(t, map[string]any{"batch.workers": 2}, nil)
	profile, err := runner.Run(context.Background(), common.BatchTarget{
		Name:      "docs",
		Include:   []string{filepath.Join(dir, "docs", "**")},
		OutputDir: out,
		Alphabet:  "runes",
		Verify:    true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if profile.Jobs != len(files) || profile.Succeeded != len(files) || profile.Failed != 0 {
		t.Errorf("unexpected profile %+v", profile)
	}
	if len(rec.jobs) != len(files) || len(rec.runs) != 1 {
		t.Errorf("expected %d jobs and 1 run published, got %d and %d", len(files), len(rec.jobs), len(rec.runs))
	}
	for _, job := range rec.jobs {
		if job.Status != common.Success || !job.Verified || job.RunID != profile.RunID {
			t.Errorf("unexpected job %+v", job)
		}
	}

	for name, content := range files {
		rel, _ := filepath.Rel("docs", name)
		packed, err := os.ReadFile(filepath.Join(out, rel+common.Extension))
		if err != nil {
			t.Fatal(err)
		}
		got, _, err := codec.DecompressBytes(packed)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if string(got) != content {
			t.Errorf("%s: expected %q, got %q", name, content, got)
		}
	}
}

func TestRunFailedJob(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"bin/a": "\xff\xfe not utf-8",
		"bin/b": "fine",
	})

	rec, runner := createRunner(t, map[string]any{}, database.ErrNotConnected)
	profile, err := runner.Run(context.Background(), common.BatchTarget{
		Name:     "bin",
		Include:  []string{filepath.Join(dir, "bin", "*")},
		Alphabet: "runes",
	})
	if err != nil {
		t.Fatal(err)
	}

	if profile.Succeeded != 1 || profile.Failed != 1 {
		t.Errorf("unexpected profile %+v", profile)
	}
	for _, job := range rec.jobs {
		switch filepath.Base(job.Source) {
		case "a":
			if job.Status != common.Fail || job.Error == "" {
				t.Errorf("expected failed job, got %+v", job)
			}
		case "b":
			if job.Status != common.Success {
				t.Errorf("expected successful job, got %+v", job)
			}
		}
	}
	if tmps, _ := filepath.Glob(filepath.Join(dir, "bin", "*.tmp")); len(tmps) != 0 {
		t.Errorf("temporary files left behind: %v", tmps)
	}
}

func TestRunCanceled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a": "a", "b": "b"})

	rec, runner := createRunner(t, map[string]any{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	profile, err := runner.Run(ctx, common.BatchTarget{Name: "c", Include: []string{filepath.Join(dir, "*")}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected %v, got %v", context.Canceled, err)
	}
	if profile.Failed != 2 {
		t.Errorf("unexpected profile %+v", profile)
	}
	for _, job := range rec.jobs {
		if job.Status != common.Cancel {
			t.Errorf("expected canceled job, got %+v", job)
		}
	}
}

func TestTargetsReload(t *testing.T) {
	_, runner := createRunner(t, map[string]any{
		"batch.targets": []any{
			map[string]any{"name": "docs", "include": []any{"docs/**/*.md"}, "output-dir": "out"},
			map[string]any{"include": []any{"logs/*.log"}, "verify": true},
		},
	}, nil)

	targets := runner.Targets()
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %v", targets)
	}
	if targets[1].Name != "target-1" || !targets[1].Verify {
		t.Errorf("unexpected target %+v", targets[1])
	}
	if target, ok := runner.Target("docs"); !ok || target.OutputDir != "out" {
		t.Errorf("unexpected target %+v", target)
	}

	runner.Reload([]common.BatchTarget{{Name: "other", Include: []string{"*"}}})
	if _, ok := runner.Target("docs"); ok {
		t.Error("expected docs to be gone after reload")
	}
	if _, ok := runner.Target("other"); !ok {
		t.Error("expected other after reload")
	}
}

func TestRunAsyncStop(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "hello"})

	rec, runner := createRunner(t, map[string]any{}, nil)
	runID, err := runner.RunAsync(common.BatchTarget{Name: "a", Include: []string{filepath.Join(dir, "*.txt")}})
	if err != nil || runID == "" {
		t.Fatalf("RunAsync: %q %v", runID, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := runner.Stop(ctx); err != nil {
		t.Fatal(err)
	}

	rec.mu.Lock()
	if len(rec.runs) != 1 || rec.runs[0].RunID != runID {
		t.Errorf("expected run %s to be published, got %v", runID, rec.runs)
	}
	rec.mu.Unlock()

	if _, err := runner.RunAsync(common.BatchTarget{Name: "a", Include: []string{"*"}}); !errors.Is(err, ErrStopped) {
		t.Errorf("expected %v, got %v", ErrStopped, err)
	}
}

func TestSummary(t *testing.T) {
	s := summary(codec.Stats{OriginalBytes: 10, CompressedBytes: 5})
	if s == nil || len(s.Bytes) == 0 {
		t.Fatal("expected a summary")
	}
	var job schema.Job
	job.Summary = s
	if job.Summary.Status == 0 {
		t.Error("expected a present JSONB status")
	}
}

func TestExpandOutputConflict(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a/x.txt": "alpha alpha",
		"b/x.txt": "bravo bravo",
	})
	target := common.BatchTarget{
		Name:      "x",
		Include:   []string{filepath.Join(dir, "a", "*.txt"), filepath.Join(dir, "b", "*.txt")},
		OutputDir: filepath.Join(dir, "out"),
	}

	if _, err := Expand(target); !errors.Is(err, ErrOutputConflict) {
		t.Errorf("expected %v, got %v", ErrOutputConflict, err)
	}

	rec, runner := createRunner(t, map[string]any{"batch.workers": 2}, nil)
	if _, err := runner.Run(context.Background(), target); !errors.Is(err, ErrOutputConflict) {
		t.Errorf("expected %v, got %v", ErrOutputConflict, err)
	}
	if _, err := runner.RunAsync(target); !errors.Is(err, ErrOutputConflict) {
		t.Errorf("expected %v, got %v", ErrOutputConflict, err)
	}
	if len(rec.jobs) != 0 || len(rec.runs) != 0 {
		t.Errorf("expected nothing published, got %d jobs and %d runs", len(rec.jobs), len(rec.runs))
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "x.txt.huf")); !os.IsNotExist(err) {
		t.Errorf("expected no output, got %v", err)
	}

	// the shared base keeps the directories apart
	target.Include = []string{filepath.Join(dir, "**", "*.txt")}
	files, err := Expand(target)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || files[0].Destination == files[1].Destination {
		t.Errorf("unexpected files %v", files)
	}
}

func TestRunOutputError(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"in/a.txt": "hello",
		"blocker":  "not a directory",
	})

	rec, runner := createRunner(t, map[string]any{}, nil)
	profile, err := runner.Run(context.Background(), common.BatchTarget{
		Name:      "blocked",
		Include:   []string{filepath.Join(dir, "in", "*.txt")},
		OutputDir: filepath.Join(dir, "blocker"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if profile.Failed != 1 || len(rec.jobs) != 1 {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if job := rec.jobs[0]; job.Status != common.Error || job.Error == "" {
		t.Errorf("expected internal error, got %+v", job)
	}
}

func TestJobStatus(t *testing.T) {
	for _, tc := range []struct {
		err  error
		want common.JobStatus
	}{
		{nil, common.Success},
		{ErrVerifyMismatch, common.Fail},
		{&fs.PathError{Op: "open", Path: "a", Err: fs.ErrNotExist}, common.Fail},
		{fmt.Errorf("count frequencies: %w", huffman.ErrInvalidUTF8), common.Fail},
		{huffman.ErrCorruptStream, common.Fail},
		{context.Canceled, common.Cancel},
		{context.DeadlineExceeded, common.Cancel},
		{errors.New("disk full"), common.Error},
	} {
		if got := jobStatus(tc.err); got != tc.want {
			t.Errorf("%v: expected %s, got %s", tc.err, tc.want, got)
		}
	}
}

func TestRunAsyncRacingStop(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "hello"})
	target := common.BatchTarget{Name: "a", Include: []string{filepath.Join(dir, "*.txt")}, OutputDir: filepath.Join(dir, "out")}

	rec, runner := createRunner(t, map[string]any{}, nil)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if _, err := runner.RunAsync(target); err == nil {
					mu.Lock()
					accepted++
					mu.Unlock()
				} else if !errors.Is(err, ErrStopped) {
					t.Errorf("unexpected error %v", err)
				}
			}
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := runner.Stop(ctx); err != nil {
		t.Fatal(err)
	}

	rec.mu.Lock()
	published := len(rec.runs)
	rec.mu.Unlock()

	wg.Wait()
	// every run accepted before Stop returned has finished and published
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if published != len(rec.runs) {
		t.Errorf("%d runs published after Stop returned", len(rec.runs)-published)
	}
	mu.Lock()
	defer mu.Unlock()
	if accepted != len(rec.runs) {
		t.Errorf("accepted %d runs, published %d", accepted, len(rec.runs))
	}
}
