package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/DODOEX/huffcodec/internal/common"
	"github.com/DODOEX/huffcodec/internal/core/codec"
	"github.com/DODOEX/huffcodec/internal/core/huffman"
	"github.com/DODOEX/huffcodec/internal/database"
	"github.com/DODOEX/huffcodec/internal/database/schema"
	"github.com/DODOEX/huffcodec/internal/module/codec/repository"
	"github.com/DODOEX/huffcodec/internal/module/shared"
	"github.com/DODOEX/huffcodec/utils"
	"github.com/DODOEX/huffcodec/utils/config"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"github.com/duke-git/lancet/v2/maputil"
	"github.com/duke-git/lancet/v2/slice"
	"github.com/google/uuid"
	"github.com/jackc/pgx/pgtype"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoInclude      = errors.New("batch: target has no include pattern")
	ErrUnknownTarget  = errors.New("batch: unknown target")
	ErrVerifyMismatch = errors.New("batch: decompressed content differs from source")
	ErrStopped        = errors.New("batch: runner is stopped")
	ErrOutputConflict = errors.New("batch: sources share an output path")
)

type Runner interface {
	Targets() []common.BatchTarget
	Target(name string) (common.BatchTarget, bool)
	Reload(targets []common.BatchTarget)
	// Run compresses every file of target and blocks until all are done.
	Run(ctx context.Context, target common.BatchTarget) (*common.RunProfile, error)
	// RunAsync expands target, starts the run in the background and returns
	// its run id.
	RunAsync(target common.BatchTarget) (string, error)
	RunAll(ctx context.Context) ([]*common.RunProfile, error)
	Stop(ctx context.Context) error
}

type runner struct {
	logger    zerolog.Logger
	repo      repository.IJobRepository
	publisher JobPublisher
	workers   int

	// mu guards targets, and orders RunAsync against Stop
	mu      sync.RWMutex
	targets []common.BatchTarget

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRunner(conf *config.Conf, logger zerolog.Logger, repo repository.IJobRepository, publisher JobPublisher) Runner {
	targets, err := config.LoadBatchTargets(conf, shared.KoanfBatchTargetsToken)
	logger = logger.With().Str("name", "batch_runner").Logger()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load batch targets")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &runner{
		logger:    logger,
		repo:      repo,
		publisher: publisher,
		workers:   conf.Int("batch.workers", 4),
		targets:   targets,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (r *runner) Targets() []common.BatchTarget {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]common.BatchTarget(nil), r.targets...)
}

func (r *runner) Target(name string) (common.BatchTarget, bool) {
	return slice.FindBy(r.Targets(), func(_ int, t common.BatchTarget) bool {
		return t.Name == name
	})
}

func (r *runner) Reload(targets []common.BatchTarget) {
	r.mu.Lock()
	r.targets = append([]common.BatchTarget(nil), targets...)
	r.mu.Unlock()
	r.logger.Info().Int("targets", len(targets)).Msg("Reloaded batch targets")
}

func (r *runner) RunAll(ctx context.Context) ([]*common.RunProfile, error) {
	var (
		profiles []*common.RunProfile
		errs     []error
	)
	for _, target := range r.Targets() {
		p, err := r.Run(ctx, target)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", target.Name, err))
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles, errors.Join(errs...)
}

func (r *runner) RunAsync(target common.BatchTarget) (string, error) {
	alphabet, err := validate(target)
	if err != nil {
		return "", err
	}
	files, err := Expand(target)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	if r.ctx.Err() != nil {
		r.mu.Unlock()
		return "", ErrStopped
	}
	r.wg.Add(1)
	r.mu.Unlock()

	runID := uuid.NewString()
	go func() {
		defer r.wg.Done()
		if _, err := r.run(r.ctx, runID, target, alphabet, files); err != nil {
			r.logger.Error().Err(err).Str("run", runID).Str("target", target.Name).Msg("Batch run failed")
		}
	}()
	return runID, nil
}

func (r *runner) Run(ctx context.Context, target common.BatchTarget) (*common.RunProfile, error) {
	alphabet, err := validate(target)
	if err != nil {
		return nil, err
	}
	files, err := Expand(target)
	if err != nil {
		return nil, err
	}
	return r.run(ctx, uuid.NewString(), target, alphabet, files)
}

func (r *runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	r.cancel()
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func validate(target common.BatchTarget) (huffman.Alphabet, error) {
	if len(slice.Compact(target.Include)) == 0 {
		return 0, ErrNoInclude
	}
	return huffman.ParseAlphabet(target.Alphabet)
}

func (r *runner) run(ctx context.Context, runID string, target common.BatchTarget, alphabet huffman.Alphabet, files []File) (*common.RunProfile, error) {
	logger := r.logger.With().Str("run", runID).Str("target", target.Name).Logger()

	profile := &common.RunProfile{
		RunID:     runID,
		Target:    target.Name,
		Jobs:      len(files),
		Starttime: time.Now().UnixMilli(),
	}
	logger.Info().Int("files", len(files)).Msg("Batch run started")

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(max(r.workers, 1))
	for _, f := range files {
		f := f
		g.Go(func() error {
			job := r.process(ctx, runID, target, alphabet, f)

			mu.Lock()
			defer mu.Unlock()
			if job.Status == common.Success {
				profile.Succeeded++
			} else {
				profile.Failed++
			}
			return nil
		})
	}
	_ = g.Wait()

	profile.Endtime = time.Now().UnixMilli()
	if err := r.publisher.PublishRun(profile); err != nil {
		logger.Warn().Err(err).Msg("Failed to publish run")
	}
	logger.Info().
		Int("succeeded", profile.Succeeded).
		Int("failed", profile.Failed).
		TimeDiff("ms", time.UnixMilli(profile.Endtime), time.UnixMilli(profile.Starttime)).
		Msg("Batch run finished")

	return profile, ctx.Err()
}

// File is one input of a batch run and where its container goes.
type File struct {
	Source      string
	Destination string
}

// Expand resolves the include and exclude globs of target into a sorted,
// duplicate free list of files. Two sources mapped to the same destination
// are reported as ErrOutputConflict.
func Expand(target common.BatchTarget) ([]File, error) {
	dest := map[string]string{}
	for _, pattern := range slice.Compact(target.Include) {
		pattern = filepath.Clean(pattern)
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}

		base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
		base = filepath.FromSlash(base)
		for _, m := range matches {
			if _, ok := dest[m]; ok {
				continue
			}
			dest[m] = destination(target.OutputDir, base, m)
		}
	}

	sources := slice.Filter(maputil.Keys(dest), func(_ int, path string) bool {
		if strings.HasSuffix(path, common.Extension) {
			return false
		}
		// another job's container in flight
		if strings.HasSuffix(path, ".tmp") && strings.Contains(filepath.Base(path), common.Extension+".") {
			return false
		}
		for _, ex := range target.Exclude {
			if ok, _ := doublestar.PathMatch(filepath.Clean(ex), path); ok {
				return false
			}
		}
		return true
	})
	sort.Strings(sources)

	owners := make(map[string]string, len(sources))
	for _, src := range sources {
		if other, ok := owners[dest[src]]; ok {
			return nil, fmt.Errorf("%w: %s and %s => %s", ErrOutputConflict, other, src, dest[src])
		}
		owners[dest[src]] = src
	}

	return slice.Map(sources, func(_ int, src string) File {
		return File{Source: src, Destination: dest[src]}
	}), nil
}

func destination(outputDir, base, path string) string {
	if outputDir == "" {
		return path + common.Extension
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(path)
	}
	return filepath.Join(outputDir, rel+common.Extension)
}

func (r *runner) process(ctx context.Context, runID string, target common.BatchTarget, alphabet huffman.Alphabet, f File) *common.JobProfile {
	job := &common.JobProfile{
		ID:        uuid.NewString(),
		RunID:     runID,
		Target:    target.Name,
		Source:    f.Source,
		Output:    f.Destination,
		Status:    common.Pending,
		Alphabet:  alphabet.String(),
		Starttime: time.Now().UnixMilli(),
	}
	record := &schema.Job{
		UUID:        job.ID,
		RunID:       runID,
		Target:      target.Name,
		Source:      f.Source,
		Destination: f.Destination,
		Alphabet:    job.Alphabet,
		Status:      common.Pending,
	}
	r.save(ctx, record, true)

	var (
		stats codec.Stats
		err   = ctx.Err()
	)
	if err == nil {
		job.Status = common.Running
		stats, err = compressFile(f, alphabet)
		if err == nil && target.Verify {
			err = verifyFile(f)
			job.Verified = err == nil
		}
	}

	job.Endtime = time.Now().UnixMilli()
	job.Status = jobStatus(err)
	if err != nil {
		job.Error = err.Error()
		level := zerolog.WarnLevel
		if job.Status == common.Error {
			level = zerolog.ErrorLevel
		}
		r.logger.WithLevel(level).Err(err).Str("run", runID).Str("source", f.Source).Str("status", string(job.Status)).Msg("Job failed")
	}

	job.Symbols = stats.Symbols
	job.Distinct = stats.Distinct
	job.EncodedBits = stats.EncodedBits
	job.OriginalBytes = stats.OriginalBytes
	job.CompressedBytes = stats.CompressedBytes

	record.Status = job.Status
	record.Verified = job.Verified
	record.Error = job.Error
	record.OriginalSize = stats.OriginalBytes
	record.CompressedSize = stats.CompressedBytes
	record.EncodedBits = stats.EncodedBits
	record.Symbols = stats.Symbols
	record.Distinct = stats.Distinct
	record.Duration = job.Endtime - job.Starttime
	record.Summary = summary(stats)
	r.save(ctx, record, false)

	if err := r.publisher.PublishJob(job); err != nil {
		r.logger.Warn().Err(err).Str("run", runID).Msg("Failed to publish job")
	}
	utils.TotalJobs.WithLabelValues(target.Name, string(job.Status)).Inc()
	if job.Status == common.Success {
		utils.CompressionRatios.WithLabelValues(job.Alphabet).Observe(stats.Ratio())
	}

	return job
}

// jobStatus classifies the outcome of one file. Bad or missing input and
// verify mismatches fail the job; anything else is an internal error.
func jobStatus(err error) common.JobStatus {
	switch {
	case err == nil:
		return common.Success
	case errors.Is(err, ErrVerifyMismatch), errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return common.Fail
	}
	return common.CodecError(err).JobStatus()
}

func (r *runner) save(ctx context.Context, record *schema.Job, create bool) {
	// 记录在取消后也要落库
	ctx = context.WithoutCancel(ctx)

	var err error
	if create {
		err = r.repo.Create(ctx, record)
	} else {
		err = r.repo.Update(ctx, record)
	}
	if err != nil && !errors.Is(err, database.ErrNotConnected) {
		r.logger.Warn().Err(err).Str("job", record.UUID).Msg("Failed to save job")
	}
}

func summary(stats codec.Stats) *pgtype.JSONB {
	b, err := json.Marshal(map[string]any{
		"stats": stats,
		"ratio": stats.Ratio(),
	})
	if err != nil {
		return nil
	}
	return &pgtype.JSONB{Bytes: b, Status: pgtype.Present}
}

func compressFile(f File, alphabet huffman.Alphabet) (stats codec.Stats, err error) {
	src, err := os.Open(f.Source)
	if err != nil {
		return stats, err
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(f.Destination), 0o755); err != nil {
		return stats, err
	}
	// unique per job, so concurrent runs never share a temporary file
	dst, err := os.CreateTemp(filepath.Dir(f.Destination), filepath.Base(f.Destination)+".*.tmp")
	if err != nil {
		return stats, err
	}
	tmp := dst.Name()
	defer func() {
		if err != nil {
			dst.Close()
			os.Remove(tmp)
		}
	}()
	if err = dst.Chmod(0o644); err != nil {
		return stats, err
	}

	w := bufio.NewWriter(dst)
	if stats, err = codec.Compress(src, w, alphabet); err != nil {
		return stats, err
	}
	if err = w.Flush(); err != nil {
		return stats, err
	}
	if err = dst.Close(); err != nil {
		return stats, err
	}
	err = os.Rename(tmp, f.Destination)
	return stats, err
}

func verifyFile(f File) error {
	want, err := digestFile(f.Source)
	if err != nil {
		return err
	}

	in, err := os.Open(f.Destination)
	if err != nil {
		return err
	}
	defer in.Close()

	got := xxhash.New()
	if _, err := codec.Decompress(bufio.NewReader(in), got); err != nil {
		return err
	}
	if got.Sum64() != want {
		return ErrVerifyMismatch
	}
	return nil
}

func digestFile(path string) (uint64, error) {
	in, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	d := xxhash.New()
	if _, err := io.Copy(d, in); err != nil {
		return 0, err
	}
	return d.Sum64(), nil
}
