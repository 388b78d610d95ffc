package repository

import (
	"context"

	"github.com/DODOEX/huffcodec/internal/database"
	"github.com/DODOEX/huffcodec/internal/database/schema"
)

//go:generate mockgen -source=job_repository.go -destination=mock_job_repository.go -package=repository

type IJobRepository interface {
	Create(ctx context.Context, job *schema.Job) error
	Update(ctx context.Context, job *schema.Job) error
	GetJobByUUID(ctx context.Context, uuid string, job *schema.Job) error
	ListJobsByRun(ctx context.Context, runID string) ([]schema.Job, error)
}

type _JobRepository struct {
	db *database.Database
}

func NewJobRepository(db *database.Database) IJobRepository {
	return &_JobRepository{
		db: db,
	}
}

func (r *_JobRepository) Create(ctx context.Context, job *schema.Job) error {
	if !r.db.Connected() {
		return database.ErrNotConnected
	}
	return r.db.DB.WithContext(ctx).Create(job).Error
}

func (r *_JobRepository) Update(ctx context.Context, job *schema.Job) error {
	if !r.db.Connected() {
		return database.ErrNotConnected
	}
	return r.db.DB.WithContext(ctx).Save(job).Error
}

func (r *_JobRepository) GetJobByUUID(ctx context.Context, uuid string, job *schema.Job) error {
	if !r.db.Connected() {
		return database.ErrNotConnected
	}
	return r.db.DB.WithContext(ctx).Take(job, "uuid = ?", uuid).Error
}

func (r *_JobRepository) ListJobsByRun(ctx context.Context, runID string) ([]schema.Job, error) {
	if !r.db.Connected() {
		return nil, database.ErrNotConnected
	}
	var jobs []schema.Job
	err := r.db.DB.WithContext(ctx).Where("run_id = ?", runID).Order("id").Find(&jobs).Error
	return jobs, err
}
