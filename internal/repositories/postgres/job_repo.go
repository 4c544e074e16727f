package postgres

import (
	"context"
	"errors"

	"github.com/jobhive/jobhive-backend/internal/models"
	"github.com/jobhive/jobhive-backend/internal/utils"
	"gorm.io/gorm"
)

// JobRepository reads job postings owned by the job service.
type JobRepository interface {
	GetByID(ctx context.Context, id string) (*models.JobData, error)
}

type jobRepo struct {
	db *gorm.DB
}

func NewJobRepo(db *gorm.DB) JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) GetByID(ctx context.Context, id string) (*models.JobData, error) {
	var j models.JobData
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&j).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &j, err
}
