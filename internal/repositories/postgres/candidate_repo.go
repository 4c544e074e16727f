package postgres

import (
	"context"
	"errors"

	"github.com/jobhive/jobhive-backend/internal/models"
	"github.com/jobhive/jobhive-backend/internal/utils"
	"gorm.io/gorm"
)

// CandidateRepository reads candidate profiles. The profile service owns the
// table; matching only consumes it.
type CandidateRepository interface {
	GetByID(ctx context.Context, id string) (*models.CandidateData, error)
}

type candidateRepo struct {
	db *gorm.DB
}

func NewCandidateRepo(db *gorm.DB) CandidateRepository {
	return &candidateRepo{db: db}
}

func (r *candidateRepo) GetByID(ctx context.Context, id string) (*models.CandidateData, error) {
	var c models.CandidateData
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &c, err
}
