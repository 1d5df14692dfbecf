package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/viacell/comissoes-service/models"
	"gorm.io/gorm"
)

// RepairRepositoryImpl implements RepairRepository interface
type RepairRepositoryImpl struct {
	*BaseRepository[models.Repair, models.RepairFilter]
}

// NewRepairRepository creates a new repair repository
func NewRepairRepository(db *gorm.DB) RepairRepository {
	return &RepairRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Repair, models.RepairFilter](db),
	}
}

// ListFinishedByTechnicianInPeriod returns repairs with status Finalizado
// whose updated_at falls within the inclusive [start, end] period. Repairs in
// any other status never count, regardless of date.
func (r *RepairRepositoryImpl) ListFinishedByTechnicianInPeriod(ctx context.Context, technicianID uint, start, end time.Time) ([]*models.Repair, error) {
	db := r.getDB(ctx)

	var repairs []*models.Repair
	err := db.Where("technician_id = ? AND status = ? AND updated_at >= ? AND updated_at <= ?",
		technicianID, models.RepairStatusFinalizado, start, end).
		Order("updated_at").
		Find(&repairs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list finished repairs for technician %d: %w", technicianID, err)
	}
	return repairs, nil
}
