package models

import (
	"time"
)

// Repair statuses. Only RepairStatusFinalizado counts for commission.
const (
	RepairStatusAberto     = "Aberto"
	RepairStatusEmAndament = "Em Andamento"
	RepairStatusFinalizado = "Finalizado"
	RepairStatusCancelado  = "Cancelado"
)

// Repair is a service order assigned to a technician. UpdatedAt is the period
// filter for commission: a repair counts for the period it was finished in.
type Repair struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TechnicianID uint      `gorm:"not null;index" json:"technician_id"`
	Status       string    `gorm:"type:varchar(30);not null;index" json:"status"`
	Description  string    `gorm:"type:text" json:"description"`
	FinalCost    float64   `gorm:"type:decimal(12,2);not null;default:0" json:"final_cost"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"updated_at"`

	Technician User `gorm:"foreignKey:TechnicianID;references:ID" json:"technician,omitempty"`
}

func (Repair) TableName() string {
	return "repairs"
}

// IsFinished reports whether the repair is in the terminal finished state.
func (r *Repair) IsFinished() bool {
	return r.Status == RepairStatusFinalizado
}

// RepairFilter represents filter criteria for repair queries
type RepairFilter struct {
	ID            *uint      `json:"id,omitempty"`
	TechnicianID  *uint      `json:"technician_id,omitempty"`
	Status        *string    `json:"status,omitempty"`
	UpdatedAfter  *time.Time `json:"updated_after,omitempty"`
	UpdatedBefore *time.Time `json:"updated_before,omitempty"`
}
