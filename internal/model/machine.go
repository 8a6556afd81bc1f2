package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Machine status values. Maintenance is storable but no operation sets it.
const (
	StatusOperational = "operational"
	StatusUnderRepair = "under_repair"
	StatusMaintenance = "maintenance"
)

// Repair entry values.
const (
	FaultMechanical = "mechanical"
	FaultElectrical = "electrical"

	RepairOngoing   = "ongoing"
	RepairCompleted = "completed"
)

// Machine is a piece of plant equipment and its repair log.
// OpenRepairID points at the single ongoing entry; it is nil exactly when
// Status is not under_repair.
type Machine struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey"`
	Name          string        `gorm:"not null"`
	Department    string        `gorm:"index;not null"`
	Status        string        `gorm:"type:varchar(20);not null;default:operational"`
	OpenRepairID  *uuid.UUID    `gorm:"type:uuid"`
	RepairHistory []RepairEntry `gorm:"foreignKey:MachineID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (m *Machine) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// OpenRepair returns the ongoing entry, or nil.
func (m *Machine) OpenRepair() *RepairEntry {
	if m.OpenRepairID == nil {
		return nil
	}
	for i := range m.RepairHistory {
		if m.RepairHistory[i].ID == *m.OpenRepairID {
			return &m.RepairHistory[i]
		}
	}
	return nil
}

// RepairEntry is one fault-to-resolution cycle. Entries are append-only and
// ordered by Seq within their machine.
type RepairEntry struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	MachineID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_repair_machine_seq"`
	Seq         int       `gorm:"not null;uniqueIndex:idx_repair_machine_seq"`
	Type        string    `gorm:"type:varchar(20);not null"`
	Description string    `gorm:"type:text;not null"`
	StartTime   time.Time `gorm:"not null"`
	EndTime     *time.Time
	Status      string    `gorm:"type:varchar(20);not null;default:ongoing"`
	UpdatedByID uuid.UUID `gorm:"type:uuid;not null"`
	// Attribution only, never cascaded.
	UpdatedBy *User `gorm:"foreignKey:UpdatedByID"`
}

func (e *RepairEntry) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
