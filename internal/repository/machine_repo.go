package repository

import (
	"context"
	"errors"
	"slices"

	"repairtrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrRepairStateChanged is returned when a repair transition loses against a
// concurrent writer: the machine no longer has the open entry the caller saw.
var ErrRepairStateChanged = errors.New("repository: machine repair state changed")

// MachineRepository persists machines together with their repair history.
// Reads always return the history in append order with UpdatedBy loaded.
type MachineRepository interface {
	Create(ctx context.Context, m *model.Machine) error
	// List returns every machine when department is empty.
	List(ctx context.Context, department string) ([]model.Machine, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Machine, error)
	// OpenRepair appends entry and marks the machine under repair.
	OpenRepair(ctx context.Context, machineID uuid.UUID, entry *model.RepairEntry) error
	// CloseRepair stores the closed entry and marks the machine operational.
	CloseRepair(ctx context.Context, machineID uuid.UUID, entry *model.RepairEntry) error
}

type machineRepo struct{ db *gorm.DB }

func NewMachineRepository(db *gorm.DB) MachineRepository { return &machineRepo{db: db} }

func (r *machineRepo) withHistory(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("RepairHistory").
		Preload("RepairHistory.UpdatedBy")
}

func (r *machineRepo) Create(ctx context.Context, m *model.Machine) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *machineRepo) List(ctx context.Context, department string) ([]model.Machine, error) {
	q := r.withHistory(ctx).Order("created_at asc")
	if department != "" {
		q = q.Where("department = ?", department)
	}
	machines := []model.Machine{}
	if err := q.Find(&machines).Error; err != nil {
		return nil, err
	}
	for i := range machines {
		sortHistory(&machines[i])
	}
	return machines, nil
}

func (r *machineRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Machine, error) {
	var m model.Machine
	if err := r.withHistory(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	sortHistory(&m)
	return &m, nil
}

func (r *machineRepo) OpenRepair(ctx context.Context, machineID uuid.UUID, entry *model.RepairEntry) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.RepairEntry{}).Where("machine_id = ?", machineID).Count(&count).Error; err != nil {
			return err
		}
		entry.MachineID = machineID
		entry.Seq = int(count) + 1
		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		res := tx.Model(&model.Machine{}).
			Where("id = ? AND open_repair_id IS NULL", machineID).
			Updates(map[string]any{
				"status":         model.StatusUnderRepair,
				"open_repair_id": entry.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRepairStateChanged
		}
		return nil
	})
	// Seq and the one-ongoing-per-machine index both reject a racing open.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrRepairStateChanged
	}
	return err
}

func (r *machineRepo) CloseRepair(ctx context.Context, machineID uuid.UUID, entry *model.RepairEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Machine{}).
			Where("id = ? AND open_repair_id = ?", machineID, entry.ID).
			Updates(map[string]any{
				"status":         model.StatusOperational,
				"open_repair_id": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRepairStateChanged
		}

		return tx.Model(&model.RepairEntry{}).
			Where("id = ? AND machine_id = ?", entry.ID, machineID).
			Updates(map[string]any{
				"end_time":      entry.EndTime,
				"status":        entry.Status,
				"description":   entry.Description,
				"updated_by_id": entry.UpdatedByID,
			}).Error
	})
}

func sortHistory(m *model.Machine) {
	slices.SortFunc(m.RepairHistory, func(a, b model.RepairEntry) int { return a.Seq - b.Seq })
}
