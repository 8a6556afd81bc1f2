package repository

import (
	"context"
	"testing"
	"time"

	"repairtrack/internal/model"
	"repairtrack/internal/testfixtures"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newEntry(actor uuid.UUID, desc string) *model.RepairEntry {
	return &model.RepairEntry{
		Type:        model.FaultMechanical,
		Description: desc,
		StartTime:   time.Now().UTC(),
		Status:      model.RepairOngoing,
		UpdatedByID: actor,
	}
}

func TestMachineRepo_CreateAndFind(t *testing.T) {
	db := testfixtures.NewSQLiteDB(t)
	repo := NewMachineRepository(db)
	ctx := context.Background()

	m := &model.Machine{Name: "Loom-1", Department: "Dyeing", Status: model.StatusOperational}
	require.NoError(t, repo.Create(ctx, m))
	assert.NotEqual(t, uuid.Nil, m.ID)

	got, err := repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Loom-1", got.Name)
	assert.Nil(t, got.OpenRepairID)
	assert.Empty(t, got.RepairHistory)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMachineRepo_ListFiltersByDepartment(t *testing.T) {
	db := testfixtures.NewSQLiteDB(t)
	repo := NewMachineRepository(db)
	ctx := context.Background()

	for _, m := range []*model.Machine{
		{Name: "Loom-1", Department: "Dyeing", Status: model.StatusOperational},
		{Name: "Stenter", Department: "Finishing", Status: model.StatusOperational},
	} {
		require.NoError(t, repo.Create(ctx, m))
	}

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	finishing, err := repo.List(ctx, "Finishing")
	require.NoError(t, err)
	require.Len(t, finishing, 1)
	assert.Equal(t, "Stenter", finishing[0].Name)

	none, err := repo.List(ctx, "finishing")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMachineRepo_OpenAndCloseRepair(t *testing.T) {
	db := testfixtures.NewSQLiteDB(t)
	repo := NewMachineRepository(db)
	ctx := context.Background()
	actor := testfixtures.SeedUser(t, db, "alice", "pw123456")

	m := &model.Machine{Name: "Loom-1", Department: "Dyeing", Status: model.StatusOperational}
	require.NoError(t, repo.Create(ctx, m))

	entry := newEntry(actor.ID, "belt broke")
	require.NoError(t, repo.OpenRepair(ctx, m.ID, entry))
	assert.Equal(t, 1, entry.Seq)

	got, err := repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusUnderRepair, got.Status)
	require.NotNil(t, got.OpenRepairID)
	assert.Equal(t, entry.ID, *got.OpenRepairID)
	require.Len(t, got.RepairHistory, 1)
	require.NotNil(t, got.RepairHistory[0].UpdatedBy)
	assert.Equal(t, "alice", got.RepairHistory[0].UpdatedBy.Username)
	assert.Same(t, &got.RepairHistory[0], got.OpenRepair())

	closed := got.RepairHistory[0]
	end := time.Now().UTC()
	closed.EndTime = &end
	closed.Status = model.RepairCompleted
	closed.Description += "\n\nResolution: replaced belt"
	require.NoError(t, repo.CloseRepair(ctx, m.ID, &closed))

	got, err = repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOperational, got.Status)
	assert.Nil(t, got.OpenRepairID)
	assert.Nil(t, got.OpenRepair())
	assert.Equal(t, model.RepairCompleted, got.RepairHistory[0].Status)
	assert.NotNil(t, got.RepairHistory[0].EndTime)
	assert.Contains(t, got.RepairHistory[0].Description, "Resolution: replaced belt")

	// a second cycle appends after the first
	next := newEntry(actor.ID, "bearing noise")
	require.NoError(t, repo.OpenRepair(ctx, m.ID, next))
	assert.Equal(t, 2, next.Seq)
	got, err = repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, got.RepairHistory, 2)
	assert.Equal(t, "belt broke\n\nResolution: replaced belt", got.RepairHistory[0].Description)
	assert.Equal(t, "bearing noise", got.RepairHistory[1].Description)
}

func TestMachineRepo_OpenRepairRejectsSecondOngoing(t *testing.T) {
	db := testfixtures.NewSQLiteDB(t)
	repo := NewMachineRepository(db)
	ctx := context.Background()
	actor := testfixtures.SeedUser(t, db, "alice", "pw123456")

	m := &model.Machine{Name: "Loom-1", Department: "Dyeing", Status: model.StatusOperational}
	require.NoError(t, repo.Create(ctx, m))
	require.NoError(t, repo.OpenRepair(ctx, m.ID, newEntry(actor.ID, "belt broke")))

	err := repo.OpenRepair(ctx, m.ID, newEntry(actor.ID, "motor hum"))
	assert.ErrorIs(t, err, ErrRepairStateChanged)

	var count int64
	require.NoError(t, db.Model(&model.RepairEntry{}).Where("machine_id = ?", m.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestMachineRepo_CloseRepairRejectsStaleEntry(t *testing.T) {
	db := testfixtures.NewSQLiteDB(t)
	repo := NewMachineRepository(db)
	ctx := context.Background()

	m := &model.Machine{Name: "Loom-1", Department: "Dyeing", Status: model.StatusOperational}
	require.NoError(t, repo.Create(ctx, m))

	end := time.Now().UTC()
	stale := &model.RepairEntry{ID: uuid.New(), EndTime: &end, Status: model.RepairCompleted}
	err := repo.CloseRepair(ctx, m.ID, stale)
	assert.ErrorIs(t, err, ErrRepairStateChanged)
}
