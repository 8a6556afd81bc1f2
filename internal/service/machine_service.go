package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"repairtrack/internal/cache"
	"repairtrack/internal/dto"
	"repairtrack/internal/metrics"
	"repairtrack/internal/model"
	"repairtrack/internal/repository"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// resolutionSeparator joins the fault description and the closing note.
const resolutionSeparator = "\n\nResolution: "

// MachineService covers machine registration, listing and the repair
// lifecycle (operational → under_repair → operational).
type MachineService interface {
	Create(ctx context.Context, req dto.CreateMachineRequest) (*dto.MachineResponse, error)
	// List returns all machines when department is empty.
	List(ctx context.Context, department string) ([]dto.MachineResponse, error)
	Get(ctx context.Context, id string) (*dto.MachineResponse, error)
	// UpdateRepair opens a repair attributed to actor, or closes the ongoing
	// one when req.ShouldClose is set.
	UpdateRepair(ctx context.Context, id string, actor uuid.UUID, req dto.RepairRequest) (*dto.MachineResponse, error)
	Departments() []string
}

type machineService struct {
	repo        repository.MachineRepository
	cache       cache.Store
	departments []string
	now         func() time.Time

	// cacheMu orders listing fills against invalidations; cacheGen counts
	// invalidations so a fill read before a write is dropped.
	cacheMu  sync.Mutex
	cacheGen uint64
}

func NewMachineService(repo repository.MachineRepository, store cache.Store, departments []string) MachineService {
	return &machineService{
		repo:        repo,
		cache:       store,
		departments: slices.Clone(departments),
		now:         time.Now,
	}
}

func (s *machineService) Departments() []string { return slices.Clone(s.departments) }

func (s *machineService) Create(ctx context.Context, req dto.CreateMachineRequest) (*dto.MachineResponse, error) {
	name := strings.TrimSpace(req.Name)
	department := strings.TrimSpace(req.Department)

	verr := &ValidationError{}
	if name == "" {
		verr.add("name", "required")
	}
	if department == "" {
		verr.add("department", "required")
	} else if !slices.Contains(s.departments, department) {
		verr.add("department", "unknown department")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	m := &model.Machine{
		Name:          name,
		Department:    department,
		Status:        model.StatusOperational,
		RepairHistory: []model.RepairEntry{},
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	s.invalidate(ctx, department)

	resp := mapMachine(*m)
	return &resp, nil
}

func (s *machineService) List(ctx context.Context, department string) ([]dto.MachineResponse, error) {
	key := cache.ListingKey(department)
	if cached, ok := s.cache.Get(ctx, key); ok {
		var resp []dto.MachineResponse
		if err := json.Unmarshal(cached, &resp); err == nil {
			metrics.CacheHits.WithLabelValues(s.cache.Name()).Inc()
			return resp, nil
		}
	}
	metrics.CacheMisses.WithLabelValues(s.cache.Name()).Inc()

	gen := s.generation()
	machines, err := s.repo.List(ctx, department)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.MachineResponse, 0, len(machines))
	for _, m := range machines {
		resp = append(resp, mapMachine(m))
	}

	s.fill(ctx, key, gen, resp)
	return resp, nil
}

func (s *machineService) generation() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.cacheGen
}

// fill caches resp unless a write invalidated listings after gen was taken.
// Best effort.
func (s *machineService) fill(ctx context.Context, key string, gen uint64, resp []dto.MachineResponse) {
	b, err := json.Marshal(resp)
	if err != nil {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.cacheGen != gen {
		return
	}
	s.cache.Set(ctx, key, b)
}

func (s *machineService) Get(ctx context.Context, id string) (*dto.MachineResponse, error) {
	m, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := mapMachine(*m)
	return &resp, nil
}

func (s *machineService) UpdateRepair(ctx context.Context, id string, actor uuid.UUID, req dto.RepairRequest) (*dto.MachineResponse, error) {
	m, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if req.ShouldClose {
		err = s.closeRepair(ctx, m, actor, req.Description, now)
		metrics.RecordRepair("close", err)
	} else {
		err = s.openRepair(ctx, m, actor, req, now)
		metrics.RecordRepair("open", err)
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, m.Department)

	return s.Get(ctx, m.ID.String())
}

func (s *machineService) openRepair(ctx context.Context, m *model.Machine, actor uuid.UUID, req dto.RepairRequest, now time.Time) error {
	verr := &ValidationError{}
	switch req.Type {
	case model.FaultMechanical, model.FaultElectrical:
	case "":
		verr.add("type", "required")
	default:
		verr.add("type", "must be mechanical or electrical")
	}
	if strings.TrimSpace(req.Description) == "" {
		verr.add("description", "required")
	}
	if err := verr.orNil(); err != nil {
		return err
	}

	if m.OpenRepairID != nil {
		return ErrRepairInProgress
	}

	entry := &model.RepairEntry{
		Type:        req.Type,
		Description: req.Description,
		StartTime:   now,
		Status:      model.RepairOngoing,
		UpdatedByID: actor,
	}
	err := s.repo.OpenRepair(ctx, m.ID, entry)
	if errors.Is(err, repository.ErrRepairStateChanged) {
		return ErrRepairInProgress
	}
	return err
}

func (s *machineService) closeRepair(ctx context.Context, m *model.Machine, actor uuid.UUID, resolution string, now time.Time) error {
	open := m.OpenRepair()
	if open == nil {
		return ErrNoOpenRepair
	}

	closed := *open
	closed.UpdatedBy = nil
	closed.EndTime = &now
	closed.Status = model.RepairCompleted
	closed.UpdatedByID = actor
	if note := strings.TrimSpace(resolution); note != "" {
		closed.Description += resolutionSeparator + note
	}

	err := s.repo.CloseRepair(ctx, m.ID, &closed)
	if errors.Is(err, repository.ErrRepairStateChanged) {
		return ErrNoOpenRepair
	}
	return err
}

func (s *machineService) find(ctx context.Context, id string) (*model.Machine, error) {
	mid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrMachineNotFound
	}
	m, err := s.repo.FindByID(ctx, mid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMachineNotFound
		}
		return nil, err
	}
	return m, nil
}

func (s *machineService) invalidate(ctx context.Context, department string) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cacheGen++
	s.cache.Delete(ctx, cache.ListingKey(""), cache.ListingKey(department))
}

func mapMachine(m model.Machine) dto.MachineResponse {
	history := make([]dto.RepairEntryResponse, 0, len(m.RepairHistory))
	for _, e := range m.RepairHistory {
		history = append(history, mapRepairEntry(e))
	}
	return dto.MachineResponse{
		ID:            m.ID.String(),
		Name:          m.Name,
		Department:    m.Department,
		Status:        m.Status,
		RepairHistory: history,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func mapRepairEntry(e model.RepairEntry) dto.RepairEntryResponse {
	resp := dto.RepairEntryResponse{
		ID:          e.ID.String(),
		Type:        e.Type,
		Description: e.Description,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Status:      e.Status,
	}
	if e.UpdatedBy != nil {
		resp.UpdatedBy = &dto.UserResponse{ID: e.UpdatedBy.ID.String(), Username: e.UpdatedBy.Username}
	}
	return resp
}
