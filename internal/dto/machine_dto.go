package dto

import "time"

// ── Request DTOs ──────────────────────────────────────────────────────────────

type CreateMachineRequest struct {
	Name       string `json:"name"       validate:"required,max=200"`
	Department string `json:"department" validate:"required"`
}

// RepairRequest opens a repair, or closes the ongoing one when ShouldClose is set.
// On close, Type is ignored and Description becomes the resolution note.
type RepairRequest struct {
	Type        string `json:"type"        validate:"omitempty,oneof=mechanical electrical"`
	Description string `json:"description" validate:"max=4000"`
	ShouldClose bool   `json:"shouldClose"`
}

// ── Response DTOs ─────────────────────────────────────────────────────────────

type RepairEntryResponse struct {
	ID          string        `json:"id"`
	Type        string        `json:"type"`
	Description string        `json:"description"`
	StartTime   time.Time     `json:"startTime"`
	EndTime     *time.Time    `json:"endTime"`
	Status      string        `json:"status"`
	UpdatedBy   *UserResponse `json:"updatedBy"`
}

type MachineResponse struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Department    string                `json:"department"`
	Status        string                `json:"status"`
	RepairHistory []RepairEntryResponse `json:"repairHistory"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}
