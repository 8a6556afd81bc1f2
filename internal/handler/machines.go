package handler

import (
	"net/http"

	"repairtrack/internal/dto"
	"repairtrack/internal/middleware"
	"repairtrack/internal/service"

	"github.com/gin-gonic/gin"
)

type MachinesHandler struct{ svc service.MachineService }

func NewMachinesHandler(svc service.MachineService) *MachinesHandler {
	return &MachinesHandler{svc: svc}
}

// Create godoc
// @Summary Register a machine
// @Tags machines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateMachineRequest true "Machine"
// @Success 201 {object} dto.MachineResponse
// @Failure 400 {object} apierror.ValidationError
// @Router /api/machines [post]
func (h *MachinesHandler) Create(c *gin.Context) {
	var req dto.CreateMachineRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List GET /api/machines
func (h *MachinesHandler) List(c *gin.Context) {
	h.list(c, "")
}

// ListByDepartment GET /api/machines/department/:department
func (h *MachinesHandler) ListByDepartment(c *gin.Context) {
	h.list(c, c.Param("department"))
}

func (h *MachinesHandler) list(c *gin.Context, department string) {
	resp, err := h.svc.List(c.Request.Context(), department)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get GET /api/machines/:id
func (h *MachinesHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateRepair godoc
// @Summary Open a repair, or close the ongoing one
// @Tags machines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Machine ID"
// @Param body body dto.RepairRequest true "Repair transition"
// @Success 200 {object} dto.MachineResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /api/machines/{id}/repair [post]
func (h *MachinesHandler) UpdateRepair(c *gin.Context) {
	var req dto.RepairRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor := middleware.GetIdentity(c)
	resp, err := h.svc.UpdateRepair(c.Request.Context(), c.Param("id"), actor.UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Departments GET /api/departments
func (h *MachinesHandler) Departments(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Departments())
}
