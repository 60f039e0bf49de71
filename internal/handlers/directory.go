package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"hospital-appointment-server/internal/middleware"
	"hospital-appointment-server/internal/services"
	"hospital-appointment-server/internal/utils"
)

// DirectoryHandler serves the reference-data read paths: departments,
// doctors and the admin dashboard aggregates.
type DirectoryHandler struct {
	Directory *services.DirectoryService
}

// NewDirectoryHandler creates a new DirectoryHandler.
func NewDirectoryHandler(directory *services.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{Directory: directory}
}

// ListDepartments handles listing all departments with doctor counts.
func (h *DirectoryHandler) ListDepartments(c *gin.Context) {
	departments, err := h.Directory.ListDepartments()
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	utils.Success(c, "Departments fetched successfully", departments)
}

// ListDoctors handles listing available doctors, optionally filtered by
// department and a search term over name and specialization.
func (h *DirectoryHandler) ListDoctors(c *gin.Context) {
	doctors, err := h.Directory.ListDoctors(c.Query("departmentId"), c.Query("search"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	utils.Success(c, "Doctors fetched successfully", doctors)
}

// GetDoctor handles fetching a single doctor profile.
func (h *DirectoryHandler) GetDoctor(c *gin.Context) {
	doctor, err := h.Directory.GetDoctor(c.Param("id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	utils.Success(c, "Doctor fetched successfully", doctor)
}

// GetStats handles the admin dashboard aggregates.
func (h *DirectoryHandler) GetStats(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	stats, err := h.Directory.Stats(actor, time.Now().Format(services.DateLayout))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	utils.Success(c, "Statistics fetched successfully", stats)
}
