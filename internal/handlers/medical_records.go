package handlers

import (
	"github.com/gin-gonic/gin"

	"hospital-appointment-server/internal/middleware"
	"hospital-appointment-server/internal/services"
	"hospital-appointment-server/internal/utils"
)

// MedicalRecordHandler handles prescription writes and history reads.
type MedicalRecordHandler struct {
	Records *services.MedicalRecordService
}

// NewMedicalRecordHandler creates a new MedicalRecordHandler.
func NewMedicalRecordHandler(records *services.MedicalRecordService) *MedicalRecordHandler {
	return &MedicalRecordHandler{Records: records}
}

// AddRecordRequest represents the prescription payload.
type AddRecordRequest struct {
	Diagnosis    string `json:"diagnosis" binding:"required"`
	Symptoms     string `json:"symptoms"`
	Medicines    string `json:"medicines" binding:"required"`
	Instructions string `json:"instructions"`
	FollowUpDate string `json:"followUpDate"` // YYYY-MM-DD, optional
}

// AddRecord attaches a prescription to an appointment and marks the
// appointment completed.
func (h *MedicalRecordHandler) AddRecord(c *gin.Context) {
	var req AddRecordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	record, err := h.Records.AddRecord(actor, services.AddRecordInput{
		AppointmentID: c.Param("id"),
		Diagnosis:     req.Diagnosis,
		Symptoms:      req.Symptoms,
		Medicines:     req.Medicines,
		Instructions:  req.Instructions,
		FollowUpDate:  req.FollowUpDate,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	utils.Created(c, "Medical record added successfully", record)
}

// GetRecordsForPatient returns a patient's full history, newest first.
func (h *MedicalRecordHandler) GetRecordsForPatient(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	records, err := h.Records.ListForPatient(actor, c.Param("patientId"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	utils.Success(c, "Medical records fetched successfully", records)
}

// GetRecordsForAppointment returns the records attached to one appointment.
func (h *MedicalRecordHandler) GetRecordsForAppointment(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	records, err := h.Records.ListForAppointment(actor, c.Param("id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	utils.Success(c, "Medical records fetched successfully", records)
}
