package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-appointment-server/internal/config"
	"hospital-appointment-server/internal/middleware"
	"hospital-appointment-server/internal/models"
	"hospital-appointment-server/internal/utils"
)

// AuthHandler handles the identity seam: patient registration, login and
// profile reads. Session management proper lives outside this service.
type AuthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg}
}

// RegisterRequest represents the patient self-registration payload.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"dateOfBirth"` // YYYY-MM-DD, optional
	BloodType   string `json:"bloodType"`
	Address     string `json:"address"`
}

// Register creates a user account with a patient profile.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if !models.ValidBloodType(models.BloodType(req.BloodType)) {
		utils.BadRequest(c, "Unknown blood type: "+req.BloodType)
		return
	}

	var dob *time.Time
	if req.DateOfBirth != "" {
		parsed, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			utils.BadRequest(c, "Invalid date of birth, expected YYYY-MM-DD")
			return
		}
		dob = &parsed
	}

	user := models.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      models.RolePatient,
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.User
		if err := tx.Where("email = ?", req.Email).First(&existing).Error; err == nil {
			return errors.New("email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		patient := models.Patient{
			UserID:      user.ID,
			DateOfBirth: dob,
			BloodType:   models.BloodType(req.BloodType),
			Address:     req.Address,
		}
		return tx.Create(&patient).Error
	})
	if err != nil {
		if err.Error() == "email already registered" {
			utils.Conflict(c, err.Error())
			return
		}
		utils.InternalServerError(c, "Failed to register: "+err.Error())
		return
	}

	utils.Created(c, "Account created successfully", user.Sanitize())
}

// LoginRequest represents the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}
	if !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	expiresIn := time.Duration(h.Cfg.JWTExpirationMinutes) * time.Minute
	token, err := utils.GenerateToken(&user, h.Cfg.JWTSecret, expiresIn)
	if err != nil {
		utils.InternalServerError(c, "Failed to issue token")
		return
	}

	utils.Success(c, "Logged in successfully", gin.H{
		"accessToken": token,
		"user":        user.Sanitize(),
	})
}

// GetProfile returns the authenticated user's account.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", actor.UserID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}
	utils.Success(c, "Profile fetched successfully", user.Sanitize())
}
