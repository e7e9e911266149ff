package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/merlotworks/wineclub-backend/pkg/db/models"
)

// LoginRequest is the admin login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the minted JWT and the operator profile.
type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	Admin       AdminDTO `json:"admin"`
}

// AdminDTO is the operator profile returned to the dashboard.
type AdminDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func toAdminDTO(admin *models.AdminUser) AdminDTO {
	return AdminDTO{
		ID:          admin.ID,
		Email:       admin.Email,
		DisplayName: admin.DisplayName,
		LastLoginAt: admin.LastLoginAt,
	}
}
