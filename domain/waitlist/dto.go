package waitlist

import (
	"github.com/hutmuts/hutmuts-api/internal/models"
	"github.com/hutmuts/hutmuts-api/pkg/constants"
)

// JoinWaitlistRequest is the untrusted form payload. The binding tags are the
// single source of the server-side validation rules; the client form mirrors
// the same rules for fast feedback but is never trusted.
type JoinWaitlistRequest struct {
	Name     string `json:"name" binding:"required,min=2" validate:"required,min=2"`
	Email    string `json:"email" binding:"required,email" validate:"required,email"`
	UserType string `json:"userType" binding:"required,oneof=renter landlord" validate:"required,oneof=renter landlord"`
}

type JoinWaitlistResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type WaitlistEntryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	UserType  string `json:"userType"`
	CreatedAt string `json:"createdAt"`
}

// ========================================
// Mappers
// ========================================

func ToWaitlistEntryModel(req *JoinWaitlistRequest) *models.WaitlistEntry {
	if req == nil {
		return nil
	}
	return &models.WaitlistEntry{
		Name:     req.Name,
		Email:    req.Email,
		UserType: req.UserType,
	}
}

func ToWaitlistEntryResponse(entry *models.WaitlistEntry) WaitlistEntryResponse {
	if entry == nil {
		return WaitlistEntryResponse{}
	}
	return WaitlistEntryResponse{
		ID:        entry.ID,
		Name:      entry.Name,
		Email:     entry.Email,
		UserType:  entry.UserType,
		CreatedAt: entry.CreatedAt.Format(constants.RFC3339DateTimeFormat),
	}
}
