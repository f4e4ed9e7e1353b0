package dto

import "pken.app/survey-gateway/internal/wordpress"

type MeRequest struct {
	LineID string `json:"line_id" binding:"required,max=64"`
}

type RegisterRequest struct {
	Grade         int    `json:"grade" binding:"omitempty,min=1,max=12"`
	Class         int    `json:"class" binding:"omitempty,min=1,max=99"`
	LastName      string `json:"lastName" binding:"required,max=64"`
	FirstName     string `json:"firstName" binding:"required,max=64"`
	LastNameKana  string `json:"lastNameKana" binding:"max=64"`
	FirstNameKana string `json:"firstNameKana" binding:"max=64"`
	Email         string `json:"email" binding:"required,email,max=255"`
	LineID        string `json:"line_id" binding:"required,max=64"`
}

func (r RegisterRequest) ToWordPress() wordpress.RegisterRequest {
	return wordpress.RegisterRequest{
		Grade:         r.Grade,
		Class:         r.Class,
		LastName:      r.LastName,
		FirstName:     r.FirstName,
		LastNameKana:  r.LastNameKana,
		FirstNameKana: r.FirstNameKana,
		Email:         r.Email,
		LineID:        r.LineID,
	}
}
