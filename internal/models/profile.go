package models

import "time"

// Profile is the subset of the user profile this service reads and writes.
type Profile struct {
	ID                string `gorm:"primaryKey"`
	Email             string
	FullName          string
	IsVerified        bool `gorm:"default:false"`
	SmileIDVerified   bool `gorm:"default:false"`
	SmileIDVerifiedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
