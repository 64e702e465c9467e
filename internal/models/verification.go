package models

import "gorm.io/gorm"

// VerificationStatus is the internal lifecycle state of an identity verification job.
type VerificationStatus string

const (
	StatusPending    VerificationStatus = "pending"
	StatusSubmitted  VerificationStatus = "submitted"
	StatusProcessing VerificationStatus = "processing"
	StatusVerified   VerificationStatus = "verified"
	StatusRejected   VerificationStatus = "rejected"
	StatusFailed     VerificationStatus = "failed"
	StatusUnknown    VerificationStatus = "unknown"
)

// VerificationRecord is the single per-user row tracking the latest vendor job.
// A new submission overwrites the row for the same user.
type VerificationRecord struct {
	gorm.Model
	UserID      string             `gorm:"uniqueIndex;not null" json:"userId"`
	JobID       string             `gorm:"uniqueIndex;not null" json:"jobId"`
	Status      VerificationStatus `gorm:"index;default:'pending'" json:"status"`
	JobType     int                `gorm:"not null;default:1" json:"jobType"`
	Product     string             `json:"product"`
	IDType      string             `json:"idType"`
	CountryCode string             `json:"countryCode"`
	CallbackURL string             `json:"callbackUrl"`
	// PartnerParams is what was sent to the vendor at submission time.
	PartnerParams JSON `json:"partnerParams"`
	// ResultData is the last raw vendor payload, replaced on every reconciliation.
	ResultData JSON `json:"resultData"`
	// Version increments on every write and guards reconciliations.
	Version int `gorm:"not null;default:1" json:"version"`
}

// TableName keeps the table name used by the web application.
func (VerificationRecord) TableName() string {
	return "user_verifications"
}
