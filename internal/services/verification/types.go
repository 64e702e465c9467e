package verification

import (
	"time"

	"montoit/internal/models"
	"montoit/internal/smileid"
)

// SubmitRequest is the client submission of one image.
type SubmitRequest struct {
	UserID      string `json:"userId" validate:"required"`
	FileType    string `json:"fileType"`
	ImageBase64 string `json:"imageBase64" validate:"required"`
	IDType      string `json:"idType"`
	Country     string `json:"country"`
	// JobType 1 is biometric KYC, anything else is document verification.
	JobType int `json:"jobType"`
}

func (r *SubmitRequest) applyDefaults() {
	if r.IDType == "" {
		r.IDType = DefaultIDType
	}
	if r.Country == "" {
		r.Country = DefaultCountry
	}
	if r.JobType == 0 {
		r.JobType = DefaultJobType
	}
}

func (r *SubmitRequest) optionalInfo() string {
	if r.FileType != "" {
		return r.FileType + "_verification_initiated"
	}
	return smileid.ProductName(r.JobType) + "_initiated"
}

type SubmitResult struct {
	JobID         string                    `json:"jobId"`
	Status        models.VerificationStatus `json:"status"`
	PartnerParams smileid.PartnerParams     `json:"partnerParams"`
	Timestamp     time.Time                 `json:"timestamp"`
}

type StatusResult struct {
	JobID     string                    `json:"jobId"`
	UserID    string                    `json:"userId"`
	Status    models.VerificationStatus `json:"status"`
	Result    map[string]interface{}    `json:"result"`
	Timestamp time.Time                 `json:"timestamp"`
}

type CallbackResult struct {
	JobID  string                    `json:"job_id"`
	Status models.VerificationStatus `json:"-"`
	// Applied is false when no record of the callback's user matched the job.
	Applied   bool      `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

// TokenRequest asks for a signed job for the client-side SDK.
type TokenRequest struct {
	UserID      string `json:"userId" validate:"required"`
	JobType     string `json:"jobType"`
	IDType      string `json:"idType"`
	Country     string `json:"country"`
	IDNumber    string `json:"idNumber"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DOB         string `json:"dob"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
}

type TokenResult struct {
	Signature     string      `json:"signature"`
	Timestamp     int64       `json:"timestamp"`
	PartnerID     string      `json:"partnerId"`
	JobID         string      `json:"jobId"`
	JobType       string      `json:"jobType"`
	PartnerParams models.JSON `json:"partnerParams"`
	CallbackURL   string      `json:"callbackUrl"`
	Sandbox       bool        `json:"sandbox"`
}

// WebTokenRequest asks for a hosted web verification token. Every field is optional.
type WebTokenRequest struct {
	UserID        string                 `json:"userId"`
	JobID         string                 `json:"jobId"`
	Product       string                 `json:"product"`
	CallbackURL   string                 `json:"callbackUrl"`
	PartnerParams map[string]interface{} `json:"partnerParams"`
}

// WebTokenResult carries the vendor token response and the ids it was issued for.
type WebTokenResult struct {
	UserID string
	JobID  string
	Token  map[string]interface{}
}
