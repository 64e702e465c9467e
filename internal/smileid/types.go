package smileid

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// JobTypeBiometricKYC is the selfie job type. Every other type is treated
// as document verification.
const JobTypeBiometricKYC = 1

// ProductName returns the product label recorded for a job type.
func ProductName(jobType int) string {
	if jobType == JobTypeBiometricKYC {
		return "biometric_kyc"
	}
	return "document_verification"
}

// PartnerParams identifies the job and its owner towards the vendor.
type PartnerParams struct {
	JobID        string `json:"job_id"`
	UserID       string `json:"user_id"`
	JobType      int    `json:"job_type"`
	OptionalInfo string `json:"optional_info,omitempty"`
}

// IDInfo describes the identity document.
type IDInfo struct {
	IDType  string `json:"id_type"`
	Country string `json:"country"`
}

// JobOptions controls what the vendor returns.
type JobOptions struct {
	ReturnJobStatus  bool `json:"return_job_status"`
	ReturnImageLinks bool `json:"return_image_links"`
}

// JobRequest is the body of POST /v1/job.
type JobRequest struct {
	PartnerParams PartnerParams     `json:"partner_params"`
	ImageDetails  map[string]string `json:"image_details"`
	IDInfo        IDInfo            `json:"id_info"`
	Options       JobOptions        `json:"options"`
}

// NewJobRequest builds the job payload. Biometric jobs send the image as a
// selfie, all other job types as the front of the id card.
func NewJobRequest(params PartnerParams, image string, idInfo IDInfo) JobRequest {
	key := "id_card_front"
	if params.JobType == JobTypeBiometricKYC {
		key = "selfie"
	}
	return JobRequest{
		PartnerParams: params,
		ImageDetails:  map[string]string{key: image},
		IDInfo:        idInfo,
		Options: JobOptions{
			ReturnJobStatus:  true,
			ReturnImageLinks: true,
		},
	}
}

// Code is a vendor code that may arrive as a JSON string or number.
type Code string

func (c *Code) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Code(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = Code(n.String())
	return nil
}

// Confidence is the vendor confidence score (0-100). Missing or unparsable
// values read as zero.
type Confidence float64

func (c *Confidence) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case float64:
		*c = Confidence(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			*c = 0
			return nil
		}
		*c = Confidence(f)
	default:
		*c = 0
	}
	return nil
}

// JobResult holds the fields read from both job-status responses and callbacks.
type JobResult struct {
	JobID           string     `json:"job_id"`
	ResultCode      Code       `json:"result_code"`
	ResultText      string     `json:"result_text"`
	ConfidenceValue Confidence `json:"confidence_value"`
	Timestamp       string     `json:"timestamp"`
	PartnerParams   struct {
		JobID  Code `json:"job_id"`
		UserID Code `json:"user_id"`
	} `json:"partner_params"`

	// Raw is the complete payload as received.
	Raw map[string]interface{} `json:"-"`
}

// ParseJobResult decodes a vendor payload, keeping the raw document alongside.
func ParseJobResult(body []byte) (*JobResult, error) {
	var res JobResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, err
	}
	raw := map[string]interface{}{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	res.Raw = raw
	return &res, nil
}

// WebTokenRequest asks the vendor for a hosted web verification token.
type WebTokenRequest struct {
	PartnerID   string
	UserID      string
	JobID       string
	Product     string
	CallbackURL string
	// PartnerParams are merged over user_id, job_id, product and callback_url.
	PartnerParams map[string]interface{}
	Timestamp     int64
	Signature     string
}

// MarshalJSON flattens the request into the body of POST /v1/token. The
// signing fields always win over partner params.
func (r WebTokenRequest) MarshalJSON() ([]byte, error) {
	body := map[string]interface{}{
		"user_id":      r.UserID,
		"job_id":       r.JobID,
		"product":      r.Product,
		"callback_url": r.CallbackURL,
	}
	for k, v := range r.PartnerParams {
		body[k] = v
	}
	body["partner_id"] = r.PartnerID
	body["timestamp"] = r.Timestamp
	body["signature"] = r.Signature
	body["source_sdk"] = "rest_api"
	return json.Marshal(body)
}
