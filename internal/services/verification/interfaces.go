package verification

import (
	"context"

	"montoit/internal/models"
	"montoit/internal/smileid"
)

// Service defines the verification operations exposed over HTTP.
type Service interface {
	// Submit creates a vendor job for the user and records it.
	Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error)

	// PollStatus asks the vendor for the job outcome and reconciles the record.
	PollStatus(ctx context.Context, jobID string) (*StatusResult, error)

	// HandleCallback verifies and applies a vendor callback.
	HandleCallback(ctx context.Context, body []byte, signature string) (*CallbackResult, error)

	// IssueToken signs a job for the client-side SDK without recording it.
	IssueToken(ctx context.Context, req TokenRequest) (*TokenResult, error)

	// IssueWebToken requests a hosted web verification token from the vendor.
	IssueWebToken(ctx context.Context, req WebTokenRequest) (*WebTokenResult, error)
}

// VendorClient is the subset of the Smile ID client used here.
type VendorClient interface {
	SubmitJob(ctx context.Context, job smileid.JobRequest, timestamp int64, signature string) (map[string]interface{}, error)
	GetJobStatus(ctx context.Context, jobID string) (*smileid.JobResult, error)
	RequestWebToken(ctx context.Context, req smileid.WebTokenRequest) (map[string]interface{}, error)
}

// Notifier tells users about their verification outcome.
type Notifier interface {
	SendIdentityVerified(ctx context.Context, profile *models.Profile) error
}
