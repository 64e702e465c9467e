package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"montoit/internal/config"
	"montoit/internal/models"
	"montoit/internal/repositories"
	"montoit/internal/smileid"
	"montoit/internal/validation"

	"github.com/google/uuid"
)

type service struct {
	cfg      config.SmileID
	records  repositories.VerificationRepository
	profiles repositories.ProfileRepository
	vendor   VendorClient
	signer   *smileid.Signer
	notifier Notifier
	now      func() time.Time
}

// NewService creates a new verification service
func NewService(
	cfg config.SmileID,
	records repositories.VerificationRepository,
	profiles repositories.ProfileRepository,
	vendor VendorClient,
	signer *smileid.Signer,
	notifier Notifier,
) Service {
	return &service{
		cfg:      cfg,
		records:  records,
		profiles: profiles,
		vendor:   vendor,
		signer:   signer,
		notifier: notifier,
		now:      time.Now,
	}
}

// Submit validates the request, records a pending job and sends it to the vendor.
func (s *service) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	req.applyDefaults()

	timestamp := s.now().Unix()
	jobID := smileid.NewJobID(s.cfg.PartnerID, timestamp)

	signature, err := s.signer.SignTimestamp(timestamp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	params := smileid.PartnerParams{
		JobID:        jobID,
		UserID:       req.UserID,
		JobType:      req.JobType,
		OptionalInfo: req.optionalInfo(),
	}
	job := smileid.NewJobRequest(params, req.ImageBase64, smileid.IDInfo{
		IDType:  req.IDType,
		Country: req.Country,
	})

	rec := &models.VerificationRecord{
		UserID:        req.UserID,
		JobID:         jobID,
		JobType:       req.JobType,
		Product:       smileid.ProductName(req.JobType),
		IDType:        req.IDType,
		CountryCode:   req.Country,
		CallbackURL:   s.cfg.CallbackURL,
		PartnerParams: toJSON(params),
	}
	if err := s.records.UpsertPending(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if _, err := s.vendor.SubmitJob(ctx, job, timestamp, signature); err != nil {
		log.Printf("[smile id] submit failed job=%s user=%s: %v", jobID, req.UserID, err)
		s.markSubmissionFailed(ctx, jobID, err)
		return nil, fmt.Errorf("%w: %v", ErrVendor, err)
	}

	// Version 1 is the row written above. A callback that already landed
	// has bumped it and must not be overwritten.
	if err := s.records.UpdateStatus(ctx, jobID, 1, models.StatusSubmitted, nil); err != nil {
		if !errors.Is(err, repositories.ErrStaleUpdate) {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		log.Printf("[smile id] job=%s already reconciled before submit completed", jobID)
	}

	log.Printf("[smile id] job submitted job=%s user=%s product=%s", jobID, req.UserID, rec.Product)

	return &SubmitResult{
		JobID:         jobID,
		Status:        models.StatusSubmitted,
		PartnerParams: params,
		Timestamp:     s.now(),
	}, nil
}

// markSubmissionFailed moves a pending record to failed once the vendor
// rejected the job, so it does not stay pending forever.
func (s *service) markSubmissionFailed(ctx context.Context, jobID string, cause error) {
	result := models.JSON{
		"stage": "submit",
		"error": cause.Error(),
	}
	var apiErr *smileid.APIError
	if errors.As(cause, &apiErr) {
		result["status_code"] = apiErr.StatusCode
		result["error"] = apiErr.Body
	}

	// The caller may already be gone; the record still has to be fixed.
	ctx = context.WithoutCancel(ctx)
	if err := s.records.UpdateStatus(ctx, jobID, 1, models.StatusFailed, result); err != nil {
		log.Printf("[smile id] could not mark job=%s failed: %v", jobID, err)
	}
}

// PollStatus fetches the vendor outcome for a known job and reconciles the
// record when the mapped status changed.
func (s *service) PollStatus(ctx context.Context, jobID string) (*StatusResult, error) {
	if jobID == "" {
		return nil, fmt.Errorf("%w: jobId is required", ErrInvalidInput)
	}

	rec, err := s.findRecord(ctx, jobID)
	if err != nil {
		return nil, err
	}

	res, err := s.vendor.GetJobStatus(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVendor, err)
	}

	status := smileid.MapResultCode(string(res.ResultCode))
	if status != rec.Status {
		if err := s.reconcile(ctx, rec, status, res, sourcePoll); err != nil {
			if !errors.Is(err, ErrConflict) {
				return nil, err
			}
			// A callback won the race; the stored row stays as it wrote it.
			log.Printf("[smile id] poll skipped stale update job=%s", jobID)
		}
	}

	return &StatusResult{
		JobID:     jobID,
		UserID:    rec.UserID,
		Status:    status,
		Result:    res.Raw,
		Timestamp: s.now(),
	}, nil
}

// HandleCallback authenticates the raw callback body, then reconciles the
// record it refers to.
func (s *service) HandleCallback(ctx context.Context, body []byte, signature string) (*CallbackResult, error) {
	if s.cfg.VerifyCallback {
		if err := s.signer.VerifyBody(body, signature); err != nil {
			if errors.Is(err, smileid.ErrMissingAPIKey) {
				return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
			}
			return nil, ErrInvalidSignature
		}
	}

	res, err := smileid.ParseJobResult(body)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed JSON: %v", ErrInvalidInput, err)
	}

	jobID := res.JobID
	userID := string(res.PartnerParams.UserID)
	if jobID == "" || userID == "" {
		return nil, fmt.Errorf("%w: job_id and partner_params.user_id are required", ErrInvalidInput)
	}

	log.Printf("[smile id] callback received job=%s user=%s code=%s", jobID, userID, res.ResultCode)

	status := smileid.MapResultCode(string(res.ResultCode))
	ignored := &CallbackResult{JobID: jobID, Status: status, Timestamp: s.now()}

	// Callbacks for superseded or foreign jobs are acknowledged so the vendor
	// stops redelivering them, but nothing is written.
	rec, err := s.records.GetByJobID(ctx, jobID)
	if err != nil {
		if !errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		log.Printf("[smile id] callback ignored, no record for job=%s", jobID)
		return ignored, nil
	}
	if rec.UserID != userID {
		log.Printf("[smile id] callback ignored, job=%s belongs to another user than %s", jobID, userID)
		return ignored, nil
	}

	if err := s.reconcile(ctx, rec, status, res, sourceCallback); err != nil {
		return nil, err
	}

	return &CallbackResult{
		JobID:     jobID,
		Status:    status,
		Applied:   true,
		Timestamp: s.now(),
	}, nil
}

// IssueToken signs "{partnerId}{jobId}{timestamp}" for a new job id.
func (s *service) IssueToken(ctx context.Context, req TokenRequest) (*TokenResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if req.JobType == "" {
		req.JobType = DefaultProduct
	}
	if req.IDType == "" {
		req.IDType = DefaultIDType
	}
	if req.Country == "" {
		req.Country = DefaultCountry
	}

	timestamp := s.now().Unix()
	jobID := smileid.NewJobID(s.cfg.PartnerID, timestamp)

	signature, err := s.signer.SignToken(s.cfg.PartnerID, jobID, timestamp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	params := models.JSON{
		"job_id":   jobID,
		"user_id":  req.UserID,
		"job_type": req.JobType,
		"id_type":  req.IDType,
		"country":  req.Country,
	}
	optional := map[string]string{
		"id_number":    req.IDNumber,
		"first_name":   req.FirstName,
		"last_name":    req.LastName,
		"dob":          req.DOB,
		"phone_number": req.PhoneNumber,
		"email":        req.Email,
	}
	for k, v := range optional {
		if v != "" {
			params[k] = v
		}
	}

	return &TokenResult{
		Signature:     signature,
		Timestamp:     timestamp,
		PartnerID:     s.cfg.PartnerID,
		JobID:         jobID,
		JobType:       req.JobType,
		PartnerParams: params,
		CallbackURL:   s.cfg.CallbackURL,
		Sandbox:       s.cfg.Sandbox,
	}, nil
}

// IssueWebToken requests a hosted web token from the vendor. Missing user
// and job ids are generated; nothing is recorded.
func (s *service) IssueWebToken(ctx context.Context, req WebTokenRequest) (*WebTokenResult, error) {
	if s.cfg.PartnerID == "" {
		return nil, fmt.Errorf("%w: partner id is not configured", ErrConfiguration)
	}

	timestamp := s.now().Unix()
	signature, err := s.signer.SignTimestamp(timestamp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	if req.UserID == "" {
		req.UserID = "user-" + uuid.NewString()
	}
	if req.JobID == "" {
		req.JobID = smileid.NewJobID(s.cfg.PartnerID, timestamp)
	}
	if req.Product == "" {
		req.Product = DefaultProduct
	}
	if req.CallbackURL == "" {
		req.CallbackURL = s.cfg.CallbackURL
	}

	token, err := s.vendor.RequestWebToken(ctx, smileid.WebTokenRequest{
		PartnerID:     s.cfg.PartnerID,
		UserID:        req.UserID,
		JobID:         req.JobID,
		Product:       req.Product,
		CallbackURL:   req.CallbackURL,
		PartnerParams: req.PartnerParams,
		Timestamp:     timestamp,
		Signature:     signature,
	})
	if err != nil {
		log.Printf("[smile id] web token failed job=%s user=%s: %v", req.JobID, req.UserID, err)
		return nil, fmt.Errorf("%w: %v", ErrVendor, err)
	}

	log.Printf("[smile id] web token issued job=%s user=%s product=%s", req.JobID, req.UserID, req.Product)

	return &WebTokenResult{
		UserID: req.UserID,
		JobID:  req.JobID,
		Token:  token,
	}, nil
}

func (s *service) findRecord(ctx context.Context, jobID string) (*models.VerificationRecord, error) {
	rec, err := s.records.GetByJobID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: job %s", ErrNotFound, jobID)
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return rec, nil
}

// reconcile writes the vendor outcome over the record version that was read
// and, for a confident verified outcome, flags the profile.
func (s *service) reconcile(ctx context.Context, rec *models.VerificationRecord, status models.VerificationStatus, res *smileid.JobResult, source string) error {
	if err := s.records.UpdateStatus(ctx, rec.JobID, rec.Version, status, models.JSON(res.Raw)); err != nil {
		if errors.Is(err, repositories.ErrStaleUpdate) {
			return fmt.Errorf("%w: job %s", ErrConflict, rec.JobID)
		}
		log.Printf("[smile id] %s update failed job=%s: %v", source, rec.JobID, err)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	log.Printf("[smile id] %s reconciled job=%s user=%s status=%s->%s", source, rec.JobID, rec.UserID, rec.Status, status)

	// Redelivered verified callbacks must not flag and email the user again.
	confidence := float64(res.ConfidenceValue)
	if status == models.StatusVerified && rec.Status != models.StatusVerified && confidence >= ConfidenceThreshold {
		s.markProfileVerified(ctx, rec.UserID, confidence)
	}
	return nil
}

func (s *service) markProfileVerified(ctx context.Context, userID string, confidence float64) {
	if err := s.profiles.MarkVerified(ctx, userID, s.now()); err != nil {
		log.Printf("[smile id] could not flag profile %s verified: %v", userID, err)
		return
	}
	log.Printf("[smile id] profile %s verified with confidence %.0f%%", userID, confidence)

	if s.notifier == nil {
		return
	}
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		log.Printf("[smile id] could not load profile %s for notification: %v", userID, err)
		return
	}
	if err := s.notifier.SendIdentityVerified(ctx, profile); err != nil {
		log.Printf("[smile id] notification failed for %s: %v", userID, err)
	}
}

func toJSON(v interface{}) models.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	out := models.JSON{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil
	}
	return out
}
