package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"montoit/internal/models"
	"montoit/internal/services/verification"
	"montoit/internal/smileid"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockVerificationService struct {
	mock.Mock
}

func (m *MockVerificationService) Submit(ctx context.Context, req verification.SubmitRequest) (*verification.SubmitResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*verification.SubmitResult), args.Error(1)
}

func (m *MockVerificationService) PollStatus(ctx context.Context, jobID string) (*verification.StatusResult, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*verification.StatusResult), args.Error(1)
}

func (m *MockVerificationService) HandleCallback(ctx context.Context, body []byte, signature string) (*verification.CallbackResult, error) {
	args := m.Called(ctx, body, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*verification.CallbackResult), args.Error(1)
}

func (m *MockVerificationService) IssueToken(ctx context.Context, req verification.TokenRequest) (*verification.TokenResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*verification.TokenResult), args.Error(1)
}

func (m *MockVerificationService) IssueWebToken(ctx context.Context, req verification.WebTokenRequest) (*verification.WebTokenResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*verification.WebTokenResult), args.Error(1)
}

var now = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestApp(svc verification.Service, claims *models.UserClaims) *fiber.App {
	h := NewVerificationHandler(svc)
	app := fiber.New()
	if claims != nil {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("claims", claims)
			return c.Next()
		})
	}
	app.Post("/smile-id-submit", h.Submit)
	app.Get("/smile-id-status", h.Status)
	app.Post("/smile-id-token", h.Token)
	app.Post("/smile-id-web-token", h.WebToken)
	app.Post("/smile-id-callback", h.Callback)
	app.Get("/smile-id-callback", h.CallbackHealth)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestVerificationHandler_Submit(t *testing.T) {
	svc := new(MockVerificationService)
	svc.On("Submit", mock.Anything, verification.SubmitRequest{UserID: "u1", ImageBase64: "abc", JobType: 1}).
		Return(&verification.SubmitResult{
			JobID:         "7685_1700000000_abc",
			Status:        models.StatusSubmitted,
			PartnerParams: smileid.PartnerParams{JobID: "7685_1700000000_abc", UserID: "u1", JobType: 1},
			Timestamp:     now,
		}, nil).Once()

	status, body := doJSON(t, newTestApp(svc, nil), "POST", "/smile-id-submit", `{"userId":"u1","imageBase64":"abc","jobType":1}`, nil)

	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "7685_1700000000_abc", body["jobId"])
	assert.Equal(t, "submitted", body["status"])
	assert.Equal(t, "u1", body["partnerParams"].(map[string]interface{})["user_id"])
	assert.Equal(t, "2024-01-02T03:04:05Z", body["timestamp"])
	svc.AssertExpectations(t)
}

func TestVerificationHandler_Submit_BadJSON(t *testing.T) {
	svc := new(MockVerificationService)

	status, body := doJSON(t, newTestApp(svc, nil), "POST", "/smile-id-submit", `{"userId":`, nil)

	assert.Equal(t, 400, status)
	assert.Equal(t, "Bad request", body["error"])
	svc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestVerificationHandler_Submit_OtherUsersToken(t *testing.T) {
	svc := new(MockVerificationService)
	claims := &models.UserClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u2"}}

	status, _ := doJSON(t, newTestApp(svc, claims), "POST", "/smile-id-submit", `{"userId":"u1","imageBase64":"abc"}`, nil)

	assert.Equal(t, 403, status)
	svc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestVerificationHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{fmt.Errorf("%w: imageBase64 is required", verification.ErrInvalidInput), 400},
		{verification.ErrInvalidSignature, 401},
		{fmt.Errorf("%w: job j1", verification.ErrNotFound), 404},
		{fmt.Errorf("%w: job j1", verification.ErrConflict), 409},
		{fmt.Errorf("%w: missing SMILE_ID_API_KEY", verification.ErrConfiguration), 500},
		{fmt.Errorf("%w: smile id returned 502: upstream down", verification.ErrVendor), 500},
		{fmt.Errorf("%w: connection refused", verification.ErrPersistence), 500},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			svc := new(MockVerificationService)
			svc.On("HandleCallback", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			status, body := doJSON(t, newTestApp(svc, nil), "POST", "/smile-id-callback", `{}`, nil)

			assert.Equal(t, tt.wantStatus, status)
			assert.NotEmpty(t, body["error"])
			assert.Nil(t, body["success"])
		})
	}
}

func TestVerificationHandler_VendorErrorKeepsText(t *testing.T) {
	svc := new(MockVerificationService)
	svc.On("Submit", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: upstream down", verification.ErrVendor)).Once()

	status, body := doJSON(t, newTestApp(svc, nil), "POST", "/smile-id-submit", `{"userId":"u1","imageBase64":"abc"}`, nil)

	assert.Equal(t, 500, status)
	assert.Equal(t, "Smile ID API error", body["error"])
	assert.Contains(t, body["message"], "upstream down")
}

func TestVerificationHandler_Status(t *testing.T) {
	svc := new(MockVerificationService)
	svc.On("PollStatus", mock.Anything, "j1").Return(&verification.StatusResult{
		JobID:     "j1",
		UserID:    "u1",
		Status:    models.StatusVerified,
		Result:    map[string]interface{}{"result_code": "1210"},
		Timestamp: now,
	}, nil).Once()

	status, body := doJSON(t, newTestApp(svc, nil), "GET", "/smile-id-status?jobId=j1", "", nil)

	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "u1", body["userId"])
	assert.Equal(t, "verified", body["status"])
	assert.Equal(t, "1210", body["result"].(map[string]interface{})["result_code"])
	svc.AssertExpectations(t)
}

func TestVerificationHandler_Status_MissingJobID(t *testing.T) {
	svc := new(MockVerificationService)

	status, _ := doJSON(t, newTestApp(svc, nil), "GET", "/smile-id-status", "", nil)

	assert.Equal(t, 400, status)
	svc.AssertNotCalled(t, "PollStatus", mock.Anything, mock.Anything)
}

func TestVerificationHandler_Callback(t *testing.T) {
	payload := `{"job_id":"j1","partner_params":{"user_id":"u1"},"result_code":"1210","confidence_value":95}`
	svc := new(MockVerificationService)
	svc.On("HandleCallback", mock.Anything, []byte(payload), "abc123").
		Return(&verification.CallbackResult{JobID: "j1", Status: models.StatusVerified, Timestamp: now}, nil).Once()

	status, body := doJSON(t, newTestApp(svc, nil), "POST", "/smile-id-callback", payload, map[string]string{SignatureHeader: "abc123"})

	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "j1", body["job_id"])
	assert.Equal(t, "2024-01-02T03:04:05Z", body["timestamp"])
	svc.AssertExpectations(t)
}

func TestVerificationHandler_CallbackHealth(t *testing.T) {
	status, body := doJSON(t, newTestApp(new(MockVerificationService), nil), "GET", "/smile-id-callback", "", nil)

	assert.Equal(t, 200, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "Smile ID Callback", body["service"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestVerificationHandler_Token(t *testing.T) {
	svc := new(MockVerificationService)
	claims := &models.UserClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}
	svc.On("IssueToken", mock.Anything, verification.TokenRequest{UserID: "u1", FirstName: "Awa"}).
		Return(&verification.TokenResult{
			Signature:     "sig",
			Timestamp:     1700000000,
			PartnerID:     "7685",
			JobID:         "7685_1700000000_abc",
			JobType:       "biometric_kyc",
			PartnerParams: models.JSON{"user_id": "u1"},
			CallbackURL:   "https://montoit.ci/smile-id-callback",
			Sandbox:       true,
		}, nil).Once()

	status, body := doJSON(t, newTestApp(svc, claims), "POST", "/smile-id-token", `{"userId":"u1","firstName":"Awa"}`, nil)

	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "sig", body["signature"])
	assert.Equal(t, float64(1700000000), body["timestamp"])
	assert.Equal(t, "7685", body["partnerId"])
	assert.Equal(t, true, body["sandbox"])
	svc.AssertExpectations(t)
}

func TestVerificationHandler_Token_OtherUsersToken(t *testing.T) {
	svc := new(MockVerificationService)
	claims := &models.UserClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u2"}}

	status, _ := doJSON(t, newTestApp(svc, claims), "POST", "/smile-id-token", `{"userId":"u1"}`, nil)

	assert.Equal(t, 403, status)
	svc.AssertNotCalled(t, "IssueToken", mock.Anything, mock.Anything)
}

func TestVerificationHandler_WebToken(t *testing.T) {
	svc := new(MockVerificationService)
	svc.On("IssueWebToken", mock.Anything, verification.WebTokenRequest{
		UserID:        "u1",
		Product:       "doc_verification",
		PartnerParams: map[string]interface{}{"first_name": "Awa"},
	}).Return(&verification.WebTokenResult{
		UserID: "u1",
		JobID:  "7685_1700000000_abc",
		Token:  map[string]interface{}{"token": "web-token", "expires_at": "2024-01-02T04:04:05Z"},
	}, nil).Once()

	status, body := doJSON(t, newTestApp(svc, nil), "POST", "/smile-id-web-token",
		`{"userId":"u1","product":"doc_verification","partnerParams":{"first_name":"Awa"}}`, nil)

	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "web-token", body["token"])
	assert.Equal(t, "2024-01-02T04:04:05Z", body["expires_at"])
	svc.AssertExpectations(t)
}

func TestVerificationHandler_WebToken_EmptyBodyUsesTokenSubject(t *testing.T) {
	svc := new(MockVerificationService)
	claims := &models.UserClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}
	svc.On("IssueWebToken", mock.Anything, verification.WebTokenRequest{UserID: "u1"}).
		Return(&verification.WebTokenResult{UserID: "u1", Token: map[string]interface{}{"token": "t"}}, nil).Once()

	status, body := doJSON(t, newTestApp(svc, claims), "POST", "/smile-id-web-token", "", nil)

	assert.Equal(t, 200, status)
	assert.Equal(t, "t", body["token"])
	svc.AssertExpectations(t)
}

func TestVerificationHandler_WebToken_Errors(t *testing.T) {
	claims := &models.UserClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u2"}}

	svc := new(MockVerificationService)
	status, _ := doJSON(t, newTestApp(svc, claims), "POST", "/smile-id-web-token", `{"userId":"u1"}`, nil)
	assert.Equal(t, 403, status)

	status, _ = doJSON(t, newTestApp(svc, nil), "POST", "/smile-id-web-token", `{"userId":`, nil)
	assert.Equal(t, 400, status)
	svc.AssertNotCalled(t, "IssueWebToken", mock.Anything, mock.Anything)

	svc = new(MockVerificationService)
	svc.On("IssueWebToken", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: smile id returned status 401", verification.ErrVendor)).Once()
	status, body := doJSON(t, newTestApp(svc, nil), "POST", "/smile-id-web-token", `{}`, nil)
	assert.Equal(t, 500, status)
	assert.Equal(t, "Smile ID API error", body["error"])
}
