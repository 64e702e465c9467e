package smileid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"montoit/internal/config"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := config.SmileID{PartnerID: "7685", APIKey: "test-api-key", BaseURL: srv.URL, Timeout: 5 * time.Second}
	return NewClient(cfg)
}

func TestClient_SubmitJob(t *testing.T) {
	var gotPath, gotTimestamp, gotSignature string
	var gotBody JobRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotTimestamp = r.Header.Get("x-smile-timestamp")
		gotSignature = r.Header.Get("x-smile-signature")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"smile_job_id":"0000001"}`))
	})

	job := NewJobRequest(PartnerParams{JobID: "7685_1700000000_abc", UserID: "u1", JobType: 1}, "abc", IDInfo{IDType: "NATIONAL_ID", Country: "CI"})
	sig, err := NewSigner("test-api-key").SignTimestamp(1700000000)
	require.NoError(t, err)

	res, err := client.SubmitJob(context.Background(), job, 1700000000, sig)
	require.NoError(t, err)

	assert.Equal(t, "POST /v1/job", gotPath)
	assert.Equal(t, "1700000000", gotTimestamp)
	assert.Equal(t, "bdcf10b9c2ee5fe90bc3dc889e8fd305afeb5b2315053ef0306c14796813682f", gotSignature)
	assert.Equal(t, "u1", gotBody.PartnerParams.UserID)
	assert.Equal(t, "abc", gotBody.ImageDetails["selfie"])
	assert.Equal(t, true, res["success"])
}

func TestClient_SubmitJob_VendorError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid signature"}`))
	})

	_, err := client.SubmitJob(context.Background(), JobRequest{}, 1, "sig")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "invalid signature")
}

func TestClient_GetJobStatus(t *testing.T) {
	var gotPath, gotSignature string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotSignature = r.Header.Get("x-smile-signature")
		_, _ = w.Write([]byte(`{"job_id":"7685_1_abc","result_code":"1210","confidence_value":91}`))
	})

	res, err := client.GetJobStatus(context.Background(), "7685_1_abc")
	require.NoError(t, err)

	assert.Equal(t, "GET /v1/job/7685_1_abc", gotPath)
	assert.Empty(t, gotSignature)
	assert.Equal(t, Code("1210"), res.ResultCode)
	assert.Equal(t, Confidence(91), res.ConfidenceValue)
}

func TestClient_GetJobStatus_VendorError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetJobStatus(context.Background(), "j")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestClient_RequestWebToken(t *testing.T) {
	var gotPath, gotTimestamp, gotSignature string
	gotBody := map[string]interface{}{}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotTimestamp = r.Header.Get("x-smile-timestamp")
		gotSignature = r.Header.Get("x-smile-signature")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"success":true,"token":"web-token"}`))
	})

	res, err := client.RequestWebToken(context.Background(), WebTokenRequest{
		PartnerID:   "7685",
		UserID:      "u1",
		JobID:       "7685_1700000000_abc",
		Product:     "biometric_kyc",
		CallbackURL: "https://montoit.ci/smile-id-callback",
		PartnerParams: map[string]interface{}{
			"product":    "doc_verification",
			"signature":  "forged",
			"first_name": "Awa",
		},
		Timestamp: 1700000000,
		Signature: "sig",
	})
	require.NoError(t, err)

	assert.Equal(t, "POST /v1/token", gotPath)
	assert.Equal(t, "1700000000", gotTimestamp)
	assert.Equal(t, "sig", gotSignature)
	assert.Equal(t, "web-token", res["token"])

	assert.Equal(t, "u1", gotBody["user_id"])
	assert.Equal(t, "7685", gotBody["partner_id"])
	assert.Equal(t, float64(1700000000), gotBody["timestamp"])
	assert.Equal(t, "https://montoit.ci/smile-id-callback", gotBody["callback_url"])
	assert.Equal(t, "doc_verification", gotBody["product"], "partner params override the defaults")
	assert.Equal(t, "sig", gotBody["signature"], "partner params cannot replace the signature")
	assert.Equal(t, "Awa", gotBody["first_name"])
}

func TestClient_RequestWebToken_VendorError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad signature"}`))
	})

	_, err := client.RequestWebToken(context.Background(), WebTokenRequest{Timestamp: 1, Signature: "sig"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
