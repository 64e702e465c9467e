package smileid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"montoit/internal/config"
)

// Client calls the vendor job and token endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client from the vendor configuration.
func NewClient(cfg config.SmileID) *Client {
	return &Client{
		baseURL: cfg.URL(),
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// SubmitJob creates a job. signature must be Signer.SignTimestamp(timestamp);
// both travel in the x-smile-* headers.
func (c *Client) SubmitJob(ctx context.Context, job JobRequest, timestamp int64, signature string) (map[string]interface{}, error) {
	return c.post(ctx, "/v1/job", job, timestamp, signature)
}

// RequestWebToken asks for a hosted web token. The request carries its own
// timestamp and signature, which are also sent as headers.
func (c *Client) RequestWebToken(ctx context.Context, req WebTokenRequest) (map[string]interface{}, error) {
	return c.post(ctx, "/v1/token", req, req.Timestamp, req.Signature)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, timestamp int64, signature string) (map[string]interface{}, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-smile-timestamp", strconv.FormatInt(timestamp, 10))
	req.Header.Set("x-smile-signature", signature)

	respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}

	result := map[string]interface{}{}
	if len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, &result); err != nil {
			return nil, fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return result, nil
}

// GetJobStatus fetches the current state of a job. This read path is not signed.
func (c *Client) GetJobStatus(ctx context.Context, jobID string) (*JobResult, error) {
	endpoint := c.baseURL + "/v1/job/" + url.PathEscape(jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}

	res, err := ParseJobResult(respBody)
	if err != nil {
		return nil, fmt.Errorf("decode job status: %w", err)
	}
	return res, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("smile id request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read smile id response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}
	return body, nil
}
