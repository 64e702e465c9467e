package smileid

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Sign returns the lowercase hex HMAC-SHA256 of message under key.
func Sign(key, message string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// Signer signs outbound requests and verifies inbound callbacks with the partner API key.
type Signer struct {
	apiKey string
}

func NewSigner(apiKey string) *Signer {
	return &Signer{apiKey: apiKey}
}

// SignTimestamp signs "timestamp:{unix}", the header signature for job creation.
func (s *Signer) SignTimestamp(timestamp int64) (string, error) {
	if s.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	return Sign(s.apiKey, "timestamp:"+strconv.FormatInt(timestamp, 10)), nil
}

// SignToken signs "{partnerId}{jobId}{timestamp}" for client-side SDK tokens.
func (s *Signer) SignToken(partnerID, jobID string, timestamp int64) (string, error) {
	if s.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	return Sign(s.apiKey, partnerID+jobID+strconv.FormatInt(timestamp, 10)), nil
}

// SignBody signs a raw request body.
func (s *Signer) SignBody(body []byte) (string, error) {
	if s.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	return Sign(s.apiKey, string(body)), nil
}

// VerifyBody checks a callback signature against the raw body in constant time.
func (s *Signer) VerifyBody(body []byte, signature string) error {
	if s.apiKey == "" {
		return ErrMissingAPIKey
	}
	if signature == "" {
		return ErrInvalidSignature
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, []byte(s.apiKey))
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return ErrInvalidSignature
	}
	return nil
}
