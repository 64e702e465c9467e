package smileid

import (
	"strings"

	"montoit/internal/models"
)

// Vendor result codes.
const (
	CodeJobSubmitted  = "1201"
	CodeJobProcessing = "1202"
	CodeJobFailed     = "1203"
)

var verifiedCodes = map[string]struct{}{
	"1210": {}, // enroll user
	"1211": {}, // verify user
	"1212": {}, // id card validation
	"1213": {}, // id number validation
	"1214": {}, // business verification
	"1215": {}, // enhanced document verification
	"1216": {}, // enhanced kyc
}

// MapResultCode converts a vendor result code into the internal status.
// It is the only place where vendor codes are interpreted.
func MapResultCode(code string) models.VerificationStatus {
	code = strings.TrimSpace(code)
	if _, ok := verifiedCodes[code]; ok {
		return models.StatusVerified
	}
	switch code {
	case "":
		return models.StatusPending
	case CodeJobSubmitted:
		return models.StatusSubmitted
	case CodeJobProcessing:
		return models.StatusProcessing
	case CodeJobFailed:
		return models.StatusFailed
	default:
		return models.StatusUnknown
	}
}
