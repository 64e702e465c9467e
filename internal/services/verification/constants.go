package verification

// ConfidenceThreshold is the minimum vendor confidence that flips the profile flag.
const ConfidenceThreshold = 80

// Submission defaults
const (
	DefaultIDType  = "NATIONAL_ID"
	DefaultCountry = "CI"
	DefaultJobType = 1
	DefaultProduct = "biometric_kyc"
)

// Reconciliation sources, used in logs.
const (
	sourcePoll     = "poll"
	sourceCallback = "callback"
)
