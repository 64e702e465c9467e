package smileid

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const jobTokenLength = 13

// NewJobID builds "{partnerId}_{timestamp}_{token}" with a random alphanumeric token.
func NewJobID(partnerID string, timestamp int64) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:jobTokenLength]
	return partnerID + "_" + strconv.FormatInt(timestamp, 10) + "_" + token
}
