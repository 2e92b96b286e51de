package briefing

import (
	"strings"

	"github.com/welldanyogia/webrana-briefing-backend/internal/models"
)

// credentialErrorSignatures enumerates the provider error fragments that
// identify an invalid-credential failure. Matching is case-insensitive
// substring. Keeping the set in one table makes the recognized
// signatures a testable artifact rather than scattered string checks.
var credentialErrorSignatures = []string{
	"no refresh token",
	"invalid_grant",
	"decryption failed",
	"token has been expired or revoked",
}

// ClassifyAccountError maps a per-account processing error to a briefing
// error type: AUTH_REQUIRED for recognized credential failures, OTHER for
// everything else.
func ClassifyAccountError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range credentialErrorSignatures {
		if strings.Contains(msg, sig) {
			return models.ErrorTypeAuthRequired
		}
	}
	return models.ErrorTypeOther
}
