package damage

import (
	"errors"
	"strings"
)

// ErrProviderUnavailable marks a labeling provider that is not configured or
// could not be set up.
var ErrProviderUnavailable = errors.New("labeling provider unavailable")

// ErrorClass is the classification of a labeling provider failure.
type ErrorClass string

const (
	ClassNone        ErrorClass = ""
	ClassUnavailable ErrorClass = "unavailable"
	ClassBilling     ErrorClass = "billing"
	ClassAuth        ErrorClass = "auth"
	ClassGeneric     ErrorClass = "generic"
)

// Markers are matched case-insensitively against the error text, billing first.
var (
	billingMarkers = []string{"billing_disabled", "billing", "insufficient_quota", "quota", "resource_exhausted"}
	authMarkers    = []string{"authentication", "invalid api key", "invalid_api_key", "api key not valid", "api_key_invalid", "unauthenticated", "401"}
)

// ClassifyError maps a provider error to an ErrorClass by its message text.
func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ClassNone
	}
	if errors.Is(err, ErrProviderUnavailable) {
		return ClassUnavailable
	}
	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, billingMarkers):
		return ClassBilling
	case containsAny(msg, authMarkers):
		return ClassAuth
	default:
		return ClassGeneric
	}
}

// BillingErrorReport is returned when the provider rejects a request for
// billing or quota reasons.
const BillingErrorReport = `❌ **Image Labeling Billing Required**

The image labeling provider rejected the request because billing is disabled or the quota is exhausted.

**Quick Fix:**
1. Open the billing page of your provider account
2. Enable billing or raise the quota for the vision API (required even for the free tier)
3. Wait 2-3 minutes for activation

**Current Analysis:**
✅ **Image Successfully Uploaded**
📋 **File Type**: Image file detected
📊 **Status**: Ready for AI analysis once billing is enabled

Please enable billing and try again for full AI analysis!`

// AuthErrorReport is returned when the provider rejects the configured credentials.
const AuthErrorReport = `❌ **Image Labeling Authentication Error**

The API key for the image labeling provider is invalid or not configured correctly.

**Troubleshooting Steps:**
1. Verify the provider API key in your .env file or config
2. Check that the key has not expired or been revoked
3. Confirm the key has access to the vision API
4. Restart the server after updating the key

**Current Status:**
✅ **Image Successfully Uploaded**
📋 **File Type**: Image file detected
📊 **Status**: Authentication failed

Please fix your API key and try again!`
