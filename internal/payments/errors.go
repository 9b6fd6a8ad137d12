package payments

import "errors"

// ErrProviderUnavailable wraps every transport failure, timeout or non-2xx
// answer from a payment provider. Callers may retry.
var ErrProviderUnavailable = errors.New("payment provider unavailable")

// ErrInvalidSignature is returned for webhook payloads that fail verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")
