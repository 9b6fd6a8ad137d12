package services

// Reason classifies why an operation did not succeed.
type Reason string

const (
	ReasonAuthenticationRequired     Reason = "authentication_required"
	ReasonAuthorizationDenied        Reason = "authorization_denied"
	ReasonNotFound                   Reason = "not_found"
	ReasonAlreadyPaid                Reason = "already_paid"
	ReasonAlreadyDelivered           Reason = "already_delivered"
	ReasonNotPaid                    Reason = "not_paid"
	ReasonProviderVerificationFailed Reason = "provider_verification_failed"
	ReasonProviderCommunication      Reason = "provider_communication_error"
	ReasonInvalidPaymentMethod       Reason = "invalid_payment_method"
	ReasonEmptyCart                  Reason = "empty_cart"
	ReasonCartChanged                Reason = "cart_changed"
	ReasonMissingShippingAddress     Reason = "missing_shipping_address"
	ReasonMissingPaymentMethod       Reason = "missing_payment_method"
	ReasonInvalidQuantity            Reason = "invalid_quantity"
	ReasonOutOfStock                 Reason = "out_of_stock"
	ReasonNoSession                  Reason = "no_session"
)

// Result is the outcome of a mutating operation. A failed Result leaves state
// unchanged; unexpected faults are returned as a separate error instead.
type Result struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Reason    Reason `json:"reason,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func succeed(message string) Result {
	return Result{Success: true, Message: message}
}

func fail(reason Reason, message string) Result {
	return Result{
		Reason:    reason,
		Message:   message,
		Retryable: reason == ReasonProviderCommunication,
	}
}
