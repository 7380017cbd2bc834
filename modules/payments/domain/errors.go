package domain

import "github.com/kunalsingh7053/VyaparX/modules/shared/types"

// Domain errors
var (
	ErrPaymentNotFound  = types.NewError(types.KindNotFound, "payment_not_found", "Payment not found")
	ErrInvalidOrderID   = types.NewError(types.KindValidation, "invalid_order_id", "Invalid orderId")
	ErrInvalidPaymentID = types.NewError(types.KindValidation, "invalid_payment_id", "Invalid paymentId")
	ErrInvalidSignature = types.NewError(types.KindValidation, "invalid_signature", "Invalid payment signature")
	ErrMissingCallback  = types.NewError(types.KindValidation, "invalid_callback", "razorpayOrderId, razorpayPaymentId and razorpaySignature are required")
	ErrOrderNotPayable  = types.NewError(types.KindConflict, "order_not_payable", "Only pending orders can be paid")
	ErrNotPending       = types.NewError(types.KindConflict, "payment_not_pending", "Payment is no longer pending")
	ErrPaymentForbidden = types.NewError(types.KindForbidden, "forbidden", "Forbidden: You can only pay for your own orders")
	ErrProviderRejected = types.NewError(types.KindUpstreamUnavailable, "provider_unavailable", "Payment provider unavailable")
)
