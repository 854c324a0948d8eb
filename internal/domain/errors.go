package domain

import "errors"

// Validation errors: bad input, rejected before any state mutation.
var (
	ErrInvalidLocation    = errors.New("invalid location")
	ErrInvalidTriggerType = errors.New("invalid trigger type")
	ErrCoverageOutOfRange = errors.New("coverage amount out of range")
	ErrDurationOutOfRange = errors.New("duration out of range")
	ErrEmptyCropType      = errors.New("crop type must not be empty")
	ErrInvalidFarmSize    = errors.New("farm size must be positive")
	ErrInvalidAmount      = errors.New("amount must be positive")
)

// Authorization errors: caller lacks the required role, no mutation.
var (
	ErrNotPolicyholder = errors.New("caller is not the policyholder")
	ErrNotAuthorized   = errors.New("caller is not an authorized provider")
	ErrNotOwner        = errors.New("caller is not the owner")
)

// State-conflict errors: the entity is not in a state that permits the
// operation, no mutation.
var (
	ErrPolicyNotActive     = errors.New("policy is not active")
	ErrPolicyExpired       = errors.New("policy has expired")
	ErrPolicyNotStarted    = errors.New("policy coverage has not started")
	ErrAlreadyFulfilled    = errors.New("oracle request already fulfilled")
	ErrAlreadyProcessed    = errors.New("claim already processed")
	ErrWeatherDataNotReady = errors.New("weather data not ready")
)

// Resource errors: the system or caller needs more funds, no mutation.
var (
	ErrInsufficientPremium = errors.New("paid amount below required premium")
	ErrInsufficientReserve = errors.New("treasury reserve insufficient")
)

// Not-found errors.
var (
	ErrPolicyNotFound  = errors.New("policy not found")
	ErrClaimNotFound   = errors.New("claim not found")
	ErrRequestNotFound = errors.New("oracle request not found")
)

// ErrTransferFailed wraps a payment-rail rejection. The operation that
// attempted the transfer must leave no state change behind.
var ErrTransferFailed = errors.New("value transfer failed")

// ErrorKind buckets the error taxonomy for callers that map errors onto a
// transport (HTTP status codes, exit codes).
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindAuthorization
	KindStateConflict
	KindResource
	KindNotFound
	KindTransfer
)

// Kind classifies a domain error. Unrecognized errors map to KindUnknown.
func Kind(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrInvalidLocation),
		errors.Is(err, ErrInvalidTriggerType),
		errors.Is(err, ErrCoverageOutOfRange),
		errors.Is(err, ErrDurationOutOfRange),
		errors.Is(err, ErrEmptyCropType),
		errors.Is(err, ErrInvalidFarmSize),
		errors.Is(err, ErrInvalidAmount):
		return KindValidation
	case errors.Is(err, ErrNotPolicyholder),
		errors.Is(err, ErrNotAuthorized),
		errors.Is(err, ErrNotOwner):
		return KindAuthorization
	case errors.Is(err, ErrPolicyNotActive),
		errors.Is(err, ErrPolicyExpired),
		errors.Is(err, ErrPolicyNotStarted),
		errors.Is(err, ErrAlreadyFulfilled),
		errors.Is(err, ErrAlreadyProcessed),
		errors.Is(err, ErrWeatherDataNotReady):
		return KindStateConflict
	case errors.Is(err, ErrInsufficientPremium),
		errors.Is(err, ErrInsufficientReserve):
		return KindResource
	case errors.Is(err, ErrPolicyNotFound),
		errors.Is(err, ErrClaimNotFound),
		errors.Is(err, ErrRequestNotFound):
		return KindNotFound
	case errors.Is(err, ErrTransferFailed):
		return KindTransfer
	}
	return KindUnknown
}
