package domain

import "time"

// Message is a rendered article ready for the output channel.
type Message struct {
	Fingerprint    string
	Text           string
	PublishedAt    time.Time
	DisablePreview bool
}

// DeliveryStatus enumerates the terminal and intermediate states of a
// message inside the delivery stage.
type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryDropped DeliveryStatus = "dropped"
)

// DeliveryRecord tracks one message through the delivery state machine.
// Once Status is sent or dropped the record is never revisited.
type DeliveryRecord struct {
	Fingerprint string
	Attempts    int
	LastError   string
	Status      DeliveryStatus
}

// DeliveryErrorKind distinguishes output-channel failures so the deliverer
// can decide between backoff and an immediate drop.
type DeliveryErrorKind int

const (
	// DeliveryErrTransient should be retried with backoff.
	DeliveryErrTransient DeliveryErrorKind = iota
	// DeliveryErrRateLimited is a 429-equivalent; retried through the
	// shared rate limiter like any other transient failure.
	DeliveryErrRateLimited
	// DeliveryErrPermanent must not be retried.
	DeliveryErrPermanent
)

func (k DeliveryErrorKind) String() string {
	switch k {
	case DeliveryErrRateLimited:
		return "rate_limited"
	case DeliveryErrPermanent:
		return "permanent"
	default:
		return "transient"
	}
}

// DeliveryError is returned by the output-channel boundary.
type DeliveryError struct {
	Kind   DeliveryErrorKind
	Reason string
}

func (e *DeliveryError) Error() string {
	return e.Kind.String() + ": " + e.Reason
}
