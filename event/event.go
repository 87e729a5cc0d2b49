package event

import "time"

/* Event represents one inbound occurrence and its delivery-cycle state
 * Uses value semantics as it represents data, not behavior
 */
type Event struct {
	ID               string
	RouteID          string
	Payload          []byte
	Headers          map[string]string
	Status           Status
	AttemptCount     int
	DestinationCount int
	DeliveredCount   int
	LastAttemptAt    *time.Time
	ErrorMessage     string
	// Version is an optimistic concurrency token: concurrent delivery
	// cycles for the same event cannot silently overwrite each other
	Version   int64
	CreatedAt time.Time
}

/* DeliveryAttempt is the per-destination, per-cycle audit record
 * Immutable once written; ResponseStatus is nil on network-level failure
 */
type DeliveryAttempt struct {
	ID             string
	EventID        string
	DestinationID  string
	TargetEndpoint string
	ResponseStatus *int
	ResponseBody   string
	Success        bool
	ErrorMessage   string
	CreatedAt      time.Time
}

// MaxResponseBodyLength caps the stored destination response body
const MaxResponseBodyLength = 5000
