package model

// RFQCreatedEvent is published when a newly observed RFQ is OPEN.
type RFQCreatedEvent struct {
	RFQ        RFQ   `json:"rfq"`
	ObservedAt int64 `json:"observedAt"`
}

// RFQUpdatedEvent is published when an observed RFQ changed and no more
// specific classification applies (or no specific handler is registered).
type RFQUpdatedEvent struct {
	RFQ        RFQ   `json:"rfq"`
	ObservedAt int64 `json:"observedAt"`
}

// RFQCancelledEvent is published when an observed RFQ transitioned to CANCELLED.
type RFQCancelledEvent struct {
	RFQ        RFQ   `json:"rfq"`
	ObservedAt int64 `json:"observedAt"`
}

// RFQFilledEvent is published when an observed RFQ transitioned to FILLED.
type RFQFilledEvent struct {
	RFQ        RFQ   `json:"rfq"`
	ObservedAt int64 `json:"observedAt"`
}
