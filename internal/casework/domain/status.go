package domain

type Status string

const (
	StatusSubmitted            Status = "submitted"
	StatusAccepted             Status = "accepted"
	StatusRejected             Status = "rejected"
	StatusAwaitingUserApproval Status = "awaiting_user_approval"
	StatusApproved             Status = "approved"
	StatusUserRejected         Status = "user_rejected"
	StatusInProduction         Status = "in_production"
	StatusReadyForDelivery     Status = "ready_for_delivery"
	StatusDelivered            Status = "delivered"
	StatusCompleted            Status = "completed"
)

// transitions lists the legal row transitions. A delivered case also spawns
// refinements, which are new rows and not listed here.
var transitions = map[Status][]Status{
	StatusSubmitted:            {StatusAccepted, StatusRejected},
	StatusRejected:             {StatusSubmitted},
	StatusAccepted:             {StatusAwaitingUserApproval},
	StatusAwaitingUserApproval: {StatusApproved, StatusUserRejected, StatusAccepted},
	StatusApproved:             {StatusInProduction},
	StatusInProduction:         {StatusReadyForDelivery},
	StatusReadyForDelivery:     {StatusDelivered},
	StatusDelivered:            {StatusCompleted},
	StatusCompleted:            {},
	StatusUserRejected:         {},
}

// manufacturing is the linear admin-driven chain after doctor approval.
var manufacturing = []Status{
	StatusApproved,
	StatusInProduction,
	StatusReadyForDelivery,
	StatusDelivered,
}

func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted,
		StatusAccepted,
		StatusRejected,
		StatusAwaitingUserApproval,
		StatusApproved,
		StatusUserRejected,
		StatusInProduction,
		StatusReadyForDelivery,
		StatusDelivered,
		StatusCompleted:
		return true
	default:
		return false
	}
}

func (s Status) String() string { return string(s) }

// Terminal reports whether the row accepts no further transitions.
func (s Status) Terminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

func AllStatuses() []Status {
	return []Status{
		StatusSubmitted,
		StatusAccepted,
		StatusRejected,
		StatusAwaitingUserApproval,
		StatusApproved,
		StatusUserRejected,
		StatusInProduction,
		StatusReadyForDelivery,
		StatusDelivered,
		StatusCompleted,
	}
}

func ParseStatus(value string) (Status, error) {
	status := Status(value)
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextManufacturingStatus returns the immediate successor of current in the
// manufacturing chain.
func NextManufacturingStatus(current Status) (Status, bool) {
	for i := 0; i < len(manufacturing)-1; i++ {
		if manufacturing[i] == current {
			return manufacturing[i+1], true
		}
	}
	return "", false
}

// IsPlanEditAllowed gates admin edits of plan counts and prices. Once the
// aligners are ready the plan is locked.
func IsPlanEditAllowed(status Status) bool {
	switch status {
	case StatusReadyForDelivery, StatusDelivered, StatusCompleted:
		return false
	default:
		return true
	}
}
