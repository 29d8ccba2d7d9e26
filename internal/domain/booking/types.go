package booking

type Status string

const (
	StatusPending    Status = "pending"
	StatusAccepted   Status = "accepted"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var statusEdges = map[Status][]Status{
	StatusPending:    {StatusAccepted, StatusCancelled},
	StatusAccepted:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range statusEdges[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentAuthorized        PaymentStatus = "authorized"
	PaymentPaid              PaymentStatus = "paid"
	PaymentFailed            PaymentStatus = "failed"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
)

var paymentEdges = map[PaymentStatus][]PaymentStatus{
	PaymentPending:           {PaymentAuthorized, PaymentFailed},
	PaymentAuthorized:        {PaymentPaid, PaymentRefunded, PaymentPartiallyRefunded},
	PaymentPaid:              {PaymentPartiallyRefunded, PaymentRefunded},
	PaymentPartiallyRefunded: {PaymentPartiallyRefunded, PaymentRefunded},
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	p := PaymentStatus(s)
	if !p.IsValid() {
		return "", ErrInvalidStatus
	}
	return p, nil
}

func (p PaymentStatus) String() string {
	return string(p)
}

func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentPending, PaymentAuthorized, PaymentPaid, PaymentFailed, PaymentRefunded, PaymentPartiallyRefunded:
		return true
	default:
		return false
	}
}

func (p PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentEdges[p] {
		if allowed == next {
			return true
		}
	}
	return false
}

// correlation lists the payment statuses a booking may hold in each status.
var correlation = map[Status]map[PaymentStatus]bool{
	StatusPending: {
		PaymentPending:    true,
		PaymentAuthorized: true,
	},
	StatusAccepted: {
		PaymentPending:    true,
		PaymentAuthorized: true,
	},
	StatusInProgress: {
		PaymentAuthorized: true,
	},
	StatusCompleted: {
		PaymentAuthorized:        true,
		PaymentPaid:              true,
		PaymentPartiallyRefunded: true,
		PaymentRefunded:          true,
	},
	StatusCancelled: {
		PaymentFailed:            true,
		PaymentAuthorized:        true,
		PaymentPaid:              true,
		PaymentPartiallyRefunded: true,
		PaymentRefunded:          true,
	},
}

func Compatible(s Status, p PaymentStatus) bool {
	return correlation[s][p]
}

// State is the guarded part of a booking that every conditional update compares against.
type State struct {
	Status        Status
	PaymentStatus PaymentStatus
	Version       int64
}
