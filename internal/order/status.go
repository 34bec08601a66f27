package order

import "fmt"

// Status is the closed set of order states. Transitions are validated
// against the explicit edge list below, never against raw strings.
type Status string

const (
	StatusNew       Status = "new"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusShipping  Status = "shipping"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// AllStatuses in happy-path order, cancelled last.
var AllStatuses = []Status{
	StatusNew,
	StatusConfirmed,
	StatusPreparing,
	StatusShipping,
	StatusCompleted,
	StatusCancelled,
}

// transitions is the full edge list of the state machine. Completed and
// Cancelled are terminal.
var transitions = map[Status][]Status{
	StatusNew:       {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusShipping},
	StatusShipping:  {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) Terminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Role of the actor requesting a transition. The core receives it as an
// explicit parameter; it never reads ambient request state.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

type Actor struct {
	UserID uint
	Role   Role
}

// notificationText is the user-facing message for a successful transition,
// keyed by the same enumeration the state machine uses.
func notificationText(code string, s Status) string {
	switch s {
	case StatusConfirmed:
		return fmt.Sprintf("Order %s has been confirmed.", code)
	case StatusPreparing:
		return fmt.Sprintf("Order %s is being prepared.", code)
	case StatusShipping:
		return fmt.Sprintf("Order %s is out for delivery.", code)
	case StatusCompleted:
		return fmt.Sprintf("Order %s has been completed. Thank you for shopping with us!", code)
	case StatusCancelled:
		return fmt.Sprintf("Order %s has been cancelled.", code)
	default:
		return fmt.Sprintf("Order %s status has been updated.", code)
	}
}
