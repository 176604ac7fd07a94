package newsletter

// EventUserLoggedIn is emitted once per authenticated session.
const EventUserLoggedIn = "user.logged_in"

// LoginEvent is the payload of EventUserLoggedIn.
type LoginEvent struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type SkipReason string

const (
	ReasonFeatureDisabled   SkipReason = "feature-disabled"
	ReasonUserOptedOut      SkipReason = "user-opted-out"
	ReasonAlreadySubscribed SkipReason = "already-subscribed"
	ReasonUnknownStatus     SkipReason = "unknown-status"
)

// Outcome is the terminal result of one reconcile cycle.
type Outcome struct {
	Subscribed bool       `json:"subscribed,omitempty"`
	Skipped    bool       `json:"skipped,omitempty"`
	Reason     SkipReason `json:"reason,omitempty"`
}

func Skip(reason SkipReason) Outcome { return Outcome{Skipped: true, Reason: reason} }

func SubscribedOutcome() Outcome { return Outcome{Subscribed: true} }

// Label is a compact name for metrics and logs.
func (o Outcome) Label() string {
	if o.Subscribed {
		return "subscribed"
	}
	if o.Skipped {
		return "skipped:" + string(o.Reason)
	}
	return "none"
}

// Decision says whether a subscribe call is needed and, if not, why.
type Decision struct {
	Subscribe bool
	Outcome   Outcome
}

// Decide is the reconcile state machine. The remote list is the only input
// that matters besides the flag; local mirror state is never consulted.
func Decide(flagEnabled bool, status ContactStatus) Decision {
	if !flagEnabled {
		return Decision{Outcome: Skip(ReasonFeatureDisabled)}
	}
	switch status {
	case StatusUnsubscribed:
		return Decision{Outcome: Skip(ReasonUserOptedOut)}
	case StatusSubscribed:
		return Decision{Outcome: Skip(ReasonAlreadySubscribed)}
	case StatusAbsent:
		return Decision{Subscribe: true, Outcome: SubscribedOutcome()}
	default:
		return Decision{Outcome: Skip(ReasonUnknownStatus)}
	}
}
