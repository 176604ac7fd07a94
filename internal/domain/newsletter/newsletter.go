package newsletter

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ContactStatus is the status reported by the mailing-list provider. The
// empty value means the contact is not on the list at all.
type ContactStatus string

const (
	StatusAbsent       ContactStatus = ""
	StatusSubscribed   ContactStatus = "SUBSCRIBED"
	StatusUnsubscribed ContactStatus = "UNSUBSCRIBED"
	StatusPending      ContactStatus = "PENDING"
)

// Source tags attached to new contacts.
const (
	SourceLoginAutoSubscribe = "auth_login_auto_subscribe"
	SourceSubscribeForm      = "subscribe_form"
)

// Local mirror values of user.newsletter_status.
const (
	MirrorSubscribed   = "subscribed"
	MirrorUnsubscribed = "unsubscribed"
)

var (
	ErrInvalidEmail      = errors.New("valid email required")
	ErrAlreadySubscribed = errors.New("already subscribed")
	ErrSpamDetected      = errors.New("spam detected")
	ErrRateLimited       = errors.New("rate limited")
)

// UIStatus maps a provider status to the value templates show. Anything but a
// definite subscribed/unsubscribed answer is unknown (nil).
func UIStatus(s ContactStatus) *string {
	var v string
	switch s {
	case StatusSubscribed:
		v = MirrorSubscribed
	case StatusUnsubscribed:
		v = MirrorUnsubscribed
	default:
		return nil
	}
	return &v
}

// SplitName splits a display name into a first token and the remainder.
func SplitName(name string) (first, last string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

var validate = validator.New()

// ValidEmail reports whether s is a syntactically valid address.
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 254 {
		return false
	}
	return validate.Var(s, "email") == nil
}

// NormalizeEmail trims and lowercases an address. Provider-specific rewrites
// (gmail dots, plus tags) are not applied; the list provider treats those as
// distinct contacts.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Contact is a new list member.
type Contact struct {
	Email     string
	FirstName string
	LastName  string
	Source    string
}

// SpamVerdict is the outcome of a spam lookup. Score is the provider's
// spam_rate in [0,1].
type SpamVerdict struct {
	IsSpam  bool
	Score   float64
	Message string
}
