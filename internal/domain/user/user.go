package user

import "strings"

// User is the subset of the auth service's "user" table this service touches.
// NewsletterStatus is a best-effort mirror of the mailing-list provider and is
// never read back as the source of truth.
type User struct {
	ID               string  `gorm:"column:id;primaryKey" json:"id"`
	Email            string  `gorm:"column:email" json:"email"`
	Name             string  `gorm:"column:name" json:"name"`
	NewsletterStatus *string `gorm:"column:newsletter_status" json:"newsletter_status,omitempty"`
}

func (User) TableName() string { return "user" }

const RoleAdmin = "admin"

// Session is the verified identity attached to a request.
type Session struct {
	UserID    string
	SessionID string
	Email     string
	Name      string
	Role      string
}

// Key identifies the session for once-per-session side effects.
func (s *Session) Key() string {
	if s == nil {
		return ""
	}
	return s.UserID + "-" + s.SessionID
}

func (s *Session) IsAdmin() bool {
	return s != nil && strings.EqualFold(s.Role, RoleAdmin)
}

// EmailMatches compares the session address with an already-normalized one.
func (s *Session) EmailMatches(normalized string) bool {
	return s != nil && normalized != "" && strings.ToLower(strings.TrimSpace(s.Email)) == normalized
}
