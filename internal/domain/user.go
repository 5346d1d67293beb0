package domain

import "time"

// User is an authenticated account able to act on cases. Accounts are
// provisioned externally; this record mirrors what the engine needs for
// responsibility resolution and audit trails.
type User struct {
	ID        string
	Username  string
	FullName  string
	Email     string
	IsStaff   bool
	CreatedAt time.Time
}

// DisplayName returns the full name when set, falling back to the username.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// Lawyer links a user account to the "responsible lawyer" role a case
// can be assigned to.
type Lawyer struct {
	ID     string
	UserID string
}
