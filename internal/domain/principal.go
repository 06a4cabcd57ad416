package domain

// Principal is the authenticated caller as asserted by the identity provider.
type Principal struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
}

// Actor identifies who performs a workflow operation and the idempotency key
// that tags the history rows it writes.
type Actor struct {
	UserID         string
	IdempotencyKey string
}

func (a Actor) UserOrSystem() string {
	if a.UserID == "" {
		return SystemUser
	}
	return a.UserID
}
