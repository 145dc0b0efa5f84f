package domain

// RequestContext identifies the acting caller for one request. It is built
// once by the auth boundary and passed read-only into every core operation;
// it must never be cached across requests.
type RequestContext struct {
	UserID   string
	TenantID string
	Role     string
}

// Actor returns the audit actor, falling back to "system" for calls that
// happen outside an authenticated request (seeding, maintenance jobs).
func (rc RequestContext) Actor() string {
	if rc.UserID == "" {
		return "system"
	}
	return rc.UserID
}
