package user

// Principal is the authenticated identity attached to a request by the
// token-verification middleware. Organizer ownership checks compare against
// UserID.
type Principal struct {
	UserID string
	Email  string
}
