package shared

// Owned is implemented by records scoped to a single user.
type Owned interface {
	OwnerID() string
}

// Authorize verifies that resource belongs to the acting user. Every
// mutating and reading entry point that touches a customer, invoice or
// payment goes through this check; the store itself never enforces it.
func Authorize(actorUserID string, resource Owned) error {
	if actorUserID == "" || resource == nil {
		return ErrForbidden
	}
	if resource.OwnerID() != actorUserID {
		return ErrForbidden
	}
	return nil
}
