package usercontext

// Shared Locals/session keys used across controllers and middlewares
const (
	AuthKey          = "authenticated"
	KeyUserID        = "user_id"
	KeyUsername      = "username"
	KeyIsAdmin       = "isAdmin"
	KeyFromProtected = "from_protected"

	// KeyElevatedUntil stores the RFC3339 instant until which the session
	// counts as step-up verified.
	KeyElevatedUntil = "elevated_until"
)
