package widgetdomain

// Reason classifies a verification outcome.
type Reason string

const (
	ReasonNotFound        Reason = "domain_not_found"
	ReasonInactive        Reason = "domain_inactive"
	ReasonAuthorized      Reason = "authorized"
	ReasonValidationError Reason = "validation_error"
	// ReasonForced marks development hostnames that bypass the store.
	ReasonForced Reason = "forced"
)

// Result is the full verification tuple returned to widget clients. Both
// verifier modes resolve to this shape; any failure resolves to an
// unauthorized result rather than an error.
type Result struct {
	Authorized   bool   `json:"authorized"`
	DomainExists bool   `json:"domain_exists"`
	IsVerified   bool   `json:"is_verified"`
	Status       string `json:"status"`
	Message      string `json:"message"`
	Reason       Reason `json:"reason"`
}

// Unauthorized builds a fail-closed result.
func Unauthorized(reason Reason, message string) Result {
	return Result{
		Authorized: false,
		Message:    message,
		Reason:     reason,
	}
}
