package errs

// Error categories shared by every layer. Sentinels are marked with exactly one
// category so the transport layer can choose a status code from the category
// alone when it does not know the sentinel.
var (
	ErrValidation    = New("validation failed")
	ErrUnauthorized  = New("unauthorized")
	ErrForbidden     = New("forbidden")
	ErrNotFound      = New("not found")
	ErrStateConflict = New("state conflict")
	ErrExternal      = New("external dependency failure")
	ErrIntegrity     = New("integrity check failed")
)

func Validation(msg string) error {
	return Mark(New(msg), ErrValidation)
}

func Unauthorized(msg string) error {
	return Mark(New(msg), ErrUnauthorized)
}

func Forbidden(msg string) error {
	return Mark(New(msg), ErrForbidden)
}

func NotFound(msg string) error {
	return Mark(New(msg), ErrNotFound)
}

func Conflict(msg string) error {
	return Mark(New(msg), ErrStateConflict)
}

func External(msg string) error {
	return Mark(New(msg), ErrExternal)
}

func Integrity(msg string) error {
	return Mark(New(msg), ErrIntegrity)
}

// CategoryOf returns the category sentinel err was marked with, or nil.
func CategoryOf(err error) error {
	for _, c := range []error{ErrValidation, ErrUnauthorized, ErrForbidden, ErrNotFound, ErrStateConflict, ErrExternal, ErrIntegrity} {
		if Is(err, c) {
			return c
		}
	}
	return nil
}
