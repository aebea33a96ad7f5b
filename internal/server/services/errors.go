package services

// Error is a failure the client must see by its "auth/..." code.
type Error struct {
	Code string
}

func (e *Error) Error() string {
	return e.Code
}

func codeError(code string) error {
	return &Error{Code: code}
}
