package models

// User is the signed-in identity as seen by the client. It is derived from
// the identity provider's account and never edited locally.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
