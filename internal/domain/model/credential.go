package model

// Credential holds the admin session token issued by the signup service's
// login endpoint. A zero Credential means no admin session.
type Credential struct {
	Value string
}

// Present reports whether the credential carries a token.
func (c Credential) Present() bool {
	return c.Value != ""
}
