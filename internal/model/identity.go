package model

// Identity is the authenticated principal recovered from a valid credential.
type Identity struct {
	UserID string
	Email  string
}
