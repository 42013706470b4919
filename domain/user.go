package domain

// IdentityUser is the identity provider's view of a user. It is the opaque
// identity record carried inside a session; the provider remains the source
// of truth for every field.
type IdentityUser struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	FirstName         string `json:"first_name,omitempty"`
	LastName          string `json:"last_name,omitempty"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}

// SessionRecord is the unit of authentication state. It only ever leaves
// server memory in sealed form; the plaintext record exists for the duration
// of a single request.
type SessionRecord struct {
	User         IdentityUser `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}
