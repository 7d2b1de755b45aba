package dto

// CredentialsRequest is the body of POST /signup and POST /signin.
// Presence and length rules are enforced by the auth service so that both
// endpoints report the same messages.
type CredentialsRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"secret1"`
}
