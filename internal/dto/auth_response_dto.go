package dto

// LoginResponse represents the response for a successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// RegisterResponse represents the response for a successful registration.
// The provisioned account is returned alongside the new user.
type RegisterResponse struct {
	User    UserResponse    `json:"user"`
	Account AccountResponse `json:"account"`
}
