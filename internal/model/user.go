package model

// User represents a registered user
type User struct {
	ID           int    `json:"id" db:"id"`
	FullName     string `json:"full_name" db:"full_name"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password_hash"` // never serialized
}

// Identity is the authenticated caller resolved from a bearer token.
// It deliberately carries nothing beyond id and username.
type Identity struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// SignUpRequest represents the registration request body
type SignUpRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignInRequest represents the login request body
type SignInRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents the login response
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
