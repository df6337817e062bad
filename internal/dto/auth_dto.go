package dto

import "github.com/golang-jwt/jwt/v5"

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// RegisterResponse confirms a successful registration.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// LoginRequest is the request body for credential login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// UserResponse is the current user's profile.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthClaims is the JWT claim set. The subject claim holds the user id.
type AuthClaims struct {
	jwt.RegisteredClaims
}
