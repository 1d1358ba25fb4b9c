package auth

import "context"

// AuthService defines business logic for account and session management
type AuthService interface {
	// Register creates a user account; student accounts also get a
	// student profile with a generated student code
	Register(ctx context.Context, req RegisterRequest, track SessionTrackingRequest) (TokenResponse, error)

	// Login authenticates with email and password
	Login(ctx context.Context, req LoginRequest, track SessionTrackingRequest) (TokenResponse, error)

	// LoginWithGoogle authenticates with a verified Google account
	LoginWithGoogle(ctx context.Context, code string, track SessionTrackingRequest) (TokenResponse, error)

	// Me returns the authenticated user's profile
	Me(ctx context.Context) (UserResponse, error)

	// UpdateProfile updates name, email and device metadata
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (UserResponse, error)

	// ChangePassword verifies the current password and sets a new one
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error

	// RefreshToken rotates the refresh token and issues a new access token
	RefreshToken(ctx context.Context, refreshToken string, track SessionTrackingRequest) (TokenResponse, error)

	// Logout revokes the refresh token
	Logout(ctx context.Context, refreshToken string) error
}
