package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/campustrack/attendance-backend-go/internal/domain/auth"
	"github.com/campustrack/attendance-backend-go/internal/domain/student"
	"github.com/campustrack/attendance-backend-go/internal/domain/user"
	"github.com/campustrack/attendance-backend-go/internal/pkg/database"
	"github.com/campustrack/attendance-backend-go/internal/pkg/jwt"
	"github.com/campustrack/attendance-backend-go/internal/pkg/oauth"
	"github.com/campustrack/attendance-backend-go/internal/repository/postgresql"
	"github.com/go-chi/jwtauth/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	db database.Transactor
	user.UserRepository
	student.StudentRepository
	jwt.Service
	postgresql.JWTRepository
	google oauth.GoogleService
}

func NewAuthService(
	db database.Transactor,
	userRepository user.UserRepository,
	studentRepository student.StudentRepository,
	jwtService jwt.Service,
	jwtRepository postgresql.JWTRepository,
	googleService oauth.GoogleService,
) auth.AuthService {
	return &AuthServiceImpl{
		db:                db,
		UserRepository:    userRepository,
		StudentRepository: studentRepository,
		Service:           jwtService,
		JWTRepository:     jwtRepository,
		google:            googleService,
	}
}

func (a *AuthServiceImpl) hashPassword(password string) (string, error) {
	if password == "" {
		return "", nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	hashed := string(hash)
	return hashed, nil
}

// generateStudentCode builds a fresh student code, retrying on the rare
// collision with an existing one.
func (a *AuthServiceImpl) generateStudentCode(ctx context.Context) (string, error) {
	year := time.Now().UTC().Year()

	for attempt := 0; attempt < 10; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10000))
		if err != nil {
			return "", fmt.Errorf("failed to generate student code: %w", err)
		}
		code := fmt.Sprintf("STU%d%04d", year, n.Int64())

		_, err = a.StudentRepository.GetByStudentCode(ctx, code)
		if err == student.ErrStudentNotFound {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check student code: %w", err)
		}
	}

	return "", student.ErrStudentCodeExists
}

func toUserResponse(u user.User) auth.UserResponse {
	return auth.UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        string(u.Role),
		StudentCode: u.StudentCode,
	}
}

// issueTokens generates the access/refresh pair and persists the
// refresh token, all inside one transaction.
func (a *AuthServiceImpl) issueTokens(ctx context.Context, userData user.User, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var tokenResponse auth.TokenResponse

	var studentID *string
	if userData.IsStudent() {
		studentData, err := a.StudentRepository.GetByUserID(ctx, userData.ID)
		if err == nil {
			studentID = &studentData.ID
		}
	}

	err := a.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		tokenResponse.AccessToken, tokenResponse.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(userData.ID, userData.Email, studentID, userData.Role)
		if err != nil {
			return fmt.Errorf("failed to create access token: %w", err)
		}
		tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, err = a.Service.GenerateRefreshToken(userData.ID)
		if err != nil {
			return fmt.Errorf("failed to create refresh token: %w", err)
		}

		err = a.CreateRefreshToken(txCtx, userData.ID, tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, sessionTrackReq)
		if err != nil {
			return fmt.Errorf("failed to save refresh token to database: %w", err)
		}
		return nil
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	tokenResponse.User = toUserResponse(userData)
	return tokenResponse, nil
}

// Register implements auth.AuthService.
func (a *AuthServiceImpl) Register(ctx context.Context, registerReq auth.RegisterRequest, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	// Check user already exist or not
	existing, err := a.UserRepository.GetByEmail(ctx, registerReq.Email)
	if err != nil && err != user.ErrUserNotFound {
		return auth.TokenResponse{}, fmt.Errorf("failed to get user data by email: %w", err)
	}
	if existing.ID != "" {
		return auth.TokenResponse{}, user.ErrUserEmailExists
	}

	hashedPassword, err := a.hashPassword(registerReq.Password)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	role := user.Role(registerReq.Role)

	var studentCode *string
	if role == user.RoleStudent {
		code, err := a.generateStudentCode(ctx)
		if err != nil {
			return auth.TokenResponse{}, err
		}
		studentCode = &code
	}

	var newUser user.User
	err = a.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		newUser, err = a.UserRepository.Create(txCtx, user.User{
			Name:         registerReq.Name,
			Email:        registerReq.Email,
			PasswordHash: &hashedPassword,
			Role:         role,
			StudentCode:  studentCode,
			IsActive:     true,
		})
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		if role == user.RoleStudent {
			_, err = a.StudentRepository.Create(txCtx, student.Student{
				UserID:      newUser.ID,
				StudentCode: *studentCode,
				Department:  registerReq.Department,
				Year:        registerReq.Year,
				PhoneNumber: registerReq.PhoneNumber,
			})
			if err != nil {
				return fmt.Errorf("failed to create student profile: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	return a.issueTokens(ctx, newUser, sessionTrackReq)
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, loginReq auth.LoginRequest, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	userData, err := a.UserRepository.GetByEmail(ctx, loginReq.Email)
	if err != nil {
		if err == user.ErrUserNotFound {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if userData.PasswordHash == nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*userData.PasswordHash), []byte(loginReq.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if !userData.IsActive {
		return auth.TokenResponse{}, user.ErrAccountDeactivated
	}

	if sessionTrackReq.UserAgent != "" {
		userData.LastLoginDevice = &sessionTrackReq.UserAgent
		if err := a.UserRepository.Update(ctx, userData); err != nil {
			return auth.TokenResponse{}, fmt.Errorf("failed to update last login device: %w", err)
		}
	}

	return a.issueTokens(ctx, userData, sessionTrackReq)
}

// LoginWithGoogle implements auth.AuthService. First-time Google users
// get a student account with a generated student code.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, code string, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if a.google == nil {
		return auth.TokenResponse{}, auth.ErrOAuthNotConfigured
	}

	oauthToken, err := a.google.Exchange(ctx, code)
	if err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	info, err := a.google.FetchProfile(ctx, oauthToken)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to fetch google profile: %w", err)
	}
	if !info.VerifiedEmail {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	provider := "google"
	userData, err := a.UserRepository.GetByOAuth(ctx, provider, info.GoogleID)
	if err == user.ErrUserNotFound {
		userData, err = a.UserRepository.GetByEmail(ctx, info.Email)
	}
	if err != nil && err != user.ErrUserNotFound {
		return auth.TokenResponse{}, fmt.Errorf("failed to look up google user: %w", err)
	}

	if userData.ID == "" {
		studentCode, err := a.generateStudentCode(ctx)
		if err != nil {
			return auth.TokenResponse{}, err
		}

		err = a.db.WithinTransaction(ctx, func(txCtx context.Context) error {
			userData, err = a.UserRepository.Create(txCtx, user.User{
				Name:            info.Name,
				Email:           info.Email,
				Role:            user.RoleStudent,
				StudentCode:     &studentCode,
				OAuthProvider:   &provider,
				OAuthProviderID: &info.GoogleID,
				IsActive:        true,
			})
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			_, err = a.StudentRepository.Create(txCtx, student.Student{
				UserID:      userData.ID,
				StudentCode: studentCode,
			})
			if err != nil {
				return fmt.Errorf("failed to create student profile: %w", err)
			}
			return nil
		})
		if err != nil {
			return auth.TokenResponse{}, err
		}
	} else if userData.OAuthProvider == nil {
		// Existing password account; link the google identity
		userData.OAuthProvider = &provider
		userData.OAuthProviderID = &info.GoogleID
		if err := a.UserRepository.Update(ctx, userData); err != nil {
			return auth.TokenResponse{}, fmt.Errorf("failed to link google account: %w", err)
		}
	}

	if !userData.IsActive {
		return auth.TokenResponse{}, user.ErrAccountDeactivated
	}

	return a.issueTokens(ctx, userData, sessionTrackReq)
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context) (auth.UserResponse, error) {
	userID, err := userIDFromClaims(ctx)
	if err != nil {
		return auth.UserResponse{}, err
	}

	userData, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		return auth.UserResponse{}, err
	}

	return toUserResponse(userData), nil
}

// UpdateProfile implements auth.AuthService.
func (a *AuthServiceImpl) UpdateProfile(ctx context.Context, req auth.UpdateProfileRequest) (auth.UserResponse, error) {
	userID, err := userIDFromClaims(ctx)
	if err != nil {
		return auth.UserResponse{}, err
	}

	userData, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		return auth.UserResponse{}, err
	}

	if req.Name != nil {
		userData.Name = *req.Name
	}
	if req.Email != nil && *req.Email != userData.Email {
		existing, err := a.UserRepository.GetByEmail(ctx, *req.Email)
		if err != nil && err != user.ErrUserNotFound {
			return auth.UserResponse{}, fmt.Errorf("failed to check email: %w", err)
		}
		if existing.ID != "" {
			return auth.UserResponse{}, user.ErrUserEmailExists
		}
		userData.Email = *req.Email
	}
	if req.LastLoginDevice != nil {
		userData.LastLoginDevice = req.LastLoginDevice
	}

	if err := a.UserRepository.Update(ctx, userData); err != nil {
		return auth.UserResponse{}, fmt.Errorf("failed to update profile: %w", err)
	}

	return toUserResponse(userData), nil
}

// ChangePassword implements auth.AuthService.
func (a *AuthServiceImpl) ChangePassword(ctx context.Context, req auth.ChangePasswordRequest) error {
	userID, err := userIDFromClaims(ctx)
	if err != nil {
		return err
	}

	userData, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if userData.PasswordHash == nil {
		return auth.ErrWrongCurrentPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*userData.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return auth.ErrWrongCurrentPassword
	}

	hashedPassword, err := a.hashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return a.UserRepository.UpdatePassword(ctx, userID, hashedPassword)
}

// RefreshToken implements auth.AuthService. The refresh token rotates:
// the presented one is revoked and a fresh pair is issued.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, refreshToken string, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	userID, err := a.Service.DecodeRefreshToken(refreshToken)
	if err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}

	revoked, err := a.JWTRepository.IsRefreshTokenRevoked(ctx, refreshToken)
	if err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}
	if revoked {
		return auth.TokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	userData, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		return auth.TokenResponse{}, auth.ErrUserNotFound
	}
	if !userData.IsActive {
		return auth.TokenResponse{}, user.ErrAccountDeactivated
	}

	if err := a.JWTRepository.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return a.issueTokens(ctx, userData, sessionTrackReq)
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	err := a.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := a.JWTRepository.RevokeRefreshToken(txCtx, refreshToken); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	a.Service.RevokeToken(refreshToken)
	return nil
}

// userIDFromClaims extracts the authenticated user ID from the verified
// JWT claims the auth middleware placed in the context.
func userIDFromClaims(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", auth.ErrInvalidToken
	}
	return userID, nil
}
