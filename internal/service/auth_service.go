package service

import (
	"context"
	"time"

	"stockroom/internal/apierror"
	"stockroom/internal/config"
	"stockroom/internal/dto"
	"stockroom/internal/model"
	"stockroom/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	// Register creates an inactive user account awaiting manager approval.
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error)
	// Login authenticates email+password against the given role. A matching
	// but not-yet-approved account yields ErrPendingApproval, not a session.
	Login(ctx context.Context, role model.Role, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	ListUsers(ctx context.Context, managerID *uuid.UUID) ([]dto.UserResponse, error)
	// ApproveUser activates a pending account. Approving an already active
	// account is a no-op.
	ApproveUser(ctx context.Context, id uuid.UUID) error
	// RejectUser deletes the account. Deletion is blocked while orders or
	// sales still reference the user.
	RejectUser(ctx context.Context, id uuid.UUID) error
}

type authService struct {
	users  repository.UserRepository
	orders repository.OrderRepository
	sales  repository.SaleRepository
	cfg    *config.Config
}

func NewAuthService(users repository.UserRepository, orders repository.OrderRepository, sales repository.SaleRepository, cfg *config.Config) AuthService {
	return &authService{users: users, orders: orders, sales: sales, cfg: cfg}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error) {
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, apierror.ErrDuplicateEmail
	}

	var managerID *uuid.UUID
	if req.ManagerID != nil {
		mid, err := uuid.Parse(*req.ManagerID)
		if err != nil {
			return nil, apierror.ErrNotFound
		}
		// The limit only applies when the manager actually exists.
		if _, err := s.users.FindByID(ctx, mid); err == nil {
			n, err := s.users.CountByManager(ctx, mid)
			if err != nil {
				return nil, err
			}
			if n >= int64(s.cfg.UserLimit) {
				return nil, apierror.ErrCapacityExceeded
			}
			managerID = &mid
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		ManagerID:    managerID,
		Active:       false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return userToResponse(user), nil
}

func (s *authService) Login(ctx context.Context, role model.Role, req dto.LoginRequest) (*dto.LoginResponse, error) {
	if !role.Valid() {
		return nil, apierror.ErrInvalidCredentials
	}
	user, err := s.users.FindByEmailAndRole(ctx, req.Email, role)
	if err != nil {
		return nil, apierror.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apierror.ErrInvalidCredentials
	}
	// Correct credentials but the account has not been approved yet.
	if !user.Active {
		return nil, apierror.ErrPendingApproval
	}
	return s.buildLoginResponse(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apierror.ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apierror.ErrInvalidCredentials
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, apierror.ErrInvalidCredentials
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, apierror.ErrInvalidCredentials
	}

	user, err := s.users.FindByID(ctx, uid)
	if err != nil || !user.Active {
		return nil, apierror.ErrInvalidCredentials
	}
	return s.buildLoginResponse(user)
}

func (s *authService) ListUsers(ctx context.Context, managerID *uuid.UUID) ([]dto.UserResponse, error) {
	users, err := s.users.List(ctx, managerID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UserResponse, len(users))
	for i := range users {
		resp[i] = *userToResponse(&users[i])
	}
	return resp, nil
}

func (s *authService) ApproveUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return apierror.ErrNotFound
	}
	if user.Active {
		return nil // idempotent
	}
	return s.users.Activate(ctx, id)
}

func (s *authService) RejectUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return apierror.ErrNotFound
	}
	nOrders, err := s.orders.CountByUser(ctx, id)
	if err != nil {
		return err
	}
	nSales, err := s.sales.CountByUser(ctx, id)
	if err != nil {
		return err
	}
	if nOrders > 0 || nSales > 0 {
		return apierror.ErrReferenced
	}
	return s.users.Delete(ctx, id)
}

func (s *authService) buildLoginResponse(user *model.User) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         *userToResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.User, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      time.Now().Add(duration).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func userToResponse(u *model.User) *dto.UserResponse {
	var managerID *string
	if u.ManagerID != nil {
		mid := u.ManagerID.String()
		managerID = &mid
	}
	return &dto.UserResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		ManagerID: managerID,
		Active:    u.Active,
	}
}
