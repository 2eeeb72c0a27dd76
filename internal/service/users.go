package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/apperrors"
	"taskhub/internal/models"
	"taskhub/internal/repository"
	"taskhub/internal/validation"
	"taskhub/pkg/crypto"
	"taskhub/pkg/storage"
)

// MaxAvatarSize is the largest accepted avatar upload.
const MaxAvatarSize = 5 << 20

type UserService struct {
	store             repository.Store
	validate          *validation.Validator
	avatars           storage.AvatarStorage
	requireActivation bool
	now               func() time.Time
}

type RegisterInput struct {
	Email     string      `json:"email" validate:"required,email,max=254"`
	Password  string      `json:"password" validate:"required,min=6,max=72"`
	FirstName string      `json:"firstName" validate:"required,max=100"`
	LastName  string      `json:"lastName" validate:"required,max=100"`
	Role      models.Role `json:"role" validate:"omitempty,role"`
}

// UpdateUserInput lists the only fields a user update may touch. Nil fields
// are left unchanged.
type UpdateUserInput struct {
	FirstName *string      `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName  *string      `json:"lastName" validate:"omitempty,min=1,max=100"`
	Avatar    *string      `json:"avatar" validate:"omitempty,max=500"`
	Role      *models.Role `json:"role" validate:"omitempty,role"`
	IsActive  *bool        `json:"isActive"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

type AvatarUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Register creates an account. caller is nil for anonymous sign-ups; only an
// authenticated admin may create another admin.
func (s *UserService) Register(ctx context.Context, caller *Principal, in RegisterInput) (*models.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if in.Role == models.RoleAdmin && (caller == nil || !caller.IsAdmin()) {
		return nil, apperrors.Forbidden("only an admin can create admin accounts")
	}

	hashed, err := crypto.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:     in.Email,
		Password:  hashed,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Role:      in.Role,
		IsActive:  !s.requireActivation || (caller != nil && caller.IsAdmin()),
	}
	user.ApplyDefaults(s.now())

	if err := s.store.Users().Create(ctx, user); err != nil {
		var conflict *apperrors.ConflictError
		if errors.As(err, &conflict) {
			return nil, apperrors.Conflict("email %s is already registered", user.Email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// EnsureAdmin creates an active admin account for email unless one exists.
// It reports whether an account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	_, err := s.store.Users().GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	var nf *apperrors.NotFoundError
	if !errors.As(err, &nf) {
		return false, fmt.Errorf("lookup admin: %w", err)
	}

	admin := Principal{Role: models.RoleAdmin}
	_, err = s.Register(ctx, &admin, RegisterInput{
		Email:     email,
		Password:  password,
		FirstName: "Admin",
		LastName:  "User",
		Role:      models.RoleAdmin,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *UserService) Get(ctx context.Context, p Principal, id string) (*models.User, error) {
	if !canAccessUser(p, id) {
		return nil, apperrors.Forbidden("cannot view another user")
	}
	return s.store.Users().GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, p Principal) ([]models.User, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	return s.store.Users().List(ctx)
}

func (s *UserService) Update(ctx context.Context, p Principal, id string, in UpdateUserInput) (*models.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if !canAccessUser(p, id) {
		return nil, apperrors.Forbidden("cannot update another user")
	}
	if (in.Role != nil || in.IsActive != nil) && !p.IsAdmin() {
		return nil, apperrors.Forbidden("only an admin can change role or isActive")
	}

	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Avatar != nil {
		avatar := *in.Avatar
		user.Avatar = &avatar
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	user.UpdatedAt = s.now()

	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, p Principal, id string, in ChangePasswordInput) error {
	if err := s.validate.Struct(in); err != nil {
		return err
	}
	if p.UserID != id {
		return apperrors.Forbidden("cannot change another user's password")
	}
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := crypto.ComparePassword(user.Password, in.CurrentPassword); err != nil {
		if errors.Is(err, crypto.ErrMismatch) {
			return apperrors.Unauthenticated("current password is incorrect")
		}
		return fmt.Errorf("compare password: %w", err)
	}

	hashed, err := crypto.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = hashed
	user.UpdatedAt = s.now()
	if err := s.store.Users().Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

var allowedAvatarExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// UploadAvatar stores a jpg or png image for the caller and records the
// returned reference on the user.
func (s *UserService) UploadAvatar(ctx context.Context, p Principal, up AvatarUpload) (*models.User, error) {
	if s.avatars == nil {
		return nil, fmt.Errorf("avatar storage is not configured")
	}
	if up.Size > MaxAvatarSize {
		return nil, apperrors.Validation("avatar", "max", "avatar must be at most 5MB")
	}
	ext := strings.ToLower(filepath.Ext(up.Filename))
	if !allowedAvatarExts[ext] {
		return nil, apperrors.Validation("avatar", "ext", "avatar must be a .jpg or .png file")
	}
	if !strings.HasPrefix(up.ContentType, "image/") {
		return nil, apperrors.Validation("avatar", "contentType", "avatar must be an image")
	}

	user, err := s.store.Users().GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	ref, err := s.avatars.Save(ctx, uuid.NewString()+ext, up.ContentType, up.Body)
	if err != nil {
		return nil, fmt.Errorf("save avatar: %w", err)
	}
	user.Avatar = &ref
	user.UpdatedAt = s.now()
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, p Principal, id string) error {
	if !canAccessUser(p, id) {
		return apperrors.Forbidden("cannot delete another user")
	}
	return s.store.Users().Delete(ctx, id)
}
