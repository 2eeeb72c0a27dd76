// Package service holds the business rules of every resource: input
// validation, the authorization policy, referential checks and the
// notification side effects of task and comment writes.
package service

import (
	"time"

	"taskhub/internal/models"
	"taskhub/internal/repository"
	"taskhub/internal/session"
	"taskhub/internal/validation"
	"taskhub/pkg/storage"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID    string
	Role      models.Role
	TokenID   string
	ExpiresAt time.Time
}

func (p Principal) IsAdmin() bool { return p.Role == models.RoleAdmin }

// Publisher pushes a payload to the live connections of one user.
type Publisher interface {
	Publish(userID string, payload any)
}

type Config struct {
	JWTSecret         []byte
	JWTTTL            time.Duration
	CommentEditWindow time.Duration
	RequireActivation bool
}

type Services struct {
	Auth          *AuthService
	Users         *UserService
	Projects      *ProjectService
	Tasks         *TaskService
	Comments      *CommentService
	Notifications *NotificationService
}

// New wires every service over the same store. avatars and publisher may be
// nil.
func New(store repository.Store, sessions session.Revoker, v *validation.Validator, avatars storage.AvatarStorage, publisher Publisher, cfg Config) *Services {
	if cfg.JWTTTL <= 0 {
		cfg.JWTTTL = 24 * time.Hour
	}
	if cfg.CommentEditWindow <= 0 {
		cfg.CommentEditWindow = 15 * time.Minute
	}
	notifications := &NotificationService{store: store, publisher: publisher, now: utcNow}
	return &Services{
		Auth: &AuthService{
			store:    store,
			sessions: sessions,
			validate: v,
			secret:   cfg.JWTSecret,
			ttl:      cfg.JWTTTL,
			now:      utcNow,
		},
		Users: &UserService{
			store:             store,
			validate:          v,
			avatars:           avatars,
			requireActivation: cfg.RequireActivation,
			now:               utcNow,
		},
		Projects:      &ProjectService{store: store, validate: v, now: utcNow},
		Tasks:         &TaskService{store: store, validate: v, notifications: notifications, now: utcNow},
		Comments:      &CommentService{store: store, validate: v, notifications: notifications, window: cfg.CommentEditWindow, now: utcNow},
		Notifications: notifications,
	}
}

func utcNow() time.Time { return time.Now().UTC() }
