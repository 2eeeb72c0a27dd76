package config

import (
	"taskhub/configs"
	"taskhub/internal/repository"
	"taskhub/internal/service"
	"taskhub/internal/session"
	"taskhub/internal/validation"
	"taskhub/internal/websocket"
	"taskhub/pkg/storage"
)

// Dependencies is everything the HTTP layer needs, built once at startup and
// passed down explicitly.
type Dependencies struct {
	Config    configs.Config
	Store     repository.Store
	Sessions  session.Revoker
	Validator *validation.Validator
	Avatars   storage.AvatarStorage
	// Uploads serves locally stored avatars; nil when avatars live in S3.
	Uploads  *storage.LocalStorage
	Hub      *websocket.Hub
	Services *service.Services
}

// NewDependencies builds the validator and services on top of the given
// infrastructure.
func NewDependencies(cfg configs.Config, store repository.Store, sessions session.Revoker, avatars storage.AvatarStorage, hub *websocket.Hub) *Dependencies {
	v := validation.New()
	deps := &Dependencies{
		Config:    cfg,
		Store:     store,
		Sessions:  sessions,
		Validator: v,
		Avatars:   avatars,
		Hub:       hub,
	}
	if local, ok := avatars.(*storage.LocalStorage); ok {
		deps.Uploads = local
	}

	var publisher service.Publisher
	if hub != nil {
		publisher = hub
	}
	deps.Services = service.New(store, sessions, v, avatars, publisher, service.Config{
		JWTSecret:         []byte(cfg.JWTSecret),
		JWTTTL:            cfg.JWTTTL,
		CommentEditWindow: cfg.CommentEditWindow,
		RequireActivation: cfg.RequireActivation,
	})
	return deps
}
