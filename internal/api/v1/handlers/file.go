package handlers

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskhub/internal/apperrors"
	"taskhub/internal/service"
	"taskhub/pkg/logger"
)

// UploadAvatar accepts a multipart "avatar" file and stores it as the
// caller's profile picture.
func (h *Handler) UploadAvatar(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		logger.ErrorLogger.Error("Error uploading file", zap.Error(err))
		return apperrors.Validation("avatar", "required", "avatar file is required")
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	user, err := h.svc.Users.UploadAvatar(c.UserContext(), p, service.AvatarUpload{
		Filename:    file.Filename,
		ContentType: file.Header.Get(fiber.HeaderContentType),
		Size:        file.Size,
		Body:        src,
	})
	if err != nil {
		return err
	}

	logger.AuditLogger.Info("Profile picture uploaded", zap.String("user_id", user.ID))
	return respond(c, fiber.StatusOK, "Profile picture uploaded successfully", user)
}

// GetFile serves a locally stored upload.
func (h *Handler) GetFile(c *fiber.Ctx) error {
	if h.deps.Uploads == nil {
		return apperrors.NotFound("file", "")
	}
	filename := c.Params("filename")
	filePath, ok := h.deps.Uploads.Path(filename)
	if !ok {
		return apperrors.NotFound("file", filename)
	}
	if _, err := os.Stat(filePath); err != nil {
		return apperrors.NotFound("file", filename)
	}
	return c.SendFile(filePath)
}
