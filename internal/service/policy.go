package service

import (
	"taskhub/internal/apperrors"
	"taskhub/internal/models"
)

// A caller is permitted when they own the resource, are an admin, or hold
// the specific privilege as a project member.

func canManageProject(p Principal, proj *models.Project) bool {
	return p.IsAdmin() || proj.OwnerID == p.UserID
}

func canAccessProject(p Principal, proj *models.Project) bool {
	return p.IsAdmin() || proj.HasMember(p.UserID)
}

func canChangeTaskStatus(p Principal, proj *models.Project, t *models.Task) bool {
	return canManageProject(p, proj) || t.CreatedBy == p.UserID || t.IsAssignedTo(p.UserID)
}

func canReassignTask(p Principal, proj *models.Project, t *models.Task) bool {
	return canManageProject(p, proj) || t.CreatedBy == p.UserID
}

func canAccessUser(p Principal, userID string) bool {
	return p.IsAdmin() || p.UserID == userID
}

func requireAdmin(p Principal) error {
	if !p.IsAdmin() {
		return apperrors.Forbidden("admin role required")
	}
	return nil
}
