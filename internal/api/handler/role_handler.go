package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sandwichproject/admin-api/internal/core/domain"
)

// RoleHandler exposes the static role table.
type RoleHandler struct{}

func NewRoleHandler() *RoleHandler {
	return &RoleHandler{}
}

// List handles GET /api/roles.
//
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   roleResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	roles := domain.Roles()
	resp := make([]roleResponse, 0, len(roles))
	for _, r := range roles {
		resp = append(resp, roleResponse{
			Role:        r,
			DisplayName: r.DisplayName(),
			Permissions: domain.DefaultPermissionsForRole(r),
		})
	}
	return c.JSON(http.StatusOK, resp)
}
