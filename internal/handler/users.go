package handler

import (
	"net/http"

	"stockroom/internal/apierror"
	"stockroom/internal/middleware"
	"stockroom/internal/model"
	"stockroom/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UsersHandler struct{ svc service.AuthService }

func NewUsersHandler(svc service.AuthService) *UsersHandler { return &UsersHandler{svc: svc} }

// List godoc
// @Summary      List user accounts
// @Description  Managers see the users registered under them; admins see everyone.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.UserResponse
// @Router       /v1/users [get]
func (h *UsersHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	var managerID *uuid.UUID
	if model.Role(claims.Role) == model.RoleManager {
		mid, err := uuid.Parse(claims.UserID)
		if err == nil {
			managerID = &mid
		}
	}
	resp, err := h.svc.ListUsers(c.Request.Context(), managerID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Approve godoc
// @Summary      Approve a pending registration
// @Description  Activates the account. Approving an already active account is a no-op.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/users/{id}/approve [post]
func (h *UsersHandler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	if err := h.svc.ApproveUser(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reject godoc
// @Summary      Reject a registration
// @Description  Deletes the account. Blocked with 409 while orders or sales still reference the user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User UUID"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/users/{id} [delete]
func (h *UsersHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	if err := h.svc.RejectUser(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
