package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jjc-attendance/internal/auth"
	"jjc-attendance/internal/identity"
	"jjc-attendance/internal/locale"
)

type userResponse struct {
	identity.User
	TempPassword string `json:"tempPassword,omitempty"`
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.users.List(c.Request.Context())
	if err != nil {
		s.fail(c, err, "user.listFailed")
		return
	}
	c.JSON(http.StatusOK, users)
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *Server) createUser(c *gin.Context) {
	var req createUserRequest
	_ = c.ShouldBindJSON(&req)

	u, temp, err := s.users.Create(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		s.fail(c, err, "user.createFailed")
		return
	}
	c.JSON(http.StatusCreated, userResponse{User: u, TempPassword: temp})
}

type updateUserRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Role   *string `json:"role"`
	Active *bool   `json:"active"`
}

func (s *Server) updateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "auth.incomplete")
		return
	}
	u, err := s.users.Update(c.Request.Context(), c.Param("id"), identity.Patch{
		Name:   req.Name,
		Email:  req.Email,
		Role:   req.Role,
		Active: req.Active,
	})
	if err != nil {
		s.fail(c, err, "user.updateFailed")
		return
	}
	c.JSON(http.StatusOK, u)
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

func (s *Server) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	_ = c.ShouldBindJSON(&req)

	temp, err := s.users.ResetPassword(c.Request.Context(), c.Param("id"), req.NewPassword)
	if err != nil {
		s.fail(c, err, "user.resetFailed")
		return
	}
	body := gin.H{"message": locale.FromContext(c).Message("user.passwordReset")}
	if temp != "" {
		body["tempPassword"] = temp
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) deleteUser(c *gin.Context) {
	if err := s.users.Delete(c.Request.Context(), auth.Current(c), c.Param("id")); err != nil {
		s.fail(c, err, "user.deleteFailed")
		return
	}
	message(c, http.StatusOK, "user.deleted")
}
