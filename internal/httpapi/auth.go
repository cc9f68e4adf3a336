package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jjc-attendance/internal/apperror"
	"jjc-attendance/internal/auth"
	"jjc-attendance/internal/locale"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User      auth.Identity `json:"user"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	_ = c.ShouldBindJSON(&req)

	id, err := s.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(c, err, "auth.loginFailed")
		return
	}
	if err := auth.SetLoginUser(c, id); err != nil {
		s.fail(c, apperror.Wrap(apperror.Internal, "auth.loginFailed", err), "")
		return
	}
	tok, err := auth.Issue(id, s.cfg.JWTIssuer, s.cfg.JWTSigningKey, s.cfg.AccessTTL)
	if err != nil {
		s.fail(c, apperror.Wrap(apperror.Internal, "auth.loginFailed", err), "")
		return
	}
	c.JSON(http.StatusOK, loginResponse{User: id, Token: tok.AccessToken, ExpiresAt: tok.ExpiresAt})
}

// me answers with the stored account behind the session, so renames show up
// and removed or deactivated accounts read as logged out.
func (s *Server) me(c *gin.Context) {
	id := auth.Current(c)
	if id == nil {
		message(c, http.StatusUnauthorized, "auth.notLoggedIn")
		return
	}
	u, err := s.users.Get(c.Request.Context(), id.ID)
	if apperror.IsKind(err, apperror.NotFound) || (err == nil && !u.Active) {
		message(c, http.StatusUnauthorized, "auth.notLoggedIn")
		return
	}
	if err != nil {
		s.fail(c, err, "server.internal")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u.Identity()})
}

func (s *Server) logout(c *gin.Context) {
	if err := auth.ClearSession(c); err != nil {
		s.fail(c, apperror.Wrap(apperror.Internal, "server.internal", err), "")
		return
	}
	message(c, http.StatusOK, "auth.logoutOK")
}

type registerRequest struct {
	AdminSecret string `json:"adminSecret"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	_ = c.ShouldBindJSON(&req)

	u, err := s.users.Register(c.Request.Context(), req.AdminSecret, req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		s.fail(c, err, "auth.registerFailed")
		return
	}
	c.JSON(http.StatusCreated, u.Identity())
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (s *Server) changePassword(c *gin.Context) {
	var req changePasswordRequest
	_ = c.ShouldBindJSON(&req)

	if err := s.users.ChangePassword(c.Request.Context(), auth.Current(c), req.OldPassword, req.NewPassword); err != nil {
		s.fail(c, err, "user.changePasswordFailed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": locale.FromContext(c).Message("user.passwordChanged")})
}
