package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/therabot/therabot/internal/api/dto"
	"github.com/therabot/therabot/internal/api/middleware"
	"github.com/therabot/therabot/internal/core/service"
)

const (
	msgInvalidBody    = "Invalid request body"
	msgAccountCreated = "Account created successfully"
	msgLoginOK        = "Login successful"
)

type AuthHandler struct {
	authService    *service.AuthService
	sessionService *service.SessionService
	cookie         middleware.SessionCookie
}

func NewAuthHandler(
	authService *service.AuthService,
	sessionService *service.SessionService,
	cookie middleware.SessionCookie,
) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		sessionService: sessionService,
		cookie:         cookie,
	}
}

// Signup handles POST /signup
//
//	@Summary	Create an account
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		dto.CredentialsRequest	true	"Credentials"
//	@Success	200		{object}	dto.Envelope
//	@Failure	400		{object}	dto.Envelope
//	@Failure	409		{object}	dto.Envelope
//	@Router		/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(service.NewError(service.KindInvalidInput, msgInvalidBody))
		return
	}

	if _, err := h.authService.Register(c.Request.Context(), req.Username, req.Password); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.Envelope{
		Success: true,
		Message: msgAccountCreated,
	})
}

// Signin handles POST /signin and starts a browser session on success.
//
//	@Summary	Sign in
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		dto.CredentialsRequest	true	"Credentials"
//	@Success	200		{object}	dto.Envelope
//	@Failure	400		{object}	dto.Envelope
//	@Failure	401		{object}	dto.Envelope
//	@Router		/signin [post]
func (h *AuthHandler) Signin(c *gin.Context) {
	var req dto.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(service.NewError(service.KindInvalidInput, msgInvalidBody))
		return
	}

	identity, err := h.authService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	token, err := h.sessionService.Issue(identity)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.cookie.Set(c, token)
	c.JSON(http.StatusOK, dto.Envelope{
		Success: true,
		Message: msgLoginOK,
	})
}

// Logout handles GET /logout
//
//	@Summary	End the browser session
//	@Tags		auth
//	@Success	302
//	@Router		/logout [get]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookie.Clear(c)
	c.Redirect(http.StatusFound, "/")
}
