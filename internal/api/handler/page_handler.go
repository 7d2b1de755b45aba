package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/therabot/therabot/internal/api/middleware"
)

// PageHandler renders the HTML pages.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

func (h *PageHandler) Home(c *gin.Context) {
	h.render(c, "index.html", "Welcome")
}

func (h *PageHandler) SigninPage(c *gin.Context) {
	h.render(c, "signin.html", "Sign in")
}

func (h *PageHandler) SignupPage(c *gin.Context) {
	h.render(c, "signup.html", "Sign up")
}

// ChatPage is only reachable through middleware.RequirePage.
func (h *PageHandler) ChatPage(c *gin.Context) {
	h.render(c, "chat.html", "Chat")
}

func (h *PageHandler) render(c *gin.Context, page, title string) {
	data := gin.H{"Title": title}
	if identity, ok := middleware.GetIdentity(c); ok {
		data["Username"] = identity.Username
	}
	c.HTML(http.StatusOK, page, data)
}
