package handler

import (
	"net/http"
	"strings"
	"time"

	"pedidos/internal/apierror"
	"pedidos/internal/dto"
	"pedidos/internal/middleware"
	"pedidos/internal/service"

	"github.com/gin-gonic/gin"
)

const destinoPorDefecto = "/admin/"

type AuthHandler struct {
	svc    service.AuthService
	secure bool
}

// NewAuthHandler builds the login handler. secure marks the session cookie
// HTTPS-only.
func NewAuthHandler(svc service.AuthService, secure bool) *AuthHandler {
	return &AuthHandler{svc: svc, secure: secure}
}

// Formulario handles GET /login/.
func (h *AuthHandler) Formulario(c *gin.Context) {
	if middleware.GetSesion(c) != nil {
		c.Redirect(http.StatusFound, destinoSeguro(c.Query("next")))
		return
	}
	render(c, http.StatusOK, "login.html", gin.H{"Titulo": "Ingresar", "Next": c.Query("next")})
}

// Login handles POST /login/.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	_ = c.ShouldBind(&req)
	fallo := func(status int, msg string) {
		render(c, status, "login.html", gin.H{
			"Titulo":   "Ingresar",
			"Error":    msg,
			"Next":     req.Next,
			"Username": req.Username,
		})
	}
	if err := validate.Struct(&req); err != nil {
		fallo(http.StatusOK, "Ingresa usuario y contraseña.")
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		if _, ok := apierror.Status(err); ok {
			fallo(http.StatusOK, err.Error())
			return
		}
		_ = c.Error(err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieSesion, resp.Token, int(time.Until(resp.Expira).Seconds()), "/", "", h.secure, true)
	c.Redirect(http.StatusSeeOther, destinoSeguro(req.Next))
}

// Logout handles POST /logout/.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.CookieSesion); err == nil && token != "" {
		if err := h.svc.Logout(c.Request.Context(), token); err != nil {
			_ = c.Error(err)
			return
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieSesion, "", -1, "/", "", h.secure, true)
	setFlash(c, "Sesión cerrada.")
	c.Redirect(http.StatusSeeOther, "/")
}

// destinoSeguro only follows same-site relative paths after login.
func destinoSeguro(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, `/\`) {
		return destinoPorDefecto
	}
	return next
}
