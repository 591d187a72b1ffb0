package middleware

import (
	"context"
	"net/http"
	"net/url"

	"pedidos/internal/apierror"
	"pedidos/internal/dto"

	"github.com/gin-gonic/gin"
)

const (
	SesionKey    = "sesion"
	CookieSesion = "sesion"
)

// ValidadorSesion checks a session token. service.AuthService implements it.
type ValidadorSesion interface {
	ValidarSesion(ctx context.Context, token string) (*dto.Sesion, error)
}

// CargarSesion attaches the session, when the cookie carries a valid one,
// without requiring it. Pages use it to show the staff menu.
func CargarSesion(v ValidadorSesion) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(CookieSesion); err == nil && token != "" {
			if s, err := v.ValidarSesion(c.Request.Context(), token); err == nil {
				c.Set(SesionKey, s)
			}
		}
		c.Next()
	}
}

// SesionRequerida sends anonymous users to the login page, remembering where
// they were going. API requests get a 401 instead.
func SesionRequerida() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetSesion(c) != nil {
			c.Next()
			return
		}
		if EsAPI(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
			return
		}
		c.Redirect(http.StatusFound, "/login/?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// SoloStaff rejects authenticated users without the staff flag. It must run
// after SesionRequerida.
func SoloStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := GetSesion(c)
		if s != nil && s.EsStaff {
			c.Next()
			return
		}
		if EsAPI(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permisos insuficientes"))
			return
		}
		c.HTML(http.StatusForbidden, "error.html", gin.H{
			"Titulo":  "Acceso denegado",
			"Status":  http.StatusForbidden,
			"Mensaje": "Tu cuenta no tiene permisos de administración.",
			"Sesion":  s,
		})
		c.Abort()
	}
}

// GetSesion returns the session loaded by CargarSesion, or nil.
func GetSesion(c *gin.Context) *dto.Sesion {
	v, ok := c.Get(SesionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*dto.Sesion)
	return s
}
