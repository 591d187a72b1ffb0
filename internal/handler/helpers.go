package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/mail"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"pedidos/internal/apierror"
	"pedidos/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func init() {
	// Report JSON field names instead of Go ones.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	// A non-nil *string holding "" passes omitempty and reaches these checks;
	// "" means "clear the value" and is accepted.
	_ = validate.RegisterValidation("email_opcional", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		a, err := mail.ParseAddress(s)
		return err == nil && a.Address == s
	})
	_ = validate.RegisterValidation("fecha_opcional", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := time.Parse("2006-01-02", s)
		return err == nil
	})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return validar(c, req)
}

// bindConNulos is bindAndValidate for bodies where an explicit null differs
// from an absent key. It returns the keys sent as null.
func bindConNulos(c *gin.Context, req interface{}) (map[string]bool, bool) {
	if err := c.ShouldBindBodyWith(req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return nil, false
	}
	if !validar(c, req) {
		return nil, false
	}
	body, _ := c.Get(gin.BodyBytesKey)
	raw, _ := body.([]byte)
	return camposNulos(raw), true
}

// camposNulos lists the top-level keys of a JSON object whose value is null.
func camposNulos(body []byte) map[string]bool {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}
	nulos := make(map[string]bool)
	for k, v := range raw {
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			nulos[k] = true
		}
	}
	return nulos
}

func validar(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(camposInvalidos(err)))
		return false
	}
	return true
}

func camposInvalidos(err error) map[string]string {
	fields := make(map[string]string)
	if ves, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range ves {
			fields[fe.Field()] = fe.Tag()
		}
	}
	return fields
}

// responderError writes the JSON answer for a service error. Unknown errors
// go to c.Error so ErrorHandler logs them and answers a generic 500.
func responderError(c *gin.Context, err error) {
	status, ok := apierror.Status(err)
	if !ok {
		_ = c.Error(err)
		return
	}
	c.JSON(status, apierror.New(err.Error()))
}

// paramID parses a positive numeric path parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// ── HTML helpers ─────────────────────────────────────────────────────────────

const cookieFlash = "flash"

// setFlash stores a one-shot message shown by the next rendered page.
func setFlash(c *gin.Context, msg string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieFlash, url.QueryEscape(msg), 60, "/", "", false, true)
}

// takeFlash reads and clears the pending flash message.
func takeFlash(c *gin.Context) string {
	v, err := c.Cookie(cookieFlash)
	if err != nil || v == "" {
		return ""
	}
	c.SetCookie(cookieFlash, "", -1, "/", "", false, true)
	msg, err := url.QueryUnescape(v)
	if err != nil {
		return ""
	}
	return msg
}

// render executes an HTML template with the data every page expects.
func render(c *gin.Context, status int, tmpl string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Sesion"] = middleware.GetSesion(c)
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = takeFlash(c)
	}
	c.HTML(status, tmpl, data)
}

// renderError answers an HTML page for a service error; unknown errors go to
// ErrorHandler.
func renderError(c *gin.Context, err error) {
	status, ok := apierror.Status(err)
	if !ok {
		_ = c.Error(err)
		return
	}
	renderEstado(c, status, err.Error())
}

func renderEstado(c *gin.Context, status int, mensaje string) {
	titulo := http.StatusText(status)
	if status == http.StatusNotFound {
		titulo = "Página no encontrada"
	}
	render(c, status, "error.html", gin.H{"Titulo": titulo, "Status": status, "Mensaje": mensaje})
}

// MetodoNoPermitido answers a known path requested with a method it does not
// expose.
func MetodoNoPermitido(c *gin.Context) {
	msg := "Método \"" + c.Request.Method + "\" no permitido."
	if middleware.EsAPI(c) {
		c.JSON(http.StatusMethodNotAllowed, apierror.New(msg))
		return
	}
	renderEstado(c, http.StatusMethodNotAllowed, msg)
}
