package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// LoginRequest is the staff login form.
type LoginRequest struct {
	Username string `form:"username" validate:"required,max=150"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

// ─── Session ─────────────────────────────────────────────────────────────────

// Sesion is the authenticated staff identity carried by the session cookie.
type Sesion struct {
	UsuarioID uint
	Username  string
	Nombre    string
	EsStaff   bool
	JTI       string
	Expira    time.Time
}

// LoginResponse is the issued session token.
type LoginResponse struct {
	Token  string
	Expira time.Time
	Sesion Sesion
}
