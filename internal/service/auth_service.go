package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"pedidos/internal/config"
	"pedidos/internal/dto"
	"pedidos/internal/model"
	"pedidos/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// MensajeCredenciales is the only login failure message; it never says which
// half of the credentials was wrong.
const MensajeCredenciales = "Usuario o contraseña incorrectos."

const costoBcrypt = 12

// Revocaciones stores logged-out session ids. *infra.RevocacionesRedis
// implements it.
type Revocaciones interface {
	Revocar(ctx context.Context, jti string, ttl time.Duration) error
	Revocada(ctx context.Context, jti string) (bool, error)
}

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	// Logout revokes the session until its natural expiry.
	Logout(ctx context.Context, token string) error
	// ValidarSesion parses a session token and checks that it is not revoked
	// and that its user is still active.
	ValidarSesion(ctx context.Context, token string) (*dto.Sesion, error)
	// GuardarUsuario creates the user or, when the username exists, resets
	// its password, name and staff flag.
	GuardarUsuario(ctx context.Context, username, nombre, password string, esStaff bool) (*model.Usuario, error)
}

type authService struct {
	repo         repository.UsuarioRepository
	revocaciones Revocaciones
	cfg          *config.Config
}

// NewAuthService builds the service. A nil revocaciones disables logout
// revocation checks.
func NewAuthService(repo repository.UsuarioRepository, revocaciones Revocaciones, cfg *config.Config) AuthService {
	return &authService{repo: repo, revocaciones: revocaciones, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, noAutorizado(MensajeCredenciales)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, noAutorizado(MensajeCredenciales)
	}

	sesion := dto.Sesion{
		UsuarioID: user.ID,
		Username:  user.Username,
		Nombre:    user.Nombre,
		EsStaff:   user.EsStaff,
		JTI:       uuid.NewString(),
		Expira:    time.Now().Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour),
	}
	token, err := s.generateToken(sesion)
	if err != nil {
		return nil, errors.Annotate(err, "firmando token de sesión")
	}
	log.Info().Str("username", user.Username).Msg("inicio de sesión")
	return &dto.LoginResponse{Token: token, Expira: sesion.Expira, Sesion: sesion}, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	sesion, err := s.parse(token)
	if err != nil {
		// An unusable token is already as good as logged out.
		return nil
	}
	if s.revocaciones == nil {
		return nil
	}
	return errors.Annotate(s.revocaciones.Revocar(ctx, sesion.JTI, time.Until(sesion.Expira)), "revocando sesión")
}

func (s *authService) ValidarSesion(ctx context.Context, token string) (*dto.Sesion, error) {
	sesion, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	if s.revocaciones != nil {
		revocada, err := s.revocaciones.Revocada(ctx, sesion.JTI)
		if err != nil {
			return nil, errors.Annotate(err, "consultando revocaciones")
		}
		if revocada {
			return nil, noAutorizado("La sesión fue cerrada.")
		}
	}
	user, err := s.repo.FindByID(ctx, sesion.UsuarioID)
	if err != nil || !user.Activo {
		return nil, noAutorizado("Usuario no encontrado o inactivo.")
	}
	// Staff rights are read from the store so revoking them takes effect on
	// the next request.
	sesion.EsStaff = user.EsStaff
	sesion.Nombre = user.Nombre
	return sesion, nil
}

func (s *authService) GuardarUsuario(ctx context.Context, username, nombre, password string, esStaff bool) (*model.Usuario, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, invalido("username y password son obligatorios.")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), costoBcrypt)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if nombre == "" {
		nombre = username
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err == nil && user.Username == username {
		user.Nombre = nombre
		user.PasswordHash = string(hash)
		user.EsStaff = esStaff
		user.Activo = true
		return user, errors.Trace(s.repo.Update(ctx, user))
	}

	user = &model.Usuario{
		Username:     username,
		Nombre:       nombre,
		PasswordHash: string(hash),
		EsStaff:      esStaff,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, siDuplicado(err, "El usuario %q ya existe.", username)
	}
	return user, nil
}

func (s *authService) generateToken(sesion dto.Sesion) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  strconv.FormatUint(uint64(sesion.UsuarioID), 10),
		"username": sesion.Username,
		"nombre":   sesion.Nombre,
		"staff":    sesion.EsStaff,
		"jti":      sesion.JTI,
		"exp":      sesion.Expira.Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *authService) parse(tokenStr string) (*dto.Sesion, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, noAutorizado("Sesión inválida o expirada.")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, noAutorizado("Sesión inválida.")
	}

	idStr, _ := claims["user_id"].(string)
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return nil, noAutorizado("Sesión mal formada.")
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return nil, noAutorizado("Sesión mal formada.")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, noAutorizado("Sesión mal formada.")
	}
	username, _ := claims["username"].(string)
	nombre, _ := claims["nombre"].(string)
	staff, _ := claims["staff"].(bool)

	return &dto.Sesion{
		UsuarioID: uint(id),
		Username:  username,
		Nombre:    nombre,
		EsStaff:   staff,
		JTI:       jti,
		Expira:    exp.Time,
	}, nil
}
