package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// InsumoRequest is the full representation accepted by POST and PUT
// /api/insumos/ and by the admin form.
type InsumoRequest struct {
	Nombre             string `json:"nombre"              form:"nombre"              validate:"required,max=100"`
	Tipo               string `json:"tipo"                form:"tipo"                validate:"required,max=100"`
	CantidadDisponible *int   `json:"cantidad_disponible" form:"cantidad_disponible" validate:"omitempty,min=0"`
	Marca              string `json:"marca"               form:"marca"               validate:"required,max=50"`
}

// InsumoPatchRequest only touches the fields present in the body.
type InsumoPatchRequest struct {
	Nombre             *string `json:"nombre"              validate:"omitempty,min=1,max=100"`
	Tipo               *string `json:"tipo"                validate:"omitempty,min=1,max=100"`
	CantidadDisponible *int    `json:"cantidad_disponible" validate:"omitempty,min=0"`
	Marca              *string `json:"marca"               validate:"omitempty,min=1,max=50"`
}

// InsumoFilter narrows the admin list.
type InsumoFilter struct {
	Tipo  string `form:"tipo"`
	Marca string `form:"marca"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type InsumoResponse struct {
	ID                 uint   `json:"id"`
	Nombre             string `json:"nombre"`
	Tipo               string `json:"tipo"`
	CantidadDisponible int    `json:"cantidad_disponible"`
	Marca              string `json:"marca"`
}
