package dto

import (
	"mime/multipart"
	"time"

	"github.com/google/uuid"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// PedidoRequest is the full order representation accepted by POST and PUT
// /api/pedidos/ and by the admin form. fecha_creacion and token_seguimiento
// are never accepted from clients.
type PedidoRequest struct {
	NombreCliente         string  `json:"nombre_cliente"         form:"nombre_cliente"         validate:"required,max=200"`
	EmailCliente          *string `json:"email_cliente"          form:"email_cliente"          validate:"omitempty,email_opcional,max=254"`
	TelefonoCliente       *string `json:"telefono_cliente"       form:"telefono_cliente"       validate:"omitempty,max=20"`
	RedSocialCliente      *string `json:"red_social_cliente"     form:"red_social_cliente"     validate:"omitempty,max=100"`
	ProductoReferencia    *uint   `json:"producto_referencia"    form:"producto_referencia"`
	DescripcionSolicitada string  `json:"descripcion_solicitada" form:"descripcion_solicitada" validate:"required"`
	FechaNecesidad        *string `json:"fecha_necesidad"        form:"fecha_necesidad"        validate:"omitempty,fecha_opcional"`
	Estado                string  `json:"estado"                 form:"estado"                 validate:"omitempty,oneof=SOLICITADO APROBADO EN_PROCESO REALIZADA ENTREGADA FINALIZADA CANCELADA"`
	EstadoPago            string  `json:"estado_pago"            form:"estado_pago"            validate:"omitempty,oneof=PENDIENTE PARCIAL PAGADO"`
	PlataformaOrigen      string  `json:"plataforma_origen"      form:"plataforma_origen"      validate:"omitempty,oneof=FACEBOOK INSTAGRAM WHATSAPP PRESENCIAL SITIO_WEB"`
	MontoTotal            *int    `json:"monto_total"            form:"monto_total"            validate:"omitempty,min=0"`
	MontoAbonado          *int    `json:"monto_abonado"          form:"monto_abonado"          validate:"omitempty,min=0"`

	// Nulos holds the JSON keys sent as an explicit null.
	Nulos map[string]bool `json:"-" form:"-"`
}

// PedidoPatchRequest is the partial update accepted by PATCH /api/pedidos/:id/.
// Absent fields keep their stored value.
type PedidoPatchRequest struct {
	NombreCliente         *string `json:"nombre_cliente"         validate:"omitempty,min=1,max=200"`
	EmailCliente          *string `json:"email_cliente"          validate:"omitempty,email_opcional,max=254"`
	TelefonoCliente       *string `json:"telefono_cliente"       validate:"omitempty,max=20"`
	RedSocialCliente      *string `json:"red_social_cliente"     validate:"omitempty,max=100"`
	ProductoReferencia    *uint   `json:"producto_referencia"`
	DescripcionSolicitada *string `json:"descripcion_solicitada" validate:"omitempty,min=1"`
	FechaNecesidad        *string `json:"fecha_necesidad"        validate:"omitempty,fecha_opcional"`
	Estado                *string `json:"estado"                 validate:"omitempty,oneof=SOLICITADO APROBADO EN_PROCESO REALIZADA ENTREGADA FINALIZADA CANCELADA"`
	EstadoPago            *string `json:"estado_pago"            validate:"omitempty,oneof=PENDIENTE PARCIAL PAGADO"`
	PlataformaOrigen      *string `json:"plataforma_origen"      validate:"omitempty,oneof=FACEBOOK INSTAGRAM WHATSAPP PRESENCIAL SITIO_WEB"`
	MontoTotal            *int    `json:"monto_total"            validate:"omitempty,min=0"`
	MontoAbonado          *int    `json:"monto_abonado"          validate:"omitempty,min=0"`

	// Nulos holds the JSON keys sent as an explicit null. A null clears a
	// nullable field; an absent key keeps it.
	Nulos map[string]bool `json:"-"`
}

// SolicitudPedido carries the public order form. Fields are kept raw: the
// form is lenient and only nombre_cliente and descripcion_solicitada are
// mandatory.
type SolicitudPedido struct {
	NombreCliente         string
	EmailCliente          string
	TelefonoCliente       string
	RedSocialCliente      string
	DescripcionSolicitada string
	FechaNecesidad        string
	// ProductoReferencia is the raw form field; when non-empty it overrides
	// ProductoRuta.
	ProductoReferencia string
	// ProductoRuta is the product named by /solicitar/<id>/, already resolved.
	ProductoRuta *uint
	Imagenes     []*multipart.FileHeader
}

// FiltroPedidos holds the raw query of GET /api/pedidos/filtrar/.
type FiltroPedidos struct {
	FechaInicio string `form:"fecha_inicio"`
	FechaFin    string `form:"fecha_fin"`
	Estado      string `form:"estado"`
	Limite      string `form:"limite"`
}

// PedidoAdminFilter narrows the admin order list.
type PedidoAdminFilter struct {
	Estado     string `form:"estado"`
	EstadoPago string `form:"estado_pago"`
	Busqueda   string `form:"q"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// PedidoResponse exposes every stored column of an order.
type PedidoResponse struct {
	ID                    uint      `json:"id"`
	NombreCliente         string    `json:"nombre_cliente"`
	EmailCliente          *string   `json:"email_cliente"`
	TelefonoCliente       *string   `json:"telefono_cliente"`
	RedSocialCliente      *string   `json:"red_social_cliente"`
	ProductoReferencia    *uint     `json:"producto_referencia"`
	DescripcionSolicitada string    `json:"descripcion_solicitada"`
	FechaNecesidad        *string   `json:"fecha_necesidad"`
	FechaCreacion         time.Time `json:"fecha_creacion"`
	Estado                string    `json:"estado"`
	EstadoPago            string    `json:"estado_pago"`
	PlataformaOrigen      string    `json:"plataforma_origen"`
	TokenSeguimiento      uuid.UUID `json:"token_seguimiento"`
	MontoTotal            int       `json:"monto_total"`
	MontoAbonado          int       `json:"monto_abonado"`
}

// ConsultaPedidos is the parsed filter handed to the repository. Nil bounds
// and a nil Limite mean "no restriction".
type ConsultaPedidos struct {
	Desde  *time.Time
	Hasta  *time.Time // exclusive
	Estado string
	Limite *int
}
