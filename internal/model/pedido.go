package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MaxImagenesReferencia caps the reference images kept per order. The public
// form silently drops anything past the third file.
const MaxImagenesReferencia = 3

// MensajeFinalizacionSinPago is shown when a FINALIZADA save is rejected.
const MensajeFinalizacionSinPago = "ERROR: No puedes finalizar el pedido si no está PAGADO."

// EstadoPedido is the production state of an order.
type EstadoPedido string

const (
	EstadoSolicitado EstadoPedido = "SOLICITADO"
	EstadoAprobado   EstadoPedido = "APROBADO"
	EstadoEnProceso  EstadoPedido = "EN_PROCESO"
	EstadoRealizada  EstadoPedido = "REALIZADA"
	EstadoEntregada  EstadoPedido = "ENTREGADA"
	EstadoFinalizada EstadoPedido = "FINALIZADA"
	EstadoCancelada  EstadoPedido = "CANCELADA"
)

// EstadosPedido lists every state in workflow order.
var EstadosPedido = []EstadoPedido{
	EstadoSolicitado, EstadoAprobado, EstadoEnProceso, EstadoRealizada,
	EstadoEntregada, EstadoFinalizada, EstadoCancelada,
}

var etiquetasEstado = map[EstadoPedido]string{
	EstadoSolicitado: "Solicitado",
	EstadoAprobado:   "Aprobado",
	EstadoEnProceso:  "En Proceso",
	EstadoRealizada:  "Realizada",
	EstadoEntregada:  "Entregada",
	EstadoFinalizada: "Finalizada",
	EstadoCancelada:  "Cancelada",
}

func (e EstadoPedido) Valido() bool { _, ok := etiquetasEstado[e]; return ok }

// Etiqueta returns the human label, or the raw code for unknown values.
func (e EstadoPedido) Etiqueta() string {
	if l, ok := etiquetasEstado[e]; ok {
		return l
	}
	return string(e)
}

// EstadoPago tracks how much of the order has been paid.
type EstadoPago string

const (
	PagoPendiente EstadoPago = "PENDIENTE"
	PagoParcial   EstadoPago = "PARCIAL"
	PagoPagado    EstadoPago = "PAGADO"
)

var EstadosPago = []EstadoPago{PagoPendiente, PagoParcial, PagoPagado}

var etiquetasPago = map[EstadoPago]string{
	PagoPendiente: "Pendiente",
	PagoParcial:   "Parcial",
	PagoPagado:    "Pagado",
}

func (e EstadoPago) Valido() bool { _, ok := etiquetasPago[e]; return ok }

func (e EstadoPago) Etiqueta() string {
	if l, ok := etiquetasPago[e]; ok {
		return l
	}
	return string(e)
}

// Plataforma is the channel the order came in through.
type Plataforma string

const (
	PlataformaFacebook   Plataforma = "FACEBOOK"
	PlataformaInstagram  Plataforma = "INSTAGRAM"
	PlataformaWhatsApp   Plataforma = "WHATSAPP"
	PlataformaPresencial Plataforma = "PRESENCIAL"
	PlataformaSitioWeb   Plataforma = "SITIO_WEB"
)

var Plataformas = []Plataforma{
	PlataformaFacebook, PlataformaInstagram, PlataformaWhatsApp,
	PlataformaPresencial, PlataformaSitioWeb,
}

var etiquetasPlataforma = map[Plataforma]string{
	PlataformaFacebook:   "Facebook",
	PlataformaInstagram:  "Instagram",
	PlataformaWhatsApp:   "WhatsApp",
	PlataformaPresencial: "Presencial",
	PlataformaSitioWeb:   "Sitio Web",
}

func (p Plataforma) Valido() bool { _, ok := etiquetasPlataforma[p]; return ok }

func (p Plataforma) Etiqueta() string {
	if l, ok := etiquetasPlataforma[p]; ok {
		return l
	}
	return string(p)
}

// Pedido is a customer customization request.
//
// FechaCreacion and TokenSeguimiento are written on INSERT only; GORM ignores
// them on every later Save/Updates call.
type Pedido struct {
	ID                    uint    `gorm:"primaryKey"`
	NombreCliente         string  `gorm:"size:200;not null"`
	EmailCliente          *string `gorm:"size:254"`
	TelefonoCliente       *string `gorm:"size:20"`
	RedSocialCliente      *string `gorm:"size:100"`
	ProductoReferenciaID  *uint   `gorm:"index"`
	DescripcionSolicitada string  `gorm:"type:text;not null"`
	FechaNecesidad        *datatypes.Date
	FechaCreacion         time.Time    `gorm:"<-:create;not null;index"`
	Estado                EstadoPedido `gorm:"size:20;not null;default:SOLICITADO;index"`
	EstadoPago            EstadoPago   `gorm:"size:20;not null;default:PENDIENTE"`
	PlataformaOrigen      Plataforma   `gorm:"size:20;not null;default:SITIO_WEB"`
	TokenSeguimiento      uuid.UUID    `gorm:"<-:create;type:uuid;uniqueIndex;not null"`
	MontoTotal            int          `gorm:"not null;default:0;check:chk_pedidos_monto_total,monto_total >= 0"`
	MontoAbonado          int          `gorm:"not null;default:0;check:chk_pedidos_monto_abonado,monto_abonado >= 0"`

	ProductoReferencia *Producto          `gorm:"foreignKey:ProductoReferenciaID;constraint:OnDelete:RESTRICT"`
	ImagenesReferencia []ImagenReferencia `gorm:"foreignKey:PedidoID;constraint:OnDelete:CASCADE"`
}

func (Pedido) TableName() string { return "pedidos" }

// BeforeCreate fills the values a brand-new order always gets.
func (p *Pedido) BeforeCreate(_ *gorm.DB) error {
	if p.TokenSeguimiento == uuid.Nil {
		p.TokenSeguimiento = uuid.New()
	}
	if p.FechaCreacion.IsZero() {
		p.FechaCreacion = time.Now().UTC()
	}
	if p.Estado == "" {
		p.Estado = EstadoSolicitado
	}
	if p.EstadoPago == "" {
		p.EstadoPago = PagoPendiente
	}
	if p.PlataformaOrigen == "" {
		p.PlataformaOrigen = PlataformaSitioWeb
	}
	return nil
}

// ValidarFinalizacion enforces that an order can only be FINALIZADA once it
// is fully PAGADO.
func (p *Pedido) ValidarFinalizacion() error {
	if p.Estado == EstadoFinalizada && p.EstadoPago != PagoPagado {
		return errors.WithType(errors.New(MensajeFinalizacionSinPago), errors.Forbidden)
	}
	return nil
}

// ImagenReferencia is a customer-supplied picture attached to an order,
// stored under referencias/.
type ImagenReferencia struct {
	ID       uint   `gorm:"primaryKey"`
	PedidoID uint   `gorm:"not null;index"`
	Imagen   string `gorm:"size:255;not null"`
}

func (ImagenReferencia) TableName() string { return "imagenes_referencia" }
