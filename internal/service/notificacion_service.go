package service

import (
	"context"
	"fmt"
	"strings"

	"pedidos/internal/config"
	"pedidos/internal/model"
	"pedidos/internal/worker"

	"github.com/rs/zerolog/log"
)

// EncoladorEmail is the async e-mail queue. *worker.Dispatcher implements it.
type EncoladorEmail interface {
	EnqueueEmail(ctx context.Context, payload worker.EmailJobPayload) error
}

// Notificador tells customers about their orders. Notifications are best
// effort: failures are logged and never reach the caller.
type Notificador interface {
	PedidoRecibido(ctx context.Context, p *model.Pedido)
	CambioEstado(ctx context.Context, p *model.Pedido, anterior model.EstadoPedido)
}

type notificador struct {
	cola    EncoladorEmail
	baseURL string
}

// NewNotificador returns a no-op notifier when SMTP is not configured or
// there is no queue.
func NewNotificador(cfg *config.Config, cola EncoladorEmail) Notificador {
	if cola == nil || !cfg.NotificacionesActivas() {
		return notificadorNulo{}
	}
	return &notificador{cola: cola, baseURL: strings.TrimRight(cfg.BaseURL, "/")}
}

// LinkSeguimiento is the public tracking URL of an order.
func LinkSeguimiento(baseURL string, p *model.Pedido) string {
	return strings.TrimRight(baseURL, "/") + "/seguimiento/" + p.TokenSeguimiento.String() + "/"
}

func (n *notificador) PedidoRecibido(ctx context.Context, p *model.Pedido) {
	link := LinkSeguimiento(n.baseURL, p)
	n.enviar(ctx, p, worker.EmailJobPayload{
		Subject: fmt.Sprintf("Recibimos tu pedido #%d", p.ID),
		Body: fmt.Sprintf("Hola %s,\n\nRecibimos tu solicitud y pronto la revisaremos.\n"+
			"Puedes seguir el estado de tu pedido en:\n%s\n", p.NombreCliente, link),
	})
}

func (n *notificador) CambioEstado(ctx context.Context, p *model.Pedido, anterior model.EstadoPedido) {
	if p.Estado == anterior {
		return
	}
	link := LinkSeguimiento(n.baseURL, p)
	n.enviar(ctx, p, worker.EmailJobPayload{
		Subject: fmt.Sprintf("Tu pedido #%d ahora está: %s", p.ID, p.Estado.Etiqueta()),
		Body: fmt.Sprintf("Hola %s,\n\nTu pedido pasó de \"%s\" a \"%s\".\n"+
			"Detalle y seguimiento:\n%s\n", p.NombreCliente, anterior.Etiqueta(), p.Estado.Etiqueta(), link),
	})
}

func (n *notificador) enviar(ctx context.Context, p *model.Pedido, payload worker.EmailJobPayload) {
	if p.EmailCliente == nil || *p.EmailCliente == "" {
		return
	}
	payload.ToEmail = *p.EmailCliente
	if err := n.cola.EnqueueEmail(ctx, payload); err != nil {
		log.Warn().Err(err).Uint("pedido_id", p.ID).Msg("no se pudo encolar la notificación")
	}
}

type notificadorNulo struct{}

func (notificadorNulo) PedidoRecibido(context.Context, *model.Pedido)                      {}
func (notificadorNulo) CambioEstado(context.Context, *model.Pedido, model.EstadoPedido) {}
