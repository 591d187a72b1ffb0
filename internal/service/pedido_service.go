package service

import (
	"context"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"pedidos/internal/dto"
	"pedidos/internal/infra"
	"pedidos/internal/model"
	"pedidos/internal/repository"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/rs/zerolog/log"
)

// MensajeFaltanDatos is shown when the public form lacks a required field.
const MensajeFaltanDatos = "Faltan datos obligatorios"

// Almacen stores uploaded images. *infra.MediaStorage implements it.
type Almacen interface {
	Guardar(dir string, fh *multipart.FileHeader) (string, error)
	Eliminar(rel string) error
}

// PedidoService covers the whole order lifecycle: public intake and
// tracking, the REST API and the admin screens.
type PedidoService interface {
	// Public
	ProductoParaSolicitud(ctx context.Context, id uint) (*model.Producto, error)
	Solicitar(ctx context.Context, req dto.SolicitudPedido) (*model.Pedido, error)
	Seguimiento(ctx context.Context, token string) (*model.Pedido, error)

	// REST API
	CrearAPI(ctx context.Context, req dto.PedidoRequest) (*dto.PedidoResponse, error)
	Reemplazar(ctx context.Context, id uint, req dto.PedidoRequest) (*dto.PedidoResponse, error)
	ActualizarParcial(ctx context.Context, id uint, req dto.PedidoPatchRequest) (*dto.PedidoResponse, error)
	Filtrar(ctx context.Context, f dto.FiltroPedidos) ([]dto.PedidoResponse, error)

	// Admin
	ListarAdmin(ctx context.Context, f dto.PedidoAdminFilter) ([]model.Pedido, error)
	ObtenerPorID(ctx context.Context, id uint) (*model.Pedido, error)
	// GuardarAdmin creates (id == 0) or updates an order from the admin form,
	// deleting the images listed in borrar and attaching nuevas.
	GuardarAdmin(ctx context.Context, id uint, req dto.PedidoRequest, nuevas []*multipart.FileHeader, borrar []uint) (*model.Pedido, error)
	Eliminar(ctx context.Context, id uint) error
	Contar(ctx context.Context) (int64, error)
}

type pedidoService struct {
	repo        repository.PedidoRepository
	productos   repository.ProductoRepository
	almacen     Almacen
	notificador Notificador
	loc         *time.Location
}

func NewPedidoService(
	repo repository.PedidoRepository,
	productos repository.ProductoRepository,
	almacen Almacen,
	notificador Notificador,
	loc *time.Location,
) PedidoService {
	if notificador == nil {
		notificador = notificadorNulo{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &pedidoService{repo: repo, productos: productos, almacen: almacen, notificador: notificador, loc: loc}
}

// MapPedido converts an order to its API representation. Timestamps are
// rendered in loc.
func MapPedido(p *model.Pedido, loc *time.Location) dto.PedidoResponse {
	return dto.PedidoResponse{
		ID:                    p.ID,
		NombreCliente:         p.NombreCliente,
		EmailCliente:          p.EmailCliente,
		TelefonoCliente:       p.TelefonoCliente,
		RedSocialCliente:      p.RedSocialCliente,
		ProductoReferencia:    p.ProductoReferenciaID,
		DescripcionSolicitada: p.DescripcionSolicitada,
		FechaNecesidad:        formatearFecha(p.FechaNecesidad),
		FechaCreacion:         p.FechaCreacion.In(loc),
		Estado:                string(p.Estado),
		EstadoPago:            string(p.EstadoPago),
		PlataformaOrigen:      string(p.PlataformaOrigen),
		TokenSeguimiento:      p.TokenSeguimiento,
		MontoTotal:            p.MontoTotal,
		MontoAbonado:          p.MontoAbonado,
	}
}

// ── Public ───────────────────────────────────────────────────────────────────

func (s *pedidoService) ProductoParaSolicitud(ctx context.Context, id uint) (*model.Producto, error) {
	p, err := s.productos.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, siNoExiste(err, "Producto no encontrado.")
	}
	return p, nil
}

func (s *pedidoService) Solicitar(ctx context.Context, req dto.SolicitudPedido) (*model.Pedido, error) {
	nombre := strings.TrimSpace(req.NombreCliente)
	descripcion := strings.TrimSpace(req.DescripcionSolicitada)
	if nombre == "" || descripcion == "" {
		return nil, invalido(MensajeFaltanDatos)
	}
	if err := validarLargos(map[string]struct {
		valor string
		max   int
	}{
		"nombre":     {nombre, 200},
		"email":      {req.EmailCliente, 254},
		"teléfono":   {req.TelefonoCliente, 20},
		"red social": {req.RedSocialCliente, 100},
	}); err != nil {
		return nil, err
	}
	fecha, err := parseFecha(req.FechaNecesidad)
	if err != nil {
		return nil, err
	}

	referencia, err := s.resolverReferencia(ctx, req.ProductoReferencia, req.ProductoRuta)
	if err != nil {
		return nil, err
	}

	archivos := req.Imagenes
	if len(archivos) > model.MaxImagenesReferencia {
		archivos = archivos[:model.MaxImagenesReferencia]
	}
	rutas, err := s.guardarArchivos(infra.DirReferencias, archivos)
	if err != nil {
		return nil, err
	}

	p := &model.Pedido{
		NombreCliente:         nombre,
		EmailCliente:          opcional(req.EmailCliente),
		TelefonoCliente:       opcional(req.TelefonoCliente),
		RedSocialCliente:      opcional(req.RedSocialCliente),
		DescripcionSolicitada: descripcion,
		FechaNecesidad:        fecha,
		ProductoReferenciaID:  referencia,
		Estado:                model.EstadoSolicitado,
		EstadoPago:            model.PagoPendiente,
		PlataformaOrigen:      model.PlataformaSitioWeb,
	}
	for _, r := range rutas {
		p.ImagenesReferencia = append(p.ImagenesReferencia, model.ImagenReferencia{Imagen: r})
	}

	if err := s.repo.Crear(ctx, p); err != nil {
		s.borrarArchivos(rutas)
		return nil, errors.Trace(err)
	}
	log.Info().Uint("pedido_id", p.ID).Int("imagenes", len(rutas)).Msg("pedido solicitado")

	s.notificador.PedidoRecibido(ctx, p)
	return p, nil
}

// resolverReferencia applies the precedence of the public form: a non-empty
// producto_referencia field wins over the product in the URL, and resolves
// to no product at all when it does not name an existing one.
func (s *pedidoService) resolverReferencia(ctx context.Context, campo string, ruta *uint) (*uint, error) {
	campo = strings.TrimSpace(campo)
	if campo == "" {
		return ruta, nil
	}
	id, err := strconv.ParseUint(campo, 10, 64)
	if err != nil || id == 0 {
		return nil, nil
	}
	ok, err := s.productos.Existe(ctx, uint(id))
	if err != nil {
		return nil, errors.Trace(err)
	}
	if !ok {
		return nil, nil
	}
	ref := uint(id)
	return &ref, nil
}

func (s *pedidoService) Seguimiento(ctx context.Context, token string) (*model.Pedido, error) {
	t, err := uuid.Parse(token)
	if err != nil {
		return nil, noEncontrado("Pedido no encontrado.")
	}
	p, err := s.repo.ObtenerPorToken(ctx, t)
	if err != nil {
		return nil, siNoExiste(err, "Pedido no encontrado.")
	}
	return p, nil
}

// ── REST API ─────────────────────────────────────────────────────────────────

func (s *pedidoService) CrearAPI(ctx context.Context, req dto.PedidoRequest) (*dto.PedidoResponse, error) {
	p := &model.Pedido{}
	if err := s.aplicar(ctx, p, completo(req)); err != nil {
		return nil, err
	}
	if err := p.ValidarFinalizacion(); err != nil {
		return nil, err
	}
	if err := s.repo.Crear(ctx, p); err != nil {
		return nil, errors.Trace(err)
	}
	resp := MapPedido(p, s.loc)
	return &resp, nil
}

func (s *pedidoService) Reemplazar(ctx context.Context, id uint, req dto.PedidoRequest) (*dto.PedidoResponse, error) {
	return s.ActualizarParcial(ctx, id, completo(req))
}

func (s *pedidoService) ActualizarParcial(ctx context.Context, id uint, req dto.PedidoPatchRequest) (*dto.PedidoResponse, error) {
	p, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, siNoExiste(err, "Pedido no encontrado.")
	}
	anterior := p.Estado
	if err := s.aplicar(ctx, p, req); err != nil {
		return nil, err
	}
	if err := p.ValidarFinalizacion(); err != nil {
		return nil, err
	}
	if err := s.repo.Actualizar(ctx, p); err != nil {
		return nil, errors.Trace(err)
	}
	s.notificador.CambioEstado(ctx, p, anterior)
	resp := MapPedido(p, s.loc)
	return &resp, nil
}

func (s *pedidoService) Filtrar(ctx context.Context, f dto.FiltroPedidos) ([]dto.PedidoResponse, error) {
	desde, hasta, err := rangoFechas(f.FechaInicio, f.FechaFin, s.loc)
	if err != nil {
		return nil, err
	}
	q := dto.ConsultaPedidos{Desde: desde, Hasta: hasta, Estado: f.Estado}
	// A limite that is not a non-negative integer is ignored.
	if n, err := strconv.Atoi(strings.TrimSpace(f.Limite)); err == nil && n >= 0 {
		q.Limite = &n
	}

	pedidos, err := s.repo.Filtrar(ctx, q)
	if err != nil {
		return nil, errors.Trace(err)
	}
	resp := make([]dto.PedidoResponse, 0, len(pedidos))
	for i := range pedidos {
		resp = append(resp, MapPedido(&pedidos[i], s.loc))
	}
	return resp, nil
}

// ── Admin ────────────────────────────────────────────────────────────────────

func (s *pedidoService) ListarAdmin(ctx context.Context, f dto.PedidoAdminFilter) ([]model.Pedido, error) {
	pedidos, err := s.repo.ListarAdmin(ctx, f)
	return pedidos, errors.Trace(err)
}

func (s *pedidoService) ObtenerPorID(ctx context.Context, id uint) (*model.Pedido, error) {
	p, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, siNoExiste(err, "Pedido no encontrado.")
	}
	return p, nil
}

func (s *pedidoService) GuardarAdmin(ctx context.Context, id uint, req dto.PedidoRequest, nuevas []*multipart.FileHeader, borrar []uint) (*model.Pedido, error) {
	p := &model.Pedido{}
	if id != 0 {
		var err error
		if p, err = s.repo.ObtenerPorID(ctx, id); err != nil {
			return nil, siNoExiste(err, "Pedido no encontrado.")
		}
	}
	anterior := p.Estado

	if err := s.aplicar(ctx, p, completo(req)); err != nil {
		return nil, err
	}
	// The save guard runs before anything touches the store or the disk.
	if err := p.ValidarFinalizacion(); err != nil {
		return nil, err
	}

	quedan := 0
	for _, img := range p.ImagenesReferencia {
		if !contiene(borrar, img.ID) {
			quedan++
		}
	}
	if quedan+len(nuevas) > model.MaxImagenesReferencia {
		return nil, invalido("Un pedido admite como máximo %d imágenes de referencia.", model.MaxImagenesReferencia)
	}
	rutas, err := s.guardarArchivos(infra.DirReferencias, nuevas)
	if err != nil {
		return nil, err
	}

	if id == 0 {
		for _, r := range rutas {
			p.ImagenesReferencia = append(p.ImagenesReferencia, model.ImagenReferencia{Imagen: r})
		}
		if err := s.repo.Crear(ctx, p); err != nil {
			s.borrarArchivos(rutas)
			return nil, errors.Trace(err)
		}
		return p, nil
	}

	if err := s.repo.Actualizar(ctx, p); err != nil {
		s.borrarArchivos(rutas)
		return nil, errors.Trace(err)
	}
	imgs := make([]model.ImagenReferencia, 0, len(rutas))
	for _, r := range rutas {
		imgs = append(imgs, model.ImagenReferencia{PedidoID: p.ID, Imagen: r})
	}
	if err := s.repo.AgregarImagenes(ctx, imgs); err != nil {
		s.borrarArchivos(rutas)
		return nil, errors.Trace(err)
	}
	borradas, err := s.repo.EliminarImagenes(ctx, p.ID, borrar)
	if err != nil {
		return nil, errors.Trace(err)
	}
	for _, b := range borradas {
		s.borrarArchivos([]string{b.Imagen})
	}

	s.notificador.CambioEstado(ctx, p, anterior)
	actualizado, err := s.repo.ObtenerPorID(ctx, p.ID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return actualizado, nil
}

func (s *pedidoService) Eliminar(ctx context.Context, id uint) error {
	p, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return siNoExiste(err, "Pedido no encontrado.")
	}
	if err := s.repo.Eliminar(ctx, id); err != nil {
		return errors.Trace(err)
	}
	for _, img := range p.ImagenesReferencia {
		s.borrarArchivos([]string{img.Imagen})
	}
	return nil
}

func (s *pedidoService) Contar(ctx context.Context) (int64, error) {
	n, err := s.repo.Contar(ctx)
	return n, errors.Trace(err)
}

// ── helpers ──────────────────────────────────────────────────────────────────

// completo lifts a full representation into a change set touching every
// field it carries.
func completo(req dto.PedidoRequest) dto.PedidoPatchRequest {
	c := dto.PedidoPatchRequest{
		NombreCliente:         &req.NombreCliente,
		EmailCliente:          req.EmailCliente,
		TelefonoCliente:       req.TelefonoCliente,
		RedSocialCliente:      req.RedSocialCliente,
		ProductoReferencia:    req.ProductoReferencia,
		DescripcionSolicitada: &req.DescripcionSolicitada,
		FechaNecesidad:        req.FechaNecesidad,
		MontoTotal:            req.MontoTotal,
		MontoAbonado:          req.MontoAbonado,
		Nulos:                 req.Nulos,
	}
	if req.Estado != "" {
		c.Estado = &req.Estado
	}
	if req.EstadoPago != "" {
		c.EstadoPago = &req.EstadoPago
	}
	if req.PlataformaOrigen != "" {
		c.PlataformaOrigen = &req.PlataformaOrigen
	}
	return c
}

// camposNoNulos are the order fields that never hold null.
var camposNoNulos = []string{
	"nombre_cliente", "descripcion_solicitada", "estado", "estado_pago",
	"plataforma_origen", "monto_total", "monto_abonado",
}

// aplicar copies a change set onto p. Absent fields are left alone; an
// explicit null or an empty string clears an optional field, and
// producto_referencia 0 clears the reference too.
func (s *pedidoService) aplicar(ctx context.Context, p *model.Pedido, c dto.PedidoPatchRequest) error {
	for _, campo := range camposNoNulos {
		if c.Nulos[campo] {
			return invalido("%s no puede ser nulo.", campo)
		}
	}
	if c.NombreCliente != nil {
		v := strings.TrimSpace(*c.NombreCliente)
		if v == "" {
			return invalido("nombre_cliente es obligatorio.")
		}
		p.NombreCliente = v
	}
	if c.DescripcionSolicitada != nil {
		v := strings.TrimSpace(*c.DescripcionSolicitada)
		if v == "" {
			return invalido("descripcion_solicitada es obligatoria.")
		}
		p.DescripcionSolicitada = v
	}
	if c.EmailCliente != nil {
		p.EmailCliente = opcional(*c.EmailCliente)
	} else if c.Nulos["email_cliente"] {
		p.EmailCliente = nil
	}
	if c.TelefonoCliente != nil {
		p.TelefonoCliente = opcional(*c.TelefonoCliente)
	} else if c.Nulos["telefono_cliente"] {
		p.TelefonoCliente = nil
	}
	if c.RedSocialCliente != nil {
		p.RedSocialCliente = opcional(*c.RedSocialCliente)
	} else if c.Nulos["red_social_cliente"] {
		p.RedSocialCliente = nil
	}
	if c.ProductoReferencia == nil && c.Nulos["producto_referencia"] {
		p.ProductoReferenciaID, p.ProductoReferencia = nil, nil
	}
	if c.ProductoReferencia != nil {
		if *c.ProductoReferencia == 0 {
			p.ProductoReferenciaID = nil
		} else {
			ok, err := s.productos.Existe(ctx, *c.ProductoReferencia)
			if err != nil {
				return errors.Trace(err)
			}
			if !ok {
				return invalido("producto_referencia: el producto %d no existe.", *c.ProductoReferencia)
			}
			ref := *c.ProductoReferencia
			p.ProductoReferenciaID = &ref
		}
		p.ProductoReferencia = nil
	}
	if c.FechaNecesidad != nil {
		f, err := parseFecha(*c.FechaNecesidad)
		if err != nil {
			return err
		}
		p.FechaNecesidad = f
	} else if c.Nulos["fecha_necesidad"] {
		p.FechaNecesidad = nil
	}
	if c.Estado != nil {
		e := model.EstadoPedido(*c.Estado)
		if !e.Valido() {
			return invalido("estado %q no es válido.", *c.Estado)
		}
		p.Estado = e
	}
	if c.EstadoPago != nil {
		e := model.EstadoPago(*c.EstadoPago)
		if !e.Valido() {
			return invalido("estado_pago %q no es válido.", *c.EstadoPago)
		}
		p.EstadoPago = e
	}
	if c.PlataformaOrigen != nil {
		pl := model.Plataforma(*c.PlataformaOrigen)
		if !pl.Valido() {
			return invalido("plataforma_origen %q no es válida.", *c.PlataformaOrigen)
		}
		p.PlataformaOrigen = pl
	}
	if c.MontoTotal != nil {
		if *c.MontoTotal < 0 {
			return invalido("monto_total no puede ser negativo.")
		}
		p.MontoTotal = *c.MontoTotal
	}
	if c.MontoAbonado != nil {
		if *c.MontoAbonado < 0 {
			return invalido("monto_abonado no puede ser negativo.")
		}
		p.MontoAbonado = *c.MontoAbonado
	}
	return nil
}

func (s *pedidoService) guardarArchivos(dir string, archivos []*multipart.FileHeader) ([]string, error) {
	rutas := make([]string, 0, len(archivos))
	for _, fh := range archivos {
		r, err := s.almacen.Guardar(dir, fh)
		if err != nil {
			s.borrarArchivos(rutas)
			return nil, err
		}
		rutas = append(rutas, r)
	}
	return rutas, nil
}

func (s *pedidoService) borrarArchivos(rutas []string) {
	for _, r := range rutas {
		if err := s.almacen.Eliminar(r); err != nil {
			log.Warn().Err(err).Str("archivo", r).Msg("no se pudo borrar el archivo")
		}
	}
}

// opcional maps blank input to NULL.
func opcional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func validarLargos(campos map[string]struct {
	valor string
	max   int
}) error {
	for nombre, c := range campos {
		if len([]rune(strings.TrimSpace(c.valor))) > c.max {
			return invalido("El campo %s admite como máximo %d caracteres.", nombre, c.max)
		}
	}
	return nil
}
