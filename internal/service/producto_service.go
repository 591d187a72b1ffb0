package service

import (
	"context"
	"mime/multipart"
	"strconv"
	"strings"

	"pedidos/internal/dto"
	"pedidos/internal/infra"
	"pedidos/internal/model"
	"pedidos/internal/repository"

	"github.com/juju/errors"
	"github.com/rs/zerolog/log"
)

// ProductoService defines the admin operations over catalog products.
type ProductoService interface {
	Listar(ctx context.Context, f dto.ProductoFilter) ([]model.Producto, error)
	Obtener(ctx context.Context, id uint) (*model.Producto, error)
	// Guardar creates (id == 0) or updates a product, removing the images in
	// borrar and attaching nuevas. At most MaxImagenesProducto may remain.
	Guardar(ctx context.Context, id uint, form dto.ProductoForm, nuevas []*multipart.FileHeader, borrar []uint) (*model.Producto, error)
	Eliminar(ctx context.Context, id uint) error
	Contar(ctx context.Context) (int64, error)
}

type productoService struct {
	repo       repository.ProductoRepository
	categorias repository.CategoriaRepository
	almacen    Almacen
}

func NewProductoService(repo repository.ProductoRepository, categorias repository.CategoriaRepository, almacen Almacen) ProductoService {
	return &productoService{repo: repo, categorias: categorias, almacen: almacen}
}

func (s *productoService) Listar(ctx context.Context, f dto.ProductoFilter) ([]model.Producto, error) {
	q := repository.ProductoListado{CategoriaID: f.CategoriaID, Busqueda: strings.TrimSpace(f.Busqueda)}
	if d, err := strconv.ParseBool(f.Destacado); err == nil {
		q.Destacado = &d
	}
	list, err := s.repo.Listar(ctx, q)
	return list, errors.Trace(err)
}

func (s *productoService) Obtener(ctx context.Context, id uint) (*model.Producto, error) {
	p, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, siNoExiste(err, "Producto no encontrado.")
	}
	return p, nil
}

func (s *productoService) Guardar(ctx context.Context, id uint, form dto.ProductoForm, nuevas []*multipart.FileHeader, borrar []uint) (*model.Producto, error) {
	p := &model.Producto{}
	if id != 0 {
		var err error
		if p, err = s.Obtener(ctx, id); err != nil {
			return nil, err
		}
	}

	nombre := strings.TrimSpace(form.Nombre)
	descripcion := strings.TrimSpace(form.Descripcion)
	if nombre == "" || descripcion == "" {
		return nil, invalido("Nombre y descripción son obligatorios.")
	}
	if form.PrecioBase != nil && *form.PrecioBase < 0 {
		return nil, invalido("El precio base no puede ser negativo.")
	}
	if _, err := s.categorias.ObtenerPorID(ctx, form.CategoriaID); err != nil {
		return nil, siNoExisteComo(err, invalido("La categoría seleccionada no existe."))
	}
	sl, err := resolverSlug(ctx, form.Slug, nombre, id, s.repo.ExisteSlug)
	if err != nil {
		return nil, err
	}

	quedan := 0
	for _, img := range p.Imagenes {
		if !contiene(borrar, img.ID) {
			quedan++
		}
	}
	if quedan+len(nuevas) > model.MaxImagenesProducto {
		return nil, invalido("Un producto admite como máximo %d imágenes.", model.MaxImagenesProducto)
	}

	p.Nombre, p.Slug, p.Descripcion = nombre, sl, descripcion
	p.CategoriaID, p.Categoria = form.CategoriaID, nil
	p.Destacado = form.Destacado
	if form.PrecioBase != nil {
		p.PrecioBase = *form.PrecioBase
	}

	rutas := make([]string, 0, len(nuevas))
	for _, fh := range nuevas {
		r, err := s.almacen.Guardar(infra.DirProductos, fh)
		if err != nil {
			s.borrarArchivos(rutas)
			return nil, err
		}
		rutas = append(rutas, r)
	}

	if id == 0 {
		err = s.repo.Crear(ctx, p)
	} else {
		err = s.repo.Actualizar(ctx, p)
	}
	if err != nil {
		s.borrarArchivos(rutas)
		return nil, siDuplicado(err, "Ya existe un producto con el slug %q.", sl)
	}

	imgs := make([]model.ProductoImagen, 0, len(rutas))
	for _, r := range rutas {
		imgs = append(imgs, model.ProductoImagen{ProductoID: p.ID, Imagen: r})
	}
	if err := s.repo.AgregarImagenes(ctx, imgs); err != nil {
		s.borrarArchivos(rutas)
		return nil, errors.Trace(err)
	}
	if id != 0 {
		borradas, err := s.repo.EliminarImagenes(ctx, p.ID, borrar)
		if err != nil {
			return nil, errors.Trace(err)
		}
		for _, b := range borradas {
			s.borrarArchivos([]string{b.Imagen})
		}
	}
	return s.Obtener(ctx, p.ID)
}

// Eliminar refuses to delete a product still referenced by an order.
func (s *productoService) Eliminar(ctx context.Context, id uint) error {
	p, err := s.Obtener(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.repo.ContarPedidos(ctx, id)
	if err != nil {
		return errors.Trace(err)
	}
	if n > 0 {
		return prohibido("No se puede eliminar %q: %d pedido(s) lo usan como referencia.", p.Nombre, n)
	}
	if err := s.repo.Eliminar(ctx, id); err != nil {
		return errors.Trace(err)
	}
	for _, img := range p.Imagenes {
		s.borrarArchivos([]string{img.Imagen})
	}
	return nil
}

func (s *productoService) Contar(ctx context.Context) (int64, error) {
	n, err := s.repo.Contar(ctx)
	return n, errors.Trace(err)
}

func (s *productoService) borrarArchivos(rutas []string) {
	for _, r := range rutas {
		if err := s.almacen.Eliminar(r); err != nil {
			log.Warn().Err(err).Str("archivo", r).Msg("no se pudo borrar el archivo")
		}
	}
}

func contiene(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
