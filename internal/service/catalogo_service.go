package service

import (
	"context"

	"pedidos/internal/dto"
	"pedidos/internal/model"
	"pedidos/internal/repository"

	"github.com/juju/errors"
)

// CatalogoService serves the public catalog and product pages.
type CatalogoService interface {
	Explorar(ctx context.Context, f dto.CatalogoFilter) (*dto.CatalogoVista, error)
	Detalle(ctx context.Context, slug string) (*dto.DetalleProducto, error)
	// Comentar adds a comment to the product. An incomplete form creates
	// nothing and reports false without error.
	Comentar(ctx context.Context, slug string, form dto.ComentarioForm) (bool, error)
}

type catalogoService struct {
	categorias  repository.CategoriaRepository
	productos   repository.ProductoRepository
	comentarios repository.ComentarioRepository
}

func NewCatalogoService(
	categorias repository.CategoriaRepository,
	productos repository.ProductoRepository,
	comentarios repository.ComentarioRepository,
) CatalogoService {
	return &catalogoService{categorias: categorias, productos: productos, comentarios: comentarios}
}

func (s *catalogoService) Explorar(ctx context.Context, f dto.CatalogoFilter) (*dto.CatalogoVista, error) {
	productos, err := s.productos.Listar(ctx, repository.ProductoListado{
		CategoriaSlug: f.Categoria,
		Busqueda:      f.Busqueda,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	categorias, err := s.categorias.Listar(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	destacado := true
	destacados, err := s.productos.Listar(ctx, repository.ProductoListado{Destacado: &destacado})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &dto.CatalogoVista{
		Productos:  productos,
		Categorias: categorias,
		Destacados: destacados,
		Filtro:     f,
	}, nil
}

func (s *catalogoService) Detalle(ctx context.Context, slug string) (*dto.DetalleProducto, error) {
	p, err := s.productos.ObtenerPorSlug(ctx, slug)
	if err != nil {
		return nil, siNoExiste(err, "Producto no encontrado.")
	}
	comentarios, err := s.comentarios.ListarPorProducto(ctx, p.ID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &dto.DetalleProducto{Producto: p, Comentarios: comentarios}, nil
}

func (s *catalogoService) Comentar(ctx context.Context, slug string, form dto.ComentarioForm) (bool, error) {
	p, err := s.productos.ObtenerPorSlug(ctx, slug)
	if err != nil {
		return false, siNoExiste(err, "Producto no encontrado.")
	}
	if form.Nombre == "" || form.Texto == "" {
		return false, nil
	}
	c := &model.Comentario{
		ProductoID: p.ID,
		Nombre:     truncar(form.Nombre, 100),
		Texto:      form.Texto,
	}
	if err := s.comentarios.Crear(ctx, c); err != nil {
		return false, errors.Trace(err)
	}
	return true, nil
}

// truncar cuts s to at most n runes.
func truncar(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
