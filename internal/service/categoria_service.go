package service

import (
	"context"
	"strings"

	"pedidos/internal/dto"
	"pedidos/internal/model"
	"pedidos/internal/repository"

	"github.com/juju/errors"
)

// CategoriaService defines the admin operations over catalog categories.
type CategoriaService interface {
	Listar(ctx context.Context) ([]model.Categoria, error)
	Obtener(ctx context.Context, id uint) (*model.Categoria, error)
	// Guardar creates (id == 0) or updates a category.
	Guardar(ctx context.Context, id uint, form dto.CategoriaForm) (*model.Categoria, error)
	Eliminar(ctx context.Context, id uint) error
	Contar(ctx context.Context) (int64, error)
}

type categoriaService struct {
	repo      repository.CategoriaRepository
	productos repository.ProductoRepository
}

func NewCategoriaService(repo repository.CategoriaRepository, productos repository.ProductoRepository) CategoriaService {
	return &categoriaService{repo: repo, productos: productos}
}

func (s *categoriaService) Listar(ctx context.Context) ([]model.Categoria, error) {
	list, err := s.repo.Listar(ctx)
	return list, errors.Trace(err)
}

func (s *categoriaService) Obtener(ctx context.Context, id uint) (*model.Categoria, error) {
	c, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, siNoExiste(err, "Categoría no encontrada.")
	}
	return c, nil
}

func (s *categoriaService) Guardar(ctx context.Context, id uint, form dto.CategoriaForm) (*model.Categoria, error) {
	c := &model.Categoria{}
	if id != 0 {
		var err error
		if c, err = s.Obtener(ctx, id); err != nil {
			return nil, err
		}
	}

	nombre := strings.TrimSpace(form.Nombre)
	if nombre == "" {
		return nil, invalido("El nombre es obligatorio.")
	}
	sl, err := resolverSlug(ctx, form.Slug, nombre, id, s.repo.ExisteSlug)
	if err != nil {
		return nil, err
	}
	c.Nombre, c.Slug = nombre, sl

	if id == 0 {
		err = s.repo.Crear(ctx, c)
	} else {
		err = s.repo.Actualizar(ctx, c)
	}
	if err != nil {
		return nil, siDuplicado(err, "Ya existe una categoría con el slug %q.", sl)
	}
	return c, nil
}

// Eliminar cascades to the category's products, so it is refused while any
// of them is referenced by an order.
func (s *categoriaService) Eliminar(ctx context.Context, id uint) error {
	if _, err := s.Obtener(ctx, id); err != nil {
		return err
	}
	n, err := s.productos.ContarPedidosPorCategoria(ctx, id)
	if err != nil {
		return errors.Trace(err)
	}
	if n > 0 {
		return prohibido("No se puede eliminar la categoría: %d pedido(s) hacen referencia a sus productos.", n)
	}
	return errors.Trace(s.repo.Eliminar(ctx, id))
}

func (s *categoriaService) Contar(ctx context.Context) (int64, error) {
	n, err := s.repo.Contar(ctx)
	return n, errors.Trace(err)
}
