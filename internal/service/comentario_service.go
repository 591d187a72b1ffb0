package service

import (
	"context"
	"strings"

	"pedidos/internal/dto"
	"pedidos/internal/model"
	"pedidos/internal/repository"

	"github.com/juju/errors"
)

// ComentarioService is the staff side of product comments. Customers create
// them through CatalogoService.Comentar.
type ComentarioService interface {
	Listar(ctx context.Context) ([]model.Comentario, error)
	Obtener(ctx context.Context, id uint) (*model.Comentario, error)
	Guardar(ctx context.Context, id uint, form dto.ComentarioAdminForm) (*model.Comentario, error)
	Eliminar(ctx context.Context, id uint) error
	Contar(ctx context.Context) (int64, error)
}

type comentarioService struct {
	repo      repository.ComentarioRepository
	productos repository.ProductoRepository
}

func NewComentarioService(repo repository.ComentarioRepository, productos repository.ProductoRepository) ComentarioService {
	return &comentarioService{repo: repo, productos: productos}
}

func (s *comentarioService) Listar(ctx context.Context) ([]model.Comentario, error) {
	list, err := s.repo.ListarTodos(ctx)
	return list, errors.Trace(err)
}

func (s *comentarioService) Obtener(ctx context.Context, id uint) (*model.Comentario, error) {
	c, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, siNoExiste(err, "Comentario no encontrado.")
	}
	return c, nil
}

func (s *comentarioService) Guardar(ctx context.Context, id uint, form dto.ComentarioAdminForm) (*model.Comentario, error) {
	c := &model.Comentario{}
	if id != 0 {
		var err error
		if c, err = s.Obtener(ctx, id); err != nil {
			return nil, err
		}
	}
	nombre, texto := strings.TrimSpace(form.Nombre), strings.TrimSpace(form.Texto)
	if nombre == "" || texto == "" {
		return nil, invalido("Nombre y texto son obligatorios.")
	}
	ok, err := s.productos.Existe(ctx, form.ProductoID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if !ok {
		return nil, invalido("El producto seleccionado no existe.")
	}

	c.ProductoID, c.Producto = form.ProductoID, nil
	c.Nombre, c.Texto = truncar(nombre, 100), texto
	if id == 0 {
		err = s.repo.Crear(ctx, c)
	} else {
		err = s.repo.Actualizar(ctx, c)
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	return c, nil
}

func (s *comentarioService) Eliminar(ctx context.Context, id uint) error {
	if _, err := s.Obtener(ctx, id); err != nil {
		return err
	}
	return errors.Trace(s.repo.Eliminar(ctx, id))
}

func (s *comentarioService) Contar(ctx context.Context) (int64, error) {
	n, err := s.repo.Contar(ctx)
	return n, errors.Trace(err)
}
