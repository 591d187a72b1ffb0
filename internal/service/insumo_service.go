package service

import (
	"context"
	"strings"

	"pedidos/internal/dto"
	"pedidos/internal/model"
	"pedidos/internal/repository"

	"github.com/juju/errors"
	"github.com/rs/zerolog/log"
)

// DeltaStock is the amount added by the "aumentar stock" admin action.
const DeltaStock = 10

const MensajeStockActualizado = "Stock actualizado correctamente."

// InsumoService manages raw-material supplies.
type InsumoService interface {
	Listar(ctx context.Context, f dto.InsumoFilter) ([]dto.InsumoResponse, error)
	Obtener(ctx context.Context, id uint) (*dto.InsumoResponse, error)
	Crear(ctx context.Context, req dto.InsumoRequest) (*dto.InsumoResponse, error)
	Reemplazar(ctx context.Context, id uint, req dto.InsumoRequest) (*dto.InsumoResponse, error)
	ActualizarParcial(ctx context.Context, id uint, req dto.InsumoPatchRequest) (*dto.InsumoResponse, error)
	Eliminar(ctx context.Context, id uint) error
	// AumentarStock adds DeltaStock to every selected supply and returns the
	// confirmation message shown to staff.
	AumentarStock(ctx context.Context, ids []uint) (string, error)
	Tipos(ctx context.Context) ([]string, error)
	Marcas(ctx context.Context) ([]string, error)
	Contar(ctx context.Context) (int64, error)
}

type insumoService struct {
	repo repository.InsumoRepository
}

func NewInsumoService(repo repository.InsumoRepository) InsumoService {
	return &insumoService{repo: repo}
}

func mapInsumo(i *model.Insumo) dto.InsumoResponse {
	return dto.InsumoResponse{
		ID:                 i.ID,
		Nombre:             i.Nombre,
		Tipo:               i.Tipo,
		CantidadDisponible: i.CantidadDisponible,
		Marca:              i.Marca,
	}
}

func (s *insumoService) Listar(ctx context.Context, f dto.InsumoFilter) ([]dto.InsumoResponse, error) {
	insumos, err := s.repo.Listar(ctx, f)
	if err != nil {
		return nil, errors.Trace(err)
	}
	resp := make([]dto.InsumoResponse, 0, len(insumos))
	for i := range insumos {
		resp = append(resp, mapInsumo(&insumos[i]))
	}
	return resp, nil
}

func (s *insumoService) Obtener(ctx context.Context, id uint) (*dto.InsumoResponse, error) {
	i, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, siNoExiste(err, "Insumo no encontrado.")
	}
	resp := mapInsumo(i)
	return &resp, nil
}

func (s *insumoService) Crear(ctx context.Context, req dto.InsumoRequest) (*dto.InsumoResponse, error) {
	i := &model.Insumo{}
	if err := aplicarInsumo(i, completoInsumo(req)); err != nil {
		return nil, err
	}
	if err := s.repo.Crear(ctx, i); err != nil {
		return nil, errors.Trace(err)
	}
	log.Info().Uint("insumo_id", i.ID).Str("nombre", i.Nombre).Msg("insumo creado")
	resp := mapInsumo(i)
	return &resp, nil
}

func (s *insumoService) Reemplazar(ctx context.Context, id uint, req dto.InsumoRequest) (*dto.InsumoResponse, error) {
	return s.ActualizarParcial(ctx, id, completoInsumo(req))
}

func (s *insumoService) ActualizarParcial(ctx context.Context, id uint, req dto.InsumoPatchRequest) (*dto.InsumoResponse, error) {
	i, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, siNoExiste(err, "Insumo no encontrado.")
	}
	if err := aplicarInsumo(i, req); err != nil {
		return nil, err
	}
	if err := s.repo.Actualizar(ctx, i); err != nil {
		return nil, errors.Trace(err)
	}
	resp := mapInsumo(i)
	return &resp, nil
}

func (s *insumoService) Eliminar(ctx context.Context, id uint) error {
	if _, err := s.repo.ObtenerPorID(ctx, id); err != nil {
		return siNoExiste(err, "Insumo no encontrado.")
	}
	return errors.Trace(s.repo.Eliminar(ctx, id))
}

func (s *insumoService) AumentarStock(ctx context.Context, ids []uint) (string, error) {
	if len(ids) == 0 {
		return "", invalido("Selecciona al menos un insumo.")
	}
	n, err := s.repo.AumentarStock(ctx, ids, DeltaStock)
	if err != nil {
		return "", errors.Trace(err)
	}
	log.Info().Int64("insumos", n).Int("delta", DeltaStock).Msg("stock aumentado")
	return MensajeStockActualizado, nil
}

func (s *insumoService) Tipos(ctx context.Context) ([]string, error) {
	v, err := s.repo.Tipos(ctx)
	return v, errors.Trace(err)
}

func (s *insumoService) Marcas(ctx context.Context) ([]string, error) {
	v, err := s.repo.Marcas(ctx)
	return v, errors.Trace(err)
}

func (s *insumoService) Contar(ctx context.Context) (int64, error) {
	n, err := s.repo.Contar(ctx)
	return n, errors.Trace(err)
}

func completoInsumo(req dto.InsumoRequest) dto.InsumoPatchRequest {
	c := dto.InsumoPatchRequest{
		Nombre:             &req.Nombre,
		Tipo:               &req.Tipo,
		Marca:              &req.Marca,
		CantidadDisponible: req.CantidadDisponible,
	}
	return c
}

func aplicarInsumo(i *model.Insumo, c dto.InsumoPatchRequest) error {
	campos := []struct {
		nombre string
		valor  *string
		dst    *string
	}{
		{"nombre", c.Nombre, &i.Nombre},
		{"tipo", c.Tipo, &i.Tipo},
		{"marca", c.Marca, &i.Marca},
	}
	for _, f := range campos {
		if f.valor == nil {
			continue
		}
		v := strings.TrimSpace(*f.valor)
		if v == "" {
			return invalido("%s es obligatorio.", f.nombre)
		}
		*f.dst = v
	}
	if c.CantidadDisponible != nil {
		if *c.CantidadDisponible < 0 {
			return invalido("cantidad_disponible no puede ser negativa.")
		}
		i.CantidadDisponible = *c.CantidadDisponible
	}
	return nil
}
