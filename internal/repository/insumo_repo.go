package repository

import (
	"context"

	"pedidos/internal/dto"
	"pedidos/internal/model"

	"gorm.io/gorm"
)

// InsumoRepository is the data access contract for supplies.
type InsumoRepository interface {
	Crear(ctx context.Context, i *model.Insumo) error
	Listar(ctx context.Context, f dto.InsumoFilter) ([]model.Insumo, error)
	ObtenerPorID(ctx context.Context, id uint) (*model.Insumo, error)
	Actualizar(ctx context.Context, i *model.Insumo) error
	Eliminar(ctx context.Context, id uint) error
	Contar(ctx context.Context) (int64, error)

	// AumentarStock adds delta to cantidad_disponible of every listed row in
	// a single transaction and returns how many rows changed.
	AumentarStock(ctx context.Context, ids []uint, delta int) (int64, error)

	// Distinct values feeding the admin list filters.
	Tipos(ctx context.Context) ([]string, error)
	Marcas(ctx context.Context) ([]string, error)
}

type insumoRepo struct{ db *gorm.DB }

func NewInsumoRepository(db *gorm.DB) InsumoRepository { return &insumoRepo{db: db} }

func (r *insumoRepo) Crear(ctx context.Context, i *model.Insumo) error {
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *insumoRepo) Listar(ctx context.Context, f dto.InsumoFilter) ([]model.Insumo, error) {
	var insumos []model.Insumo
	q := r.db.WithContext(ctx).Model(&model.Insumo{})
	if f.Tipo != "" {
		q = q.Where("tipo = ?", f.Tipo)
	}
	if f.Marca != "" {
		q = q.Where("marca = ?", f.Marca)
	}
	err := q.Order("id ASC").Find(&insumos).Error
	return insumos, err
}

func (r *insumoRepo) ObtenerPorID(ctx context.Context, id uint) (*model.Insumo, error) {
	var i model.Insumo
	if err := r.db.WithContext(ctx).First(&i, id).Error; err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *insumoRepo) Actualizar(ctx context.Context, i *model.Insumo) error {
	return r.db.WithContext(ctx).Save(i).Error
}

func (r *insumoRepo) Eliminar(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Insumo{}, id).Error
}

func (r *insumoRepo) Contar(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Insumo{}).Count(&n).Error
	return n, err
}

func (r *insumoRepo) AumentarStock(ctx context.Context, ids []uint, delta int) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var afectadas int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Insumo{}).
			Where("id IN ?", ids).
			Update("cantidad_disponible", gorm.Expr("cantidad_disponible + ?", delta))
		afectadas = res.RowsAffected
		return res.Error
	})
	return afectadas, err
}

func (r *insumoRepo) Tipos(ctx context.Context) ([]string, error) {
	var tipos []string
	err := r.db.WithContext(ctx).Model(&model.Insumo{}).
		Distinct("tipo").Order("tipo ASC").Pluck("tipo", &tipos).Error
	return tipos, err
}

func (r *insumoRepo) Marcas(ctx context.Context) ([]string, error) {
	var marcas []string
	err := r.db.WithContext(ctx).Model(&model.Insumo{}).
		Distinct("marca").Order("marca ASC").Pluck("marca", &marcas).Error
	return marcas, err
}
