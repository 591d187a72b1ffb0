package repository

import (
	"context"

	"pedidos/internal/model"

	"gorm.io/gorm"
)

type ComentarioRepository interface {
	Crear(ctx context.Context, c *model.Comentario) error
	// ListarPorProducto returns the comments of a product, newest first.
	ListarPorProducto(ctx context.Context, productoID uint) ([]model.Comentario, error)
	ListarTodos(ctx context.Context) ([]model.Comentario, error)
	ObtenerPorID(ctx context.Context, id uint) (*model.Comentario, error)
	Actualizar(ctx context.Context, c *model.Comentario) error
	Eliminar(ctx context.Context, id uint) error
	Contar(ctx context.Context) (int64, error)
}

type comentarioRepo struct{ db *gorm.DB }

func NewComentarioRepository(db *gorm.DB) ComentarioRepository { return &comentarioRepo{db: db} }

func (r *comentarioRepo) Crear(ctx context.Context, c *model.Comentario) error {
	return r.db.WithContext(ctx).Omit("Producto").Create(c).Error
}

func (r *comentarioRepo) ListarPorProducto(ctx context.Context, productoID uint) ([]model.Comentario, error) {
	var list []model.Comentario
	err := r.db.WithContext(ctx).
		Where("producto_id = ?", productoID).
		Order("fecha DESC").Order("id DESC").
		Find(&list).Error
	return list, err
}

func (r *comentarioRepo) ListarTodos(ctx context.Context) ([]model.Comentario, error) {
	var list []model.Comentario
	err := r.db.WithContext(ctx).
		Preload("Producto").
		Order("fecha DESC").Order("id DESC").
		Find(&list).Error
	return list, err
}

func (r *comentarioRepo) ObtenerPorID(ctx context.Context, id uint) (*model.Comentario, error) {
	var c model.Comentario
	if err := r.db.WithContext(ctx).Preload("Producto").First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *comentarioRepo) Actualizar(ctx context.Context, c *model.Comentario) error {
	return r.db.WithContext(ctx).Omit("Producto").Save(c).Error
}

func (r *comentarioRepo) Eliminar(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Comentario{}, id).Error
}

func (r *comentarioRepo) Contar(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Comentario{}).Count(&n).Error
	return n, err
}
