package repository

import (
	"context"

	"pedidos/internal/dto"
	"pedidos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PedidoRepository is the data access contract for orders and their
// reference images.
type PedidoRepository interface {
	// Crear inserts the order and its ImagenesReferencia in one transaction.
	Crear(ctx context.Context, p *model.Pedido) error
	ObtenerPorID(ctx context.Context, id uint) (*model.Pedido, error)
	ObtenerPorToken(ctx context.Context, token uuid.UUID) (*model.Pedido, error)
	// Actualizar writes every mutable column; fecha_creacion and
	// token_seguimiento are never rewritten.
	Actualizar(ctx context.Context, p *model.Pedido) error
	Eliminar(ctx context.Context, id uint) error
	Contar(ctx context.Context) (int64, error)

	// Filtrar returns orders newest first, applying the optional range,
	// state and cap.
	Filtrar(ctx context.Context, q dto.ConsultaPedidos) ([]model.Pedido, error)
	ListarAdmin(ctx context.Context, f dto.PedidoAdminFilter) ([]model.Pedido, error)

	// Report aggregates
	ContarPorEstado(ctx context.Context) ([]ConteoGrupo, error)
	ContarPorPlataforma(ctx context.Context) ([]ConteoGrupo, error)

	// Inline images
	AgregarImagenes(ctx context.Context, imgs []model.ImagenReferencia) error
	EliminarImagenes(ctx context.Context, pedidoID uint, ids []uint) ([]model.ImagenReferencia, error)
}

type pedidoRepo struct{ db *gorm.DB }

func NewPedidoRepository(db *gorm.DB) PedidoRepository { return &pedidoRepo{db: db} }

func (r *pedidoRepo) Crear(ctx context.Context, p *model.Pedido) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		imagenes := p.ImagenesReferencia
		p.ImagenesReferencia = nil
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return err
		}
		for i := range imagenes {
			imagenes[i].PedidoID = p.ID
		}
		if len(imagenes) > 0 {
			if err := tx.Create(&imagenes).Error; err != nil {
				return err
			}
		}
		p.ImagenesReferencia = imagenes
		return nil
	})
}

func (r *pedidoRepo) ObtenerPorID(ctx context.Context, id uint) (*model.Pedido, error) {
	var p model.Pedido
	err := r.db.WithContext(ctx).
		Preload("ProductoReferencia").
		Preload("ImagenesReferencia", ordenImagenes).
		First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pedidoRepo) ObtenerPorToken(ctx context.Context, token uuid.UUID) (*model.Pedido, error) {
	var p model.Pedido
	err := r.db.WithContext(ctx).
		Preload("ProductoReferencia").
		Preload("ImagenesReferencia", ordenImagenes).
		Where("token_seguimiento = ?", token).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pedidoRepo) Actualizar(ctx context.Context, p *model.Pedido) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (r *pedidoRepo) Eliminar(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Pedido{}, id).Error
}

func (r *pedidoRepo) Contar(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Pedido{}).Count(&n).Error
	return n, err
}

func (r *pedidoRepo) Filtrar(ctx context.Context, q dto.ConsultaPedidos) ([]model.Pedido, error) {
	pedidos := []model.Pedido{}
	if q.Limite != nil && *q.Limite == 0 {
		return pedidos, nil
	}

	tx := r.db.WithContext(ctx).Model(&model.Pedido{})
	if q.Desde != nil && q.Hasta != nil {
		tx = tx.Where("fecha_creacion >= ? AND fecha_creacion < ?", q.Desde.UTC(), q.Hasta.UTC())
	}
	if q.Estado != "" {
		tx = tx.Where("estado = ?", q.Estado)
	}
	tx = tx.Order("fecha_creacion DESC").Order("id DESC")
	if q.Limite != nil {
		tx = tx.Limit(*q.Limite)
	}
	err := tx.Find(&pedidos).Error
	return pedidos, err
}

func (r *pedidoRepo) ListarAdmin(ctx context.Context, f dto.PedidoAdminFilter) ([]model.Pedido, error) {
	var pedidos []model.Pedido
	tx := r.db.WithContext(ctx).Model(&model.Pedido{})
	if f.Estado != "" {
		tx = tx.Where("estado = ?", f.Estado)
	}
	if f.EstadoPago != "" {
		tx = tx.Where("estado_pago = ?", f.EstadoPago)
	}
	if f.Busqueda != "" {
		patron := patronContiene(f.Busqueda)
		tx = tx.Where(
			"("+contiene(r.db, "nombre_cliente")+" OR "+contiene(r.db, "CAST(token_seguimiento AS TEXT)")+")",
			patron, patron)
	}
	err := tx.Order("fecha_creacion DESC").Order("id DESC").Find(&pedidos).Error
	return pedidos, err
}

func (r *pedidoRepo) contarPor(ctx context.Context, columna string) ([]ConteoGrupo, error) {
	var filas []ConteoGrupo
	err := r.db.WithContext(ctx).Model(&model.Pedido{}).
		Select(columna + " AS valor, COUNT(*) AS total").
		Group(columna).
		Order(columna).
		Scan(&filas).Error
	return filas, err
}

func (r *pedidoRepo) ContarPorEstado(ctx context.Context) ([]ConteoGrupo, error) {
	return r.contarPor(ctx, "estado")
}

func (r *pedidoRepo) ContarPorPlataforma(ctx context.Context) ([]ConteoGrupo, error) {
	return r.contarPor(ctx, "plataforma_origen")
}

func (r *pedidoRepo) AgregarImagenes(ctx context.Context, imgs []model.ImagenReferencia) error {
	if len(imgs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&imgs).Error
}

func (r *pedidoRepo) EliminarImagenes(ctx context.Context, pedidoID uint, ids []uint) ([]model.ImagenReferencia, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var borradas []model.ImagenReferencia
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pedido_id = ? AND id IN ?", pedidoID, ids).Find(&borradas).Error; err != nil {
			return err
		}
		if len(borradas) == 0 {
			return nil
		}
		return tx.Delete(&borradas).Error
	})
	return borradas, err
}
