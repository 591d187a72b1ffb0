package repository

import (
	"context"

	"pedidos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductoListado filters product lists. Zero values disable each filter.
type ProductoListado struct {
	CategoriaSlug string
	CategoriaID   uint
	Busqueda      string
	Destacado     *bool
}

// ProductoRepository defines the data access contract for catalog products.
// Services depend on this interface, not on the concrete GORM implementation.
type ProductoRepository interface {
	Crear(ctx context.Context, p *model.Producto) error
	Listar(ctx context.Context, f ProductoListado) ([]model.Producto, error)
	ObtenerPorID(ctx context.Context, id uint) (*model.Producto, error)
	ObtenerPorSlug(ctx context.Context, slug string) (*model.Producto, error)
	// Existe is a cheap lookup used to resolve order references.
	Existe(ctx context.Context, id uint) (bool, error)
	ExisteSlug(ctx context.Context, slug string, excluirID uint) (bool, error)
	Actualizar(ctx context.Context, p *model.Producto) error
	Eliminar(ctx context.Context, id uint) error
	Contar(ctx context.Context) (int64, error)

	// Orders referencing products block their deletion.
	ContarPedidos(ctx context.Context, productoID uint) (int64, error)
	ContarPedidosPorCategoria(ctx context.Context, categoriaID uint) (int64, error)

	// Inline images
	AgregarImagenes(ctx context.Context, imgs []model.ProductoImagen) error
	// EliminarImagenes deletes the listed images of a product and returns the
	// rows actually removed so their files can be cleaned up.
	EliminarImagenes(ctx context.Context, productoID uint, ids []uint) ([]model.ProductoImagen, error)
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func ordenImagenes(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }

func (r *productoRepo) Crear(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) Listar(ctx context.Context, f ProductoListado) ([]model.Producto, error) {
	var productos []model.Producto

	q := r.db.WithContext(ctx).Model(&model.Producto{}).
		Preload("Categoria").
		Preload("Imagenes", ordenImagenes)

	if f.CategoriaSlug != "" {
		q = q.Where("categoria_id IN (?)",
			r.db.Model(&model.Categoria{}).Select("id").Where("slug = ?", f.CategoriaSlug))
	}
	if f.CategoriaID != 0 {
		q = q.Where("categoria_id = ?", f.CategoriaID)
	}
	if f.Busqueda != "" {
		q = q.Where(contiene(r.db, "nombre"), patronContiene(f.Busqueda))
	}
	if f.Destacado != nil {
		q = q.Where("destacado = ?", *f.Destacado)
	}

	err := q.Order("id ASC").Find(&productos).Error
	return productos, err
}

func (r *productoRepo) ObtenerPorID(ctx context.Context, id uint) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).
		Preload("Categoria").
		Preload("Imagenes", ordenImagenes).
		First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) ObtenerPorSlug(ctx context.Context, slug string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).
		Preload("Categoria").
		Preload("Imagenes", ordenImagenes).
		Where("slug = ?", slug).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) Existe(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *productoRepo) ExisteSlug(ctx context.Context, slug string, excluirID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Producto{}).
		Where("slug = ? AND id <> ?", slug, excluirID).
		Count(&n).Error
	return n > 0, err
}

func (r *productoRepo) Actualizar(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (r *productoRepo) Eliminar(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Producto{}, id).Error
}

func (r *productoRepo) Contar(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Producto{}).Count(&n).Error
	return n, err
}

func (r *productoRepo) ContarPedidos(ctx context.Context, productoID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Pedido{}).
		Where("producto_referencia_id = ?", productoID).
		Count(&n).Error
	return n, err
}

func (r *productoRepo) ContarPedidosPorCategoria(ctx context.Context, categoriaID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Pedido{}).
		Where("producto_referencia_id IN (?)",
			r.db.Model(&model.Producto{}).Select("id").Where("categoria_id = ?", categoriaID)).
		Count(&n).Error
	return n, err
}

func (r *productoRepo) AgregarImagenes(ctx context.Context, imgs []model.ProductoImagen) error {
	if len(imgs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&imgs).Error
}

func (r *productoRepo) EliminarImagenes(ctx context.Context, productoID uint, ids []uint) ([]model.ProductoImagen, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var borradas []model.ProductoImagen
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("producto_id = ? AND id IN ?", productoID, ids).Find(&borradas).Error; err != nil {
			return err
		}
		if len(borradas) == 0 {
			return nil
		}
		return tx.Delete(&borradas).Error
	})
	return borradas, err
}
