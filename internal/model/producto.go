package model

// MaxImagenesProducto caps inline images per product. Only the admin screens
// enforce it; the store accepts any number.
const MaxImagenesProducto = 3

// Producto is a catalog entry customers can browse, comment on and use as
// reference for a custom order.
type Producto struct {
	ID          uint   `gorm:"primaryKey"`
	Nombre      string `gorm:"size:200;not null"`
	Slug        string `gorm:"size:50;uniqueIndex;not null"`
	Descripcion string `gorm:"type:text;not null"`
	CategoriaID uint   `gorm:"not null;index"`
	PrecioBase  int    `gorm:"not null;default:0;check:chk_productos_precio_base,precio_base >= 0"`
	Destacado   bool   `gorm:"not null;default:false;index"`

	Categoria   *Categoria       `gorm:"foreignKey:CategoriaID"`
	Imagenes    []ProductoImagen `gorm:"foreignKey:ProductoID;constraint:OnDelete:CASCADE"`
	Comentarios []Comentario     `gorm:"foreignKey:ProductoID;constraint:OnDelete:CASCADE"`
}

func (Producto) TableName() string { return "productos" }

// ProductoImagen is one uploaded picture of a product, stored under productos/.
type ProductoImagen struct {
	ID         uint   `gorm:"primaryKey"`
	ProductoID uint   `gorm:"not null;index"`
	Imagen     string `gorm:"size:255;not null"`
}

func (ProductoImagen) TableName() string { return "producto_imagenes" }

// PrimeraImagen returns the oldest image of the product, or nil.
// Imagenes must be preloaded ordered by id.
func (p *Producto) PrimeraImagen() *ProductoImagen {
	if len(p.Imagenes) == 0 {
		return nil
	}
	return &p.Imagenes[0]
}
