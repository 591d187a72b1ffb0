package model

// Categoria groups catalog products. Slug is the public identifier used by
// the catalog filter (?categoria=<slug>).
type Categoria struct {
	ID     uint   `gorm:"primaryKey"`
	Nombre string `gorm:"size:100;not null"`
	Slug   string `gorm:"size:50;uniqueIndex;not null"`

	Productos []Producto `gorm:"foreignKey:CategoriaID;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default singular → plural logic for Spanish names.
func (Categoria) TableName() string { return "categorias" }
