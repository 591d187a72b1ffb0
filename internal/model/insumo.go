package model

// Insumo is a raw-material supply tracked for inventory.
type Insumo struct {
	ID                 uint   `gorm:"primaryKey"`
	Nombre             string `gorm:"size:100;not null"`
	Tipo               string `gorm:"size:100;not null;index"`
	CantidadDisponible int    `gorm:"not null;default:0;check:chk_insumos_cantidad_disponible,cantidad_disponible >= 0"`
	Marca              string `gorm:"size:50;not null;index"`
}

func (Insumo) TableName() string { return "insumos" }
