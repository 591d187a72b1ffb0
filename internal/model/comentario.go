package model

import (
	"time"

	"gorm.io/gorm"
)

// Comentario is a public comment left on a product detail page.
type Comentario struct {
	ID         uint      `gorm:"primaryKey"`
	ProductoID uint      `gorm:"not null;index"`
	Nombre     string    `gorm:"size:100;not null"`
	Texto      string    `gorm:"type:text;not null"`
	Fecha      time.Time `gorm:"<-:create;not null;index"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (Comentario) TableName() string { return "comentarios" }

// BeforeCreate stamps the comment date once.
func (c *Comentario) BeforeCreate(_ *gorm.DB) error {
	if c.Fecha.IsZero() {
		c.Fecha = time.Now().UTC()
	}
	return nil
}
