package model

import "time"

// Usuario is a staff account. Any active user may open the report;
// EsStaff is required for the admin screens.
type Usuario struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:150;uniqueIndex;not null"`
	Nombre       string `gorm:"size:100;not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	EsStaff      bool   `gorm:"not null;default:false"`
	Activo       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Usuario) TableName() string { return "usuarios" }
