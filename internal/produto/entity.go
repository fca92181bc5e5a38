package produto

import (
	"time"
)

// Produto is the database model for a product record.
type Produto struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	Nome         string    `gorm:"size:255;not null;index"`
	Descricao    *string   `gorm:"type:text"`
	Preco        float64   `gorm:"not null"`
	Quantidade   int       `gorm:"not null;default:0"`
	Categoria    string    `gorm:"size:100;not null;index"`
	CriadoEm     time.Time `gorm:"not null;autoCreateTime"`
	AtualizadoEm time.Time `gorm:"not null;autoUpdateTime"`
}

func (Produto) TableName() string {
	return "produtos"
}
