package produto

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ProdutoCreateRequest is the payload for creating a product.
type ProdutoCreateRequest struct {
	Nome       string  `json:"nome" validate:"required,min=1,max=255"`
	Descricao  *string `json:"descricao,omitempty" validate:"omitempty,max=1000"`
	Preco      float64 `json:"preco" validate:"required,gt=0"`
	Quantidade int     `json:"quantidade" validate:"gte=0"`
	Categoria  string  `json:"categoria" validate:"required,min=1,max=100"`
}

func (r ProdutoCreateRequest) Validate() error {
	return validate.Struct(r)
}

// ProdutoUpdateRequest is the payload for a partial update; nil fields are
// left untouched.
type ProdutoUpdateRequest struct {
	Nome       *string  `json:"nome,omitempty" validate:"omitempty,min=1,max=255"`
	Descricao  *string  `json:"descricao,omitempty" validate:"omitempty,max=1000"`
	Preco      *float64 `json:"preco,omitempty" validate:"omitempty,gt=0"`
	Quantidade *int     `json:"quantidade,omitempty" validate:"omitempty,gte=0"`
	Categoria  *string  `json:"categoria,omitempty" validate:"omitempty,min=1,max=100"`
}

func (r ProdutoUpdateRequest) Validate() error {
	return validate.Struct(r)
}

func (r ProdutoUpdateRequest) Empty() bool {
	return r.Nome == nil && r.Descricao == nil && r.Preco == nil && r.Quantidade == nil && r.Categoria == nil
}

type ProdutoResponse struct {
	ID           uint      `json:"id"`
	Nome         string    `json:"nome"`
	Descricao    *string   `json:"descricao"`
	Preco        float64   `json:"preco"`
	Quantidade   int       `json:"quantidade"`
	Categoria    string    `json:"categoria"`
	CriadoEm     time.Time `json:"criado_em"`
	AtualizadoEm time.Time `json:"atualizado_em"`
}

type ProdutoListResponse struct {
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Items    []ProdutoResponse `json:"items"`
}

func toResponse(p Produto) ProdutoResponse {
	return ProdutoResponse{
		ID:           p.ID,
		Nome:         p.Nome,
		Descricao:    p.Descricao,
		Preco:        p.Preco,
		Quantidade:   p.Quantidade,
		Categoria:    p.Categoria,
		CriadoEm:     p.CriadoEm,
		AtualizadoEm: p.AtualizadoEm,
	}
}

func toListResponse(produtos []Produto, total int64, page, pageSize int) ProdutoListResponse {
	items := make([]ProdutoResponse, 0, len(produtos))
	for _, p := range produtos {
		items = append(items, toResponse(p))
	}
	return ProdutoListResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Items:    items,
	}
}
