package produto

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"produto-api/pkg/apperrors"
)

// fakeRepository is an in-memory Repository used by the service and handler
// tests.
type fakeRepository struct {
	mu       sync.Mutex
	produtos map[uint]Produto
	nextID   uint
	failWith error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{produtos: map[uint]Produto{}, nextID: 1}
}

func (f *fakeRepository) seed(produtos ...Produto) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range produtos {
		p.ID = f.nextID
		f.nextID++
		f.produtos[p.ID] = p
	}
}

func (f *fakeRepository) Create(ctx context.Context, p *Produto) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	p.ID = f.nextID
	f.nextID++
	p.CriadoEm = time.Now()
	p.AtualizadoEm = p.CriadoEm
	f.produtos[p.ID] = *p
	return nil
}

func (f *fakeRepository) GetByID(ctx context.Context, id uint) (Produto, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return Produto{}, f.failWith
	}
	p, ok := f.produtos[id]
	if !ok {
		return Produto{}, apperrors.NotFound(fmt.Sprintf("produto com ID %d não encontrado", id))
	}
	return p, nil
}

func (f *fakeRepository) GetAll(ctx context.Context, offset, limit int) ([]Produto, int64, error) {
	return f.filtered(func(Produto) bool { return true }, offset, limit)
}

func (f *fakeRepository) GetByCategoria(ctx context.Context, categoria string, offset, limit int) ([]Produto, int64, error) {
	return f.filtered(func(p Produto) bool { return p.Categoria == categoria }, offset, limit)
}

func (f *fakeRepository) Search(ctx context.Context, termo string, offset, limit int) ([]Produto, int64, error) {
	termo = strings.ToLower(termo)
	return f.filtered(func(p Produto) bool {
		if strings.Contains(strings.ToLower(p.Nome), termo) {
			return true
		}
		return p.Descricao != nil && strings.Contains(strings.ToLower(*p.Descricao), termo)
	}, offset, limit)
}

func (f *fakeRepository) filtered(keep func(Produto) bool, offset, limit int) ([]Produto, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, 0, f.failWith
	}

	var all []Produto
	for _, p := range f.produtos {
		if keep(p) {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := int64(len(all))
	if offset >= len(all) {
		return []Produto{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeRepository) Update(ctx context.Context, id uint, changes map[string]interface{}) (Produto, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return Produto{}, f.failWith
	}
	p, ok := f.produtos[id]
	if !ok {
		return Produto{}, apperrors.NotFound(fmt.Sprintf("produto com ID %d não encontrado", id))
	}

	for field, value := range changes {
		switch field {
		case "nome":
			p.Nome = value.(string)
		case "descricao":
			d := value.(string)
			p.Descricao = &d
		case "preco":
			p.Preco = value.(float64)
		case "quantidade":
			p.Quantidade = value.(int)
		case "categoria":
			p.Categoria = value.(string)
		}
	}
	p.AtualizadoEm = time.Now()
	f.produtos[id] = p
	return p, nil
}

func (f *fakeRepository) Delete(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.produtos[id]; !ok {
		return apperrors.NotFound(fmt.Sprintf("produto com ID %d não encontrado", id))
	}
	delete(f.produtos, id)
	return nil
}
