package produto

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"produto-api/pkg/apperrors"
)

func newTestService(t *testing.T) (*Service, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	service, err := NewService(repo, zap.NewNop())
	require.NoError(t, err)
	return service, repo
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestService_CriarProduto(t *testing.T) {
	service, _ := newTestService(t)

	resp, err := service.CriarProduto(context.Background(), ProdutoCreateRequest{
		Nome:       "Caderno",
		Descricao:  strPtr("Caderno universitário 96 folhas"),
		Preco:      12.5,
		Quantidade: 30,
		Categoria:  "papelaria",
	})
	require.NoError(t, err)

	assert.Equal(t, uint(1), resp.ID)
	assert.Equal(t, "Caderno", resp.Nome)
	assert.Equal(t, 12.5, resp.Preco)
	assert.Equal(t, "papelaria", resp.Categoria)
}

func TestService_CriarProduto_Invalid(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	cases := map[string]ProdutoCreateRequest{
		"missing nome":        {Preco: 10, Quantidade: 1, Categoria: "x"},
		"missing categoria":   {Nome: "Caderno", Preco: 10, Quantidade: 1},
		"zero preco":          {Nome: "Caderno", Preco: 0, Quantidade: 1, Categoria: "x"},
		"negative quantidade": {Nome: "Caderno", Preco: 10, Quantidade: -1, Categoria: "x"},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := service.CriarProduto(ctx, req)
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, apperrors.From(err).Status)
		})
	}
}

func TestService_ObterProduto(t *testing.T) {
	service, repo := newTestService(t)
	repo.seed(Produto{Nome: "Mouse", Preco: 89.9, Categoria: "eletrônicos"})

	resp, err := service.ObterProduto(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Mouse", resp.Nome)

	_, err = service.ObterProduto(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperrors.From(err).Status)
}

func TestService_ObterProduto_CacheLifecycle(t *testing.T) {
	service, repo := newTestService(t)
	repo.seed(Produto{Nome: "Mouse", Preco: 89.9, Categoria: "eletrônicos"})

	first, err := service.ObterProduto(context.Background(), 1)
	require.NoError(t, err)
	service.cache.Wait()

	// mutate storage behind the cache; a hit must return the cached copy
	repo.mu.Lock()
	p := repo.produtos[1]
	p.Nome = "Mouse Gamer"
	repo.produtos[1] = p
	repo.mu.Unlock()

	cached, err := service.ObterProduto(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, first.Nome, cached.Nome)

	// a write invalidates the entry, so the next read sees fresh data
	updated, err := service.AtualizarProduto(context.Background(), 1, ProdutoUpdateRequest{
		Preco: floatPtr(59.9),
	})
	require.NoError(t, err)
	assert.Equal(t, 59.9, updated.Preco)
	service.cache.Wait()

	fresh, err := service.ObterProduto(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Mouse Gamer", fresh.Nome)

	require.NoError(t, service.DeletarProduto(context.Background(), 1))
}

func TestService_ListarProdutos_Pagination(t *testing.T) {
	service, repo := newTestService(t)
	for i := 0; i < 25; i++ {
		repo.seed(Produto{Nome: "Item", Preco: 1, Categoria: "geral"})
	}

	resp, err := service.ListarProdutos(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(25), resp.Total)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 10, resp.PageSize)
	require.Len(t, resp.Items, 10)
	assert.Equal(t, uint(11), resp.Items[0].ID)

	resp, err = service.ListarProdutos(context.Background(), 3, 10)
	require.NoError(t, err)
	assert.Len(t, resp.Items, 5)
}

func TestService_ListarProdutos_DefaultsApplied(t *testing.T) {
	service, repo := newTestService(t)
	repo.seed(Produto{Nome: "Item", Preco: 1, Categoria: "geral"})

	resp, err := service.ListarProdutos(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 10, resp.PageSize)
}

func TestService_ListarPorCategoria(t *testing.T) {
	service, repo := newTestService(t)
	repo.seed(
		Produto{Nome: "Mouse", Preco: 89.9, Categoria: "eletrônicos"},
		Produto{Nome: "Caderno", Preco: 12.5, Categoria: "papelaria"},
		Produto{Nome: "Teclado", Preco: 199, Categoria: "eletrônicos"},
	)

	resp, err := service.ListarPorCategoria(context.Background(), "eletrônicos", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Mouse", resp.Items[0].Nome)
	assert.Equal(t, "Teclado", resp.Items[1].Nome)
}

func TestService_BuscarProdutos(t *testing.T) {
	service, repo := newTestService(t)
	repo.seed(
		Produto{Nome: "Caderno grande", Preco: 15, Categoria: "papelaria"},
		Produto{Nome: "Lápis", Descricao: strPtr("lápis para caderno"), Preco: 2, Categoria: "papelaria"},
		Produto{Nome: "Mouse", Preco: 89.9, Categoria: "eletrônicos"},
	)

	resp, err := service.BuscarProdutos(context.Background(), "caderno", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
}

func TestService_AtualizarProduto(t *testing.T) {
	service, repo := newTestService(t)
	repo.seed(Produto{Nome: "Mouse", Preco: 89.9, Quantidade: 5, Categoria: "eletrônicos"})

	resp, err := service.AtualizarProduto(context.Background(), 1, ProdutoUpdateRequest{
		Preco: floatPtr(79.9),
	})
	require.NoError(t, err)
	assert.Equal(t, 79.9, resp.Preco)
	assert.Equal(t, "Mouse", resp.Nome)
	assert.Equal(t, 5, resp.Quantidade)
}

func TestService_AtualizarProduto_Errors(t *testing.T) {
	service, repo := newTestService(t)
	repo.seed(Produto{Nome: "Mouse", Preco: 89.9, Categoria: "eletrônicos"})

	t.Run("empty update", func(t *testing.T) {
		_, err := service.AtualizarProduto(context.Background(), 1, ProdutoUpdateRequest{})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperrors.From(err).Status)
	})

	t.Run("invalid preco", func(t *testing.T) {
		_, err := service.AtualizarProduto(context.Background(), 1, ProdutoUpdateRequest{Preco: floatPtr(0)})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperrors.From(err).Status)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := service.AtualizarProduto(context.Background(), 42, ProdutoUpdateRequest{Preco: floatPtr(1)})
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, apperrors.From(err).Status)
	})
}

func TestService_DeletarProduto(t *testing.T) {
	service, repo := newTestService(t)
	repo.seed(Produto{Nome: "Mouse", Preco: 89.9, Categoria: "eletrônicos"})

	require.NoError(t, service.DeletarProduto(context.Background(), 1))

	_, err := repo.GetByID(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperrors.From(err).Status)

	err = service.DeletarProduto(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperrors.From(err).Status)
}

func TestService_RepositoryFailureBecomesInternal(t *testing.T) {
	service, repo := newTestService(t)
	repo.failWith = errors.New("connection reset")

	_, err := service.ObterProduto(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apperrors.From(err).Status)
}
