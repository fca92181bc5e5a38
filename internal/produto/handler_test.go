package produto

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"produto-api/pkg/apperrors"
)

func newTestRouter(t *testing.T) (*mux.Router, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	service, err := NewService(repo, zap.NewNop())
	require.NoError(t, err)

	r := mux.NewRouter()
	NewHandler(service, zap.NewNop()).Register(r)
	return r, repo
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reader).Encode(body))
	}
	req := httptest.NewRequest(method, path, &reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestHandler_Create(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/produtos", ProdutoCreateRequest{
		Nome:       "Caderno",
		Preco:      12.5,
		Quantidade: 30,
		Categoria:  "papelaria",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decodeBody[ProdutoResponse](t, rec)
	assert.Equal(t, uint(1), resp.ID)
	assert.Equal(t, "Caderno", resp.Nome)
}

func TestHandler_Create_Invalid(t *testing.T) {
	r, _ := newTestRouter(t)

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/produtos", bytes.NewBufferString("{nope"))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeBody[apperrors.ErrorResponse](t, rec)
		assert.Equal(t, "BadRequestError", resp.Error)
		assert.Equal(t, "/produtos", resp.Path)
	})

	t.Run("validation failure", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/produtos", ProdutoCreateRequest{Nome: "Caderno"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_Get(t *testing.T) {
	r, repo := newTestRouter(t)
	repo.seed(Produto{Nome: "Mouse", Preco: 89.9, Categoria: "eletrônicos"})

	t.Run("found", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/produtos/1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[ProdutoResponse](t, rec)
		assert.Equal(t, "Mouse", resp.Nome)
	})

	t.Run("not found", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/produtos/42", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		resp := decodeBody[apperrors.ErrorResponse](t, rec)
		assert.Equal(t, "NotFoundError", resp.Error)
		assert.Contains(t, resp.Message, "42")
	})

	t.Run("non-numeric id does not match route", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/produtos/abc", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_List(t *testing.T) {
	r, repo := newTestRouter(t)
	for i := 0; i < 15; i++ {
		repo.seed(Produto{Nome: "Item", Preco: 1, Categoria: "geral"})
	}

	rec := doJSON(t, r, http.MethodGet, "/produtos?page=2&page_size=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[ProdutoListResponse](t, rec)
	assert.Equal(t, int64(15), resp.Total)
	assert.Equal(t, 2, resp.Page)
	assert.Len(t, resp.Items, 5)
}

func TestHandler_List_InvalidPageParams(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, path := range []string{
		"/produtos?page=abc",
		"/produtos?page_size=xyz",
		"/produtos?page=-1",
		"/produtos?page_size=1000",
	} {
		rec := doJSON(t, r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestHandler_Search(t *testing.T) {
	r, repo := newTestRouter(t)
	repo.seed(
		Produto{Nome: "Caderno", Preco: 12.5, Categoria: "papelaria"},
		Produto{Nome: "Mouse", Preco: 89.9, Categoria: "eletrônicos"},
	)

	t.Run("matches", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/produtos/buscar/termo?termo=caderno", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[ProdutoListResponse](t, rec)
		assert.Equal(t, int64(1), resp.Total)
	})

	t.Run("term too short", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/produtos/buscar/termo?termo=a", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("dangerous term rejected", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/produtos/buscar/termo?termo=1%3BDROP+TABLE", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_ByCategoria(t *testing.T) {
	r, repo := newTestRouter(t)
	repo.seed(
		Produto{Nome: "Mouse", Preco: 89.9, Categoria: "perifericos"},
		Produto{Nome: "Teclado", Preco: 199, Categoria: "perifericos"},
		Produto{Nome: "Caderno", Preco: 12.5, Categoria: "papelaria"},
	)

	rec := doJSON(t, r, http.MethodGet, "/produtos/categoria/perifericos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[ProdutoListResponse](t, rec)
	assert.Equal(t, int64(2), resp.Total)
}

func TestHandler_Update(t *testing.T) {
	r, repo := newTestRouter(t)
	repo.seed(Produto{Nome: "Mouse", Preco: 89.9, Quantidade: 5, Categoria: "eletrônicos"})

	t.Run("partial update", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPut, "/produtos/1", map[string]interface{}{"preco": 79.9})
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[ProdutoResponse](t, rec)
		assert.Equal(t, 79.9, resp.Preco)
		assert.Equal(t, "Mouse", resp.Nome)
	})

	t.Run("empty body", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPut, "/produtos/1", map[string]interface{}{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPut, "/produtos/42", map[string]interface{}{"preco": 1.0})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_Delete(t *testing.T) {
	r, repo := newTestRouter(t)
	repo.seed(Produto{Nome: "Mouse", Preco: 89.9, Categoria: "eletrônicos"})

	rec := doJSON(t, r, http.MethodDelete, "/produtos/1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = doJSON(t, r, http.MethodDelete, "/produtos/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_ErrorEnvelopeEchoesRequestID(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/produtos/99", nil)
	req.Header.Set("X-Request-ID", "req-abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeBody[apperrors.ErrorResponse](t, rec)
	assert.Equal(t, "req-abc", resp.RequestID)
}
