package produto

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"produto-api/pkg/apperrors"
	"produto-api/pkg/sanitize"
)

// Handler exposes the product CRUD routes.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("api")}
}

// Register mounts the routes on the router. Static paths are registered
// before the {id} routes so mux resolves them first.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/produtos", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/produtos", h.List).Methods(http.MethodGet)
	r.HandleFunc("/produtos/buscar/termo", h.Search).Methods(http.MethodGet)
	r.HandleFunc("/produtos/categoria/{categoria}", h.ByCategoria).Methods(http.MethodGet)
	r.HandleFunc("/produtos/{id:[0-9]+}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/produtos/{id:[0-9]+}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/produtos/{id:[0-9]+}", h.Delete).Methods(http.MethodDelete)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProdutoCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, apperrors.BadRequest("corpo da requisição inválido"))
		return
	}
	defer r.Body.Close()

	resp, err := h.service.CriarProduto(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.service.ObterProduto(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize, err := queryPageParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.service.ListarProdutos(r.Context(), page, pageSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ByCategoria(w http.ResponseWriter, r *http.Request) {
	categoria, err := sanitize.Category(mux.Vars(r)["categoria"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	page, pageSize, err := queryPageParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.service.ListarPorCategoria(r.Context(), categoria, page, pageSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	termo, err := sanitize.SearchTerm(r.URL.Query().Get("termo"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	page, pageSize, err := queryPageParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.service.BuscarProdutos(r.Context(), termo, page, pageSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req ProdutoUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, apperrors.BadRequest("corpo da requisição inválido"))
		return
	}
	defer r.Body.Close()

	resp, err := h.service.AtualizarProduto(r.Context(), id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.service.DeletarProduto(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pathID(r *http.Request) (uint, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.BadRequest("ID do produto inválido")
	}
	if err := sanitize.ID(id, "ID do produto"); err != nil {
		return 0, err
	}
	return uint(id), nil
}

func queryPageParams(r *http.Request) (int, int, error) {
	query := r.URL.Query()

	page := 0
	if raw := query.Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, apperrors.BadRequest("parâmetro page inválido")
		}
		page = parsed
	}

	pageSize := 0
	if raw := query.Get("page_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, apperrors.BadRequest("parâmetro page_size inválido")
		}
		pageSize = parsed
	}

	return sanitize.PageParams(page, pageSize)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperrors.From(err)
	if ae.Status >= 500 {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	} else {
		h.logger.Warn("request rejected",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ae.Status),
			zap.String("reason", ae.Message),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ae.Status)
	_ = json.NewEncoder(w).Encode(ae.Response(r.URL.Path, r.Header.Get("X-Request-ID")))
}
