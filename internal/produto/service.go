package produto

import (
	"context"

	"github.com/dgraph-io/ristretto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"produto-api/pkg/apperrors"
	"produto-api/pkg/sanitize"
)

// Service holds the business rules for products. GetByID responses are kept
// in an in-process cache that is invalidated on every write.
type Service struct {
	repository Repository
	cache      *ristretto.Cache
	logger     *zap.Logger
	tracer     trace.Tracer
}

func NewService(repository Repository, logger *zap.Logger) (*Service, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &Service{
		repository: repository,
		cache:      cache,
		logger:     logger.Named("service"),
		tracer:     otel.Tracer("produto-api/produto"),
	}, nil
}

func (s *Service) CriarProduto(ctx context.Context, req ProdutoCreateRequest) (ProdutoResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.criar_produto",
		trace.WithAttributes(
			attribute.String("produto.nome", req.Nome),
			attribute.String("produto.categoria", req.Categoria),
		))
	defer span.End()

	if err := req.Validate(); err != nil {
		return ProdutoResponse{}, s.fail(span, apperrors.BadRequest("dados do produto inválidos: "+err.Error()))
	}
	if req.Preco < 0.01 {
		return ProdutoResponse{}, s.fail(span, apperrors.BadRequest("o preço deve ser maior que 0"))
	}
	if req.Quantidade < 0 {
		return ProdutoResponse{}, s.fail(span, apperrors.BadRequest("a quantidade não pode ser negativa"))
	}

	p := Produto{
		Nome:       req.Nome,
		Descricao:  req.Descricao,
		Preco:      req.Preco,
		Quantidade: req.Quantidade,
		Categoria:  req.Categoria,
	}
	if err := s.repository.Create(ctx, &p); err != nil {
		return ProdutoResponse{}, s.fail(span, err)
	}

	span.SetAttributes(attribute.Int64("produto.id", int64(p.ID)))
	span.SetStatus(codes.Ok, "")
	s.logger.Info("produto criado", zap.Uint("produto_id", p.ID))
	return toResponse(p), nil
}

func (s *Service) ObterProduto(ctx context.Context, id uint) (ProdutoResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.obter_produto",
		trace.WithAttributes(attribute.Int64("produto.id", int64(id))))
	defer span.End()

	// ristretto hashes its key types explicitly; uint is not among them,
	// so the id is widened before every cache access.
	if cached, ok := s.cache.Get(uint64(id)); ok {
		if resp, ok := cached.(ProdutoResponse); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return resp, nil
		}
	}

	p, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return ProdutoResponse{}, s.fail(span, err)
	}

	resp := toResponse(p)
	s.cache.Set(uint64(id), resp, 1)
	return resp, nil
}

func (s *Service) ListarProdutos(ctx context.Context, page, pageSize int) (ProdutoListResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.listar_produtos")
	defer span.End()

	page, pageSize, err := sanitize.PageParams(page, pageSize)
	if err != nil {
		return ProdutoListResponse{}, s.fail(span, err)
	}

	produtos, total, err := s.repository.GetAll(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return ProdutoListResponse{}, s.fail(span, err)
	}
	return toListResponse(produtos, total, page, pageSize), nil
}

func (s *Service) ListarPorCategoria(ctx context.Context, categoria string, page, pageSize int) (ProdutoListResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.listar_por_categoria",
		trace.WithAttributes(attribute.String("produto.categoria", categoria)))
	defer span.End()

	page, pageSize, err := sanitize.PageParams(page, pageSize)
	if err != nil {
		return ProdutoListResponse{}, s.fail(span, err)
	}

	produtos, total, err := s.repository.GetByCategoria(ctx, categoria, (page-1)*pageSize, pageSize)
	if err != nil {
		return ProdutoListResponse{}, s.fail(span, err)
	}
	return toListResponse(produtos, total, page, pageSize), nil
}

func (s *Service) BuscarProdutos(ctx context.Context, termo string, page, pageSize int) (ProdutoListResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.buscar_produtos")
	defer span.End()

	page, pageSize, err := sanitize.PageParams(page, pageSize)
	if err != nil {
		return ProdutoListResponse{}, s.fail(span, err)
	}

	produtos, total, err := s.repository.Search(ctx, termo, (page-1)*pageSize, pageSize)
	if err != nil {
		return ProdutoListResponse{}, s.fail(span, err)
	}
	return toListResponse(produtos, total, page, pageSize), nil
}

func (s *Service) AtualizarProduto(ctx context.Context, id uint, req ProdutoUpdateRequest) (ProdutoResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.atualizar_produto",
		trace.WithAttributes(attribute.Int64("produto.id", int64(id))))
	defer span.End()

	if err := req.Validate(); err != nil {
		return ProdutoResponse{}, s.fail(span, apperrors.BadRequest("dados do produto inválidos: "+err.Error()))
	}
	if req.Empty() {
		return ProdutoResponse{}, s.fail(span, apperrors.BadRequest("nenhum campo para atualizar"))
	}

	changes := map[string]interface{}{}
	if req.Nome != nil {
		changes["nome"] = *req.Nome
	}
	if req.Descricao != nil {
		changes["descricao"] = *req.Descricao
	}
	if req.Preco != nil {
		changes["preco"] = *req.Preco
	}
	if req.Quantidade != nil {
		changes["quantidade"] = *req.Quantidade
	}
	if req.Categoria != nil {
		changes["categoria"] = *req.Categoria
	}

	p, err := s.repository.Update(ctx, id, changes)
	if err != nil {
		return ProdutoResponse{}, s.fail(span, err)
	}

	s.cache.Del(uint64(id))
	s.logger.Info("produto atualizado", zap.Uint("produto_id", id))
	return toResponse(p), nil
}

func (s *Service) DeletarProduto(ctx context.Context, id uint) error {
	ctx, span := s.tracer.Start(ctx, "service.deletar_produto",
		trace.WithAttributes(attribute.Int64("produto.id", int64(id))))
	defer span.End()

	if err := s.repository.Delete(ctx, id); err != nil {
		return s.fail(span, err)
	}

	s.cache.Del(uint64(id))
	s.logger.Info("produto deletado", zap.Uint("produto_id", id))
	return nil
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
