package produto

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"produto-api/pkg/apperrors"
)

// Repository abstracts product persistence so the service can be tested
// against a fake.
type Repository interface {
	Create(ctx context.Context, p *Produto) error
	GetByID(ctx context.Context, id uint) (Produto, error)
	GetAll(ctx context.Context, offset, limit int) ([]Produto, int64, error)
	GetByCategoria(ctx context.Context, categoria string, offset, limit int) ([]Produto, int64, error)
	Search(ctx context.Context, termo string, offset, limit int) ([]Produto, int64, error)
	Update(ctx context.Context, id uint, changes map[string]interface{}) (Produto, error)
	Delete(ctx context.Context, id uint) error
}

type gormRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewRepository(db *gorm.DB, logger *zap.Logger) Repository {
	return &gormRepository{db: db, logger: logger.Named("repository")}
}

func (r *gormRepository) Create(ctx context.Context, p *Produto) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		r.logger.Error("failed to create produto", zap.Error(err))
		return fmt.Errorf("failed to create produto: %w", err)
	}
	r.logger.Info("produto created", zap.Uint("produto_id", p.ID))
	return nil
}

func (r *gormRepository) GetByID(ctx context.Context, id uint) (Produto, error) {
	var p Produto
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.Warn("produto not found", zap.Uint("produto_id", id))
		return Produto{}, apperrors.NotFound(fmt.Sprintf("produto com ID %d não encontrado", id))
	}
	if err != nil {
		return Produto{}, fmt.Errorf("failed to get produto %d: %w", id, err)
	}
	return p, nil
}

func (r *gormRepository) GetAll(ctx context.Context, offset, limit int) ([]Produto, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&Produto{}), offset, limit)
}

func (r *gormRepository) GetByCategoria(ctx context.Context, categoria string, offset, limit int) ([]Produto, int64, error) {
	query := r.db.WithContext(ctx).Model(&Produto{}).Where("categoria = ?", categoria)
	return r.list(ctx, query, offset, limit)
}

func (r *gormRepository) Search(ctx context.Context, termo string, offset, limit int) ([]Produto, int64, error) {
	pattern := "%" + termo + "%"
	query := r.db.WithContext(ctx).Model(&Produto{}).
		Where("nome ILIKE ? OR descricao ILIKE ?", pattern, pattern)
	return r.list(ctx, query, offset, limit)
}

func (r *gormRepository) list(ctx context.Context, query *gorm.DB, offset, limit int) ([]Produto, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count produtos: %w", err)
	}

	var produtos []Produto
	if err := query.Offset(offset).Limit(limit).Order("id").Find(&produtos).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list produtos: %w", err)
	}
	return produtos, total, nil
}

func (r *gormRepository) Update(ctx context.Context, id uint, changes map[string]interface{}) (Produto, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return Produto{}, err
	}

	if err := r.db.WithContext(ctx).Model(&p).Updates(changes).Error; err != nil {
		r.logger.Error("failed to update produto", zap.Uint("produto_id", id), zap.Error(err))
		return Produto{}, fmt.Errorf("failed to update produto %d: %w", id, err)
	}

	r.logger.Info("produto updated", zap.Uint("produto_id", id))
	return r.GetByID(ctx, id)
}

func (r *gormRepository) Delete(ctx context.Context, id uint) error {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Delete(&p).Error; err != nil {
		r.logger.Error("failed to delete produto", zap.Uint("produto_id", id), zap.Error(err))
		return fmt.Errorf("failed to delete produto %d: %w", id, err)
	}

	r.logger.Info("produto deleted", zap.Uint("produto_id", id))
	return nil
}
