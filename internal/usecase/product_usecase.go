package usecase

import (
	"context"
	"errors"

	"projexa/internal/domain"

	"github.com/sirupsen/logrus"
)

type productUseCase struct {
	productRepo domain.ProductRepository
	log         *logrus.Logger
}

func NewProductUseCase(repo domain.ProductRepository, logger *logrus.Logger) domain.ProductUseCase {
	return &productUseCase{
		productRepo: repo,
		log:         logger,
	}
}

func (uc *productUseCase) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := uc.productRepo.ListProducts(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list products: %v", err)
		return []domain.Product{}, nil
	}
	return products, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		uc.log.Warnf("Use Case: Attempted to get product with invalid ID: %d", id)
		return nil, domain.NewValidationError("id", "product id must be positive")
	}
	product, err := uc.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			uc.log.Errorf("Use Case: Repository failed to get product ID %d: %v", id, err)
		}
		return nil, nil
	}
	return product, nil
}
