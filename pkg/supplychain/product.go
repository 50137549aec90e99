package supplychain

import (
	"context"

	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/roles"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/Ramsey-B/clover/pkg/validation"
)

// CreateProduct registers a new product type. The creation is mirrored to
// the ledger; the response carries sync_status PENDING until the dispatcher
// completes.
func (s *Service) CreateProduct(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	if err := roles.Require(ctx, roles.CapManageProducts); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.CreateProduct")
	defer span.End()

	if err := validation.NonEmptyString(req.Name, "name"); err != nil {
		return nil, err
	}

	created, err := s.products.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.dispatcher.ProductCreated(ctx, created)
	if s.emitter != nil {
		s.emitter.EmitProductCreated(ctx, created)
	}
	if s.provenance != nil {
		s.provenance.UpsertProduct(ctx, created)
	}

	return created, nil
}

// GetProduct retrieves a product by ID
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.GetProduct")
	defer span.End()

	found, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, errors.NewNotFound("product", id.String())
	}

	return found, nil
}

// ListProducts retrieves products with paging, optionally active only
func (s *Service) ListProducts(ctx context.Context, activeOnly bool, page, pageSize int) ([]models.Product, int, error) {
	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.ListProducts")
	defer span.End()

	return s.products.List(ctx, activeOnly, page, pageSize)
}

// UpdateProduct updates a product's name and description. Local-only;
// nothing is dispatched to the ledger.
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, req models.UpdateProductRequest) (*models.Product, error) {
	if err := roles.Require(ctx, roles.CapManageProducts); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.UpdateProduct")
	defer span.End()

	if req.Name != nil {
		if err := validation.NonEmptyString(*req.Name, "name"); err != nil {
			return nil, err
		}
	}

	updated, err := s.products.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, errors.NewNotFound("product", id.String())
	}

	if s.provenance != nil {
		s.provenance.UpsertProduct(ctx, updated)
	}

	return updated, nil
}

// SetProductActive disables or re-enables a product. Disabled products
// reject new batches but keep their history queryable.
func (s *Service) SetProductActive(ctx context.Context, id uuid.UUID, active bool) (*models.Product, error) {
	if err := roles.Require(ctx, roles.CapManageProducts); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.SetProductActive")
	defer span.End()

	updated, err := s.products.SetActive(ctx, id, active)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, errors.NewNotFound("product", id.String())
	}

	if s.provenance != nil {
		s.provenance.UpsertProduct(ctx, updated)
	}

	return updated, nil
}
