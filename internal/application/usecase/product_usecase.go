package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Gestion-RD-api/internal/application/dto"
	"github.com/jhoicas/Gestion-RD-api/internal/application/inventory"
	"github.com/jhoicas/Gestion-RD-api/internal/application/unitofwork"
	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
)

// Tasas de ITBIS admitidas en el catálogo.
var (
	taxExempt   = decimal.Zero
	taxReduced  = decimal.NewFromInt(16)
	taxStandard = decimal.NewFromInt(18)
)

// ProductUseCase casos de uso CRUD para productos. Cost y Stock se manejan vía movimientos.
type ProductUseCase struct {
	uow    unitofwork.Runner
	repos  repository.Repositories
	ledger *inventory.StockLedger
	log    zerolog.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(uow unitofwork.Runner, repos repository.Repositories, ledger *inventory.StockLedger, log zerolog.Logger) *ProductUseCase {
	return &ProductUseCase{uow: uow, repos: repos, ledger: ledger, log: log}
}

// Create crea un nuevo producto con stock 0. Si trae InitialStock se registra como ENTRADA en
// la misma unidad de trabajo.
func (uc *ProductUseCase) Create(ctx context.Context, userID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" {
		return nil, domain.Invalid("code", "requerido")
	}
	if name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	if err := validTaxRate(in.TaxRate); err != nil {
		return nil, err
	}
	if in.Price.IsNegative() || in.Cost.IsNegative() || in.MinStock.IsNegative() || in.InitialStock.IsNegative() {
		return nil, domain.Invalid("price", "precio, costo, mínimo y stock inicial no pueden ser negativos")
	}
	if in.UnitMeasure == "" {
		in.UnitMeasure = "unidad"
	}
	if in.Category == "" {
		in.Category = entity.ProductCategoryTerminado
	}

	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		Code:        code,
		Name:        name,
		Description: in.Description,
		Category:    in.Category,
		UnitMeasure: in.UnitMeasure,
		Cost:        in.Cost,
		Price:       in.Price,
		TaxRate:     in.TaxRate,
		Stock:       decimal.Zero,
		MinStock:    in.MinStock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := uc.uow.Run(ctx, "crear_producto", func(ctx context.Context, repos repository.Repositories) error {
		existing, err := repos.Products.GetByCode(ctx, code)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: ya existe un producto con código %s", domain.ErrDuplicate, code)
		}
		if err := repos.Products.Create(ctx, product); err != nil {
			return err
		}
		if !in.InitialStock.IsPositive() {
			return nil
		}
		_, err = uc.ledger.Apply(ctx, repos,
			[]inventory.StockLine{{ProductID: product.ID, Quantity: in.InitialStock}},
			inventory.DirectionAdd,
			&inventory.MovementMeta{
				Type:      entity.MovementTypeEntrada,
				Reference: code,
				Notes:     "Stock inicial",
				CreatedBy: userID,
			})
		return err
	})
	if err != nil {
		return nil, err
	}
	product.Stock = in.InitialStock
	uc.log.Info().Str("product_id", product.ID).Str("code", code).Str("stock", product.Stock.String()).
		Msg("producto creado")
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repos.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("producto", id)
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. No permite modificar Cost ni Stock (se manejan vía movimientos).
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repos.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("producto", id)
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name", "requerido")
		}
		product.Name = name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if in.UnitMeasure != nil {
		product.UnitMeasure = *in.UnitMeasure
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.Invalid("price", "no puede ser negativo")
		}
		product.Price = *in.Price
	}
	if in.TaxRate != nil {
		if err := validTaxRate(*in.TaxRate); err != nil {
			return nil, err
		}
		product.TaxRate = *in.TaxRate
	}
	if in.MinStock != nil {
		if in.MinStock.IsNegative() {
			return nil, domain.Invalid("min_stock", "no puede ser negativo")
		}
		product.MinStock = *in.MinStock
	}
	product.UpdatedAt = time.Now()
	if err := uc.repos.Products.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con búsqueda por código o nombre y paginación.
func (uc *ProductUseCase) List(ctx context.Context, in dto.ProductListRequest) (*dto.ProductListResponse, error) {
	in.DefaultPage()
	list, err := uc.repos.Products.List(ctx, repository.ProductFilter{
		Search:   strings.TrimSpace(in.Search),
		Category: in.Category,
		Limit:    in.Limit,
		Offset:   in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Count: len(items)},
	}, nil
}

// LowStock productos con stock en o por debajo del mínimo.
func (uc *ProductUseCase) LowStock(ctx context.Context) ([]dto.ProductResponse, error) {
	list, err := uc.repos.Products.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return items, nil
}

func validTaxRate(rate decimal.Decimal) error {
	if rate.Equal(taxExempt) || rate.Equal(taxReduced) || rate.Equal(taxStandard) {
		return nil
	}
	return domain.Invalid("tax_rate", "ITBIS %s no válido (0, 16 o 18)", rate.String())
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		UnitMeasure: p.UnitMeasure,
		Cost:        p.Cost,
		Price:       p.Price,
		TaxRate:     p.TaxRate,
		Stock:       p.Stock,
		MinStock:    p.MinStock,
		LowStock:    p.IsLowStock(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
