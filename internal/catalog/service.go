package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Max3uc3Planz/lcdt-back/pkg/auth"
	"github.com/Max3uc3Planz/lcdt-back/pkg/clock"
	"github.com/Max3uc3Planz/lcdt-back/pkg/db"
	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
	"github.com/Max3uc3Planz/lcdt-back/pkg/pagination"
)

const dayStockDateLayout = "2006-01-02"

// Service exposes the public menu and the staff catalog management.
type Service interface {
	ListProducts(ctx context.Context, input ListInput) (*ProductPage, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListTags(ctx context.Context) ([]models.Tag, error)

	CreateProduct(ctx context.Context, actor auth.Actor, input ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, actor auth.Actor, id uuid.UUID, input ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, actor auth.Actor, id uuid.UUID) error

	CreateCategory(ctx context.Context, actor auth.Actor, input CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, actor auth.Actor, id uuid.UUID, input CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, actor auth.Actor, id uuid.UUID) error

	CreateTag(ctx context.Context, actor auth.Actor, name string) (*models.Tag, error)
	DeleteTag(ctx context.Context, actor auth.Actor, id uuid.UUID) error

	UpsertDayStock(ctx context.Context, actor auth.Actor, input DayStockInput) (*models.DayStock, error)
	ListDayStocks(ctx context.Context, actor auth.Actor, productID uuid.UUID, from, to string) ([]models.DayStock, error)
	DeleteDayStock(ctx context.Context, actor auth.Actor, productID, stockID uuid.UUID) error
}

type service struct {
	repo Repository
	clk  clock.Clock
}

// NewService builds the catalog service.
func NewService(repo Repository, clk clock.Clock) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repo is required")
	}
	if clk == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "clock is required")
	}
	return &service{repo: repo, clk: clk}, nil
}

func (s *service) ListProducts(ctx context.Context, input ListInput) (*ProductPage, error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Pagination.Limit)

	products, err := s.repo.ListProducts(ctx, input.Filters, cursor, pagination.LimitWithBuffer(input.Pagination.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}

	page := &ProductPage{Products: products}
	if len(products) > limit {
		page.Products = products[:limit]
		last := page.Products[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return product, nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing categories")
	}
	return rows, nil
}

func (s *service) ListTags(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing tags")
	}
	return rows, nil
}

func (s *service) CreateProduct(ctx context.Context, actor auth.Actor, input ProductInput) (*models.Product, error) {
	if !actor.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := productFromInput(input)
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
	}
	if err := s.applyTags(ctx, product, input.TagIDs); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) UpdateProduct(ctx context.Context, actor auth.Actor, id uuid.UUID, input ProductInput) (*models.Product, error) {
	if !actor.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Title = strings.TrimSpace(input.Title)
	product.Description = input.Description
	product.ShortDescription = input.ShortDescription
	product.Price = input.Price
	product.PriceTax = input.PriceTax
	product.PictureURL = input.PictureURL
	product.Ingredients = input.Ingredients
	product.Preparation = input.Preparation
	product.PersonsNb = input.PersonsNb
	product.CategoryID = input.CategoryID

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating product")
	}
	if err := s.applyTags(ctx, product, input.TagIDs); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) DeleteProduct(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if !actor.IsStaff() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting product")
	}
	return nil
}

func (s *service) CreateCategory(ctx context.Context, actor auth.Actor, input CategoryInput) (*models.Category, error) {
	if !actor.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	category := &models.Category{Name: name, Position: input.Position}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating category")
	}
	return category, nil
}

func (s *service) UpdateCategory(ctx context.Context, actor auth.Actor, id uuid.UUID, input CategoryInput) (*models.Category, error) {
	if !actor.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	category := &models.Category{ID: id, Name: name, Position: input.Position}
	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating category")
	}
	return category, nil
}

func (s *service) DeleteCategory(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if !actor.IsStaff() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting category")
	}
	return nil
}

func (s *service) CreateTag(ctx context.Context, actor auth.Actor, name string) (*models.Tag, error) {
	if !actor.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tag name is required")
	}

	tag := &models.Tag{Name: name}
	if err := s.repo.CreateTag(ctx, tag); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "tag already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating tag")
	}
	return tag, nil
}

func (s *service) DeleteTag(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if !actor.IsStaff() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	if err := s.repo.DeleteTag(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting tag")
	}
	return nil
}

// UpsertDayStock plans the portions for a (product, date) pair. A stock
// dated today also refreshes the product's sellable counter.
func (s *service) UpsertDayStock(ctx context.Context, actor auth.Actor, input DayStockInput) (*models.DayStock, error) {
	if !actor.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	date, err := time.ParseInLocation(dayStockDateLayout, input.Date, s.clk.Now().Location())
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD")
	}

	if _, err := s.GetProduct(ctx, input.ProductID); err != nil {
		return nil, err
	}

	stock := &models.DayStock{
		ProductID: input.ProductID,
		Date:      date,
		Stock:     input.Stock,
		Active:    input.Active,
	}
	if err := s.repo.UpsertDayStock(ctx, stock); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving day stock")
	}

	now := s.clk.Now()
	if date.Year() == now.Year() && date.YearDay() == now.YearDay() && stock.Active {
		if err := s.repo.SetCurrentStock(ctx, input.ProductID, input.Stock); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "refreshing current stock")
		}
	}
	return stock, nil
}

func (s *service) ListDayStocks(ctx context.Context, actor auth.Actor, productID uuid.UUID, from, to string) ([]models.DayStock, error) {
	if !actor.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	loc := s.clk.Now().Location()
	start, err := time.ParseInLocation(dayStockDateLayout, from, loc)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must be YYYY-MM-DD")
	}
	end, err := time.ParseInLocation(dayStockDateLayout, to, loc)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "to must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range is inverted")
	}

	rows, err := s.repo.ListDayStocks(ctx, productID, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing day stocks")
	}
	return rows, nil
}

func (s *service) DeleteDayStock(ctx context.Context, actor auth.Actor, productID, stockID uuid.UUID) error {
	if !actor.IsStaff() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	if err := s.repo.DeleteDayStock(ctx, stockID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting day stock")
	}
	return nil
}

func (s *service) applyTags(ctx context.Context, product *models.Product, tagIDs []uuid.UUID) error {
	if tagIDs == nil {
		return nil
	}
	tags, err := s.repo.FindTags(ctx, tagIDs)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading tags")
	}
	if len(tags) != len(tagIDs) {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown tag")
	}
	if err := s.repo.ReplaceTags(ctx, product, tags); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replacing tags")
	}
	product.Tags = tags
	return nil
}

func productFromInput(input ProductInput) *models.Product {
	return &models.Product{
		Title:            strings.TrimSpace(input.Title),
		Description:      input.Description,
		ShortDescription: input.ShortDescription,
		Price:            input.Price,
		PriceTax:         input.PriceTax,
		PictureURL:       input.PictureURL,
		Ingredients:      input.Ingredients,
		Preparation:      input.Preparation,
		PersonsNb:        input.PersonsNb,
		CategoryID:       input.CategoryID,
	}
}

func validateProductInput(input ProductInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.Price.IsNegative() || input.PriceTax.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
	}
	if input.PriceTax.LessThan(input.Price) {
		return pkgerrors.New(pkgerrors.CodeValidation, "price with tax cannot be below the pre-tax price")
	}
	if input.PersonsNb < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "persons count must be at least 1")
	}
	return nil
}
