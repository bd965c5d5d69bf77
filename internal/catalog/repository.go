package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	"github.com/Max3uc3Planz/lcdt-back/pkg/pagination"
)

// ListFilters describe the filter knobs of the menu browse endpoint.
type ListFilters struct {
	CategoryID *uuid.UUID
	TagID      *uuid.UUID
	Query      string
}

// Repository is the persistence surface for the menu catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, filters ListFilters, cursor *pagination.Cursor, limit int) ([]models.Product, error)
	ReplaceTags(ctx context.Context, product *models.Product, tags []models.Tag) error

	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListTags(ctx context.Context) ([]models.Tag, error)
	FindTags(ctx context.Context, ids []uuid.UUID) ([]models.Tag, error)
	CreateTag(ctx context.Context, tag *models.Tag) error
	DeleteTag(ctx context.Context, id uuid.UUID) error

	UpsertDayStock(ctx context.Context, stock *models.DayStock) error
	ListDayStocks(ctx context.Context, productID uuid.UUID, from, to time.Time) ([]models.DayStock, error)
	DeleteDayStock(ctx context.Context, id uuid.UUID) error
	SetCurrentStock(ctx context.Context, productID uuid.UUID, stock int) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a gorm-backed catalog repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) UpdateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Tags", "Stocks", "Category").Save(product).Error
}

func (r *repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Select(clause.Associations).Delete(&models.Product{ID: id}).Error
}

func (r *repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Tags").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) ListProducts(ctx context.Context, filters ListFilters, cursor *pagination.Cursor, limit int) ([]models.Product, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Preload("Category").
		Preload("Tags").
		Order("products.created_at DESC, products.id DESC").
		Limit(limit)

	if filters.CategoryID != nil {
		q = q.Where("products.category_id = ?", *filters.CategoryID)
	}
	if filters.TagID != nil {
		q = q.Joins("JOIN product_tags pt ON pt.product_id = products.id").
			Where("pt.tag_id = ?", *filters.TagID)
	}
	if filters.Query != "" {
		q = q.Where("products.title ILIKE ?", "%"+filters.Query+"%")
	}
	if cursor != nil {
		q = q.Where("(products.created_at, products.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) ReplaceTags(ctx context.Context, product *models.Product, tags []models.Tag) error {
	return r.db.WithContext(ctx).Model(product).Association("Tags").Replace(tags)
}

func (r *repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).Order("position ASC, name ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *repository) UpdateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id).Error
}

func (r *repository) ListTags(ctx context.Context) ([]models.Tag, error) {
	var rows []models.Tag
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) FindTags(ctx context.Context, ids []uuid.UUID) ([]models.Tag, error) {
	var rows []models.Tag
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	return rows, err
}

func (r *repository) CreateTag(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *repository) DeleteTag(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Tag{}, "id = ?", id).Error
}

// UpsertDayStock inserts or refreshes the (product, date) planning row.
func (r *repository) UpsertDayStock(ctx context.Context, stock *models.DayStock) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"stock", "active", "updated_at"}),
		}).
		Create(stock).Error
}

func (r *repository) ListDayStocks(ctx context.Context, productID uuid.UUID, from, to time.Time) ([]models.DayStock, error) {
	var rows []models.DayStock
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND date BETWEEN ? AND ?", productID, from, to).
		Order("date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) DeleteDayStock(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.DayStock{}, "id = ?", id).Error
}

func (r *repository) SetCurrentStock(ctx context.Context, productID uuid.UUID, stock int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("current_stock", stock).Error
}
