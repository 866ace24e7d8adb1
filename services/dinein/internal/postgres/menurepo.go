package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/appetiteclub/dinein/services/dinein/internal/dining"
)

// MenuRepo serves the catalog from the local menu_items table.
type MenuRepo struct {
	db *gorm.DB
}

func NewMenuRepo(db *gorm.DB) *MenuRepo {
	return &MenuRepo{db: db}
}

func (r *MenuRepo) Find(ctx context.Context, id uuid.UUID) (*dining.MenuItem, error) {
	var model menuModel
	if err := conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get menu item: %w", err)
	}
	item := model.toDomain()
	return &item, nil
}

func (r *MenuRepo) FindAll(ctx context.Context, ids []uuid.UUID) ([]dining.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, conn(ctx, r.db).Where("id IN ?", ids))
}

func (r *MenuRepo) ListAvailable(ctx context.Context) ([]dining.MenuItem, error) {
	return r.list(ctx, conn(ctx, r.db).Where("available = ?", true))
}

func (r *MenuRepo) list(ctx context.Context, query *gorm.DB) ([]dining.MenuItem, error) {
	var models []menuModel
	if err := query.Order("name").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("cannot list menu items: %w", err)
	}

	items := make([]dining.MenuItem, 0, len(models))
	for _, m := range models {
		items = append(items, m.toDomain())
	}
	return items, nil
}

func (r *MenuRepo) UpsertMenuItem(ctx context.Context, item dining.MenuItem) error {
	model := menuModel{
		ID:         item.ID,
		CategoryID: item.CategoryID,
		Name:       item.Name,
		Price:      item.Price,
		Available:  item.Available,
		ImageURL:   item.ImageURL,
	}

	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"category_id", "name", "price", "available", "image_url", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		return fmt.Errorf("cannot upsert menu item %s: %w", item.Name, err)
	}
	return nil
}
