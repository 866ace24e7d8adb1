package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/appetiteclub/dinein/services/dinein/internal/dining"
)

// NewRepos binds every dining repository to db.
func NewRepos(db *gorm.DB) dining.Repos {
	return dining.Repos{
		TableRepo:   &TableRepo{db: db},
		OrderRepo:   &OrderRepo{db: db},
		ItemRepo:    &ItemRepo{db: db},
		PaymentRepo: &PaymentRepo{db: db},
	}
}

// saveVersioned writes model when its row still carries version, bumping it.
// It reports whether a row matched.
func saveVersioned(ctx context.Context, db *gorm.DB, model interface{}, id uuid.UUID, version int64) (bool, error) {
	result := conn(ctx, db).
		Model(model).
		Where("id = ? AND version = ?", id, version).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

type TableRepo struct {
	db *gorm.DB
}

func (r *TableRepo) Create(ctx context.Context, table *dining.Table) error {
	model := toTableModel(table)
	if err := conn(ctx, r.db).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("cannot create table %s: %w", table.Code, dining.ErrDuplicateKey)
		}
		return fmt.Errorf("cannot create table: %w", err)
	}
	return nil
}

func (r *TableRepo) Get(ctx context.Context, id uuid.UUID) (*dining.Table, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *TableRepo) GetByToken(ctx context.Context, token string) (*dining.Table, error) {
	return r.first(ctx, "access_token = ?", token)
}

func (r *TableRepo) first(ctx context.Context, query string, arg interface{}) (*dining.Table, error) {
	var model tableModel
	if err := reader(ctx, r.db).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get table: %w", err)
	}
	return model.toDomain(), nil
}

func (r *TableRepo) List(ctx context.Context) ([]*dining.Table, error) {
	var models []tableModel
	if err := conn(ctx, r.db).Order("code").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("cannot list tables: %w", err)
	}

	tables := make([]*dining.Table, 0, len(models))
	for _, m := range models {
		tables = append(tables, m.toDomain())
	}
	return tables, nil
}

func (r *TableRepo) Save(ctx context.Context, table *dining.Table) error {
	model := toTableModel(table)
	model.Version = table.Version + 1

	ok, err := saveVersioned(ctx, r.db, &model, table.ID, table.Version)
	if err != nil {
		return fmt.Errorf("cannot update table: %w", err)
	}
	if !ok {
		return dining.Conflict("table %s was modified by another request", table.Code)
	}

	table.Version = model.Version
	return nil
}

type OrderRepo struct {
	db *gorm.DB
}

func (r *OrderRepo) Create(ctx context.Context, order *dining.Order) error {
	model := toOrderModel(order)
	if err := conn(ctx, r.db).Create(&model).Error; err != nil {
		return fmt.Errorf("cannot create order: %w", err)
	}
	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id uuid.UUID) (*dining.Order, error) {
	var model orderModel
	if err := reader(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get order: %w", err)
	}
	return model.toDomain(), nil
}

func (r *OrderRepo) ListByTableAndStatus(ctx context.Context, tableID uuid.UUID, statuses ...dining.OrderStatus) ([]*dining.Order, error) {
	query := conn(ctx, r.db).Where("table_id = ?", tableID)
	if len(statuses) > 0 {
		names := make([]string, 0, len(statuses))
		for _, s := range statuses {
			names = append(names, string(s))
		}
		query = query.Where("status IN ?", names)
	}

	var models []orderModel
	if err := query.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("cannot list orders by table: %w", err)
	}

	orders := make([]*dining.Order, 0, len(models))
	for _, m := range models {
		orders = append(orders, m.toDomain())
	}
	return orders, nil
}

func (r *OrderRepo) Save(ctx context.Context, order *dining.Order) error {
	model := toOrderModel(order)
	model.Version = order.Version + 1

	ok, err := saveVersioned(ctx, r.db, &model, order.ID, order.Version)
	if err != nil {
		return fmt.Errorf("cannot update order: %w", err)
	}
	if !ok {
		return dining.Conflict("order %s was modified by another request", order.ID)
	}

	order.Version = model.Version
	return nil
}

type ItemRepo struct {
	db *gorm.DB
}

func (r *ItemRepo) Create(ctx context.Context, item *dining.Item) error {
	model := toItemModel(item)
	if err := conn(ctx, r.db).Create(&model).Error; err != nil {
		return fmt.Errorf("cannot create order item: %w", err)
	}
	return nil
}

func (r *ItemRepo) Get(ctx context.Context, id uuid.UUID) (*dining.Item, error) {
	var model itemModel
	if err := reader(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get order item: %w", err)
	}
	return model.toDomain(), nil
}

func (r *ItemRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*dining.Item, error) {
	var models []itemModel
	err := conn(ctx, r.db).
		Where("order_id = ?", orderID).
		Order("position").
		Order("created_at").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("cannot list order items: %w", err)
	}

	items := make([]*dining.Item, 0, len(models))
	for _, m := range models {
		items = append(items, m.toDomain())
	}
	return items, nil
}

func (r *ItemRepo) Save(ctx context.Context, item *dining.Item) error {
	model := toItemModel(item)
	model.Version = item.Version + 1

	ok, err := saveVersioned(ctx, r.db, &model, item.ID, item.Version)
	if err != nil {
		return fmt.Errorf("cannot update order item: %w", err)
	}
	if !ok {
		return dining.Conflict("order item %s was modified by another request", item.ID)
	}

	item.Version = model.Version
	return nil
}

func (r *ItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := conn(ctx, r.db).Delete(&itemModel{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("cannot delete order item: %w", err)
	}
	return nil
}

func (r *ItemRepo) DeleteByOrder(ctx context.Context, orderID uuid.UUID) error {
	if err := conn(ctx, r.db).Delete(&itemModel{}, "order_id = ?", orderID).Error; err != nil {
		return fmt.Errorf("cannot delete items of order %s: %w", orderID, err)
	}
	return nil
}

type PaymentRepo struct {
	db *gorm.DB
}

func (r *PaymentRepo) Create(ctx context.Context, payment *dining.Payment) error {
	model := toPaymentModel(payment)
	if err := conn(ctx, r.db).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("payment for order %s: %w", payment.OrderID, dining.ErrDuplicateKey)
		}
		return fmt.Errorf("cannot create payment: %w", err)
	}
	return nil
}

func (r *PaymentRepo) GetByOrder(ctx context.Context, orderID uuid.UUID) (*dining.Payment, error) {
	var model paymentModel
	if err := conn(ctx, r.db).Where("order_id = ?", orderID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get payment: %w", err)
	}
	return model.toDomain(), nil
}
