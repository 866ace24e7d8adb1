package menu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/appetiteclub/dinein/services/dinein/internal/dining"
)

const (
	itemsResource  = "menu/items"
	maxItemFetches = 5
)

// ServiceLookup reads the catalog from the menu service.
type ServiceLookup struct {
	client *apt.ServiceClient
	logger apt.Logger
}

func NewServiceLookup(config *apt.Config, logger apt.Logger) (*ServiceLookup, error) {
	menuURL, _ := config.GetString("services.menu.url")
	if menuURL == "" {
		return nil, fmt.Errorf("services.menu.url is required")
	}

	client := apt.NewServiceClient(menuURL)
	if client == nil {
		return nil, fmt.Errorf("failed to create menu service client")
	}

	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	return &ServiceLookup{
		client: client,
		logger: logger,
	}, nil
}

// remoteItem is the subset of the menu service payload used here.
type remoteItem struct {
	ID         uuid.UUID         `json:"id"`
	Name       map[string]string `json:"name"`
	Prices     []remotePrice     `json:"prices"`
	Active     bool              `json:"active"`
	Categories []uuid.UUID       `json:"categories"`
}

type remotePrice struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency_code"`
}

func (ri remoteItem) toMenuItem() dining.MenuItem {
	item := dining.MenuItem{
		ID:        ri.ID,
		Name:      localized(ri.Name),
		Available: ri.Active && len(ri.Prices) > 0,
	}
	if len(ri.Prices) > 0 {
		item.Price = ri.Prices[0].Amount
	}
	if len(ri.Categories) > 0 {
		category := ri.Categories[0]
		item.CategoryID = &category
	}
	return item
}

// localized prefers the English name and otherwise the first locale.
func localized(names map[string]string) string {
	if name, ok := names["en"]; ok && name != "" {
		return name
	}

	locales := make([]string, 0, len(names))
	for locale := range names {
		locales = append(locales, locale)
	}
	sort.Strings(locales)

	for _, locale := range locales {
		if names[locale] != "" {
			return names[locale]
		}
	}
	return ""
}

func (l *ServiceLookup) Find(ctx context.Context, id uuid.UUID) (*dining.MenuItem, error) {
	resp, err := l.client.Get(ctx, itemsResource, id.String())
	if err != nil {
		var httpErr *apt.HTTPError
		if errors.As(err, &httpErr) && httpErr.IsNotFound() {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get menu item %s: %w", id, err)
	}

	ri, err := decodeItem(resp.Data)
	if err != nil {
		return nil, err
	}
	item := ri.toMenuItem()
	return &item, nil
}

// FindAll fetches up to maxItemFetches items one by one and lists the
// whole catalog for larger sets.
func (l *ServiceLookup) FindAll(ctx context.Context, ids []uuid.UUID) ([]dining.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	wanted := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := wanted[id]; ok {
			continue
		}
		wanted[id] = struct{}{}
		unique = append(unique, id)
	}

	if len(unique) <= maxItemFetches {
		found := make([]dining.MenuItem, 0, len(unique))
		for _, id := range unique {
			item, err := l.Find(ctx, id)
			if err != nil {
				return nil, err
			}
			if item != nil {
				found = append(found, *item)
			}
		}
		return found, nil
	}

	all, err := l.fetch(ctx)
	if err != nil {
		return nil, err
	}

	var found []dining.MenuItem
	for _, item := range all {
		if _, ok := wanted[item.ID]; ok {
			found = append(found, item)
		}
	}
	return found, nil
}

func (l *ServiceLookup) ListAvailable(ctx context.Context) ([]dining.MenuItem, error) {
	all, err := l.fetch(ctx)
	if err != nil {
		return nil, err
	}

	available := make([]dining.MenuItem, 0, len(all))
	for _, item := range all {
		if item.Available {
			available = append(available, item)
		}
	}
	return available, nil
}

func (l *ServiceLookup) fetch(ctx context.Context) ([]dining.MenuItem, error) {
	resp, err := l.client.List(ctx, itemsResource)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}

	remote, err := decodeItems(resp.Data)
	if err != nil {
		return nil, err
	}

	items := make([]dining.MenuItem, 0, len(remote))
	for _, ri := range remote {
		items = append(items, ri.toMenuItem())
	}
	l.logger.Debug("fetched menu items", "count", len(items))
	return items, nil
}

func decodeItem(data interface{}) (remoteItem, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return remoteItem{}, fmt.Errorf("invalid menu response: %w", err)
	}

	var item remoteItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return remoteItem{}, fmt.Errorf("invalid menu response format: %w", err)
	}
	return item, nil
}

// decodeItems rehydrates the generic response data into typed items.
func decodeItems(data interface{}) ([]remoteItem, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("invalid menu response: %w", err)
	}

	var items []remoteItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("invalid menu response format: %w", err)
	}
	return items, nil
}
