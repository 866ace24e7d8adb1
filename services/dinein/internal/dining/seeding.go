package dining

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/seed"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const seedApplication = "dinein"

type seedDocument struct {
	Tables []tableSeed `json:"tables"`
	Menu   []menuSeed  `json:"menu"`
}

type tableSeed struct {
	Code     string `json:"code"`
	Capacity int    `json:"capacity"`
}

type menuSeed struct {
	ID         string `json:"id"`
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	Available  bool   `json:"available"`
	ImageURL   string `json:"image_url"`
}

// SeedStores are the stores seeding writes to. Menu may be nil when the
// catalog is owned by another service.
type SeedStores struct {
	Tables  TableRepo
	Menu    MenuWriter
	Tracker seed.Tracker
}

func loadSeedDocument(seedFS fs.FS) (seedDocument, error) {
	raw, err := fs.ReadFile(seedFS, "seed.json")
	if err != nil {
		return seedDocument{}, fmt.Errorf("read seed.json: %w", err)
	}
	if len(raw) == 0 {
		return seedDocument{}, errors.New("seed file is empty")
	}

	var doc seedDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return seedDocument{}, fmt.Errorf("decode seed file: %w", err)
	}
	return doc, nil
}

// ApplySeeds makes sure the seeded tables and menu entries exist. Without a
// tracker every seed runs, each one is idempotent.
func ApplySeeds(ctx context.Context, stores SeedStores, seedFS fs.FS, logger apt.Logger) error {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if stores.Tables == nil {
		return errors.New("table repository is required")
	}

	doc, err := loadSeedDocument(seedFS)
	if err != nil {
		return err
	}

	defs, err := buildSeedDefinitions(doc, stores, logger)
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		logger.Info("No seeds to apply")
		return nil
	}

	if stores.Tracker == nil {
		for _, d := range defs {
			if err := d.Run(ctx); err != nil {
				return fmt.Errorf("seed %s: %w", d.ID, err)
			}
		}
		return nil
	}

	logger.Info("Applying seeds", "count", len(defs))
	return seed.Apply(ctx, stores.Tracker, defs, seedApplication)
}

func buildSeedDefinitions(doc seedDocument, stores SeedStores, logger apt.Logger) ([]seed.Seed, error) {
	var defs []seed.Seed

	for _, ts := range doc.Tables {
		ts := ts
		if strings.TrimSpace(ts.Code) == "" {
			logger.Info("Skipping seed table with empty code")
			continue
		}
		defs = append(defs, seed.Seed{
			ID:          fmt.Sprintf("2025-01-10_table_%s", seedIdentifier(ts.Code)),
			Description: fmt.Sprintf("Ensure table %s exists", ts.Code),
			Run: func(ctx context.Context) error {
				return ts.ensure(ctx, stores.Tables, logger)
			},
		})
	}

	if stores.Menu == nil {
		return defs, nil
	}

	for _, ms := range doc.Menu {
		item, err := ms.menuItem()
		if err != nil {
			return nil, err
		}
		defs = append(defs, seed.Seed{
			ID:          fmt.Sprintf("2025-01-10_menu_%s", seedIdentifier(item.Name)),
			Description: fmt.Sprintf("Ensure menu item %s exists", item.Name),
			Run: func(ctx context.Context) error {
				return stores.Menu.UpsertMenuItem(ctx, item)
			},
		})
	}

	return defs, nil
}

func seedIdentifier(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))

	var b strings.Builder
	for _, r := range value {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == '_' || r == '-' || r == ' ' || r == '/':
			b.WriteRune('_')
		}
	}

	if b.Len() == 0 {
		return "seed"
	}
	return b.String()
}

func (s tableSeed) ensure(ctx context.Context, repo TableRepo, logger apt.Logger) error {
	code := strings.TrimSpace(s.Code)

	existing, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list existing tables: %w", err)
	}
	for _, t := range existing {
		if t.Code == code {
			logger.Debug("Seed table already exists", "code", code)
			return nil
		}
	}

	t := NewTable(code, s.Capacity)
	t.BeforeCreate()
	if err := repo.Create(ctx, t); err != nil {
		return fmt.Errorf("create seed table %s: %w", code, err)
	}

	logger.Info("Seed table created", "code", code, "id", t.ID.String())
	return nil
}

func (s menuSeed) menuItem() (MenuItem, error) {
	id, err := uuid.Parse(s.ID)
	if err != nil {
		return MenuItem{}, fmt.Errorf("menu seed %q: invalid id: %w", s.Name, err)
	}
	price, err := decimal.NewFromString(s.Price)
	if err != nil {
		return MenuItem{}, fmt.Errorf("menu seed %q: invalid price: %w", s.Name, err)
	}

	item := MenuItem{
		ID:        id,
		Name:      s.Name,
		Price:     price,
		Available: s.Available,
		ImageURL:  s.ImageURL,
	}
	if s.CategoryID != "" {
		cat, err := uuid.Parse(s.CategoryID)
		if err != nil {
			return MenuItem{}, fmt.Errorf("menu seed %q: invalid category id: %w", s.Name, err)
		}
		item.CategoryID = &cat
	}
	return item, nil
}

// SeedingFunc returns a lifecycle OnStart function that applies seeds in the
// background.
func SeedingFunc(seedCtx context.Context, stores SeedStores, seedFS fs.FS, logger apt.Logger) func(ctx context.Context) error {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	return func(ctx context.Context) error {
		logger.Info("Starting seeding in background")
		go func() {
			if err := ApplySeeds(seedCtx, stores, seedFS, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("Seeding failed: %v", err)
			} else if err == nil {
				logger.Info("Seeding completed")
			}
		}()
		return nil
	}
}
