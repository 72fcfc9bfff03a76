// Package seeding loads the optional seed file into an empty catalog.
//
// A seed file is YAML:
//
//	tools:
//	  - name: Code Buddy
//	    icon_url: https://example.com/icon.png
//	    description: ...
//	    category: Developer Tools
//	    pricing_tag: Free
//	    official_link: https://codebuddy.dev
//	    featured: true
//	collections:
//	  - name: Starter Kit
//	    featured: true
//	    tools: [code-buddy]
//
// Collections name their tools by slug.
package seeding

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	collectionstore "github.com/dalemusser/stratatools/internal/app/store/collections"
	toolstore "github.com/dalemusser/stratatools/internal/app/store/tools"
	"github.com/dalemusser/stratatools/internal/domain/models"
	"github.com/dalemusser/stratatools/internal/domain/slug"
	"github.com/dalemusser/stratatools/internal/domain/toolval"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// File is the decoded seed document.
type File struct {
	Tools       []Tool       `yaml:"tools"`
	Collections []Collection `yaml:"collections"`
}

// Tool is one seeded catalog entry.
type Tool struct {
	Name         string `yaml:"name"`
	IconURL      string `yaml:"icon_url"`
	Description  string `yaml:"description"`
	Category     string `yaml:"category"`
	PricingTag   string `yaml:"pricing_tag"`
	OfficialLink string `yaml:"official_link"`
	Featured     bool   `yaml:"featured"`
	Popular      bool   `yaml:"popular"`
}

// Collection is one seeded collection. Tools holds slugs.
type Collection struct {
	Name     string   `yaml:"name"`
	Featured bool     `yaml:"featured"`
	Tools    []string `yaml:"tools"`
}

func (t Tool) fields() models.ToolFields {
	return models.ToolFields{
		Name:         strings.TrimSpace(t.Name),
		IconURL:      strings.TrimSpace(t.IconURL),
		Description:  strings.TrimSpace(t.Description),
		Category:     strings.TrimSpace(t.Category),
		PricingTag:   strings.TrimSpace(t.PricingTag),
		OfficialLink: strings.TrimSpace(t.OfficialLink),
	}
}

// Parse decodes a seed document. Every tool must pass catalog validation.
func Parse(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse seed file: %w", err)
	}
	for i, t := range f.Tools {
		if res := toolval.Validate(t.fields()); !res.Valid {
			return File{}, fmt.Errorf("seed tool %d (%q): %s", i+1, t.Name, strings.Join(res.Errors, "; "))
		}
	}
	return f, nil
}

// Load reads and parses the seed file at path.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// SeedAll loads path and seeds it. An empty path does nothing.
func SeedAll(ctx context.Context, db *mongo.Database, path string, logger *zap.Logger) error {
	if path == "" {
		return nil
	}
	f, err := Load(path)
	if err != nil {
		return err
	}
	return Seed(ctx, db, f, logger)
}

// Seed writes f into the catalog, but only into an empty one: tools are
// skipped when any tool exists and collections when any collection exists.
func Seed(ctx context.Context, db *mongo.Database, f File, logger *zap.Logger) error {
	tools := toolstore.New(db)
	colls := collectionstore.New(db)

	n, err := tools.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Debug("catalog not empty, skipping tool seed", zap.Int64("tools", n))
	} else if err := seedTools(ctx, tools, f.Tools, logger); err != nil {
		return err
	}

	existing, err := colls.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Debug("collections exist, skipping collection seed", zap.Int("collections", len(existing)))
		return nil
	}
	return seedCollections(ctx, tools, colls, f.Collections, logger)
}

func seedTools(ctx context.Context, store *toolstore.Store, seeds []Tool, logger *zap.Logger) error {
	now := time.Now()
	for _, t := range seeds {
		fields := t.fields()
		s, err := slug.Unique(ctx, slug.Make(fields.Name), store.SlugExists)
		if err != nil {
			return err
		}
		created, err := store.Create(ctx, models.Tool{
			ToolFields: fields,
			Slug:       s,
			IsFeatured: t.Featured,
			IsPopular:  t.Popular,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			logger.Error("failed to seed tool", zap.String("name", fields.Name), zap.Error(err))
			return err
		}
		logger.Info("seeded tool", zap.Int64("id", created.ID), zap.String("slug", created.Slug))
	}
	return nil
}

func seedCollections(ctx context.Context, tools *toolstore.Store, colls *collectionstore.Store, seeds []Collection, logger *zap.Logger) error {
	for _, c := range seeds {
		ids := make([]int64, 0, len(c.Tools))
		for _, s := range c.Tools {
			t, err := tools.GetBySlug(ctx, s)
			if err != nil {
				return fmt.Errorf("seed collection %q: tool %q: %w", c.Name, s, err)
			}
			ids = append(ids, t.ID)
		}
		created, err := colls.Create(ctx, models.Collection{
			Name:       strings.TrimSpace(c.Name),
			ToolIDs:    ids,
			IsFeatured: c.Featured,
		})
		if err != nil {
			logger.Error("failed to seed collection", zap.String("name", c.Name), zap.Error(err))
			return err
		}
		logger.Info("seeded collection", zap.Int64("id", created.ID), zap.Int("tools", len(ids)))
	}
	return nil
}
