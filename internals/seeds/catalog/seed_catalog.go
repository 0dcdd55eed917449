package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"notesku_backend/internals/gateway"
	"notesku_backend/internals/logger"
)

type NodeSeed struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// BranchSeed: branch → semesters → sections → subjects.
type BranchSeed struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Semesters   []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Sections    []struct {
			Name        string     `json:"name"`
			Description string     `json:"description"`
			Subjects    []NodeSeed `json:"subjects"`
		} `json:"sections"`
	} `json:"semesters"`
}

type Result struct {
	Inserted map[gateway.Level]int `json:"inserted"`
	Skipped  []string              `json:"skipped"`
}

func SeedCatalogFromJSON(ctx context.Context, catalog gateway.Catalog, filePath string) (Result, error) {
	log := logger.Component("seed")
	log.Info().Str("file", filePath).Msg("membaca file seed")

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return Result{}, fmt.Errorf("gagal membaca file JSON: %w", err)
	}
	var branches []BranchSeed
	if err := sonic.Unmarshal(raw, &branches); err != nil {
		return Result{}, fmt.Errorf("gagal decode JSON: %w", err)
	}
	return SeedCatalog(ctx, catalog, branches)
}

// SeedCatalog: branch yang namanya sudah ada dilewati beserta seluruh isinya.
func SeedCatalog(ctx context.Context, catalog gateway.Catalog, branches []BranchSeed) (Result, error) {
	log := logger.Component("seed")
	res := Result{Inserted: map[gateway.Level]int{}}

	existing, err := catalog.ListChildren(ctx, gateway.LevelBranch, uuid.Nil)
	if err != nil {
		return res, err
	}
	taken := map[string]bool{}
	for _, b := range existing {
		taken[strings.ToLower(b.Name)] = true
	}

	insert := func(level gateway.Level, parent gateway.Node, name, desc string) (gateway.Node, error) {
		n, err := catalog.InsertNode(ctx, gateway.Node{
			Level:       level,
			ParentID:    parent.ID,
			Name:        strings.TrimSpace(name),
			Description: strings.TrimSpace(desc),
		})
		if err != nil {
			return n, fmt.Errorf("insert %s %q: %w", level, name, err)
		}
		res.Inserted[level]++
		return n, nil
	}

	for _, b := range branches {
		name := strings.TrimSpace(b.Name)
		if name == "" {
			continue
		}
		if taken[strings.ToLower(name)] {
			log.Info().Str("branch", name).Msg("branch sudah ada, lewati")
			res.Skipped = append(res.Skipped, name)
			continue
		}
		branch, err := insert(gateway.LevelBranch, gateway.Node{}, name, b.Description)
		if err != nil {
			return res, err
		}
		taken[strings.ToLower(name)] = true

		for _, sem := range b.Semesters {
			semester, err := insert(gateway.LevelSemester, branch, sem.Name, sem.Description)
			if err != nil {
				return res, err
			}
			for _, sec := range sem.Sections {
				section, err := insert(gateway.LevelSection, semester, sec.Name, sec.Description)
				if err != nil {
					return res, err
				}
				for _, sub := range sec.Subjects {
					if _, err := insert(gateway.LevelSubject, section, sub.Name, sub.Description); err != nil {
						return res, err
					}
				}
			}
		}
		log.Info().Str("branch", name).Msg("branch inserted")
	}
	return res, nil
}
