// Package search: filter lintas hirarki atas dokumen (teks bebas + subject/branch).
package search

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"

	"notesku_backend/internals/features/catalog/navigator"
	"notesku_backend/internals/gateway"
	helper "notesku_backend/internals/helpers"
	"notesku_backend/internals/logger"
)

type Query struct {
	Term      string
	SubjectID *uuid.UUID
	BranchID  *uuid.UUID
}

type Result struct {
	Term        string           `json:"term,omitempty"`
	Cards       []navigator.Card `json:"cards"`
	Total       int              `json:"total"`
	Empty       bool             `json:"empty"`
	Placeholder string           `json:"placeholder,omitempty"`
}

type Service struct {
	Catalog gateway.Catalog
	log     zerolog.Logger
}

func New(catalog gateway.Catalog) *Service {
	return &Service{Catalog: catalog, log: logger.Component("search")}
}

// Search: satu query dokumen (filter subject di server, urut terbaru),
// lalu filter term & branch di memori, digabung AND.
func (s *Service) Search(ctx context.Context, q Query) (Result, error) {
	docs, err := s.Catalog.ListDocuments(ctx, gateway.DocumentQuery{
		SubjectID: q.SubjectID,
		OrderBy:   gateway.OrderNewest,
		WithPath:  true,
	})
	if err != nil {
		s.log.Error().Err(err).Str("term", q.Term).Msg("search documents")
		return Result{}, helper.Gateway("failed to search documents", err)
	}

	term := strings.TrimSpace(q.Term)
	kept := Filter(docs, term, q.BranchID)

	res := Result{Term: term, Cards: navigator.DocumentCards(kept), Total: len(kept)}
	if res.Total == 0 {
		res.Empty = true
		res.Placeholder = navigator.Placeholder(gateway.LevelDocument)
	}
	return res, nil
}

// Filter mempertahankan urutan input.
func Filter(docs []gateway.Document, term string, branchID *uuid.UUID) []gateway.Document {
	fold := cases.Fold()
	needle := fold.String(term)

	out := make([]gateway.Document, 0, len(docs))
	for _, d := range docs {
		if needle != "" && !matches(fold, d, needle) {
			continue
		}
		if branchID != nil && (d.Path == nil || d.Path.Branch.ID != *branchID) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func matches(fold cases.Caser, d gateway.Document, needle string) bool {
	if strings.Contains(fold.String(d.Title), needle) {
		return true
	}
	if strings.Contains(fold.String(d.Description), needle) {
		return true
	}
	return d.Path != nil && strings.Contains(fold.String(d.Path.Subject.Name), needle)
}
