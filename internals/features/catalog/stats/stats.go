// Package stats: ringkasan katalog untuk dashboard (jumlah per level,
// upload 7 hari terakhir, upload terbaru).
package stats

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"notesku_backend/internals/features/catalog/navigator"
	"notesku_backend/internals/gateway"
	helper "notesku_backend/internals/helpers"
	"notesku_backend/internals/logger"
)

const (
	recentWindow = 7 * 24 * time.Hour
	recentLimit  = 5
)

type Overview struct {
	Branches      int64            `json:"branches"`
	Semesters     int64            `json:"semesters"`
	Sections      int64            `json:"sections"`
	Subjects      int64            `json:"subjects"`
	Documents     int64            `json:"documents"`
	DocumentsWeek int64            `json:"documents_last_7_days"`
	RecentUploads []navigator.Card `json:"recent_uploads"`
	GeneratedAt   time.Time        `json:"generated_at"`
}

type Service struct {
	Catalog gateway.Catalog
	Now     func() time.Time
	log     zerolog.Logger
}

func New(catalog gateway.Catalog) *Service {
	return &Service{Catalog: catalog, Now: time.Now, log: logger.Component("stats")}
}

func (s *Service) Overview(ctx context.Context) (Overview, error) {
	now := s.Now()
	out := Overview{GeneratedAt: now}

	counts := []struct {
		level gateway.Level
		dst   *int64
	}{
		{gateway.LevelBranch, &out.Branches},
		{gateway.LevelSemester, &out.Semesters},
		{gateway.LevelSection, &out.Sections},
		{gateway.LevelSubject, &out.Subjects},
		{gateway.LevelDocument, &out.Documents},
	}
	for _, c := range counts {
		n, err := s.Catalog.CountNodes(ctx, c.level)
		if err != nil {
			return Overview{}, s.fail("count "+c.level.String(), err)
		}
		*c.dst = n
	}

	since := now.Add(-recentWindow)
	week, err := s.Catalog.CountDocuments(ctx, gateway.DocumentQuery{CreatedSince: &since})
	if err != nil {
		return Overview{}, s.fail("count recent documents", err)
	}
	out.DocumentsWeek = week

	recent, err := s.Catalog.ListDocuments(ctx, gateway.DocumentQuery{
		OrderBy:  gateway.OrderNewest,
		Limit:    recentLimit,
		WithPath: true,
	})
	if err != nil {
		return Overview{}, s.fail("recent documents", err)
	}
	out.RecentUploads = navigator.DocumentCards(recent)
	return out, nil
}

func (s *Service) fail(what string, err error) error {
	s.log.Error().Err(err).Msg(what)
	return helper.Gateway("failed to load statistics", err)
}
