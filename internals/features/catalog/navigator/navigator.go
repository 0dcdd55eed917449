// Package navigator menelusuri hirarki branch → semester → section → subject →
// document satu level per langkah dan membangun view model-nya.
package navigator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"notesku_backend/internals/gateway"
	helper "notesku_backend/internals/helpers"
	"notesku_backend/internals/logger"
)

type Navigator struct {
	Catalog gateway.Catalog
	log     zerolog.Logger
}

func New(catalog gateway.Catalog) *Navigator {
	return &Navigator{Catalog: catalog, log: logger.Component("navigator")}
}

// Enter mengambil semua anak parentID pada level (urut nama naik) dan
// membangun view: tombol back, heading = parentLabel, satu kartu per anak.
func (n *Navigator) Enter(ctx context.Context, level gateway.Level, parentID uuid.UUID, parentLabel string) (View, error) {
	if !level.Valid() {
		return View{}, helper.Validation("level", "unknown level")
	}
	if !level.IsRoot() && parentID == uuid.Nil {
		return View{}, helper.Validation("parent_id", "parent is required")
	}
	if level.IsRoot() {
		parentID = uuid.Nil
	}

	view := View{
		Level:    level,
		ParentID: parentID,
		Heading:  strings.TrimSpace(parentLabel),
	}
	if view.Heading == "" {
		view.Heading = cases.Title(language.English).String(plural(level))
	}

	if level == gateway.LevelDocument {
		docs, err := n.Catalog.ListDocuments(ctx, gateway.DocumentQuery{
			SubjectID: &parentID,
			OrderBy:   gateway.OrderTitleAZ,
		})
		if err != nil {
			return View{}, n.fail(level, parentID, err)
		}
		view.Cards = DocumentCards(docs)
	} else {
		nodes, err := n.Catalog.ListChildren(ctx, level, parentID)
		if err != nil {
			return View{}, n.fail(level, parentID, err)
		}
		view.Cards = make([]Card, 0, len(nodes))
		for _, node := range nodes {
			view.Cards = append(view.Cards, NodeCard(node))
		}
	}

	back, err := n.back(ctx, level, parentID)
	if err != nil {
		return View{}, n.fail(level, parentID, err)
	}
	view.Back = back

	if len(view.Cards) == 0 {
		view.Empty = true
		view.Placeholder = Placeholder(level)
	}
	return view, nil
}

// back: kembali ke level parent, yang ditampilkan di bawah grandparent.
func (n *Navigator) back(ctx context.Context, level gateway.Level, parentID uuid.UUID) (*Target, error) {
	parentLevel, ok := level.Parent()
	if !ok {
		return nil, nil
	}
	if parentLevel.IsRoot() {
		return &Target{Level: parentLevel}, nil
	}

	parent, err := n.Catalog.GetNode(ctx, parentLevel, parentID)
	if err != nil {
		return nil, err
	}
	grandLevel, _ := parentLevel.Parent()
	grand, err := n.Catalog.GetNode(ctx, grandLevel, parent.ParentID)
	if err != nil {
		return nil, err
	}
	return &Target{Level: parentLevel, ParentID: grand.ID, ParentLabel: grand.Name}, nil
}

// Options: list mentah untuk dropdown form (editor/upload).
func (n *Navigator) Options(ctx context.Context, level gateway.Level, parentID uuid.UUID) ([]gateway.Node, error) {
	if !level.IsNode() {
		return nil, helper.Validation("level", "options are only available for hierarchy levels")
	}
	if !level.IsRoot() && parentID == uuid.Nil {
		return []gateway.Node{}, nil
	}
	nodes, err := n.Catalog.ListChildren(ctx, level, parentID)
	if err != nil {
		return nil, n.fail(level, parentID, err)
	}
	if nodes == nil {
		nodes = []gateway.Node{}
	}
	return nodes, nil
}

func (n *Navigator) fail(level gateway.Level, parentID uuid.UUID, err error) error {
	n.log.Error().Err(err).
		Str("level", level.String()).
		Str("parent_id", parentID.String()).
		Msg("fetch catalog level")
	if errors.Is(err, gateway.ErrNotFound) {
		return helper.NotFound(fmt.Sprintf("%s not found", level), err)
	}
	return helper.Gateway(fmt.Sprintf("failed to load %s", plural(level)), err)
}

/* =========================================================
   BROWSER (state per client)
   ========================================================= */

// Browser menyimpan view yang sedang tampil untuk satu client.
// Fetch gagal → view sebelumnya dipertahankan.
type Browser struct {
	nav *Navigator

	mu      sync.Mutex
	current View
}

func NewBrowser(nav *Navigator) *Browser {
	return &Browser{
		nav:     nav,
		current: View{Level: gateway.LevelBranch, Heading: "Branches", Cards: []Card{}},
	}
}

// Enter mengembalikan view baru, atau view sebelumnya + error bila gagal.
func (b *Browser) Enter(ctx context.Context, t Target) (View, error) {
	v, err := b.nav.Enter(ctx, t.Level, t.ParentID, t.ParentLabel)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		return b.current, err
	}
	b.current = v
	return v, nil
}

func (b *Browser) Current() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}
