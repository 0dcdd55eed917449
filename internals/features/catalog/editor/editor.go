// Package editor: pembuatan node hirarki (branch/semester/section/subject)
// yang dijaga admin code bersama.
//
// Admin code hanya penghalang ringan, bukan batas otorisasi: nilainya dibandingkan
// apa adanya dengan ADMIN_CODE dan tidak diverifikasi oleh database.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"notesku_backend/internals/constants"
	"notesku_backend/internals/features/catalog/navigator"
	"notesku_backend/internals/gateway"
	helper "notesku_backend/internals/helpers"
	"notesku_backend/internals/logger"
	"notesku_backend/internals/metrics"
)

// Form: isian form admin. ParentID diabaikan untuk branch.
type Form struct {
	AdminCode   string    `json:"admin_code"`
	ParentID    uuid.UUID `json:"parent_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

type Result struct {
	Node    gateway.Node   `json:"node"`
	Form    Form           `json:"form"`
	Options []gateway.Node `json:"options"`
}

type Editor struct {
	Catalog   gateway.Catalog
	Navigator *navigator.Navigator
	Metrics   *metrics.Metrics
	adminCode string
	log       zerolog.Logger
}

func New(catalog gateway.Catalog, nav *navigator.Navigator, adminCode string) *Editor {
	return &Editor{
		Catalog:   catalog,
		Navigator: nav,
		adminCode: adminCode,
		log:       logger.Component("editor"),
	}
}

func (e *Editor) CreateBranch(ctx context.Context, f Form) (Result, error) {
	return e.Create(ctx, gateway.LevelBranch, f)
}

func (e *Editor) CreateSemester(ctx context.Context, f Form) (Result, error) {
	return e.Create(ctx, gateway.LevelSemester, f)
}

func (e *Editor) CreateSection(ctx context.Context, f Form) (Result, error) {
	return e.Create(ctx, gateway.LevelSection, f)
}

func (e *Editor) CreateSubject(ctx context.Context, f Form) (Result, error) {
	return e.Create(ctx, gateway.LevelSubject, f)
}

// Create: cek admin code → validasi parent & name → parent harus ada → insert satu row.
// Gagal di langkah mana pun: form dikembalikan apa adanya.
func (e *Editor) Create(ctx context.Context, level gateway.Level, f Form) (Result, error) {
	untouched := Result{Form: f}

	if !level.IsNode() {
		return untouched, helper.Validation("level", "only branch, semester, section and subject can be created")
	}
	// ADMIN_CODE kosong = fitur admin mati
	if e.adminCode == "" || f.AdminCode != e.adminCode {
		e.log.Warn().Str("level", level.String()).Msg("incorrect admin code")
		return untouched, helper.Forbidden(constants.MsgIncorrectAdminCode)
	}

	parentID := f.ParentID
	if level.IsRoot() {
		parentID = uuid.Nil
	} else if parentID == uuid.Nil {
		parent, _ := level.Parent()
		return untouched, helper.Validation("parent_id", fmt.Sprintf("Please select a %s.", parent))
	}

	name := strings.TrimSpace(f.Name)
	if name == "" {
		return untouched, helper.Validation("name", fmt.Sprintf("Please enter a %s name.", level))
	}

	if !level.IsRoot() {
		parent, _ := level.Parent()
		if _, err := e.Catalog.GetNode(ctx, parent, parentID); err != nil {
			if errors.Is(err, gateway.ErrNotFound) {
				return untouched, helper.Validation("parent_id", fmt.Sprintf("Selected %s does not exist.", parent))
			}
			e.log.Error().Err(err).Str("level", level.String()).Str("parent_id", parentID.String()).Msg("lookup parent")
			return untouched, helper.Gateway(fmt.Sprintf("failed to create %s", level), err)
		}
	}

	node, err := e.Catalog.InsertNode(ctx, gateway.Node{
		Level:       level,
		ParentID:    parentID,
		Name:        name,
		Description: strings.TrimSpace(f.Description),
	})
	if err != nil {
		e.log.Error().Err(err).Str("level", level.String()).Str("name", name).Msg("insert node")
		switch {
		case errors.Is(err, gateway.ErrConflict):
			return untouched, helper.Conflict(fmt.Sprintf("%s %q already exists", level, name), err)
		default:
			return untouched, helper.Gateway(fmt.Sprintf("failed to create %s", level), err)
		}
	}
	e.log.Info().Str("level", level.String()).Str("id", node.ID.String()).Msg("node created")
	e.Metrics.NodeCreated(level.String())

	// form dikosongkan; admin code & parent tetap supaya bisa input beruntun
	res := Result{
		Node: node,
		Form: Form{AdminCode: f.AdminCode, ParentID: f.ParentID},
	}
	opts, err := e.Navigator.Options(ctx, level, parentID)
	if err != nil {
		// insert sudah sukses; dropdown cukup tidak di-refresh
		e.log.Warn().Err(err).Str("level", level.String()).Msg("refresh options")
		opts = []gateway.Node{}
	}
	res.Options = opts
	return res, nil
}
