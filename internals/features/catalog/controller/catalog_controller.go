package controller

import (
	"github.com/gofiber/fiber/v2"

	"notesku_backend/internals/features/catalog/dto"
	"notesku_backend/internals/features/catalog/editor"
	"notesku_backend/internals/features/catalog/navigator"
	"notesku_backend/internals/features/catalog/search"
	"notesku_backend/internals/features/catalog/stats"
	"notesku_backend/internals/features/users/session"
	"notesku_backend/internals/gateway"
	helper "notesku_backend/internals/helpers"
)

type CatalogController struct {
	Navigator *navigator.Navigator
	Editor    *editor.Editor
	Search    *search.Service
	Stats     *stats.Service
}

func NewCatalogController(nav *navigator.Navigator, ed *editor.Editor, s *search.Service, st *stats.Service) *CatalogController {
	return &CatalogController{Navigator: nav, Editor: ed, Search: s, Stats: st}
}

func clientOf(c *fiber.Ctx) (*session.Client, error) {
	cl := session.FromCtx(c)
	if cl == nil {
		return nil, helper.JsonError(c, fiber.StatusInternalServerError, "client session missing")
	}
	return cl, nil
}

// =======================
// 📂 Browse
// GET /api/catalog/browse?level=semester&parent_id=...&parent_label=CSE
// =======================
func (ctrl *CatalogController) Browse(c *fiber.Ctx) error {
	cl, err := clientOf(c)
	if cl == nil {
		return err
	}

	var q dto.BrowseQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid query")
	}
	if err := helper.ValidateStruct(&q); err != nil {
		return helper.ValidationError(c, err)
	}

	level := gateway.LevelBranch
	if q.Level != "" {
		if level, err = gateway.ParseLevel(q.Level); err != nil {
			return helper.JsonFailure(c, helper.Validation("level", "unknown level"), cl.Browser.Current())
		}
	}

	view, err := cl.Browser.Enter(c.UserContext(), navigator.Target{
		Level:       level,
		ParentID:    dto.UUIDOrNil(q.ParentID),
		ParentLabel: q.ParentLabel,
	})
	if err != nil {
		// view lama dikirim balik supaya UI tidak rusak
		return helper.JsonFailure(c, err, view)
	}
	return helper.JsonOK(c, "ok", view)
}

// GET /api/catalog/view: view yang sedang tampil untuk client ini.
func (ctrl *CatalogController) CurrentView(c *fiber.Ctx) error {
	cl, err := clientOf(c)
	if cl == nil {
		return err
	}
	return helper.JsonOK(c, "ok", cl.Browser.Current())
}

// =======================
// 🔽 Dropdown options
// GET /api/catalog/options/:level?parent_id=
// =======================
func (ctrl *CatalogController) Options(c *fiber.Ctx) error {
	level, err := gateway.ParseLevel(c.Params("level"))
	if err != nil || !level.IsNode() {
		return helper.JsonFailure(c, helper.Validation("level", "unknown level"), nil)
	}
	opts, err := ctrl.Navigator.Options(c.UserContext(), level, dto.UUIDOrNil(c.Query("parent_id")))
	if err != nil {
		return helper.JsonFailure(c, err, nil)
	}
	return helper.JsonOK(c, "ok", opts)
}

// =======================
// ➕ Create node (admin code)
// POST /api/catalog/:level
// =======================
func (ctrl *CatalogController) CreateNode(c *fiber.Ctx) error {
	level, err := gateway.ParseLevel(c.Params("level"))
	if err != nil || !level.IsNode() {
		return helper.JsonFailure(c, helper.Validation("level", "only branch, semester, section and subject can be created"), nil)
	}

	var body dto.CreateNodeRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.ValidateStruct(&body); err != nil {
		return helper.ValidationError(c, err)
	}

	res, err := ctrl.Editor.Create(c.UserContext(), level, body.ToForm())
	if err != nil {
		return helper.JsonFailure(c, err, res.Form)
	}
	return helper.JsonCreated(c, "✅ "+level.String()+" created", res)
}

// =======================
// 🔍 Search
// GET /api/documents/search?q=&subject_id=&branch_id=
// =======================
func (ctrl *CatalogController) SearchDocuments(c *fiber.Ctx) error {
	var q dto.SearchQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid query")
	}
	if err := helper.ValidateStruct(&q); err != nil {
		return helper.ValidationError(c, err)
	}

	res, err := ctrl.Search.Search(c.UserContext(), search.Query{
		Term:      q.Q,
		SubjectID: dto.ParseOptionalUUID(q.SubjectID),
		BranchID:  dto.ParseOptionalUUID(q.BranchID),
	})
	if err != nil {
		return helper.JsonFailure(c, err, nil)
	}
	return helper.JsonOK(c, "ok", res)
}

// GET /api/stats
func (ctrl *CatalogController) Overview(c *fiber.Ctx) error {
	out, err := ctrl.Stats.Overview(c.UserContext())
	if err != nil {
		return helper.JsonFailure(c, err, nil)
	}
	return helper.JsonOK(c, "ok", out)
}
