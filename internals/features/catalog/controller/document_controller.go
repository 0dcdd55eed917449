package controller

import (
	"errors"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"notesku_backend/internals/constants"
	"notesku_backend/internals/features/catalog/dto"
	"notesku_backend/internals/features/catalog/navigator"
	"notesku_backend/internals/features/catalog/upload"
	"notesku_backend/internals/features/users/session"
	"notesku_backend/internals/gateway"
	helper "notesku_backend/internals/helpers"
)

type DocumentController struct {
	Catalog  gateway.Catalog
	Pipeline *upload.Pipeline
}

func NewDocumentController(catalog gateway.Catalog, p *upload.Pipeline) *DocumentController {
	return &DocumentController{Catalog: catalog, Pipeline: p}
}

func fileFromHeader(fh *multipart.FileHeader) *upload.File {
	if fh == nil {
		return nil
	}
	return &upload.File{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// =======================
// ⬆️ Upload (multipart)
// POST /api/documents  fields: section_id, subject_id, title, description, file
// =======================
func (ctrl *DocumentController) Upload(c *fiber.Ctx) error {
	var user *gateway.Identity
	if cl := session.FromCtx(c); cl != nil {
		user = cl.Guard.CurrentUser()
	}
	if user == nil {
		return helper.JsonFailure(c, helper.Unauthenticated(constants.MsgSignInToUpload), nil)
	}

	var body dto.UploadDocumentRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid form body")
	}
	if err := helper.ValidateStruct(&body); err != nil {
		return helper.ValidationError(c, err)
	}

	// tanpa file → fh nil, Validate yang menolak
	fh, _ := c.FormFile("file")

	res, err := ctrl.Pipeline.Upload(c.UserContext(), upload.Request{
		SectionID:   dto.UUIDOrNil(body.SectionID),
		SubjectID:   dto.UUIDOrNil(body.SubjectID),
		Title:       body.Title,
		Description: body.Description,
		File:        fileFromHeader(fh),
	}, user)
	if err != nil {
		return helper.JsonFailure(c, err, res.Form)
	}
	return helper.JsonCreated(c, "✅ Note uploaded", dto.UploadResponse{
		Document: res.Document,
		Card:     navigator.DocumentCard(res.Document),
		Form:     res.Form,
	})
}

// GET /api/documents/:id/download → redirect ke file_url (dibuka di tab baru oleh UI).
func (ctrl *DocumentController) Download(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid document id")
	}
	doc, err := ctrl.Catalog.GetDocument(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return helper.JsonFailure(c, helper.NotFound("document not found", err), nil)
		}
		return helper.JsonFailure(c, helper.Gateway("failed to load document", err), nil)
	}
	return c.Redirect(doc.FileURL, fiber.StatusFound)
}
