package dto

import (
	"strings"

	"github.com/google/uuid"

	"notesku_backend/internals/features/catalog/editor"
	"notesku_backend/internals/features/catalog/navigator"
	"notesku_backend/internals/gateway"
)

// ============================
// Request DTO
// ============================

type BrowseQuery struct {
	Level       string `query:"level"`
	ParentID    string `query:"parent_id" validate:"omitempty,uuid"`
	ParentLabel string `query:"parent_label" validate:"max=200"`
}

type CreateNodeRequest struct {
	AdminCode   string `json:"admin_code" form:"admin_code"`
	ParentID    string `json:"parent_id" form:"parent_id" validate:"omitempty,uuid"`
	Name        string `json:"name" form:"name" validate:"max=200"`
	Description string `json:"description" form:"description" validate:"max=2000"`
}

type SearchQuery struct {
	Q         string `query:"q" validate:"max=200"`
	SubjectID string `query:"subject_id" validate:"omitempty,uuid"`
	BranchID  string `query:"branch_id" validate:"omitempty,uuid"`
}

// UploadDocumentRequest: field teks dari form multipart. File dibaca terpisah.
type UploadDocumentRequest struct {
	SectionID   string `form:"section_id"`
	SubjectID   string `form:"subject_id"`
	Title       string `form:"title" validate:"max=300"`
	Description string `form:"description" validate:"max=5000"`
}

// ============================
// Response DTO
// ============================

type UploadResponse struct {
	Document gateway.Document `json:"document"`
	Card     navigator.Card   `json:"card"`
	Form     any              `json:"form"`
}

// ============================
// Converter
// ============================

// ParseOptionalUUID: "" → nil.
func ParseOptionalUUID(s string) *uuid.UUID {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}

// UUIDOrNil: nilai invalid/kosong jadi uuid.Nil, biar service yang menolak.
func UUIDOrNil(s string) uuid.UUID {
	if id := ParseOptionalUUID(s); id != nil {
		return *id
	}
	return uuid.Nil
}

func (r CreateNodeRequest) ToForm() editor.Form {
	return editor.Form{
		AdminCode:   r.AdminCode,
		ParentID:    UUIDOrNil(r.ParentID),
		Name:        r.Name,
		Description: r.Description,
	}
}
