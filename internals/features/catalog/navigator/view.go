package navigator

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"notesku_backend/internals/constants"
	"notesku_backend/internals/gateway"
	helper "notesku_backend/internals/helpers"
)

// Target: alamat satu tampilan (level yang ditampilkan + parent-nya).
type Target struct {
	Level       gateway.Level `json:"level"`
	ParentID    uuid.UUID     `json:"parent_id"`
	ParentLabel string        `json:"parent_label,omitempty"`
}

// Card: satu item di list. Field Enter diisi untuk node hirarki,
// field dokumen (Badge, Size, DownloadURL, ...) untuk level document.
type Card struct {
	ID          uuid.UUID     `json:"id"`
	Level       gateway.Level `json:"level"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`

	Enter *Target `json:"enter,omitempty"`

	Badge       string                `json:"badge,omitempty"`
	Size        string                `json:"size,omitempty"`
	SizeBytes   int64                 `json:"size_bytes,omitempty"`
	FileType    string                `json:"file_type,omitempty"`
	DownloadURL string                `json:"download_url,omitempty"`
	Target      string                `json:"target,omitempty"`
	Previewable bool                  `json:"previewable,omitempty"`
	Path        *gateway.DocumentPath `json:"path,omitempty"`
	CreatedAt   *time.Time            `json:"created_at,omitempty"`
}

// View: satu template untuk semua level.
type View struct {
	Level       gateway.Level `json:"level"`
	ParentID    uuid.UUID     `json:"parent_id"`
	Heading     string        `json:"heading"`
	Back        *Target       `json:"back,omitempty"`
	Cards       []Card        `json:"cards"`
	Empty       bool          `json:"empty"`
	Placeholder string        `json:"placeholder,omitempty"`
}

func plural(level gateway.Level) string {
	if level == gateway.LevelBranch {
		return "branches"
	}
	return level.String() + "s"
}

// Placeholder: teks "none found" per level.
func Placeholder(level gateway.Level) string {
	return fmt.Sprintf(constants.MsgNoneFound, plural(level))
}

// DownloadPath: endpoint yang me-redirect ke file_url dokumen.
func DownloadPath(id uuid.UUID) string {
	return "/api/documents/" + id.String() + "/download"
}

func NodeCard(n gateway.Node) Card {
	c := Card{ID: n.ID, Level: n.Level, Title: n.Name, Description: n.Description}
	if child, ok := n.Level.Child(); ok {
		c.Enter = &Target{Level: child, ParentID: n.ID, ParentLabel: n.Name}
	}
	return c
}

// FileName: nama file asli dari metadata, fallback ke storage key lalu title.
func FileName(d gateway.Document) string {
	if v, ok := d.Metadata["original_name"].(string); ok && v != "" {
		return v
	}
	if d.StorageKey != "" {
		return d.StorageKey
	}
	return d.Title
}

func DocumentCard(d gateway.Document) Card {
	name := FileName(d)
	created := d.CreatedAt
	return Card{
		ID:          d.ID,
		Level:       gateway.LevelDocument,
		Title:       d.Title,
		Description: d.Description,
		Badge:       constants.Badge(d.FileType, name),
		Size:        helper.HumanSize(d.FileSize),
		SizeBytes:   d.FileSize,
		FileType:    d.FileType,
		DownloadURL: DownloadPath(d.ID),
		Target:      "_blank",
		Previewable: constants.IsPreviewable(d.FileType, name),
		Path:        d.Path,
		CreatedAt:   &created,
	}
}

// DocumentCards dipakai juga oleh search.
func DocumentCards(docs []gateway.Document) []Card {
	cards := make([]Card, 0, len(docs))
	for _, d := range docs {
		cards = append(cards, DocumentCard(d))
	}
	return cards
}
