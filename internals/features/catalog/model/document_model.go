package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"notesku_backend/internals/gateway"
)

// DocumentModel: metadata file yang di-upload. Parent kanonik = subject.
type DocumentModel struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SubjectID   uuid.UUID         `gorm:"column:subject_id;type:uuid;not null;index" json:"subject_id"`
	Title       string            `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Description *string           `gorm:"column:description;type:text" json:"description,omitempty"`
	FileURL     string            `gorm:"column:file_url;type:text;not null" json:"file_url"`
	FileType    string            `gorm:"column:file_type;type:varchar(40);not null;default:'file'" json:"file_type"`
	FileSize    int64             `gorm:"column:file_size;not null;default:0" json:"file_size"`
	UploadedBy  *uuid.UUID        `gorm:"column:uploaded_by;type:uuid;index" json:"uploaded_by,omitempty"`
	StorageKey  *string           `gorm:"column:storage_key;type:text" json:"storage_key,omitempty"`
	Metadata    datatypes.JSONMap `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"column:created_at;not null;autoCreateTime;index" json:"created_at"`

	Subject *SubjectModel `gorm:"foreignKey:SubjectID;references:ID" json:"subject,omitempty"`
}

func (DocumentModel) TableName() string { return "documents" }

func (m *DocumentModel) BeforeCreate(*gorm.DB) error { newID(&m.ID); return nil }

func NewDocumentModel(d gateway.Document) DocumentModel {
	m := DocumentModel{
		ID:          d.ID,
		SubjectID:   d.SubjectID,
		Title:       d.Title,
		Description: descPtr(d.Description),
		FileURL:     d.FileURL,
		FileType:    d.FileType,
		FileSize:    d.FileSize,
		UploadedBy:  d.UploadedBy,
		StorageKey:  descPtr(d.StorageKey),
	}
	if len(d.Metadata) > 0 {
		m.Metadata = datatypes.JSONMap(d.Metadata)
	}
	return m
}

func (m DocumentModel) ToDocument() gateway.Document {
	d := gateway.Document{
		ID:          m.ID,
		SubjectID:   m.SubjectID,
		Title:       m.Title,
		Description: deref(m.Description),
		FileURL:     m.FileURL,
		FileType:    m.FileType,
		FileSize:    m.FileSize,
		UploadedBy:  m.UploadedBy,
		StorageKey:  deref(m.StorageKey),
		CreatedAt:   m.CreatedAt,
	}
	if len(m.Metadata) > 0 {
		d.Metadata = map[string]any(m.Metadata)
	}
	if sub := m.Subject; sub != nil {
		p := &gateway.DocumentPath{Subject: NodeFromModel(sub)}
		if sec := sub.Section; sec != nil {
			p.Section = NodeFromModel(sec)
			if sem := sec.Semester; sem != nil {
				p.Semester = NodeFromModel(sem)
				if br := sem.Branch; br != nil {
					p.Branch = NodeFromModel(br)
				}
			}
		}
		d.Path = p
	}
	return d
}

// AllModels: urutan AutoMigrate (parent dulu).
func AllModels() []any {
	return []any{
		&BranchModel{},
		&SemesterModel{},
		&SectionModel{},
		&SubjectModel{},
		&DocumentModel{},
	}
}
