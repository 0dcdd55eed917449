// internals/features/catalog/model/catalog_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"notesku_backend/internals/gateway"
)

// NOTE:
// - nama kolom polos (id, name, description, <parent>_id) mengikuti skema tabel yang sudah ada
// - id diisi di BeforeCreate supaya tidak bergantung ke gen_random_uuid()
// - description nullable → *string

type BranchModel struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;type:varchar(120);not null;uniqueIndex:uq_branches_name" json:"name"`
	Description *string   `gorm:"column:description;type:text" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
}

func (BranchModel) TableName() string { return "branches" }

type SemesterModel struct {
	ID          uuid.UUID    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	BranchID    uuid.UUID    `gorm:"column:branch_id;type:uuid;not null;index" json:"branch_id"`
	Name        string       `gorm:"column:name;type:varchar(120);not null" json:"name"`
	Description *string      `gorm:"column:description;type:text" json:"description,omitempty"`
	CreatedAt   time.Time    `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
	Branch      *BranchModel `gorm:"foreignKey:BranchID;references:ID" json:"branch,omitempty"`
}

func (SemesterModel) TableName() string { return "semesters" }

type SectionModel struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SemesterID  uuid.UUID      `gorm:"column:semester_id;type:uuid;not null;index" json:"semester_id"`
	Name        string         `gorm:"column:name;type:varchar(120);not null" json:"name"`
	Description *string        `gorm:"column:description;type:text" json:"description,omitempty"`
	CreatedAt   time.Time      `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
	Semester    *SemesterModel `gorm:"foreignKey:SemesterID;references:ID" json:"semester,omitempty"`
}

func (SectionModel) TableName() string { return "sections" }

type SubjectModel struct {
	ID          uuid.UUID     `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SectionID   uuid.UUID     `gorm:"column:section_id;type:uuid;not null;index" json:"section_id"`
	Name        string        `gorm:"column:name;type:varchar(160);not null" json:"name"`
	Description *string       `gorm:"column:description;type:text" json:"description,omitempty"`
	CreatedAt   time.Time     `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
	Section     *SectionModel `gorm:"foreignKey:SectionID;references:ID" json:"section,omitempty"`
}

func (SubjectModel) TableName() string { return "subjects" }

func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (m *BranchModel) BeforeCreate(*gorm.DB) error   { newID(&m.ID); return nil }
func (m *SemesterModel) BeforeCreate(*gorm.DB) error { newID(&m.ID); return nil }
func (m *SectionModel) BeforeCreate(*gorm.DB) error  { newID(&m.ID); return nil }
func (m *SubjectModel) BeforeCreate(*gorm.DB) error  { newID(&m.ID); return nil }

// TableFor: nama tabel per level hirarki.
func TableFor(level gateway.Level) string {
	switch level {
	case gateway.LevelBranch:
		return BranchModel{}.TableName()
	case gateway.LevelSemester:
		return SemesterModel{}.TableName()
	case gateway.LevelSection:
		return SectionModel{}.TableName()
	case gateway.LevelSubject:
		return SubjectModel{}.TableName()
	case gateway.LevelDocument:
		return DocumentModel{}.TableName()
	}
	return ""
}

// NewNodeModel membangun model gorm untuk insert satu node.
func NewNodeModel(n gateway.Node) (any, bool) {
	desc := descPtr(n.Description)
	switch n.Level {
	case gateway.LevelBranch:
		return &BranchModel{ID: n.ID, Name: n.Name, Description: desc}, true
	case gateway.LevelSemester:
		return &SemesterModel{ID: n.ID, BranchID: n.ParentID, Name: n.Name, Description: desc}, true
	case gateway.LevelSection:
		return &SectionModel{ID: n.ID, SemesterID: n.ParentID, Name: n.Name, Description: desc}, true
	case gateway.LevelSubject:
		return &SubjectModel{ID: n.ID, SectionID: n.ParentID, Name: n.Name, Description: desc}, true
	}
	return nil, false
}

// NodeFromModel kebalikan dari NewNodeModel.
func NodeFromModel(m any) gateway.Node {
	switch v := m.(type) {
	case *BranchModel:
		return gateway.Node{ID: v.ID, Level: gateway.LevelBranch, Name: v.Name, Description: deref(v.Description), CreatedAt: v.CreatedAt}
	case *SemesterModel:
		return gateway.Node{ID: v.ID, Level: gateway.LevelSemester, ParentID: v.BranchID, Name: v.Name, Description: deref(v.Description), CreatedAt: v.CreatedAt}
	case *SectionModel:
		return gateway.Node{ID: v.ID, Level: gateway.LevelSection, ParentID: v.SemesterID, Name: v.Name, Description: deref(v.Description), CreatedAt: v.CreatedAt}
	case *SubjectModel:
		return gateway.Node{ID: v.ID, Level: gateway.LevelSubject, ParentID: v.SectionID, Name: v.Name, Description: deref(v.Description), CreatedAt: v.CreatedAt}
	}
	return gateway.Node{}
}

func descPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
