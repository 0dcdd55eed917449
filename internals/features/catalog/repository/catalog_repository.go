// internals/features/catalog/repository/catalog_repository.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"notesku_backend/internals/features/catalog/model"
	"notesku_backend/internals/gateway"
)

// CatalogRepository: implementasi gateway.Catalog di atas gorm.
type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

var _ gateway.Catalog = (*CatalogRepository)(nil)

// nodeRow: bentuk kolom yang sama di keempat tabel node.
type nodeRow struct {
	ID          uuid.UUID
	ParentID    *uuid.UUID
	Name        string
	Description *string
	CreatedAt   time.Time
}

func (r nodeRow) toNode(level gateway.Level) gateway.Node {
	n := gateway.Node{ID: r.ID, Level: level, Name: r.Name, CreatedAt: r.CreatedAt}
	if r.ParentID != nil {
		n.ParentID = *r.ParentID
	}
	if r.Description != nil {
		n.Description = *r.Description
	}
	return n
}

func nodeColumns(level gateway.Level) string {
	if col := level.ParentColumn(); col != "" {
		return "id, " + col + " AS parent_id, name, description, created_at"
	}
	return "id, NULL AS parent_id, name, description, created_at"
}

/* =========================================================
   NODES
   ========================================================= */

func (r *CatalogRepository) ListChildren(ctx context.Context, level gateway.Level, parentID uuid.UUID) ([]gateway.Node, error) {
	if !level.IsNode() {
		return nil, fmt.Errorf("list children: %s is not a node level", level)
	}
	q := r.DB.WithContext(ctx).
		Table(model.TableFor(level)).
		Select(nodeColumns(level))
	if !level.IsRoot() {
		q = q.Where(level.ParentColumn()+" = ?", parentID)
	}

	var rows []nodeRow
	if err := q.Order("name ASC").Scan(&rows).Error; err != nil {
		return nil, translate(err)
	}
	out := make([]gateway.Node, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toNode(level))
	}
	return out, nil
}

func (r *CatalogRepository) GetNode(ctx context.Context, level gateway.Level, id uuid.UUID) (gateway.Node, error) {
	if !level.IsNode() {
		return gateway.Node{}, fmt.Errorf("get node: %s is not a node level", level)
	}
	var rows []nodeRow
	err := r.DB.WithContext(ctx).
		Table(model.TableFor(level)).
		Select(nodeColumns(level)).
		Where("id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return gateway.Node{}, translate(err)
	}
	if len(rows) == 0 {
		return gateway.Node{}, gateway.ErrNotFound
	}
	return rows[0].toNode(level), nil
}

func (r *CatalogRepository) InsertNode(ctx context.Context, node gateway.Node) (gateway.Node, error) {
	m, ok := model.NewNodeModel(node)
	if !ok {
		return gateway.Node{}, fmt.Errorf("insert node: %s is not a node level", node.Level)
	}
	if err := r.DB.WithContext(ctx).Create(m).Error; err != nil {
		return gateway.Node{}, translate(err)
	}
	return model.NodeFromModel(m), nil
}

func (r *CatalogRepository) CountNodes(ctx context.Context, level gateway.Level) (int64, error) {
	table := model.TableFor(level)
	if table == "" {
		return 0, fmt.Errorf("count: unknown level %s", level)
	}
	var n int64
	if err := r.DB.WithContext(ctx).Table(table).Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return n, nil
}

/* =========================================================
   DOCUMENTS
   ========================================================= */

func (r *CatalogRepository) documentScope(ctx context.Context, q gateway.DocumentQuery) *gorm.DB {
	tx := r.DB.WithContext(ctx).Model(&model.DocumentModel{})
	if q.SubjectID != nil {
		tx = tx.Where("subject_id = ?", *q.SubjectID)
	}
	if q.CreatedSince != nil {
		tx = tx.Where("created_at >= ?", *q.CreatedSince)
	}
	return tx
}

func (r *CatalogRepository) ListDocuments(ctx context.Context, q gateway.DocumentQuery) ([]gateway.Document, error) {
	tx := r.documentScope(ctx, q)
	switch q.OrderBy {
	case gateway.OrderTitleAZ:
		tx = tx.Order("title ASC")
	default:
		tx = tx.Order("created_at DESC")
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.WithPath {
		tx = tx.Preload("Subject.Section.Semester.Branch")
	}

	var rows []model.DocumentModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	out := make([]gateway.Document, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.ToDocument())
	}
	return out, nil
}

func (r *CatalogRepository) CountDocuments(ctx context.Context, q gateway.DocumentQuery) (int64, error) {
	var n int64
	if err := r.documentScope(ctx, q).Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func (r *CatalogRepository) GetDocument(ctx context.Context, id uuid.UUID) (gateway.Document, error) {
	var m model.DocumentModel
	err := r.DB.WithContext(ctx).
		Preload("Subject.Section.Semester.Branch").
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		return gateway.Document{}, translate(err)
	}
	return m.ToDocument(), nil
}

func (r *CatalogRepository) InsertDocument(ctx context.Context, doc gateway.Document) (gateway.Document, error) {
	m := model.NewDocumentModel(doc)
	if err := r.DB.WithContext(ctx).Omit("Subject").Create(&m).Error; err != nil {
		return gateway.Document{}, translate(err)
	}
	return m.ToDocument(), nil
}

// translate memetakan error gorm/driver ke sentinel gateway.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return gateway.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", gateway.ErrConflict, err)
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate") {
		return fmt.Errorf("%w: %v", gateway.ErrConflict, err)
	}
	return err
}
