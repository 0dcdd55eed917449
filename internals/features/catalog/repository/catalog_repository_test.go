package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"notesku_backend/internals/features/catalog/model"
	"notesku_backend/internals/gateway"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	return db
}

type tree struct {
	branch, semester, section, subject gateway.Node
}

func seedTree(t *testing.T, repo *CatalogRepository) tree {
	t.Helper()
	ctx := context.Background()
	var tr tree
	var err error
	tr.branch, err = repo.InsertNode(ctx, gateway.Node{Level: gateway.LevelBranch, Name: "Computer Engineering"})
	require.NoError(t, err)
	tr.semester, err = repo.InsertNode(ctx, gateway.Node{Level: gateway.LevelSemester, ParentID: tr.branch.ID, Name: "Semester 3"})
	require.NoError(t, err)
	tr.section, err = repo.InsertNode(ctx, gateway.Node{Level: gateway.LevelSection, ParentID: tr.semester.ID, Name: "Section A"})
	require.NoError(t, err)
	tr.subject, err = repo.InsertNode(ctx, gateway.Node{Level: gateway.LevelSubject, ParentID: tr.section.ID, Name: "Data Structures", Description: "DSA"})
	require.NoError(t, err)
	return tr
}

func TestInsertAndListChildren(t *testing.T) {
	repo := NewCatalogRepository(newTestDB(t))
	ctx := context.Background()
	tr := seedTree(t, repo)

	_, err := repo.InsertNode(ctx, gateway.Node{Level: gateway.LevelBranch, Name: "Civil"})
	require.NoError(t, err)

	branches, err := repo.ListChildren(ctx, gateway.LevelBranch, uuid.Nil)
	require.NoError(t, err)
	require.Len(t, branches, 2)
	assert.Equal(t, "Civil", branches[0].Name)
	assert.Equal(t, "Computer Engineering", branches[1].Name)
	assert.Equal(t, uuid.Nil, branches[0].ParentID)

	// semester milik branch lain tidak ikut
	_, err = repo.InsertNode(ctx, gateway.Node{Level: gateway.LevelSemester, ParentID: branches[0].ID, Name: "Semester 1"})
	require.NoError(t, err)

	sems, err := repo.ListChildren(ctx, gateway.LevelSemester, tr.branch.ID)
	require.NoError(t, err)
	require.Len(t, sems, 1)
	assert.Equal(t, "Semester 3", sems[0].Name)
	assert.Equal(t, tr.branch.ID, sems[0].ParentID)

	got, err := repo.GetNode(ctx, gateway.LevelSubject, tr.subject.ID)
	require.NoError(t, err)
	assert.Equal(t, "DSA", got.Description)
	assert.Equal(t, tr.section.ID, got.ParentID)
}

func TestGetNodeNotFound(t *testing.T) {
	repo := NewCatalogRepository(newTestDB(t))
	_, err := repo.GetNode(context.Background(), gateway.LevelSection, uuid.New())
	assert.ErrorIs(t, err, gateway.ErrNotFound)

	_, err = repo.GetDocument(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

func TestDuplicateBranchIsConflict(t *testing.T) {
	repo := NewCatalogRepository(newTestDB(t))
	ctx := context.Background()
	_, err := repo.InsertNode(ctx, gateway.Node{Level: gateway.LevelBranch, Name: "Mechanical"})
	require.NoError(t, err)
	_, err = repo.InsertNode(ctx, gateway.Node{Level: gateway.LevelBranch, Name: "Mechanical"})
	assert.ErrorIs(t, err, gateway.ErrConflict)
}

func TestDocumentsQueryAndPath(t *testing.T) {
	db := newTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()
	tr := seedTree(t, repo)

	titles := []string{"Trees", "Arrays", "Graphs"}
	for _, title := range titles {
		_, err := repo.InsertDocument(ctx, gateway.Document{
			SubjectID: tr.subject.ID,
			Title:     title,
			FileURL:   "https://cdn.local/" + title,
			FileType:  "application",
			FileSize:  1024,
			Metadata:  map[string]any{"original_name": title + ".pdf"},
		})
		require.NoError(t, err)
	}
	// geser created_at supaya urutan newest deterministik
	old := time.Now().Add(-30 * 24 * time.Hour)
	require.NoError(t, db.Model(&model.DocumentModel{}).Where("title = ?", "Trees").Update("created_at", old).Error)

	byTitle, err := repo.ListDocuments(ctx, gateway.DocumentQuery{SubjectID: &tr.subject.ID, OrderBy: gateway.OrderTitleAZ})
	require.NoError(t, err)
	require.Len(t, byTitle, 3)
	assert.Equal(t, "Arrays", byTitle[0].Title)
	assert.Equal(t, "Trees", byTitle[2].Title)
	assert.Nil(t, byTitle[0].Path)

	newest, err := repo.ListDocuments(ctx, gateway.DocumentQuery{OrderBy: gateway.OrderNewest, WithPath: true})
	require.NoError(t, err)
	require.Len(t, newest, 3)
	assert.Equal(t, "Trees", newest[2].Title)
	require.NotNil(t, newest[0].Path)
	assert.Equal(t, "Computer Engineering", newest[0].Path.Branch.Name)
	assert.Equal(t, "Data Structures", newest[0].Path.Subject.Name)

	since := time.Now().Add(-7 * 24 * time.Hour)
	n, err := repo.CountDocuments(ctx, gateway.DocumentQuery{CreatedSince: &since})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	limited, err := repo.ListDocuments(ctx, gateway.DocumentQuery{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	doc, err := repo.GetDocument(ctx, byTitle[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Arrays.pdf", doc.Metadata["original_name"])
	require.NotNil(t, doc.Path)
	assert.Equal(t, "Section A", doc.Path.Section.Name)
}

func TestCountNodes(t *testing.T) {
	repo := NewCatalogRepository(newTestDB(t))
	seedTree(t, repo)
	n, err := repo.CountNodes(context.Background(), gateway.LevelSubject)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.CountNodes(context.Background(), gateway.LevelDocument)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
