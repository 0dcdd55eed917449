package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesku_backend/internals/constants"
	"notesku_backend/internals/features/catalog/navigator"
	"notesku_backend/internals/gateway"
	"notesku_backend/internals/gateway/gatewaytest"
	helper "notesku_backend/internals/helpers"
)

const code = "s3cret"

func newEditor(cat *gatewaytest.Catalog) *Editor {
	return New(cat, navigator.New(cat), code)
}

func TestCreateBranchWithCorrectCode(t *testing.T) {
	cat := gatewaytest.NewCatalog()
	res, err := newEditor(cat).CreateBranch(context.Background(), Form{AdminCode: code, Name: "CSE", Description: ""})
	require.NoError(t, err)

	assert.Equal(t, 1, cat.Inserts)
	assert.Equal(t, "CSE", res.Node.Name)
	assert.Equal(t, gateway.LevelBranch, res.Node.Level)
	assert.Empty(t, res.Form.Name)
	assert.Empty(t, res.Form.Description)
	require.Len(t, res.Options, 1)
	assert.Equal(t, res.Node.ID, res.Options[0].ID)
}

func TestCreateBranchWithWrongCode(t *testing.T) {
	cat := gatewaytest.NewCatalog()
	form := Form{AdminCode: "nope", Name: "CSE", Description: "Computer Science"}
	res, err := newEditor(cat).CreateBranch(context.Background(), form)

	require.Error(t, err)
	assert.Equal(t, helper.FailForbidden, helper.KindOf(err))
	var f *helper.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, constants.MsgIncorrectAdminCode, f.Message)
	assert.Zero(t, cat.Inserts)
	assert.Equal(t, form, res.Form)
}

func TestCreateRejectsWhenAdminCodeUnset(t *testing.T) {
	cat := gatewaytest.NewCatalog()
	_, err := New(cat, navigator.New(cat), "").CreateBranch(context.Background(), Form{Name: "CSE"})
	assert.Equal(t, helper.FailForbidden, helper.KindOf(err))
	assert.Zero(t, cat.Inserts)
}

func TestCreateValidatesParentAndName(t *testing.T) {
	cat := gatewaytest.NewCatalog()
	ed := newEditor(cat)
	br := cat.AddNode(gateway.LevelBranch, uuid.Nil, "CSE")

	form := Form{AdminCode: code, Name: "Semester 1"}
	res, err := ed.CreateSemester(context.Background(), form)
	require.Error(t, err)
	assert.Equal(t, helper.FailValidation, helper.KindOf(err))
	assert.Equal(t, form, res.Form)

	_, err = ed.CreateSemester(context.Background(), Form{AdminCode: code, ParentID: br.ID, Name: "   "})
	var f *helper.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, "name", f.Field)
	assert.Zero(t, cat.Inserts)
}

func TestCreateRejectsUnknownParent(t *testing.T) {
	cat := gatewaytest.NewCatalog()
	ed := newEditor(cat)
	br := cat.AddNode(gateway.LevelBranch, uuid.Nil, "CSE")

	form := Form{AdminCode: code, ParentID: uuid.New(), Name: "Semester 1"}
	res, err := ed.CreateSemester(context.Background(), form)
	var f *helper.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, helper.FailValidation, f.Kind)
	assert.Equal(t, "parent_id", f.Field)
	assert.Equal(t, "Selected branch does not exist.", f.Message)
	assert.Equal(t, form, res.Form)

	// id branch dipakai sebagai section: level parent harus cocok
	_, err = ed.CreateSubject(context.Background(), Form{AdminCode: code, ParentID: br.ID, Name: "Algorithms"})
	assert.Equal(t, helper.FailValidation, helper.KindOf(err))
	assert.Zero(t, cat.Inserts)
}

func TestCreateScopedToParent(t *testing.T) {
	cat := gatewaytest.NewCatalog()
	ed := newEditor(cat)
	br := cat.AddNode(gateway.LevelBranch, uuid.Nil, "CSE")
	other := cat.AddNode(gateway.LevelBranch, uuid.Nil, "ECE")
	cat.AddNode(gateway.LevelSemester, other.ID, "Semester 1")

	res, err := ed.CreateSemester(context.Background(), Form{AdminCode: code, ParentID: br.ID, Name: " Semester 2 ", Description: "odd"})
	require.NoError(t, err)
	assert.Equal(t, br.ID, res.Node.ParentID)
	assert.Equal(t, "Semester 2", res.Node.Name)
	assert.Equal(t, br.ID, res.Form.ParentID)
	require.Len(t, res.Options, 1)
	assert.Equal(t, "Semester 2", res.Options[0].Name)
}

func TestCreateMapsConflict(t *testing.T) {
	cat := gatewaytest.NewCatalog()
	cat.Err = errors.Join(gateway.ErrConflict, errors.New("uq_branches_name"))
	form := Form{AdminCode: code, Name: "CSE"}
	res, err := newEditor(cat).CreateBranch(context.Background(), form)
	assert.Equal(t, helper.FailConflict, helper.KindOf(err))
	assert.Equal(t, form, res.Form)
}

func TestCreateRejectsDocumentLevel(t *testing.T) {
	cat := gatewaytest.NewCatalog()
	_, err := newEditor(cat).Create(context.Background(), gateway.LevelDocument, Form{AdminCode: code, Name: "x"})
	assert.Equal(t, helper.FailValidation, helper.KindOf(err))
}
