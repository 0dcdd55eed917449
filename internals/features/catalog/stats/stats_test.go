package stats

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesku_backend/internals/gateway"
	"notesku_backend/internals/gateway/gatewaytest"
	helper "notesku_backend/internals/helpers"
)

func TestOverview(t *testing.T) {
	cat := gatewaytest.NewCatalog()
	br := cat.AddNode(gateway.LevelBranch, uuid.Nil, "CSE")
	sem := cat.AddNode(gateway.LevelSemester, br.ID, "S1")
	sec := cat.AddNode(gateway.LevelSection, sem.ID, "A")
	sub := cat.AddNode(gateway.LevelSubject, sec.ID, "DSA")

	now := time.Now()
	cat.AddDocument(gateway.Document{SubjectID: sub.ID, Title: "old", CreatedAt: now.Add(-30 * 24 * time.Hour)})
	for i := 0; i < 6; i++ {
		cat.AddDocument(gateway.Document{SubjectID: sub.ID, Title: fmt.Sprintf("doc %d", i)})
	}

	svc := New(cat)
	svc.Now = func() time.Time { return now.Add(time.Minute) }
	ov, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), ov.Branches)
	assert.Equal(t, int64(1), ov.Subjects)
	assert.Equal(t, int64(7), ov.Documents)
	assert.Equal(t, int64(6), ov.DocumentsWeek)
	require.Len(t, ov.RecentUploads, 5)
	assert.Equal(t, "doc 5", ov.RecentUploads[0].Title)
	require.NotNil(t, ov.RecentUploads[0].Path)
	assert.Equal(t, "CSE", ov.RecentUploads[0].Path.Branch.Name)
}

func TestOverviewGatewayFailure(t *testing.T) {
	cat := gatewaytest.NewCatalog()
	cat.Err = errors.New("down")
	_, err := New(cat).Overview(context.Background())
	assert.Equal(t, helper.FailGateway, helper.KindOf(err))
}
