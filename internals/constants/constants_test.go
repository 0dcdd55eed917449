package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoarseFileType(t *testing.T) {
	assert.Equal(t, "application", CoarseFileType("application/pdf"))
	assert.Equal(t, "image", CoarseFileType("image/png"))
	assert.Equal(t, "file", CoarseFileType(""))
	assert.Equal(t, "file", CoarseFileType("/weird"))
	assert.Equal(t, "text", CoarseFileType("text"))
}

func TestPreviewAndBadge(t *testing.T) {
	assert.True(t, IsPreviewable("application", "notes.pdf"))
	assert.True(t, IsPreviewable("image", "diagram"))
	assert.False(t, IsPreviewable("application", "slides.pptx"))

	assert.Equal(t, "PDF", Badge("application", "notes.PDF"))
	assert.Equal(t, "IMAGE", Badge("image", "a.png"))
	assert.Equal(t, "FILE", Badge("", "blob"))
}

func TestMaxUploadBytes(t *testing.T) {
	assert.Equal(t, int64(52428800), MaxUploadBytes)
}
