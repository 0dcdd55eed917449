package constants

import (
	"path/filepath"
	"strings"
)

// MaxUploadBytes: 50 MiB, inklusif.
const MaxUploadBytes int64 = 50 * 1024 * 1024

// CoarseFileType: bagian media type sebelum "/", default "file".
// "application/pdf" → "application", "image/png" → "image", "" → "file".
func CoarseFileType(mediaType string) string {
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		return "file"
	}
	head, _, _ := strings.Cut(mediaType, "/")
	head = strings.ToLower(strings.TrimSpace(head))
	if head == "" {
		return "file"
	}
	return head
}

var previewableExt = map[string]bool{
	".txt": true, ".md": true, ".json": true, ".pdf": true,
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".svg": true,
	".mp3": true, ".mp4": true,
}

// IsPreviewable: apakah dokumen bisa dibuka inline di browser (iframe/img/video).
func IsPreviewable(fileType, name string) bool {
	switch fileType {
	case "image", "video", "audio", "text":
		return true
	}
	return previewableExt[strings.ToLower(filepath.Ext(name))]
}

// Badge: label singkat untuk kartu dokumen.
func Badge(fileType, name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	switch ext {
	case "pdf", "doc", "docx", "ppt", "pptx", "xls", "xlsx", "zip":
		return strings.ToUpper(ext)
	}
	if fileType == "" {
		return "FILE"
	}
	return strings.ToUpper(fileType)
}
