// Package upload: validasi file lokal → simpan ke object storage → catat metadata.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"notesku_backend/internals/constants"
	"notesku_backend/internals/gateway"
	helper "notesku_backend/internals/helpers"
	"notesku_backend/internals/logger"
	"notesku_backend/internals/metrics"
)

// File: file yang dipilih user. Size adalah ukuran yang dilaporkan form,
// dicek sebelum Open dipanggil.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

type Request struct {
	SectionID   uuid.UUID
	SubjectID   uuid.UUID
	Title       string
	Description string
	File        *File
}

// Form: isian form upload yang dikembalikan ke view.
type Form struct {
	SectionID   uuid.UUID `json:"section_id"`
	SubjectID   uuid.UUID `json:"subject_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
}

type Result struct {
	Document gateway.Document `json:"document"`
	Form     Form             `json:"form"`
}

type Pipeline struct {
	Catalog gateway.Catalog
	Storage gateway.Storage
	Bucket  string
	Metrics *metrics.Metrics
	Now     func() time.Time

	log zerolog.Logger
}

func New(catalog gateway.Catalog, storage gateway.Storage, bucket string) *Pipeline {
	return &Pipeline{
		Catalog: catalog,
		Storage: storage,
		Bucket:  bucket,
		Now:     time.Now,
		log:     logger.Component("upload"),
	}
}

func formOf(r Request) Form {
	return Form{SectionID: r.SectionID, SubjectID: r.SubjectID, Title: r.Title, Description: r.Description}
}

// Validate: precondition berurutan, kegagalan pertama yang dipakai.
func Validate(r Request) error {
	if r.SectionID == uuid.Nil || r.SubjectID == uuid.Nil {
		return helper.Validation("subject_id", "Please select a section and subject.")
	}
	if strings.TrimSpace(r.Title) == "" {
		return helper.Validation("title", "Please enter a title.")
	}
	if r.File == nil {
		return helper.Validation("file", "Please choose a file.")
	}
	if r.File.Size > constants.MaxUploadBytes {
		return helper.Validation("file", constants.MsgFileTooLarge)
	}
	return nil
}

// baseName: nama file tanpa path (browser Windows kadang mengirim path lengkap).
func baseName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "file"
	}
	return base
}

// StorageKey: "<unix-millis>_<nama file>".
func StorageKey(now time.Time, name string) string {
	return fmt.Sprintf("%d_%s", now.UnixMilli(), baseName(name))
}

// Upload menjalankan pipeline. uploader nil = tanpa sesi (uploaded_by kosong).
func (p *Pipeline) Upload(ctx context.Context, r Request, uploader *gateway.Identity) (Result, error) {
	untouched := Result{Form: formOf(r)}

	if err := Validate(r); err != nil {
		p.Metrics.ObserveUpload("rejected", 0)
		return untouched, err
	}

	// subject harus berada di bawah section yang dipilih
	subject, err := p.Catalog.GetNode(ctx, gateway.LevelSubject, r.SubjectID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			p.Metrics.ObserveUpload("rejected", 0)
			return untouched, helper.Validation("subject_id", "Selected subject does not exist.")
		}
		p.log.Error().Err(err).Str("subject_id", r.SubjectID.String()).Msg("lookup subject")
		p.Metrics.ObserveUpload("failed", 0)
		return untouched, helper.Gateway("failed to upload file", err)
	}
	if subject.ParentID != r.SectionID {
		p.Metrics.ObserveUpload("rejected", 0)
		return untouched, helper.Validation("subject_id", "Selected subject does not belong to the selected section.")
	}

	key := StorageKey(p.Now(), r.File.Name)
	if err := p.store(ctx, key, r.File); err != nil {
		p.log.Error().Err(err).Str("key", key).Msg("storage upload")
		p.Metrics.ObserveUpload("failed", 0)
		return untouched, helper.Gateway("failed to upload file", err)
	}
	url := p.Storage.PublicURL(p.Bucket, key)

	doc := gateway.Document{
		SubjectID:   r.SubjectID,
		Title:       strings.TrimSpace(r.Title),
		Description: strings.TrimSpace(r.Description),
		FileURL:     url,
		FileType:    constants.CoarseFileType(r.File.ContentType),
		FileSize:    r.File.Size,
		StorageKey:  key,
		Metadata: map[string]any{
			"original_name": baseName(r.File.Name),
			"media_type":    r.File.ContentType,
			"section_id":    r.SectionID.String(),
		},
	}
	if uploader != nil && uploader.ID != uuid.Nil {
		id := uploader.ID
		doc.UploadedBy = &id
	}

	created, err := p.Catalog.InsertDocument(ctx, doc)
	if err != nil {
		// object sudah tersimpan tanpa metadata
		p.log.Error().Err(err).
			Str("bucket", p.Bucket).
			Str("key", key).
			Msg("insert document failed, stored object is orphaned")
		p.Metrics.ObserveUpload("orphaned", 0)
		return untouched, helper.Gateway("failed to save document", err)
	}

	p.log.Info().
		Str("id", created.ID.String()).
		Str("key", key).
		Int64("size", created.FileSize).
		Msg("document uploaded")
	p.Metrics.ObserveUpload("ok", created.FileSize)

	return Result{
		Document: created,
		Form:     Form{SectionID: r.SectionID, SubjectID: r.SubjectID},
	}, nil
}

func (p *Pipeline) store(ctx context.Context, key string, f *File) error {
	if f.Open == nil {
		return errors.New("file has no content")
	}
	body, err := f.Open()
	if err != nil {
		return err
	}
	defer body.Close()

	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	return p.Storage.Upload(ctx, p.Bucket, key, body, f.Size, ct)
}
