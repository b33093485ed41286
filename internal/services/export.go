// Package services holds higher-level operations composed from the store
// and the Supabase clients.
package services

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"system-builder-backend/internal/apperr"
	"system-builder-backend/internal/models"
	"system-builder-backend/internal/supabase"
)

// ArchiveUploader is the slice of the storage client the exporter needs.
type ArchiveUploader interface {
	UploadArchive(userID, projectID uuid.UUID, filename string, data []byte) (string, string, error)
}

// Exporter packages a project's current file view as a zip archive. When a
// storage client is configured the archive is also uploaded, but upload
// failure never fails the export.
type Exporter struct {
	uploader ArchiveUploader
	log      *zap.Logger
}

func NewExporter(uploader ArchiveUploader, log *zap.Logger) *Exporter {
	return &Exporter{uploader: uploader, log: log}
}

// BuildArchive writes the file set into a zip, each entry prefixed with a
// slug of the project name. Entry order is deterministic.
func BuildArchive(projectName string, files models.FileSet) ([]byte, error) {
	if len(files) == 0 {
		return nil, apperr.New(apperr.KindNotFound, "project has no generated files")
	}

	root := slugify(projectName)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for _, name := range names {
		entry, err := writer.Create(root + "/" + name)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to create archive entry", err)
		}
		if _, err := entry.Write([]byte(files[name])); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to write archive entry", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to finalize archive", err)
	}
	return buf.Bytes(), nil
}

// Export builds the archive and uploads it when storage is available.
// Returns the archive bytes, the suggested filename, and the public URL of
// the uploaded copy when one was made.
func (e *Exporter) Export(ownerID, projectID uuid.UUID, projectName string, files models.FileSet) ([]byte, string, string, error) {
	data, err := BuildArchive(projectName, files)
	if err != nil {
		return nil, "", "", err
	}

	filename := fmt.Sprintf("%s-export.zip", slugify(projectName))

	var publicURL string
	if e.uploader != nil {
		_, url, err := e.uploader.UploadArchive(ownerID, projectID, filename, data)
		if err != nil {
			e.log.Warn("archive upload failed, serving download only",
				zap.String("project_id", projectID.String()), zap.Error(err))
		} else {
			publicURL = url
		}
	}

	return data, filename, publicURL, nil
}

var _ ArchiveUploader = (*supabase.StorageClient)(nil)

func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "project"
	}
	return slug
}
