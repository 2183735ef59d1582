// Package upload stores multipart image payloads and hands back public
// URLs. It stands in for an external object store; the rest of the
// backend only ever sees the returned URL.
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type Saver struct {
	// Dir is where files land on disk.
	Dir string
	// BaseURL prefixes the returned references, e.g. "/uploads".
	BaseURL string
}

func NewSaver(dir, baseURL string) *Saver {
	return &Saver{Dir: dir, BaseURL: baseURL}
}

// Save writes the uploaded file under a fresh uuid filename and returns
// its public URL.
func (s *Saver) Save(file *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload folder: %w", err)
	}

	name := uuid.NewString() + filepath.Ext(file.Filename)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	return s.BaseURL + "/" + name, nil
}

// SaveAll saves every file in order and returns their URLs.
func (s *Saver) SaveAll(files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, file := range files {
		url, err := s.Save(file)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}
