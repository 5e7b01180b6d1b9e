// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// MaxUploadSize is the largest image accepted for upload.
const MaxUploadSize = 5 * 1024 * 1024

// ErrNotImage is returned when an upload does not look like an image.
var ErrNotImage = errors.New("file is not an image")

// formFile is a file part of a multipart form.
type formFile struct {
	field string
	path  string
}

// multipartRequest encodes fields and files into a request whose body can
// be replayed on retry.
func multipartRequest(method, path string, fields [][2]string, files ...formFile) (request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, kv := range fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return request{}, fmt.Errorf("write field %s: %w", kv[0], err)
		}
	}
	for _, f := range files {
		if f.path == "" {
			continue
		}
		if err := writeFile(w, f); err != nil {
			return request{}, err
		}
	}
	if err := w.Close(); err != nil {
		return request{}, fmt.Errorf("close multipart body: %w", err)
	}

	return request{
		method:      method,
		path:        path,
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
	}, nil
}

func writeFile(w *multipart.Writer, f formFile) error {
	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", f.path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", f.path)
	}
	if info.Size() > MaxUploadSize {
		return fmt.Errorf("%s is larger than %d MB", filepath.Base(f.path), MaxUploadSize/(1024*1024))
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read %s: %w", f.path, err)
	}
	contentType := http.DetectContentType(head[:n])
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("%w: %s is %s", ErrNotImage, filepath.Base(f.path), contentType)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(f.field), escapeQuotes(filepath.Base(f.path))))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(head[:n]); err != nil {
		return fmt.Errorf("copy %s: %w", f.path, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy %s: %w", f.path, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
