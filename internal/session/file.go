// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/instalite-tui/internal/util"
)

// =============================================================================
// FILE KV
// =============================================================================

// fileDocument is the on-disk layout of a FileKV.
type fileDocument struct {
	Origin string            `json:"origin"`
	Items  map[string]string `json:"items"`
}

// FileKV stores one JSON document per origin. Every operation re-reads the
// file so that writes from other processes are seen.
type FileKV struct {
	mu     sync.Mutex
	path   string
	origin string
	closed bool
}

// NewFileKV returns a FileKV for origin under dir. The file is created on
// the first write.
func NewFileKV(dir, origin string) (*FileKV, error) {
	if dir == "" {
		return nil, errors.New("session: empty storage directory")
	}
	if err := os.MkdirAll(dir, util.DefaultDirPerm); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &FileKV{
		path:   filepath.Join(dir, OriginFileName(origin)+".json"),
		origin: origin,
	}, nil
}

// OriginFileName maps an origin to a safe file stem:
// "http://localhost:5000" becomes "http_localhost_5000".
func OriginFileName(origin string) string {
	if origin == "" {
		return "default"
	}
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(origin) {
		ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '-'
		if ok {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}

// Path returns the file backing f.
func (f *FileKV) Path() string {
	return f.path
}

func (f *FileKV) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return "", false, ErrClosed
	}
	doc, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := doc.Items[key]
	return v, ok, nil
}

func (f *FileKV) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	doc, err := f.read()
	if err != nil {
		return err
	}
	doc.Items[key] = value
	return f.write(doc)
}

func (f *FileKV) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	doc, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := doc.Items[key]; !ok {
		return nil
	}
	delete(doc.Items, key)
	return f.write(doc)
}

func (f *FileKV) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// read loads the document. A missing file is an empty document.
func (f *FileKV) read() (*fileDocument, error) {
	doc := &fileDocument{Origin: f.origin, Items: make(map[string]string)}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	if doc.Items == nil {
		doc.Items = make(map[string]string)
	}
	return doc, nil
}

func (f *FileKV) write(doc *fileDocument) error {
	doc.Origin = f.origin
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session document: %w", err)
	}
	if err := util.AtomicWriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}

// =============================================================================
// WATCH
// =============================================================================

// Watch reports changes to the backing file. The directory is watched
// rather than the file because writes replace the file by rename.
func (f *FileKV) Watch(ctx context.Context) (<-chan struct{}, error) {
	return watchFile(ctx, f.path)
}

// watchFile sends on the returned channel for every create, write, remove
// or rename of path. Notifications coalesce while the receiver is busy.
func watchFile(ctx context.Context, path string) (<-chan struct{}, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	base := filepath.Base(path)
	out := make(chan struct{}, 1)

	go func() {
		defer close(out)
		defer w.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				select {
				case out <- struct{}{}:
				default:
				}

			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return out, nil
}
