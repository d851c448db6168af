// Package uploader pushes the built artifact tree to the blob store.
package uploader

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"

	"github.com/skydock-systems/skydock-stack/common/blob"
)

// keyPrefix is the store-side namespace for deployed sites. The gateway
// builds its upstream paths from the same prefix.
const keyPrefix = "__outputs"

// Uploader walks an artifact tree and stores every regular file under the
// project's prefix. Re-deploying a project overwrites the previous artifacts
// so the live site always reflects the latest successful build.
type Uploader struct {
	store     blob.Store
	projectID string
}

func New(store blob.Store, projectID string) *Uploader {
	return &Uploader{store: store, projectID: projectID}
}

// Upload stores every regular file under root, calling onStart and onDone
// around each file with its slash-separated relative path. Returns the
// number of files uploaded.
func (u *Uploader) Upload(ctx context.Context, root string, onStart, onDone func(relpath string)) (int, error) {
	uploaded := 0

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if onStart != nil {
			onStart(rel)
		}

		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", rel, err)
		}

		key := path.Join(keyPrefix, u.projectID, rel)
		contentType := mime.TypeByExtension(filepath.Ext(rel))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		putErr := u.store.Put(ctx, key, f, contentType)
		f.Close()
		if putErr != nil {
			return fmt.Errorf("failed to upload %s: %w", rel, putErr)
		}

		uploaded++
		if onDone != nil {
			onDone(rel)
		}
		return nil
	})
	if err != nil {
		return uploaded, err
	}

	return uploaded, nil
}
