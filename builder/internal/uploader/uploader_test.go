package uploader

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skydock-systems/skydock-stack/common/blob"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

func TestUpload(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"index.html":    "<h1>site</h1>",
		"assets/app.js": "console.log(1)",
		"assets/app.css": "body{}",
	})

	store, err := blob.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}

	var started, finished []string
	u := New(store, "p1")
	n, err := u.Upload(context.Background(), src,
		func(rel string) { started = append(started, rel) },
		func(rel string) { finished = append(finished, rel) },
	)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if n != 3 {
		t.Errorf("uploaded = %d, want 3", n)
	}
	if len(started) != 3 || len(finished) != 3 {
		t.Errorf("callbacks: started %v finished %v", started, finished)
	}

	rc, contentType, err := store.Get(context.Background(), "__outputs/p1/index.html")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "<h1>site</h1>" {
		t.Errorf("body = %q", body)
	}
	if !strings.HasPrefix(contentType, "text/html") {
		t.Errorf("content type = %q", contentType)
	}

	if _, ct, err := store.Get(context.Background(), "__outputs/p1/assets/app.css"); err != nil {
		t.Errorf("Get nested file: %v", err)
	} else if !strings.HasPrefix(ct, "text/css") {
		t.Errorf("css content type = %q", ct)
	}
}

func TestUploadSkipsNonRegularFiles(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"index.html": "x"})
	if err := os.Symlink(filepath.Join(src, "index.html"), filepath.Join(src, "link.html")); err != nil {
		t.Skipf("symlink unsupported: %v", err)
	}

	store, err := blob.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}

	n, err := New(store, "p1").Upload(context.Background(), src, nil, nil)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if n != 1 {
		t.Errorf("uploaded = %d, want 1", n)
	}
}

func TestUploadOverwritesPreviousDeploy(t *testing.T) {
	store, err := blob.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	u := New(store, "p1")
	ctx := context.Background()

	first := t.TempDir()
	writeTree(t, first, map[string]string{"index.html": "v1"})
	if _, err := u.Upload(ctx, first, nil, nil); err != nil {
		t.Fatalf("first Upload: %v", err)
	}

	second := t.TempDir()
	writeTree(t, second, map[string]string{"index.html": "v2"})
	if _, err := u.Upload(ctx, second, nil, nil); err != nil {
		t.Fatalf("second Upload: %v", err)
	}

	rc, _, err := store.Get(ctx, "__outputs/p1/index.html")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "v2" {
		t.Errorf("body = %q, want v2", body)
	}
}

func TestUploadMissingRoot(t *testing.T) {
	store, err := blob.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}

	if _, err := New(store, "p1").Upload(context.Background(), "/does/not/exist", nil, nil); err == nil {
		t.Fatal("expected error for missing artifact root")
	}
}
