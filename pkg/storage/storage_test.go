package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"
)

func TestObjectName(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	a := ObjectName("../../scan.PDF", now)
	b := ObjectName("scan.pdf", now)

	if !strings.HasPrefix(a, "20240305-103000-") || !strings.HasSuffix(a, ".pdf") {
		t.Errorf("ObjectName = %q", a)
	}
	if strings.Contains(a, "/") {
		t.Errorf("ObjectName kept a path separator: %q", a)
	}
	if a == b {
		t.Error("names should be unique")
	}
}

func TestLocal_Save(t *testing.T) {
	dir := t.TempDir()
	l := NewLocal(filepath.Join(dir, "uploads"))

	url, err := l.Save(context.Background(), "cert.jpg", "image/jpeg", strings.NewReader("jpeg-bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/") || !strings.HasSuffix(url, ".jpg") {
		t.Errorf("url = %q", url)
	}

	b, err := os.ReadFile(filepath.Join(dir, "uploads", strings.TrimPrefix(url, "/uploads/")))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(b) != "jpeg-bytes" {
		t.Errorf("content = %q", b)
	}
}

func TestLocal_SaveRemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	l := NewLocal(dir)

	body := io.MultiReader(strings.NewReader("half a scan"), iotest.ErrReader(errors.New("connection reset")))
	if _, err := l.Save(context.Background(), "cert.jpg", "image/jpeg", body); err == nil {
		t.Fatal("expected error")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("left %d file(s) behind", len(entries))
	}
}
