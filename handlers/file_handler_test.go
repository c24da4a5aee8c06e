package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"p9e.in/gemstock/config"
	"p9e.in/gemstock/pkg/crud"
	"p9e.in/gemstock/pkg/storage"
)

func TestFileHandler_UploadAndAttach(t *testing.T) {
	dir := t.TempDir()
	certified := crud.NewMemoryStore(config.SampleCertifiedStock()...)
	h := NewFileHandler(storage.NewLocal(dir), certified, zap.NewNop())

	r := mux.NewRouter()
	r.HandleFunc("/files/upload", h.Upload).Methods("POST")
	r.HandleFunc("/certified-stock/{id}/attachments", h.Attach).Methods("POST")

	rr := httptestServe(r, uploadRequest(t, "/files/upload", "scan.PDF", []byte("%PDF-1.4")))
	if rr.Code != http.StatusOK {
		t.Fatalf("upload status = %d (%s)", rr.Code, rr.Body.String())
	}
	var up uploadResp
	json.Unmarshal(rr.Body.Bytes(), &up)
	if !strings.HasPrefix(up.URL, "/uploads/") || !strings.HasSuffix(up.URL, ".pdf") || up.Filename != "scan.PDF" {
		t.Errorf("upload = %+v", up)
	}
	if _, err := os.Stat(filepath.Join(dir, filepath.Base(up.URL))); err != nil {
		t.Errorf("stored file: %v", err)
	}

	rr = httptestServe(r, uploadRequest(t, "/certified-stock/2/attachments", "cert.jpg", []byte("jpeg")))
	if rr.Code != http.StatusOK {
		t.Fatalf("attach status = %d (%s)", rr.Code, rr.Body.String())
	}
	stone, _ := certified.Get(context.Background(), 2)
	urls := stone.AttachmentURLs()
	if len(urls) != 1 || !strings.HasSuffix(urls[0], ".jpg") {
		t.Errorf("attachments = %v", urls)
	}

	if rr := httptestServe(r, uploadRequest(t, "/certified-stock/42/attachments", "cert.jpg", []byte("jpeg"))); rr.Code != http.StatusNotFound {
		t.Errorf("unknown stone status = %d", rr.Code)
	}
	if rr := httptestServe(r, uploadRequest(t, "/files/upload", "", nil)); rr.Code != http.StatusBadRequest {
		t.Errorf("missing file status = %d", rr.Code)
	}
}

func TestFileHandler_ConcurrentAttach(t *testing.T) {
	certified := crud.NewMemoryStore(config.SampleCertifiedStock()...)
	h := NewFileHandler(storage.NewLocal(t.TempDir()), certified, zap.NewNop())
	r := mux.NewRouter()
	r.HandleFunc("/certified-stock/{id}/attachments", h.Attach).Methods("POST")

	const n = 8
	reqs := make([]*http.Request, n)
	for i := range reqs {
		reqs[i] = uploadRequest(t, "/certified-stock/4/attachments", "page.png", []byte("png"))
	}
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := range reqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = httptestServe(r, reqs[i]).Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		if code != http.StatusOK {
			t.Errorf("request %d status = %d", i, code)
		}
	}
	stone, _ := certified.Get(context.Background(), 4)
	if urls := stone.AttachmentURLs(); len(urls) != n {
		t.Errorf("attachments = %d, want %d", len(urls), n)
	}
}

func httptestServe(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
