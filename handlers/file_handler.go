package handlers

import (
	"mime/multipart"
	"net/http"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"p9e.in/gemstock/models"
	"p9e.in/gemstock/pkg/crud"
	"p9e.in/gemstock/pkg/storage"
)

// FileHandler accepts uploads and attaches them to certified stock.
type FileHandler struct {
	files     storage.Store
	certified crud.Store[models.CertifiedStock]

	mu  sync.Mutex // serializes read-append-write of attachments
	log *zap.Logger
}

func NewFileHandler(files storage.Store, certified crud.Store[models.CertifiedStock], log *zap.Logger) *FileHandler {
	return &FileHandler{files: files, certified: certified, log: log.Named("files")}
}

type uploadResp struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// Upload answers POST /files/upload.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	res, err := h.save(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Attach answers POST /certified-stock/{id}/attachments: the file is stored
// and its URL appended to the record.
func (h *FileHandler) Attach(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if _, err := h.certified.Get(r.Context(), id); err != nil {
		writeError(w, h.log, err)
		return
	}
	res, err := h.save(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	stone, err := h.certified.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := stone.AddAttachment(res.URL); err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.certified.Update(r.Context(), id, stone); err != nil {
		writeError(w, h.log, err)
		return
	}
	h.log.Info("attachment added", zap.String("code", stone.Code), zap.String("url", res.URL))
	writeJSON(w, http.StatusOK, stone)
}

func (h *FileHandler) save(r *http.Request) (uploadResp, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, storage.MaxUploadSize)
	if err := r.ParseMultipartForm(storage.MaxUploadSize); err != nil {
		return uploadResp{}, invalidf("bad multipart form: %v", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return uploadResp{}, invalidf("missing file field")
	}
	defer file.Close()

	url, err := h.files.Save(r.Context(), header.Filename, contentType(header), file)
	if err != nil {
		return uploadResp{}, err
	}
	return uploadResp{URL: url, Filename: filepath.Base(header.Filename), Size: header.Size}, nil
}

func contentType(h *multipart.FileHeader) string {
	if ct := h.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
