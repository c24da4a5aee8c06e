package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"p9e.in/gemstock/models"
	"p9e.in/gemstock/pkg/crud"
	"p9e.in/gemstock/pkg/importer"
	"p9e.in/gemstock/pkg/storage"
)

// ImportHandler loads a spreadsheet of ledger rows into one store.
type ImportHandler[T any] struct {
	Name      string
	Store     crud.Store[T]
	Normalize importer.Normalizer[T]

	log *zap.Logger
	now func() time.Time
}

func NewImportHandler[T any](name string, store crud.Store[T], normalize importer.Normalizer[T], log *zap.Logger) *ImportHandler[T] {
	return &ImportHandler[T]{
		Name:      name,
		Store:     store,
		Normalize: normalize,
		log:       log.Named("import").With(zap.String("resource", name)),
		now:       time.Now,
	}
}

// Preview answers POST /<res>/import/preview: parse and normalize only.
func (h *ImportHandler[T]) Preview(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, nil)
}

// Import answers POST /<res>/import. Rows are saved one by one.
func (h *ImportHandler[T]) Import(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.Store.Create)
}

func (h *ImportHandler[T]) run(w http.ResponseWriter, r *http.Request, save func(context.Context, *T) error) {
	rows, err := h.readUpload(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	res := importer.Run(r.Context(), rows, models.NewDate(h.now()), h.Normalize, save)
	h.log.Info("import finished",
		zap.Bool("preview", save == nil),
		zap.Int("total", res.Total),
		zap.Int("imported", res.Imported),
		zap.Int("failed", res.Failed))
	writeJSON(w, http.StatusOK, res)
}

func (h *ImportHandler[T]) readUpload(r *http.Request) ([]importer.Row, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, storage.MaxUploadSize)
	if err := r.ParseMultipartForm(storage.MaxUploadSize); err != nil {
		return nil, invalidf("invalid upload: %v", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, invalidf("file is required")
	}
	defer file.Close()

	rows, err := importer.Parse(header.Filename, file, r.FormValue("encoding"))
	if errors.Is(err, importer.ErrUnsupportedFile) {
		return nil, invalidf("unsupported file %q, expected .csv, .xlsx or .xls", header.Filename)
	}
	if err != nil {
		return nil, invalidf("could not read %s: %v", header.Filename, err)
	}
	return rows, nil
}
