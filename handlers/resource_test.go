package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"p9e.in/gemstock/config"
	"p9e.in/gemstock/models"
	"p9e.in/gemstock/pkg/crud"
)

func newCertifiedRouter() (*mux.Router, *crud.MemoryStore[models.CertifiedStock]) {
	store := crud.NewMemoryStore(config.SampleCertifiedStock()...)
	res := NewResource[models.CertifiedStock]("certified-stock", "Certified Stock", store, zap.NewNop())
	res.Prepare = PrepareCertifiedStock

	r := mux.NewRouter()
	r.HandleFunc("/certified-stock", res.List).Methods("GET")
	r.HandleFunc("/certified-stock", res.Create).Methods("POST")
	r.HandleFunc("/certified-stock/export", res.Export).Methods("GET")
	r.HandleFunc("/certified-stock/batch", res.Batch).Methods("POST")
	r.HandleFunc("/certified-stock/{id:[0-9]+}", res.Get).Methods("GET")
	r.HandleFunc("/certified-stock/{id:[0-9]+}/print", res.Print).Methods("GET")
	r.HandleFunc("/certified-stock/{id:[0-9]+}", res.Update).Methods("PUT")
	r.HandleFunc("/certified-stock/{id:[0-9]+}", res.Delete).Methods("DELETE")
	return r, store
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var rd *bytes.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

type certifiedList struct {
	Total int                     `json:"total"`
	Data  []models.CertifiedStock `json:"data"`
}

func decodeList(t *testing.T, rr *httptest.ResponseRecorder) certifiedList {
	t.Helper()
	var out certifiedList
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode list: %v (%s)", err, rr.Body.String())
	}
	return out
}

func TestResource_DeleteSeededCertifiedStock(t *testing.T) {
	r, _ := newCertifiedRouter()

	if rr := do(r, "DELETE", "/certified-stock/3", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, body %s", rr.Code, rr.Body.String())
	}
	rr := do(r, "GET", "/certified-stock", "")
	list := decodeList(t, rr)
	if list.Total != 4 || len(list.Data) != 4 {
		t.Fatalf("total = %d, want 4", list.Total)
	}
	if strings.Contains(rr.Body.String(), "AGS-54321678") {
		t.Error("deleted certificate still listed")
	}
}

func TestResource_DeleteUnknownLeavesCollection(t *testing.T) {
	r, store := newCertifiedRouter()
	if rr := do(r, "DELETE", "/certified-stock/99", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if store.Len() != 5 {
		t.Errorf("len = %d, want 5", store.Len())
	}
}

func TestResource_Create(t *testing.T) {
	r, store := newCertifiedRouter()

	rr := do(r, "POST", "/certified-stock", `{"caratWeight":"abc","costPrice":"1200.5usd","lab":"gia","shape":"Round"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var got models.CertifiedStock
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if !regexp.MustCompile(`^CS-\d{5}$`).MatchString(got.Code) {
		t.Errorf("code = %q", got.Code)
	}
	if got.ID != 6 {
		t.Errorf("id = %d, want 6", got.ID)
	}
	if got.CaratWeight != 0 || got.CostPrice != 1200.5 {
		t.Errorf("numbers = %v, %v", got.CaratWeight, got.CostPrice)
	}
	if got.Lab != "GIA" || got.Location != models.LocationMainStore {
		t.Errorf("lab %q location %q", got.Lab, got.Location)
	}
	if store.Len() != 6 {
		t.Errorf("len = %d, want 6", store.Len())
	}
}

func TestResource_CreateRejectsInvalid(t *testing.T) {
	r, store := newCertifiedRouter()
	tests := []struct {
		name string
		body string
	}{
		{"bad location", `{"location":"Moon"}`},
		{"bad lab", `{"lab":"XYZ"}`},
		{"bad json", `{"code":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := do(r, "POST", "/certified-stock", tt.body); rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
		})
	}
	if store.Len() != 5 {
		t.Errorf("len = %d, want 5", store.Len())
	}
}

func TestResource_UpdateKeepsIDAndCode(t *testing.T) {
	r, store := newCertifiedRouter()

	rr := do(r, "PUT", "/certified-stock/2", `{"id":40,"shape":"Heart","location":"Safe","caratWeight":1.75}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	rr = do(r, "GET", "/certified-stock/2", "")
	var got models.CertifiedStock
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != 2 || got.Code != "CS-10232" || got.Shape != "Heart" || got.CaratWeight != 1.75 {
		t.Errorf("updated record = %+v", got)
	}
	if got.Color != "" {
		t.Errorf("color = %q, fields not in the body are overwritten", got.Color)
	}
	if store.Len() != 5 {
		t.Errorf("len = %d, want 5", store.Len())
	}

	if rr := do(r, "PUT", "/certified-stock/77", `{"shape":"Heart"}`); rr.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d", rr.Code)
	}
}

func TestResource_Search(t *testing.T) {
	r, _ := newCertifiedRouter()
	tests := []struct {
		query string
		want  int
	}{
		{"", 5},
		{"ags-5432", 1},
		{"CUSHION", 1},
		{"gia", 2},
		{"no-such-stone", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rr := do(r, "GET", "/certified-stock?q="+tt.query, "")
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d", rr.Code)
			}
			if got := decodeList(t, rr); got.Total != tt.want || len(got.Data) != tt.want {
				t.Errorf("total = %d, want %d", got.Total, tt.want)
			}
		})
	}
}

func TestResource_ListRejectsBadDates(t *testing.T) {
	r, _ := newCertifiedRouter()
	for _, q := range []string{"from=yesterday", "from=2024-03-10&to=2024-03-01"} {
		if rr := do(r, "GET", "/certified-stock?"+q, ""); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rr.Code)
		}
	}
}

func TestResource_Batch(t *testing.T) {
	r, store := newCertifiedRouter()
	rr := do(r, "POST", "/certified-stock/batch", `[{"shape":"Oval","location":"Safe"},{"location":"Moon"},{"shape":"Pear"}]`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var res batchResult
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Created != 2 || res.Failed != 1 || len(res.Errors) != 1 {
		t.Errorf("result = %+v", res)
	}
	if !strings.HasPrefix(res.Errors[0], "item 1:") {
		t.Errorf("error = %q", res.Errors[0])
	}
	if store.Len() != 7 {
		t.Errorf("len = %d, want 7", store.Len())
	}
}

func TestResource_ExportAndPrint(t *testing.T) {
	r, _ := newCertifiedRouter()

	rr := do(r, "GET", "/certified-stock/export?format=csv", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("export status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rr.Header().Get("Content-Disposition"), "certified-stock_") {
		t.Errorf("disposition = %q", rr.Header().Get("Content-Disposition"))
	}
	if !strings.Contains(rr.Body.String(), "CS-10231") {
		t.Error("csv missing record")
	}

	rr = do(r, "GET", "/certified-stock/export?format=xlsx&q=ags", "")
	if rr.Code != http.StatusOK || rr.Body.Len() == 0 {
		t.Errorf("xlsx status = %d, %d bytes", rr.Code, rr.Body.Len())
	}

	if rr := do(r, "GET", "/certified-stock/export?format=pdf", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("pdf status = %d, want 400", rr.Code)
	}

	rr = do(r, "GET", "/certified-stock/1/print", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("print status = %d", rr.Code)
	}
	if !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/html") {
		t.Errorf("print content type = %q", rr.Header().Get("Content-Type"))
	}
	if !strings.Contains(rr.Body.String(), "GIA-2141438171") {
		t.Error("print missing certificate number")
	}
	if rr := do(r, "GET", "/certified-stock/9/print", ""); rr.Code != http.StatusNotFound {
		t.Errorf("unknown print status = %d", rr.Code)
	}
}
