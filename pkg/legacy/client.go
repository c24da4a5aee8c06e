// Package legacy pulls ledger records from the older REST backend that the
// back-office used before it had its own store.
package legacy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"p9e.in/gemstock/pkg/importer"
)

// ErrUnavailable means the backend could not be reached or does not expose
// the resource. It is distinct from a reachable backend with no records.
var ErrUnavailable = errors.New("legacy backend unavailable")

// Resource paths, tried in order; a 404 falls through to the next one.
var (
	SalesPaths    = []string{"/sales/"}
	PurchasePaths = []string{"/purchase/", "/purchases/"}
	ExpensePaths  = []string{"/expense/", "/expenses/"}
)

// Client is a resty-backed reader of the legacy backend.
type Client struct {
	http *resty.Client
	log  *zap.Logger
}

// NewClient builds a client for baseURL. token, when set, is sent as a
// bearer header.
func NewClient(baseURL, token string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(15 * time.Second)
	if token != "" {
		rc.SetHeader("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	return &Client{http: rc, log: log}
}

// Fetch returns the raw records at the first path that answers. Every path
// answering 404, or a transport failure, yields ErrUnavailable.
func (c *Client) Fetch(ctx context.Context, paths ...string) ([]importer.Row, error) {
	for _, p := range paths {
		resp, err := c.http.R().SetContext(ctx).Get(p)
		if err != nil {
			c.log.Warn("legacy request failed", zap.String("path", p), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		switch {
		case resp.StatusCode() == http.StatusNotFound:
			c.log.Debug("legacy path not found", zap.String("path", p))
			continue
		case resp.StatusCode() >= http.StatusBadRequest:
			return nil, fmt.Errorf("legacy api error: path=%s, status=%d", p, resp.StatusCode())
		}
		rows, err := decodeRows(resp.Body())
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", p, err)
		}
		return rows, nil
	}
	return nil, fmt.Errorf("%w: %s not found", ErrUnavailable, strings.Join(paths, ", "))
}

// decodeRows accepts a bare array or an envelope with "data" or "results".
func decodeRows(body []byte) ([]importer.Row, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	var raw []map[string]any
	if body[0] == '[' {
		if err := unmarshal(body, &raw); err != nil {
			return nil, err
		}
	} else {
		var env struct {
			Data    []map[string]any `json:"data"`
			Results []map[string]any `json:"results"`
		}
		if err := unmarshal(body, &env); err != nil {
			return nil, err
		}
		raw = env.Data
		if raw == nil {
			raw = env.Results
		}
	}

	rows := make([]importer.Row, 0, len(raw))
	for i, rec := range raw {
		row := importer.Row{Line: i + 1, Values: make(map[string]string, len(rec))}
		for k, v := range rec {
			row.Values[importer.Key(k)] = stringify(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func unmarshal(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(v)
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case bool, float64:
		return fmt.Sprint(x)
	}
	b, _ := json.Marshal(v)
	return string(b)
}
