// Package http serves the ledger as a JSON API.
//
// This file holds the helpers that turn request bodies and query strings
// into validated domain values.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"financas/internal/core"
)

const (
	maxBodyBytes   = 1 << 20
	maxImportBytes = 5 << 20
	maxMonths      = 120
)

// errBadRequest marks input that could not even be read, as opposed to
// readable input that failed validation.
var errBadRequest = errors.New("bad request")

// RequestBodyParser reads a JSON object or a form-encoded body once and
// exposes its fields as strings.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	err      error
}

// NewRequestBodyParser reads and parses the body of r, capped at
// maxBodyBytes.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if p.err != nil {
		p.err = fmt.Errorf("%w: read body: %v", errBadRequest, p.err)
		return p
	}
	p.parse()
	return p
}

func (p *RequestBodyParser) parse() {
	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return
	}

	if trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.err = fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
		}
		return
	}

	var err error
	p.formData, err = url.ParseQuery(trimmed)
	if err != nil {
		p.err = fmt.Errorf("%w: invalid form: %v", errBadRequest, err)
	}
}

// Err reports why the body could not be read or parsed.
func (p *RequestBodyParser) Err() error {
	return p.err
}

// Get returns a trimmed, control-character-free string value.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Money parses key as a decimal amount in currency units.
func (p *RequestBodyParser) Money(key string) (core.Money, error) {
	return core.ParseMoney(p.Get(key))
}

// Date parses key as YYYY-MM-DD.
func (p *RequestBodyParser) Date(key string) (core.Date, error) {
	return core.ParseDate(p.Get(key))
}

// Int parses key as a positive integer, returning def when absent.
func (p *RequestBodyParser) Int(key string, def int) (int, error) {
	v := p.Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, key)
	}
	return n, nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput trims whitespace and drops control characters other than
// tab, newline and carriage return.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// parseMonths reads ?months=, defaulting to def. Values outside 1..120 are
// rejected.
func parseMonths(query url.Values, def int) (int, error) {
	v := strings.TrimSpace(query.Get("months"))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > maxMonths {
		return 0, fmt.Errorf("%w: months must be between 1 and %d", errBadRequest, maxMonths)
	}
	return n, nil
}

// parseMonthKey reads ?month=, defaulting to def.
func parseMonthKey(query url.Values, def core.MonthKey) (core.MonthKey, error) {
	v := strings.TrimSpace(query.Get("month"))
	if v == "" {
		return def, nil
	}
	return core.ParseMonthKey(v)
}
