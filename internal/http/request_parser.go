// This file implements utilities for parsing and validating HTTP request data.

package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"finledger/internal/core"
	"finledger/internal/ledger"
	"finledger/internal/services"
)

const maxBodyBytes = 64 << 10

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	body := strings.TrimSpace(string(p.body))
	if body == "" {
		p.formData = url.Values{}
		return nil
	}

	if body[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(body), &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(body)
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
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

// RawInput collects the transaction form fields.
func (p *RequestBodyParser) RawInput() services.RawInput {
	return services.RawInput{
		Date:        p.Get("date"),
		Description: p.Get("description"),
		Category:    p.Get("category"),
		Amount:      p.Get("amount"),
		Type:        p.Get("type"),
	}
}

// stringValue converts a decoded JSON value to string.
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

// ParseRange reads the optional from and to query parameters. Each must be
// YYYY-MM-DD when present.
func ParseRange(query url.Values) (ledger.DateRange, error) {
	var r ledger.DateRange
	for _, bound := range []struct {
		key string
		dst *core.Date
	}{
		{"from", &r.From},
		{"to", &r.To},
	} {
		v := strings.TrimSpace(query.Get(bound.key))
		if v == "" {
			continue
		}
		d, err := core.ParseDate(v)
		if err != nil {
			return ledger.DateRange{}, fmt.Errorf("%s: %w", bound.key, err)
		}
		*bound.dst = d
	}
	return r, nil
}

// ParseGoal reads the optional goal query parameter.
func ParseGoal(query url.Values) (decimal.NullDecimal, error) {
	v := strings.TrimSpace(query.Get("goal"))
	if v == "" {
		return decimal.NullDecimal{}, nil
	}
	goal, err := core.ParseAmount(v)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("goal: %w", err)
	}
	return decimal.NewNullDecimal(goal), nil
}
