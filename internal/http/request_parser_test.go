package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestBodyParserJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount": 12.5, "type":" income ", "description":"a\u0007b"}`))
	p := NewRequestBodyParser(req)
	require.NoError(t, p.Parse())

	raw := p.RawInput()
	assert.Equal(t, "12.5", raw.Amount)
	assert.Equal(t, "income", raw.Type)
	assert.Equal(t, "ab", raw.Description)
	assert.Empty(t, raw.Category)
}

func TestRequestBodyParserForm(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("category=Food&amount=3"))
	p := NewRequestBodyParser(req)
	require.NoError(t, p.Parse())

	assert.Equal(t, "Food", p.Get("category"))
	assert.Equal(t, "3", p.Get("amount"))
}

func TestRequestBodyParserEmpty(t *testing.T) {
	p := NewRequestBodyParser(httptest.NewRequest(http.MethodPost, "/", nil))
	require.NoError(t, p.Parse())
	assert.Empty(t, p.Get("amount"))
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange(url.Values{"from": {"2025-01-01"}, "to": {" 2025-01-31 "}})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", r.From.String())
	assert.Equal(t, "2025-01-31", r.To.String())

	r, err = ParseRange(url.Values{})
	require.NoError(t, err)
	assert.True(t, r.IsZero())

	_, err = ParseRange(url.Values{"from": {"2025-13-01"}})
	assert.ErrorContains(t, err, "from")
}

func TestParseGoal(t *testing.T) {
	g, err := ParseGoal(url.Values{"goal": {"1500"}})
	require.NoError(t, err)
	require.True(t, g.Valid)
	assert.Equal(t, "1500", g.Decimal.String())

	g, err = ParseGoal(url.Values{})
	require.NoError(t, err)
	assert.False(t, g.Valid)

	_, err = ParseGoal(url.Values{"goal": {"-1"}})
	assert.Error(t, err)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.4:5555"
	assert.Equal(t, "192.168.1.4", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientIP(req))
}
