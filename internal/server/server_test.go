package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/salesdash/internal/ai"
	"github.com/KaramelBytes/salesdash/internal/cache"
	"github.com/KaramelBytes/salesdash/internal/dataset"
	"github.com/KaramelBytes/salesdash/internal/insight"
	"github.com/KaramelBytes/salesdash/internal/metrics"
	"github.com/KaramelBytes/salesdash/internal/server"
)

const salesCSV = "Seller Name;group_name;Item Total;Issue Date;Quantity\n" +
	"ANA;G1;1.000,00;01/03/2024;2\n" +
	"BRUNO;G2;500,00;02/03/2024;1\n" +
	"ANA;G2;250,00;01/04/2024;3\n"

type stubRuntime struct{ calls int }

func (s *stubRuntime) Generate(context.Context, ai.GenerateRequest) (*ai.GenerateResponse, error) {
	s.calls++
	return &ai.GenerateResponse{Choices: []ai.Choice{{Message: ai.Message{Content: "--ANÁLISE-PRODUTO-- - g --ANÁLISE-PESSOA-- - p"}}}}, nil
}

func newServer(t *testing.T) (*server.Server, *stubRuntime, *metrics.Recorder) {
	t.Helper()
	rec, err := metrics.New()
	require.NoError(t, err)
	loader := dataset.NewLoader("", 0)
	ds, err := loader.Load(context.Background(), dataset.Source{Name: "vendas.csv", Data: []byte(salesCSV)})
	require.NoError(t, err)
	var active dataset.Active
	active.Set(ds)
	rt := &stubRuntime{}
	return server.New(loader, &active, insight.New(rt, "", 0), rec, zerolog.Nop()), rt, rec
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHealthAndRequestID(t *testing.T) {
	srv, _, _ := newServer(t)
	w := get(t, srv, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Get(server.RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(server.RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(server.RequestIDHeader))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(3), body["rows"])
}

func TestHealthReportsCaches(t *testing.T) {
	srv, _, _ := newServer(t)
	get(t, srv, "/api/dashboard?insights=true")
	get(t, srv, "/api/dashboard?insights=true")

	var body struct {
		Caches map[string]cache.Stats `json:"caches"`
	}
	w := get(t, srv, "/healthz")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, cache.Stats{Misses: 1, Entries: 1}, body.Caches["datasets"])
	assert.Equal(t, cache.Stats{Hits: 1, Misses: 1, Entries: 1}, body.Caches["insights"])
}

func TestOptionsCascade(t *testing.T) {
	srv, _, _ := newServer(t)
	w := get(t, srv, "/api/options?period="+url.QueryEscape("Abril/2024"))
	require.Equal(t, http.StatusOK, w.Code)
	var ch struct {
		Periods     []string `json:"periods"`
		Salespeople []string `json:"salespeople"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ch))
	assert.Equal(t, []string{"Março/2024", "Abril/2024"}, ch.Periods)
	assert.Equal(t, []string{"ANA"}, ch.Salespeople)
}

func TestDashboardJSON(t *testing.T) {
	srv, rt, _ := newServer(t)
	w := get(t, srv, "/api/dashboard?period="+url.QueryEscape("Março/2024")+"&seller=BRUNO&exclude=true")
	require.Equal(t, http.StatusOK, w.Code)
	var v struct {
		KPIs struct {
			TotalValue string `json:"total_value"`
		} `json:"kpis"`
		Insight string `json:"insight"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, "1000", v.KPIs.TotalValue)
	assert.Empty(t, v.Insight)
	assert.Zero(t, rt.calls)
}

func TestDashboardInsightsMemoized(t *testing.T) {
	srv, rt, _ := newServer(t)
	for i := 0; i < 2; i++ {
		w := get(t, srv, "/api/dashboard?insights=true")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"product":"- g"`)
	}
	assert.Equal(t, 1, rt.calls)
}

func TestDashboardFormats(t *testing.T) {
	srv, _, _ := newServer(t)
	md := get(t, srv, "/api/dashboard?format=markdown")
	assert.Contains(t, md.Body.String(), "R$ 1.750,00")
	y := get(t, srv, "/api/dashboard?format=yaml")
	assert.Contains(t, y.Body.String(), "dataset: vendas.csv")
	empty := get(t, srv, "/api/dashboard?seller=NINGUEM&format=md")
	assert.Contains(t, empty.Body.String(), "Nenhum dado encontrado para os filtros selecionados.")
}

func TestIndexHTML(t *testing.T) {
	srv, _, _ := newServer(t)
	w := get(t, srv, "/?period="+url.QueryEscape("Março/2024"))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, body, "<table>")
	assert.Contains(t, body, `value="Março/2024" checked`)
}

func upload(t *testing.T, h http.Handler, name, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, _ = fw.Write([]byte(content))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestUploadReplacesDataset(t *testing.T) {
	srv, _, _ := newServer(t)
	w := upload(t, srv, "maio.csv", "Seller Name,group_name,Item Total,Issue Date\nCARLA,G9,10.5,2024-05-02\n")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "maio.csv", srv.Active.Get().Name)
	assert.Equal(t, 1, srv.Active.Get().Table.Len())

	h := get(t, srv, "/api/options")
	assert.Contains(t, h.Body.String(), "Maio/2024")
}

func TestUploadRejects(t *testing.T) {
	srv, _, _ := newServer(t)
	w := upload(t, srv, "notes.pdf", "x")
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = upload(t, srv, "broken.xlsx", "not a zip")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "vendas.csv", srv.Active.Get().Name)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(""))
	rw := httptest.NewRecorder()
	srv.ServeHTTP(rw, req)
	assert.Equal(t, http.StatusBadRequest, rw.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _, _ := newServer(t)
	get(t, srv, "/healthz")
	w := get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `salesdash_http_requests_total{code="200",method="GET",route="/healthz"} 1`)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := server.Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}
