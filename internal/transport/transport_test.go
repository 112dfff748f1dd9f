package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rafael-2109/frete-sistema-sub023/internal/analyzer"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/config"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/models"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/reviewer"
)

// fakeAssistant answers every turn with the scripted response and error.
type fakeAssistant struct {
	resp    *models.TurnResponse
	err     error
	got     *models.TurnRequest
	cleared []string
}

func (f *fakeAssistant) ProcessTurn(_ context.Context, req *models.TurnRequest) (*models.TurnResponse, error) {
	f.got = req
	return f.resp, f.err
}

func (f *fakeAssistant) Analyze(query string) analyzer.QueryAnalysis {
	return analyzer.NewAnalyzer().Analyze(query)
}

func (f *fakeAssistant) Review(req *models.ReviewRequest) (*models.ReviewResponse, error) {
	if req.Response == "" {
		return nil, fmt.Errorf("%w: response", models.ErrEmptyMessage)
	}
	res := reviewer.NewReviewer().Review(reviewer.Request{Response: req.Response, Context: req.Context})
	return &models.ReviewResponse{FinalText: res.FinalText, Metadata: res.Metadata()}, nil
}

func (f *fakeAssistant) ClearSession(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return models.ErrMissingSession
	}
	f.cleared = append(f.cleared, sessionID)
	return nil
}

func answered(sessionID string) *models.TurnResponse {
	return &models.TurnResponse{SessionID: sessionID, TurnID: "t1", Status: models.StatusAnswered, Answer: "Encontrei 3 pedidos"}
}

func newTestServer(t *testing.T, a Assistant) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewHTTPRouter(a, "freteai-test", time.Second, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestHTTP_Health(t *testing.T) {
	srv := newTestServer(t, &fakeAssistant{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestHTTP_Chat(t *testing.T) {
	a := &fakeAssistant{resp: answered("s1")}
	srv := newTestServer(t, a)

	resp, body := post(t, srv.URL+"/api/v1/chat", `{"session_id":"s1","message":"pedidos do assaí"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ANSWERED", body["status"])
	assert.Equal(t, "Encontrei 3 pedidos", body["answer"])
	require.NotNil(t, a.got)
	assert.Equal(t, "pedidos do assaí", a.got.Message)
}

func TestHTTP_ChatErrors(t *testing.T) {
	code := models.ErrorParseError
	tests := []struct {
		name       string
		assistant  *fakeAssistant
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed body",
			assistant:  &fakeAssistant{},
			body:       `{"session_id":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   models.ErrorParseError,
		},
		{
			name: "validation error",
			assistant: &fakeAssistant{
				resp: &models.TurnResponse{Status: models.StatusError, ErrorCode: &code},
				err:  models.ErrMissingSession,
			},
			body:       `{"message":"oi"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   models.ErrorParseError,
		},
		{
			name:       "no response",
			assistant:  &fakeAssistant{err: errors.New("boom")},
			body:       `{"session_id":"s1","message":"oi"}`,
			wantStatus: http.StatusInternalServerError,
			wantCode:   models.ErrorInternal,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, tc.assistant)
			resp, body := post(t, srv.URL+"/api/v1/chat", tc.body)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			assert.Equal(t, tc.wantCode, body["error_code"])
		})
	}
}

func TestHTTP_ChatFallbackIsOK(t *testing.T) {
	code := models.ErrorLLMFailed
	a := &fakeAssistant{
		resp: &models.TurnResponse{SessionID: "s1", Status: models.StatusFallback, ErrorCode: &code},
		err:  models.ErrGeneratorUnavailable,
	}
	srv := newTestServer(t, a)

	resp, body := post(t, srv.URL+"/api/v1/chat", `{"session_id":"s1","message":"oi"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "FALLBACK", body["status"])
}

func TestHTTP_Analyze(t *testing.T) {
	srv := newTestServer(t, &fakeAssistant{})

	resp, body := post(t, srv.URL+"/api/v1/analyze", `{"query":"entregas do carrefour hoje"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "entregas", body["domain"])
	client, ok := body["client"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Carrefour", client["canonical_name"])

	resp, body = post(t, srv.URL+"/api/v1/analyze", `{"query":"  "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.ErrorParseError, body["error_code"])
}

func TestHTTP_Review(t *testing.T) {
	srv := newTestServer(t, &fakeAssistant{})

	resp, body := post(t, srv.URL+"/api/v1/review", `{"response":"Encontrei 10 pedidos","context":"Total: 3"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Encontrei 3 pedidos", body["final_text"])

	resp, _ = post(t, srv.URL+"/api/v1/review", `{"context":"Total: 3"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTP_ClearSession(t *testing.T) {
	a := &fakeAssistant{}
	srv := newTestServer(t, a)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/sessions/s1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []string{"s1"}, a.cleared)
}

func TestNATS_Process(t *testing.T) {
	cfg := config.NATSConfig{RequestSubject: "frete.assistente.chat", Timeout: time.Second}

	t.Run("answers turn", func(t *testing.T) {
		a := &fakeAssistant{resp: answered("s1")}
		nt := newNATSTransport(nil, cfg, a, zerolog.Nop())

		var out models.TurnResponse
		require.NoError(t, json.Unmarshal(nt.process(context.Background(), []byte(`{"session_id":"s1","message":"oi"}`)), &out))
		assert.Equal(t, models.StatusAnswered, out.Status)
		assert.Equal(t, "s1", a.got.SessionID)
	})

	t.Run("invalid payload", func(t *testing.T) {
		nt := newNATSTransport(nil, cfg, &fakeAssistant{}, zerolog.Nop())

		var out models.TurnResponse
		require.NoError(t, json.Unmarshal(nt.process(context.Background(), []byte(`not json`)), &out))
		assert.Equal(t, models.StatusError, out.Status)
		require.NotNil(t, out.ErrorCode)
		assert.Equal(t, models.ErrorParseError, *out.ErrorCode)
	})

	t.Run("handler returns nothing", func(t *testing.T) {
		nt := newNATSTransport(nil, cfg, &fakeAssistant{err: models.ErrLoaderFailed}, zerolog.Nop())

		var out models.TurnResponse
		require.NoError(t, json.Unmarshal(nt.process(context.Background(), []byte(`{"session_id":"s2","message":"oi"}`)), &out))
		assert.Equal(t, "s2", out.SessionID)
		require.NotNil(t, out.ErrorCode)
		assert.Equal(t, models.ErrorDataLoadFailed, *out.ErrorCode)
	})
}

func TestNATS_CloseWithoutConnection(t *testing.T) {
	nt := newNATSTransport(nil, config.NATSConfig{}, &fakeAssistant{}, zerolog.Nop())
	assert.NoError(t, nt.Close())
}
