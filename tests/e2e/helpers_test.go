//go:build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/hendrayp/komunitas-backend/internal/adapter/notifier"
	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres"
	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres/boostevent"
	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres/ledgerlog"
	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres/member"
	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres/stats"
	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres/submission"
	postgrestask "github.com/hendrayp/komunitas-backend/internal/adapter/postgres/task"
	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres/testhelper"
	"github.com/hendrayp/komunitas-backend/internal/adapter/verifier"
	"github.com/hendrayp/komunitas-backend/internal/config"
	"github.com/hendrayp/komunitas-backend/internal/domain"
	"github.com/hendrayp/komunitas-backend/internal/service/boost"
	"github.com/hendrayp/komunitas-backend/internal/service/ledger"
	"github.com/hendrayp/komunitas-backend/internal/service/task"
	"github.com/hendrayp/komunitas-backend/internal/transport/middleware"
	"github.com/hendrayp/komunitas-backend/internal/transport/rest"
)

const (
	testJWTSecret     = "test-secret-at-least-32-chars-long!!"
	testJWTIssuer     = "test-issuer"
	testCallbackToken = "test-callback-token"
)

// ---------------------------------------------------------------------------
// testServer wraps the full-stack HTTP server for E2E tests.
// ---------------------------------------------------------------------------

type testServer struct {
	URL    string
	Client *http.Client
	Pool   *pgxpool.Pool

	// Jobs dispatched to the fake AI reviewer and notifications delivered
	// to the fake notifier, in arrival order.
	Dispatches    chan verifier.DispatchRequest
	Notifications chan domain.Notification
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// setupTestServer bootstraps the full application stack backed by a real
// PostgreSQL container (shared via testhelper). Outbound webhooks point at
// in-process capture servers.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)

	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))
	txm := postgres.NewTxManager(pool)
	clock := clockwork.NewRealClock()

	memberRepo := member.New(pool)
	logRepo := ledgerlog.New(pool)
	taskRepo := postgrestask.New(pool)
	subRepo := submission.New(pool)
	statsRepo := stats.New(pool)
	boostRepo := boostevent.New(pool)

	ts := &testServer{
		Pool:          pool,
		Dispatches:    make(chan verifier.DispatchRequest, 16),
		Notifications: make(chan domain.Notification, 16),
	}

	verifierSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var job verifier.DispatchRequest
		if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		ts.Dispatches <- job
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(verifierSrv.Close)

	notifierSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var n domain.Notification
		if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		ts.Notifications <- n
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(notifierSrv.Close)

	ledgerSvc := ledger.NewService(logger, memberRepo, logRepo, txm)
	boostSvc := boost.NewService(logger, boostRepo, clock, 2.0)

	verifierAdapter := verifier.New(verifierSrv.URL, 5*time.Second, logger)
	notifierAdapter := notifier.New(notifierSrv.URL, 5*time.Second, logger)

	taskSvc := task.NewService(logger, taskRepo, subRepo, statsRepo, ledgerSvc,
		boostSvc, verifierAdapter, notifierAdapter, txm, clock, 4*time.Hour)

	router := rest.NewRouter(rest.Handlers{
		Health:   rest.NewHealthHandler(pool, "e2e-test"),
		Tasks:    rest.NewTaskHandler(taskSvc, logger),
		Ledger:   rest.NewLedgerHandler(ledgerSvc, logger),
		Admin:    rest.NewAdminHandler(ledgerSvc, taskSvc, boostSvc, logger),
		Callback: rest.NewCallbackHandler(taskSvc, testCallbackToken, logger),
	})

	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Auth(config.AuthConfig{
			JWTSecret: testJWTSecret,
			JWTIssuer: testJWTIssuer,
		}),
	)(router)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ts.URL = srv.URL
	ts.Client = srv.Client()
	return ts
}

// memberToken signs a Bearer token the way the identity provider would.
func memberToken(t *testing.T, memberID int64, admin bool) string {
	t.Helper()

	claims := jwt.MapClaims{
		"member_id": memberID,
		"admin":     admin,
		"iss":       testJWTIssuer,
		"exp":       time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

// do issues a request with an optional Bearer token and JSON body.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	return resp
}

// decodeBody decodes a JSON response body into a generic map.
func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// waitDispatch waits for one verification job to arrive at the fake reviewer.
func (ts *testServer) waitDispatch(t *testing.T) verifier.DispatchRequest {
	t.Helper()
	select {
	case job := <-ts.Dispatches:
		return job
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for verification dispatch")
		return verifier.DispatchRequest{}
	}
}

// waitNotification waits for one notification to arrive at the fake notifier.
func (ts *testServer) waitNotification(t *testing.T) domain.Notification {
	t.Helper()
	select {
	case n := <-ts.Notifications:
		return n
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for notification")
		return domain.Notification{}
	}
}
