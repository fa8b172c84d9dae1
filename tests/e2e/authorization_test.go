//go:build e2e

package e2e_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hendrayp/komunitas-backend/internal/adapter/postgres/testhelper"
)

// TestE2E_MemberEndpointsRequireAuth verifies member routes refuse anonymous
// requests.
func TestE2E_MemberEndpointsRequireAuth(t *testing.T) {
	ts := setupTestServer(t)

	paths := []string{
		"/api/members/me/points",
		"/api/members/me/stats",
		"/api/members/me/transactions",
	}
	for _, path := range paths {
		resp := ts.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		resp.Body.Close()
	}
}

// TestE2E_InvalidTokenRejected verifies a garbage Bearer token is rejected
// outright rather than treated as anonymous.
func TestE2E_InvalidTokenRejected(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/members/me/points", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

// TestE2E_AdminEndpointsRequireAdminClaim verifies a regular member cannot
// reach the admin surface.
func TestE2E_AdminEndpointsRequireAdminClaim(t *testing.T) {
	ts := setupTestServer(t)

	m := testhelper.SeedMember(t, ts.Pool, 0, 0)
	memberTok := memberToken(t, m.ID, false)

	resp := ts.do(t, http.MethodPost, "/api/admin/points", memberTok, map[string]any{
		"member_id":   m.ID,
		"action":      "award",
		"points":      1000,
		"description": "self-service raise",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, http.MethodGet, "/api/admin/ledger/audit", memberTok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

// TestE2E_CallbackRequiresToken verifies the verification callback refuses a
// wrong or missing shared token.
func TestE2E_CallbackRequiresToken(t *testing.T) {
	ts := setupTestServer(t)

	payload := map[string]any{
		"submission_id": 1,
		"passed":        true,
		"confidence":    0.9,
	}

	resp := postCallback(t, ts, "wrong-token", payload)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = postCallback(t, ts, "", payload)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

// TestE2E_CallbackUnknownSubmission verifies a verdict for a submission that
// does not exist answers 404 so the reviewer can drop it.
func TestE2E_CallbackUnknownSubmission(t *testing.T) {
	ts := setupTestServer(t)

	resp := postCallback(t, ts, testCallbackToken, map[string]any{
		"submission_id": 999999999,
		"passed":        true,
		"confidence":    0.9,
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
