package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elskow/press-portal/internal/account"
	"github.com/elskow/press-portal/internal/api"
	"github.com/elskow/press-portal/internal/auth"
)

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
	Code    string            `json:"code"`
}

type httpEnv struct {
	*testEnv
	e *echo.Echo
}

func newHTTPEnv(t *testing.T) *httpEnv {
	t.Helper()
	env := newTestEnv(t)

	e := echo.New()
	e.HTTPErrorHandler = api.ErrorHandler(zap.NewNop(), false)
	RegisterRoutes(e, NewHandler(env.svc, zap.NewNop()), auth.NewGate(env.auth, zap.NewNop()))

	return &httpEnv{testEnv: env, e: e}
}

func (h *httpEnv) bearer(t *testing.T, a *account.Account) string {
	t.Helper()
	raw, err := h.issuer.IssueAccess(a.ID.String(), string(a.Role))
	require.NoError(t, err)
	return raw
}

func (h *httpEnv) do(t *testing.T, method, path, bearer string, body any) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	h.e.ServeHTTP(rec, req)

	var out envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec.Code, out
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	h := newHTTPEnv(t)
	comms := h.seed(t, "comms@org.test", account.RoleComms, account.StatusActive)

	status, _ := h.do(t, http.MethodGet, api.AdminGroup+api.AdminUsers, "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, out := h.do(t, http.MethodGet, api.AdminGroup+api.AdminUsers, h.bearer(t, comms), nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.False(t, out.Success)
}

func TestListUsersHandler(t *testing.T) {
	h := newHTTPEnv(t)
	admin := h.seedAdmin(t)
	h.seed(t, "one@news.test", account.RoleJournalist, account.StatusActive)
	h.seed(t, "two@news.test", account.RoleJournalist, account.StatusPending)

	status, out := h.do(t, http.MethodGet, api.AdminGroup+api.AdminUsers+"?role=journalist&limit=1", h.bearer(t, admin), nil)
	require.Equal(t, http.StatusOK, status)

	var data struct {
		Users      []account.View `json:"users"`
		Pagination api.Page       `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &data))
	assert.Len(t, data.Users, 1)
	assert.Equal(t, api.Page{Current: 1, Pages: 2, Total: 2, Limit: 1}, data.Pagination)

	status, out = h.do(t, http.MethodGet, api.AdminGroup+api.AdminUsers+"?status=archived", h.bearer(t, admin), nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, out.Errors, "status")
}

func TestPendingAndApproveHandlers(t *testing.T) {
	h := newHTTPEnv(t)
	admin := h.seedAdmin(t)
	j := h.seed(t, "applicant@news.test", account.RoleJournalist, account.StatusPending)
	token := h.bearer(t, admin)

	status, out := h.do(t, http.MethodGet, api.AdminGroup+api.AdminPendingJournalists, token, nil)
	require.Equal(t, http.StatusOK, status)
	var pending struct {
		Journalists []account.View `json:"journalists"`
		Count       int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &pending))
	require.Equal(t, 1, pending.Count)
	assert.Equal(t, j.ID, pending.Journalists[0].ID)

	status, _ = h.do(t, http.MethodPut, api.AdminGroup+"/journalists/"+j.ID.String()+"/approve", token, nil)
	require.Equal(t, http.StatusOK, status)

	stored, err := h.repo.FindByID(context.Background(), j.ID)
	require.NoError(t, err)
	assert.Equal(t, account.StatusActive, stored.Status)

	status, out = h.do(t, http.MethodPut, api.AdminGroup+"/journalists/"+j.ID.String()+"/reject", token, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", out.Code)

	status, out = h.do(t, http.MethodPut, api.AdminGroup+"/journalists/not-a-uuid/approve", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, out.Errors, "id")
}

func TestRoleStatusAndDeleteHandlers(t *testing.T) {
	h := newHTTPEnv(t)
	admin := h.seedAdmin(t)
	target := h.seed(t, "member@org.test", account.RoleComms, account.StatusActive)
	token := h.bearer(t, admin)
	base := api.AdminGroup + "/users/" + target.ID.String()

	status, _ := h.do(t, http.MethodPut, base+"/role", token, map[string]string{"role": "journalist"})
	require.Equal(t, http.StatusOK, status)

	status, out := h.do(t, http.MethodPut, base+"/status", token, map[string]string{"status": "frozen"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, out.Errors, "status")

	status, _ = h.do(t, http.MethodPut, base+"/status", token, map[string]string{"status": "suspended"})
	require.Equal(t, http.StatusOK, status)

	stored, err := h.repo.FindByID(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, account.RoleJournalist, stored.Role)
	assert.Equal(t, account.StatusSuspended, stored.Status)

	status, _ = h.do(t, http.MethodPut, api.AdminGroup+"/users/"+admin.ID.String()+"/role", token, map[string]string{"role": "comms"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = h.do(t, http.MethodDelete, api.AdminGroup+"/users/"+admin.ID.String(), token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = h.do(t, http.MethodDelete, base, token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = h.do(t, http.MethodDelete, base, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
