package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/userdash/internal/columns"
	"github.com/JonMunkholm/userdash/internal/config"
	"github.com/JonMunkholm/userdash/internal/core"
	"github.com/JonMunkholm/userdash/internal/logs"
	"github.com/JonMunkholm/userdash/internal/users"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080, ShutdownTimeout: time.Second},
		Security: config.SecurityConfig{EnableCSP: true},
		Dashboard: config.DashboardConfig{
			Title:            "Acme Users",
			MembershipsLabel: "Vendors",
			UsersPerPage:     10,
			LogsPerPage:      2,
		},
	}
}

func testRecords() []columns.Record {
	return []columns.Record{
		{
			"user_id":      "auth0|ada",
			"name":         "Ada",
			"email":        "ada@example.com",
			"picture":      "https://cdn.example.com/ada.png",
			"logins_count": float64(3),
			"identities":   []any{map[string]any{"connection": "github"}},
			"app_metadata": map[string]any{"memberships": []any{"acme", "globex"}},
		},
		{
			"user_id": "auth0|bob",
			"name":    "Bob <script>",
		},
		{
			"nickname": "",
		},
	}
}

type testEnv struct {
	server *Server
	cfg    *config.Config
	logs   *logs.MemorySource
}

func newTestServer(t *testing.T, opts core.Options) *testEnv {
	t.Helper()
	if opts.Users == nil {
		opts.Users = users.NewMemorySource(testRecords())
	}
	logSrc, _ := opts.Logs.(*logs.MemorySource)
	if opts.Logs == nil {
		logSrc = &logs.MemorySource{Records: []columns.Record{
			{"log_id": "l3", "type": "s", "description": "Login ok", "user_name": "ada"},
			{"log_id": "l2", "type": "f", "description": "Wrong password"},
			{"log_id": "l1", "type": "nope", "description": "Mystery"},
		}}
		opts.Logs = logSrc
	}
	opts.Sink = columns.Discard

	svc, err := core.NewService(opts)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	cfg := testConfig()
	return &testEnv{server: NewServer(svc, cfg), cfg: cfg, logs: logSrc}
}

func (e *testEnv) get(t *testing.T, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, req)
	return rec
}

func TestUsersPage(t *testing.T) {
	env := newTestServer(t, core.Options{})

	rec := env.get(t, "/users?sort=name&order=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()

	for _, want := range []string{
		"<title>Acme Users</title>",
		`href="/users/auth0%7Cada"`,
		`src="https://cdn.example.com/ada.png"`,
		"ada@example.com",
		"Bob &lt;script&gt;",
		"(empty)",
		"N/A",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestUsersPage_SortHeaders(t *testing.T) {
	env := newTestServer(t, core.Options{})

	body := env.get(t, "/users?sort=name&order=1", nil).Body.String()

	// Active column shows the indicator and links to the flipped order.
	if !strings.Contains(body, `href="/users?order=-1&amp;sort=name"`) {
		t.Errorf("name header should link to descending sort:\n%s", body)
	}
	if !strings.Contains(body, "▲") {
		t.Error("ascending sort should show ▲")
	}
	// Sort key of Latest Login is last_login, not the displayed property.
	if !strings.Contains(body, `sort=last_login`) {
		t.Error("Latest Login header should sort by last_login")
	}
	// Email is not sortable.
	if strings.Contains(body, "sort=email") {
		t.Error("Email header must not be a sort link")
	}
}

func TestUsersPage_HTMXPartial(t *testing.T) {
	env := newTestServer(t, core.Options{})

	body := env.get(t, "/users?search=ada", map[string]string{"HX-Request": "true"}).Body.String()
	if strings.Contains(body, "<html") {
		t.Error("HTMX request should get the table only")
	}
	if !strings.Contains(body, `id="users"`) {
		t.Error("partial should contain the users section")
	}
	if strings.Contains(body, "Bob") {
		t.Error("search should filter out Bob")
	}
}

func TestUsersPage_CustomizedColumns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fields.yaml")
	rules := "fields:\n  - property: email\n    search: false\n  - property: app_metadata.memberships\n    label: Vendors\n    display: count\n    search: true\n"
	if err := os.WriteFile(path, []byte(rules), 0o600); err != nil {
		t.Fatal(err)
	}
	env := newTestServer(t, core.Options{RulesFile: path})

	body := env.get(t, "/users?sort=name&order=1", nil).Body.String()
	if strings.Contains(body, ">Email<") {
		t.Error("suppressed Email column should not render")
	}
	if !strings.Contains(body, ">Vendors<") {
		t.Error("appended Vendors column should render")
	}
	if !strings.Contains(body, `width="25%"`) {
		t.Error("appended column should use the default width")
	}
}

func TestUsersPage_SortLinksOnlyForSortableKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.yaml")
	rules := "fields:\n" +
		"  - property: identities\n    label: Identities\n    search:\n      sort: true\n" +
		"  - property: app_metadata.vendor\n    label: Vendor\n    search:\n      sort: true\n"
	if err := os.WriteFile(path, []byte(rules), 0o600); err != nil {
		t.Fatal(err)
	}
	env := newTestServer(t, core.Options{RulesFile: path})

	body := env.get(t, "/users", nil).Body.String()
	if strings.Contains(body, "sort=identities") {
		t.Error("identities header must not be a sort link")
	}
	if !strings.Contains(body, "sort=app_metadata.vendor") {
		t.Error("metadata header should be a sort link")
	}
}

func TestUserPage(t *testing.T) {
	env := newTestServer(t, core.Options{})

	rec := env.get(t, "/users/auth0%7Cada", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	for _, want := range []string{"<h2>Ada</h2>", "github", "Vendors", "acme, globex"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestUserPage_NotFound(t *testing.T) {
	env := newTestServer(t, core.Options{})

	rec := env.get(t, "/users/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if !strings.Contains(rec.Body.String(), "USR001") {
		t.Error("error page should show the support code")
	}
}

func TestLogsPage(t *testing.T) {
	env := newTestServer(t, core.Options{})

	body := env.get(t, "/logs", nil).Body.String()
	for _, want := range []string{"Login ok", "Wrong password", `hx-get="/logs?page=1"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if strings.Contains(body, "Mystery") {
		t.Error("first page should hold two records")
	}
}

func TestLogsPage_AppendsNextPage(t *testing.T) {
	env := newTestServer(t, core.Options{})

	body := env.get(t, "/logs?page=1", map[string]string{"HX-Request": "true"}).Body.String()
	if strings.Contains(body, "<table") {
		t.Error("appended page should contain rows only")
	}
	if !strings.Contains(body, "Unknown Event") {
		t.Error("unknown log type should be described as Unknown Event")
	}
	if strings.Contains(body, "hx-get") {
		t.Error("last page should not offer more")
	}
}

func TestPaging_HugePageNumber(t *testing.T) {
	env := newTestServer(t, core.Options{})

	for _, target := range []string{"/logs?page=9223372036854775807", "/users?page=9223372036854775807"} {
		rec := env.get(t, target, map[string]string{"HX-Request": "true"})
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want %d", target, rec.Code, http.StatusOK)
		}
	}
}

func TestLogsPage_Error(t *testing.T) {
	env := newTestServer(t, core.Options{})
	env.logs.Err = errors.New("dial tcp: connection refused")

	body := env.get(t, "/logs", nil).Body.String()
	want := "An error occurred while loading the logs: Unable to connect to database"
	if !strings.Contains(body, want) {
		t.Errorf("body missing %q:\n%s", want, body)
	}
}

func TestAPIUsers(t *testing.T) {
	env := newTestServer(t, core.Options{})

	rec := env.get(t, "/api/users?sort=name&order=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got UsersJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Total != 3 {
		t.Errorf("total = %d, want %d", got.Total, 3)
	}
	if len(got.Columns) != 4 || got.Columns[2].SortKey != "last_login" {
		t.Errorf("columns = %+v", got.Columns)
	}

	var ada *UserRowJSON
	for i := range got.Rows {
		if got.Rows[i].ID == "auth0|ada" {
			ada = &got.Rows[i]
		}
	}
	if ada == nil {
		t.Fatal("ada missing from rows")
	}
	if ada.Cells["email"] != "ada@example.com" {
		t.Errorf("email cell = %v", ada.Cells["email"])
	}
}

func TestAPIColumns(t *testing.T) {
	env := newTestServer(t, core.Options{})

	rec := env.get(t, "/api/columns", nil)
	var got EpochJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != env.server.service.Columns().ID {
		t.Errorf("epoch id = %q, want active epoch", got.ID)
	}
	if got.Columns[0].Display != "custom" {
		t.Errorf("name display = %q, want custom", got.Columns[0].Display)
	}
}

func TestAPIKeyRequired(t *testing.T) {
	env := newTestServer(t, core.Options{})
	env.cfg.Security.RequireAPIKey = true
	env.cfg.Security.APIKeys = []string{"secret"}

	if rec := env.get(t, "/api/columns", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("status without key = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if rec := env.get(t, "/api/columns", map[string]string{"X-API-Key": "secret"}); rec.Code != http.StatusOK {
		t.Errorf("status with key = %d, want %d", rec.Code, http.StatusOK)
	}
	// Pages are not behind the API key.
	if rec := env.get(t, "/users", nil); rec.Code != http.StatusOK {
		t.Errorf("page status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestServer(t, core.Options{})

	rec := env.get(t, "/healthz", nil)
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing X-Content-Type-Options")
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing Content-Security-Policy")
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)
	defer rl.stop()

	if !rl.allow("1.1.1.1") || !rl.allow("1.1.1.1") {
		t.Fatal("first two requests should pass")
	}
	if rl.allow("1.1.1.1") {
		t.Error("third request should be limited")
	}
	if !rl.allow("2.2.2.2") {
		t.Error("other clients have their own budget")
	}
}
