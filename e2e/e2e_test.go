//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"tribeboard/internal/config"
	"tribeboard/internal/db"
	familydomain "tribeboard/internal/domain/family"
	codedomain "tribeboard/internal/domain/familycode"
	messagingdomain "tribeboard/internal/domain/messaging"
	scheduledomain "tribeboard/internal/domain/schedule"
	syncdomain "tribeboard/internal/domain/sync"
	tasksdomain "tribeboard/internal/domain/tasks"
	userdomain "tribeboard/internal/domain/user"
	"tribeboard/internal/repository/inmemory"
	familyrepo "tribeboard/internal/repository/postgres/family"
	messagingrepo "tribeboard/internal/repository/postgres/messaging"
	schedulerepo "tribeboard/internal/repository/postgres/schedule"
	syncrepo "tribeboard/internal/repository/postgres/sync"
	tasksrepo "tribeboard/internal/repository/postgres/tasks"
	userrepo "tribeboard/internal/repository/postgres/user"
	remotecodes "tribeboard/internal/repository/remote/familycode"
	"tribeboard/internal/transport/httpserver"
	"tribeboard/internal/transport/httpserver/handler"
	"tribeboard/pkg/logger"
)

const (
	userAlice = "00000000-0000-4000-8000-00000000000a"
	userBob   = "00000000-0000-4000-8000-00000000000b"
)

type testEnv struct {
	server       *httptest.Server
	authServer   *httptest.Server
	remoteServer *httptest.Server
	db           *gorm.DB
}

func setupE2E(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("E2E_DB_DSN")
	if dsn == "" {
		t.Skip("E2E_DB_DSN not set; skipping e2e tests")
	}

	log := logger.NewFromEnv()
	authServer := newAuthServer(t)

	// Remote code store that knows no codes: every lookup is 404.
	remoteServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	cfg := config.Config{
		DB: config.DBConfig{DSN: dsn},
		Auth: config.AuthConfig{
			URL:     authServer.URL,
			APIKey:  "test-key",
			Timeout: 2 * time.Second,
		},
		Remote: config.RemoteConfig{
			BaseURL: remoteServer.URL,
			Timeout: 2 * time.Second,
		},
		FamilyCode: config.FamilyCodeConfig{CheckRemote: true},
	}

	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	if err := db.Migrate(dbConn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := cleanDB(dbConn); err != nil {
		t.Fatalf("clean db: %v", err)
	}

	families := familyrepo.NewPostgres(dbConn)
	codes := codedomain.NewService(families, remotecodes.NewClient(cfg.Remote, log), codedomain.Config{CheckRemote: true}, log)
	familyService := familydomain.NewService(families, codes, inmemory.NewFamilyCache(), log)
	userService := userdomain.NewService(userrepo.NewPostgres(dbConn))
	tasksService := tasksdomain.NewService(tasksrepo.NewPostgres(dbConn))
	scheduleService := scheduledomain.NewService(schedulerepo.NewPostgres(dbConn))
	messagingService := messagingdomain.NewService(messagingrepo.NewPostgres(dbConn))
	syncService := syncdomain.NewService(syncrepo.NewPostgres(dbConn), tasksService, messagingService)

	handlers := handler.New(familyService, tasksService, scheduleService, messagingService, syncService, log)
	router := httpserver.NewRouter(cfg, handlers, userService, log)
	server := httptest.NewServer(router)

	return &testEnv{server: server, authServer: authServer, remoteServer: remoteServer, db: dbConn}
}

func (e *testEnv) Close() {
	e.server.Close()
	e.authServer.Close()
	e.remoteServer.Close()
	sqlDB, err := e.db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		if token == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		payload := map[string]interface{}{
			"id":    token,
			"email": token + "@example.com",
			"user_metadata": map[string]interface{}{
				"name": "User " + token[len(token)-1:],
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}))
}

func cleanDB(dbConn *gorm.DB) error {
	return dbConn.WithContext(context.Background()).Exec(
		"TRUNCATE TABLE sync_operations, sync_batches, messages, events, tasks, task_lists, family_members, families, user_profiles RESTART IDENTITY CASCADE",
	).Error
}

func requestJSON(t *testing.T, client *http.Client, method, url, token string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, respBody
}

type familyResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	SyncPending bool      `json:"sync_pending"`
}

type familyMemberResponse struct {
	UserID   string    `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

func TestCreateAndJoinFamilyFlow(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := env.server.Client()
	base := env.server.URL + "/api"

	resp, body := requestJSON(t, client, http.MethodPost, base+"/families", userAlice, map[string]string{"name": "TheAils"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create family: status %d, body %s", resp.StatusCode, body)
	}

	var created familyResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if !codedomain.ValidateFormat(created.Code) {
		t.Fatalf("family code %q has invalid format", created.Code)
	}
	if created.SyncPending {
		t.Fatalf("sync_pending should be false with remote reachable")
	}

	// Join with a case-insensitive, padded rendition of the code.
	joinCode := "  " + strings.ToLower(created.Code) + " "
	resp, body = requestJSON(t, client, http.MethodPost, base+"/families/join", userBob, map[string]string{"code": joinCode, "role": "child"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join family: status %d, body %s", resp.StatusCode, body)
	}

	resp, body = requestJSON(t, client, http.MethodGet, base+"/families/me/members", userAlice, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list members: status %d, body %s", resp.StatusCode, body)
	}

	var members []familyMemberResponse
	if err := json.Unmarshal(body, &members); err != nil {
		t.Fatalf("decode members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}

	roles := map[string]string{}
	for _, member := range members {
		roles[member.UserID] = member.Role
	}
	if roles[userAlice] != familydomain.RoleParentAdmin {
		t.Fatalf("creator role = %q, want parent_admin", roles[userAlice])
	}
	if roles[userBob] != familydomain.RoleChild {
		t.Fatalf("joiner role = %q, want child", roles[userBob])
	}

	// Second create by the same user must be rejected.
	resp, body = requestJSON(t, client, http.MethodPost, base+"/families", userAlice, map[string]string{"name": "Again"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second create: status %d, body %s", resp.StatusCode, body)
	}
}

func TestJoinWithUnknownCode(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := env.server.Client()
	base := env.server.URL + "/api"

	resp, body := requestJSON(t, client, http.MethodPost, base+"/families/join", userBob, map[string]string{"code": "ZXCVBN"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("join with unknown code: status %d, body %s", resp.StatusCode, body)
	}
}
