package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pkruglov/shopfloor-bot/internal/flow"
	"github.com/pkruglov/shopfloor-bot/internal/storage/sqlite"
	"github.com/pkruglov/shopfloor-bot/internal/tasks"
	"github.com/pkruglov/shopfloor-bot/pkg/models"
)

type testEnv struct {
	srv      *Server
	db       *sqlite.DB
	manager  *models.User
	employee *models.User
	eq       int64
	prod     int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	ctx := context.Background()
	mgr, _ := db.UpsertUser(ctx, 10, "mgr", "Менеджер", models.RoleManager)
	emp, _ := db.UpsertUser(ctx, 20, "emp", "Сотрудник", models.RoleEmployee)
	eq, _ := db.CreateEquipment(ctx, &models.Equipment{Name: "Станок А", IsActive: true})
	prod, _ := db.CreateProduct(ctx, &models.Product{Name: "Изделие А", DefaultEquipmentID: &eq, IsActive: true}, nil)

	svc := tasks.NewService(db, log, time.UTC)
	engine := flow.NewEngine(db, svc, time.UTC)
	srv := New(":0", db, svc, engine, t.TempDir(), log)
	return &testEnv{srv: srv, db: db, manager: mgr, employee: emp, eq: eq, prod: prod}
}

// do performs a request as the given telegram actor id; zero omits
// the header.
func (e *testEnv) do(t *testing.T, method, path, body string, actor int64) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != 0 {
		req.Header.Set("X-Actor-ID", strconv.FormatInt(actor, 10))
	}
	w := httptest.NewRecorder()
	e.srv.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, http.MethodGet, "/health", "", 0)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCreateTaskRequiresActor(t *testing.T) {
	e := newTestEnv(t)
	body := `{"manager_id":1,"employee_id":2,"equipment_id":1,"product_id":1,"planned_quantity":10,"shift":1,"task_date":"2024-03-10"}`

	if w := e.do(t, http.MethodPost, "/tasks", body, 0); w.Code != http.StatusForbidden {
		t.Fatalf("no actor: status = %d, want 403", w.Code)
	}
}

func TestTaskLifecycleOverAPI(t *testing.T) {
	e := newTestEnv(t)
	body := `{"manager_id":1,"employee_id":2,"equipment_id":1,"product_id":1,"planned_quantity":10,"shift":1,"task_date":"2024-03-10"}`

	w := e.do(t, http.MethodPost, "/tasks", body, e.manager.TelegramID)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", w.Code, w.Body.String())
	}
	var created models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Skipping a lifecycle state is a conflict.
	w = e.do(t, http.MethodPut, "/tasks/1", `{"status":"completed"}`, e.manager.TelegramID)
	if w.Code != http.StatusConflict {
		t.Fatalf("skip transition: status = %d, want 409", w.Code)
	}

	for _, st := range []string{"received", "completed", "closed"} {
		w = e.do(t, http.MethodPut, "/tasks/1", `{"status":"`+st+`"}`, e.manager.TelegramID)
		if w.Code != http.StatusOK {
			t.Fatalf("advance to %s: status = %d, body = %s", st, w.Code, w.Body.String())
		}
	}

	// The actual quantity stays correctable after closing.
	w = e.do(t, http.MethodPut, "/tasks/1", `{"actual_quantity":8}`, e.manager.TelegramID)
	if w.Code != http.StatusOK {
		t.Fatalf("update actual: status = %d", w.Code)
	}

	w = e.do(t, http.MethodGet, "/tasks/1", "", 0)
	if w.Code != http.StatusOK {
		t.Fatalf("get: status = %d", w.Code)
	}
	var got models.Task
	json.Unmarshal(w.Body.Bytes(), &got)
	if got.Status != models.StatusClosed || got.ActualQuantity != 8 {
		t.Fatalf("task = %+v", got)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	e := newTestEnv(t)
	if w := e.do(t, http.MethodGet, "/tasks/42", "", 0); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestUpdateUserRole(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPut, "/users/2", `{"role":"manager"}`, e.manager.TelegramID)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	u, err := e.db.GetUserByID(context.Background(), e.employee.ID)
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != models.RoleManager {
		t.Fatalf("role = %s, want manager", u.Role)
	}
}

func TestGenerateReportOverAPI(t *testing.T) {
	e := newTestEnv(t)

	// No tasks in range yet.
	w := e.do(t, http.MethodGet, "/reports/generate?manager_id=1&date_from=2024-03-01&date_to=2024-03-20&format=csv", "", e.manager.TelegramID)
	if w.Code != http.StatusNotFound {
		t.Fatalf("empty report: status = %d, want 404", w.Code)
	}

	body := `{"manager_id":1,"employee_id":2,"equipment_id":1,"product_id":1,"planned_quantity":10,"shift":1,"task_date":"2024-03-10"}`
	if w := e.do(t, http.MethodPost, "/tasks", body, e.manager.TelegramID); w.Code != http.StatusCreated {
		t.Fatalf("create task: %d", w.Code)
	}

	w = e.do(t, http.MethodGet, "/reports/generate?manager_id=1&date_from=2024-03-01&date_to=2024-03-20&format=csv", "", e.manager.TelegramID)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		FilePath string `json:"file_path"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.FilePath == "" {
		t.Fatalf("bad response: %s", w.Body.String())
	}
}
