package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/facturo/internal/auth/domain"
	authrepository "github.com/smallbiznis/facturo/internal/auth/repository"
	authservice "github.com/smallbiznis/facturo/internal/auth/service"
	"github.com/smallbiznis/facturo/internal/auth/session"
	"github.com/smallbiznis/facturo/internal/cache"
	"github.com/smallbiznis/facturo/internal/config"
	customerdomain "github.com/smallbiznis/facturo/internal/customer/domain"
	customerrepository "github.com/smallbiznis/facturo/internal/customer/repository"
	customerservice "github.com/smallbiznis/facturo/internal/customer/service"
	invoicedomain "github.com/smallbiznis/facturo/internal/invoice/domain"
	"github.com/smallbiznis/facturo/internal/invoice/render"
	invoicerepository "github.com/smallbiznis/facturo/internal/invoice/repository"
	invoiceservice "github.com/smallbiznis/facturo/internal/invoice/service"
	"github.com/smallbiznis/facturo/internal/providers/pdf"
	"github.com/smallbiznis/facturo/internal/ratelimit"
	"github.com/smallbiznis/facturo/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	srv    *Server
	engine *gin.Engine
	cookie *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(
		&authdomain.User{},
		&authdomain.Session{},
		&customerdomain.Customer{},
		&invoicedomain.Invoice{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.Config{SessionTTLHours: 72}
	log := zap.NewNop()

	userRepo, sessionRepo := authrepository.New(dbConn)
	authsvc := authservice.New(log, cfg, userRepo, sessionRepo, node)

	settings, err := config.NewInvoicingConfigHolder()
	require.NoError(t, err)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := NewServer(ServerParams{
		Gin:      engine,
		Cfg:      cfg,
		DB:       dbConn,
		Log:      log,
		Authsvc:  authsvc,
		Sessions: session.NewManager(cfg),
		GenID:    node,
		CustomerSvc: customerservice.New(customerservice.Params{
			DB:    dbConn,
			Log:   log,
			GenID: node,
			Repo:  customerrepository.Provide(),
		}),
		InvoiceSvc: invoiceservice.New(invoiceservice.Params{
			DB:       dbConn,
			Log:      log,
			GenID:    node,
			Repo:     invoicerepository.Provide(),
			Settings: settings,
			Renderer: render.NewRenderer(),
		}),
		InvoiceSettings: settings,
		PDFProvider:     pdf.New(),
		LoginLimiter:    ratelimit.NewMemoryLimiter(),
		DashboardCache:  cache.NewDashboardCache(),
	})

	return &testServer{srv: srv, engine: engine}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if ts.cookie != nil {
		req.AddCookie(ts.cookie)
	}

	resp := httptest.NewRecorder()
	ts.engine.ServeHTTP(resp, req)
	return resp
}

func (ts *testServer) signUpAndLogin(t *testing.T) {
	t.Helper()

	resp := ts.do(t, http.MethodPost, "/auth/signup", gin.H{
		"email":    "owner@example.com",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.do(t, http.MethodPost, "/auth/login", gin.H{
		"email":    "owner@example.com",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == session.DefaultCookieName {
			ts.cookie = cookie
			return
		}
	}
	t.Fatal("login response did not set a session cookie")
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.signUpAndLogin(t)

	resp := ts.do(t, http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "owner@example.com")

	resp = ts.do(t, http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.do(t, http.MethodGet, "/api/customers", nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/auth/signup", gin.H{
		"email":    "owner@example.com",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.do(t, http.MethodPost, "/auth/login", gin.H{
		"email":    "owner@example.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	ts := newTestServer(t)

	body := gin.H{"email": "owner@example.com", "password": "correct horse"}
	resp := ts.do(t, http.MethodPost, "/auth/signup", body)
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.do(t, http.MethodPost, "/auth/signup", body)
	require.Equal(t, http.StatusConflict, resp.Code)
}

func TestLoginRateLimited(t *testing.T) {
	ts := newTestServer(t)

	body := gin.H{"email": "nobody@example.com", "password": "wrong"}
	for i := 0; i < loginAttemptLimit; i++ {
		resp := ts.do(t, http.MethodPost, "/auth/login", body)
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	}

	resp := ts.do(t, http.MethodPost, "/auth/login", body)
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
}

func TestAPIRequiresSession(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/invoices", nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCustomerCRUD(t *testing.T) {
	ts := newTestServer(t)
	ts.signUpAndLogin(t)

	resp := ts.do(t, http.MethodPost, "/api/customers", gin.H{
		"company":  "Acme Corp",
		"currency": "USD",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	var created customerdomain.Customer
	decodeData(t, resp, &created)
	require.Equal(t, "Acme Corp", created.Company)

	id := created.ID.String()

	resp = ts.do(t, http.MethodGet, "/api/customers/"+id, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.do(t, http.MethodPut, "/api/customers/"+id, gin.H{
		"company": "Acme Corporation",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var updated customerdomain.Customer
	decodeData(t, resp, &updated)
	require.Equal(t, "Acme Corporation", updated.Company)

	resp = ts.do(t, http.MethodGet, "/api/customers", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "Acme Corporation")

	resp = ts.do(t, http.MethodDelete, "/api/customers/"+id, nil)
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.do(t, http.MethodGet, "/api/customers/"+id, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCustomerValidation(t *testing.T) {
	ts := newTestServer(t)
	ts.signUpAndLogin(t)

	resp := ts.do(t, http.MethodPost, "/api/customers", gin.H{"company": "  "})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "validation_error")
}

func TestInvoiceCRUDAndPrint(t *testing.T) {
	ts := newTestServer(t)
	ts.signUpAndLogin(t)

	resp := ts.do(t, http.MethodPost, "/api/invoices", gin.H{
		"customerName": "Acme Corp",
		"dueDate":      "2031-03-01T00:00:00Z",
		"lineItems": []gin.H{
			{"name": "Consulting", "quantity": 2, "unit": "Hour", "rate": 100, "taxRate": 10},
		},
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	var created invoicedomain.InvoiceView
	decodeData(t, resp, &created)
	require.Equal(t, invoicedomain.InvoiceStatusPending, created.Status)
	require.Equal(t, 220.0, created.Total)
	require.NotEmpty(t, created.InvoiceNumber)

	id := created.ID.String()

	resp = ts.do(t, http.MethodGet, "/api/invoices/"+id, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.do(t, http.MethodGet, "/api/invoices/"+id+"/print", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Header().Get("Content-Type"), "text/html")
	require.Contains(t, resp.Body.String(), created.InvoiceNumber)

	resp = ts.do(t, http.MethodGet, "/api/invoices/"+id+"/pdf", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "application/pdf", resp.Header().Get("Content-Type"))
	require.Contains(t, resp.Header().Get("Content-Disposition"), ".pdf")
	require.True(t, bytes.HasPrefix(resp.Body.Bytes(), []byte("%PDF")))

	resp = ts.do(t, http.MethodPut, "/api/invoices/"+id, gin.H{
		"customerName": "Acme Corp",
		"lineItems": []gin.H{
			{"name": "Consulting", "quantity": 1, "unit": "Hour", "rate": 100},
		},
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var updated invoicedomain.InvoiceView
	decodeData(t, resp, &updated)
	require.Equal(t, 100.0, updated.Total)

	resp = ts.do(t, http.MethodDelete, "/api/invoices/"+id, nil)
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.do(t, http.MethodGet, "/api/invoices/"+id, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestInvoiceDuplicateNumberConflicts(t *testing.T) {
	ts := newTestServer(t)
	ts.signUpAndLogin(t)

	body := gin.H{"customerName": "Acme Corp", "invoiceNumber": "INV-CUSTOM-1"}
	resp := ts.do(t, http.MethodPost, "/api/invoices", body)
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.do(t, http.MethodPost, "/api/invoices", body)
	require.Equal(t, http.StatusConflict, resp.Code)
}

func TestDashboardOverview(t *testing.T) {
	ts := newTestServer(t)
	ts.signUpAndLogin(t)

	resp := ts.do(t, http.MethodPost, "/api/customers", gin.H{"company": "Acme Corp"})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.do(t, http.MethodPost, "/api/invoices", gin.H{
		"customerName": "Acme Corp",
		"dueDate":      "2031-03-01T00:00:00Z",
		"lineItems":    []gin.H{{"name": "Widget", "quantity": 1, "unit": "Unit", "rate": 50}},
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.do(t, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var overview cache.Overview
	decodeData(t, resp, &overview)
	require.Equal(t, int64(1), overview.CustomerCount)
	require.Equal(t, int64(1), overview.Invoices.InvoiceCount)
	require.Equal(t, int64(1), overview.Invoices.PendingCount)
	require.Equal(t, 50.0, overview.Invoices.OutstandingTotal)

	// Cached overview goes stale until a write invalidates it.
	resp = ts.do(t, http.MethodPost, "/api/customers", gin.H{"company": "Second Co"})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.do(t, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	decodeData(t, resp, &overview)
	require.Equal(t, int64(2), overview.CustomerCount)
}

func TestInvoicingSettingsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.signUpAndLogin(t)

	resp := ts.do(t, http.MethodGet, "/api/settings/invoicing", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		NumberTemplate  string `json:"numberTemplate"`
		DefaultCurrency string `json:"defaultCurrency"`
		DefaultDueDays  int    `json:"defaultDueDays"`
	}
	decodeData(t, resp, &body)
	require.NotEmpty(t, body.NumberTemplate)
	require.Equal(t, "USD", body.DefaultCurrency)
	require.Equal(t, 30, body.DefaultDueDays)
}

func TestListInvoicesByStatus(t *testing.T) {
	ts := newTestServer(t)
	ts.signUpAndLogin(t)

	invoices := []gin.H{
		{"customerName": "Draft Co"},
		{"customerName": "Pending Co", "dueDate": "2031-03-01T00:00:00Z"},
		{"customerName": "Overdue Co", "dueDate": "2020-03-01T00:00:00Z"},
	}
	for _, inv := range invoices {
		resp := ts.do(t, http.MethodPost, "/api/invoices", inv)
		require.Equal(t, http.StatusCreated, resp.Code, fmt.Sprintf("%v", inv))
	}

	resp := ts.do(t, http.MethodGet, "/api/invoices?status=overdue", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var list invoicedomain.ListInvoiceResponse
	decodeData(t, resp, &list)
	require.Len(t, list.Invoices, 1)
	require.Equal(t, "Overdue Co", list.Invoices[0].CustomerName)
}
