package customer

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuditriaji/atelie-lacos/pkg/database"
	"github.com/yuditriaji/atelie-lacos/pkg/draft"
	"github.com/yuditriaji/atelie-lacos/pkg/ordertotal"
	"github.com/yuditriaji/atelie-lacos/pkg/session"
	"github.com/yuditriaji/atelie-lacos/pkg/sheet"
)

func newRouter(h *Handler, account uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { session.Set(c, session.Session{AccountID: account}) })
	r.POST("/customers", h.Create)
	return r
}

func TestCreateWithoutNameKeepsDraft(t *testing.T) {
	h := NewHandler(nil)
	r := newRouter(h, uuid.New())

	body := `{"name":"  ","phone":"(11) 99999-0000","email":"maria@exemplo.com"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body)))

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Fields []string `json:"fields"`
		Draft  Form     `json:"draft"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"name"}, resp.Fields)
	assert.Equal(t, "(11) 99999-0000", resp.Draft.Phone)
	assert.Equal(t, "maria@exemplo.com", resp.Draft.Email)
}

func TestCreateRequiresPhone(t *testing.T) {
	r := newRouter(NewHandler(nil), uuid.New())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(`{"name":"Maria"}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"phone"`)
}

func TestCreateWhileAnotherCreateIsSaving(t *testing.T) {
	account := uuid.New()
	h := NewHandler(nil)
	_, release, err := h.editors.Acquire(account.String() + ":new")
	require.NoError(t, err)
	defer release()

	w := httptest.NewRecorder()
	newRouter(h, account).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/customers",
		strings.NewReader(`{"name":"Maria","phone":"1"}`)))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFilterCustomers(t *testing.T) {
	customers := []database.Customer{
		{Name: "Maria Silva", Phone: "(11) 99999-0000", Email: "maria@exemplo.com"},
		{Name: "Joana", Phone: "(21) 98888-1111", Email: "JOANA@laços.com"},
	}

	assert.Len(t, draft.Filter(customers, "joana@", searchFields), 1)
	assert.Len(t, draft.Filter(customers, "9999", searchFields), 1)
	assert.Len(t, draft.Filter(customers, "", searchFields), 2)

	none := draft.Filter(customers, "pedro", searchFields)
	assert.Empty(t, none)
	assert.Len(t, customers, 2)
}

func TestSummarize(t *testing.T) {
	older := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	orders := []database.Order{
		{BaseModel: database.BaseModel{CreatedAt: older}, TotalValue: decimal.RequireFromString("81.30"), Status: ordertotal.StatusReceived},
		{BaseModel: database.BaseModel{CreatedAt: newer}, TotalValue: decimal.RequireFromString("20"), Status: ordertotal.StatusPending},
	}

	stats := summarize(orders)

	assert.EqualValues(t, 2, stats.TotalOrders)
	assert.Equal(t, "101.3", stats.TotalSpent.String())
	assert.Equal(t, "81.3", stats.PaidTotal.String())
	assert.Equal(t, "20", stats.PendingTotal.String())
	require.NotNil(t, stats.LastOrderAt)
	assert.Equal(t, newer, *stats.LastOrderAt)

	empty := summarize(nil)
	assert.True(t, empty.TotalSpent.IsZero())
	assert.Nil(t, empty.LastOrderAt)
}

func TestExportRows(t *testing.T) {
	rows := exportRows([]database.Customer{{
		BaseModel: database.BaseModel{CreatedAt: time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)},
		Name:      "Maria",
		Phone:     "1",
		Email:     "m@e.com",
		Address:   "Rua A",
	}})

	require.Len(t, rows, 1)
	assert.Len(t, rows[0], len(exportHeaders))
	assert.Equal(t, "17/10/2026", rows[0][4])
}

func TestReadRows(t *testing.T) {
	table, err := sheet.Read(strings.NewReader("Nome,Celular,E-mail,Endereço\nMaria , (11) 99999-0000,maria@exemplo.com,Rua A\nJoana,,,\n"), "clientes.csv")
	require.NoError(t, err)

	rows := readRows(table)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].line)
	assert.Equal(t, Form{Name: "Maria", Phone: "(11) 99999-0000", Email: "maria@exemplo.com", Address: "Rua A"}, rows[0].form)
	assert.Equal(t, 3, rows[1].line)
	assert.Empty(t, rows[1].form.Phone)
}

func importRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/customers/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImportReportsInvalidRows(t *testing.T) {
	h := NewHandler(nil)
	r := newRouter(h, uuid.New())
	r.POST("/customers/import", h.Import)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, importRequest(t, "clientes.csv", "nome,telefone\nJoana,\n,123\n"))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data ImportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.TotalRows)
	assert.Equal(t, 2, resp.Data.FailedCount)
	assert.Zero(t, resp.Data.CreatedCount)
	assert.Equal(t, "Row 2: missing [phone]", resp.Data.Errors[0])
	assert.Equal(t, "Row 3: missing [name]", resp.Data.Errors[1])
}

func TestImportRejectsUnsupportedFile(t *testing.T) {
	h := NewHandler(nil)
	r := newRouter(h, uuid.New())
	r.POST("/customers/import", h.Import)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, importRequest(t, "clientes.pdf", "%PDF"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
