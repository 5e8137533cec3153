// Package testutil provides database, fixture and HTTP helpers shared by the
// application, handler and integration tests of the order engine.
package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/assistec/backend/internal/domain/catalog"
	"github.com/assistec/backend/internal/domain/trade"
	"github.com/assistec/backend/internal/infrastructure/persistence"
	"github.com/assistec/backend/internal/infrastructure/persistence/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB wraps a GORM database with sqlmock for testing.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a postgres-dialect GORM handle over sqlmock.
// The connection is closed when the test ends.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "Failed to open GORM connection")

	return &MockDB{DB: gormDB, Mock: mock, SqlDB: mockDB}
}

// NewSQLiteDB opens an in-memory SQLite database with the full schema.
// The pool is pinned to one connection so the in-memory database survives
// for the whole test and transactions serialize the way row locks would.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

// Dec parses a decimal literal and panics on malformed input
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DecPtr returns a pointer to a parsed decimal
func DecPtr(s string) *decimal.Decimal {
	d := Dec(s)
	return &d
}

// IntPtr returns a pointer to n
func IntPtr(n int) *int {
	return &n
}

// NewTestUUID returns a deterministic UUID derived from seed
func NewTestUUID(seed string) uuid.UUID {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed))
}

// TestSellerID is the actor used by tests that sell
func TestSellerID() uuid.UUID {
	return NewTestUUID("test-seller")
}

// CreateProduct inserts an active catalog product
func CreateProduct(t *testing.T, db *gorm.DB, code, price string, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(code, "Product "+code, Dec(price), stock)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormProductRepository(db).Create(context.Background(), p))
	return p
}

// CreateService inserts an active catalog service
func CreateService(t *testing.T, db *gorm.DB, name, price string) *catalog.Service {
	t.Helper()
	s, err := catalog.NewService(name, Dec(price))
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormServiceRepository(db).Create(context.Background(), s))
	return s
}

// StockOf reads the current stock of a product
func StockOf(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	p, err := persistence.NewGormProductRepository(db).FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.StockQty
}

// BudgetStatusOf reads the current status of a budget
func BudgetStatusOf(t *testing.T, db *gorm.DB, id uuid.UUID) trade.BudgetStatus {
	t.Helper()
	b, err := persistence.NewGormBudgetRepository(db).FindByID(context.Background(), id)
	require.NoError(t, err)
	return b.Status
}

// CountRows counts the rows of a table
func CountRows(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}

// DoJSON sends a request with an optional JSON body through the router
func DoJSON(t *testing.T, r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// DecodeData unmarshals the data field of a standard API response into out
func DecodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	require.True(t, envelope.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

// ErrorCode returns error.code of a standard API error response
func ErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	return envelope.Error.Code
}
