package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ticketshop/internal/models"
	"ticketshop/internal/service"
	"ticketshop/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type stubIssuer struct{}

func (stubIssuer) IssueTickets(_ context.Context, req *service.IssueTicketsRequest) ([]service.IssuedTicket, error) {
	tickets := make([]service.IssuedTicket, req.Quantity)
	for i := range tickets {
		tickets[i] = service.IssuedTicket{Serial: "T"}
	}
	return tickets, nil
}

type stubProfiles struct{}

func (stubProfiles) GetProfile(_ context.Context, username string) (*service.Profile, error) {
	dob := time.Now().AddDate(-30, 0, 0)
	return &service.Profile{Username: username, DateOfBirth: &dob}, nil
}

type stubPublisher struct{}

func (stubPublisher) PublishPurchaseRequest(_ context.Context, _ *models.PurchaseRequest) error {
	return nil
}

func setupRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := store.NewStoreWithDB(sqlx.NewDb(db, "sqlmock"))
	catalog := service.NewCatalogClient(st, nil)
	saga := service.NewOrderSaga(st, catalog, stubIssuer{}, stubProfiles{}, stubPublisher{})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(saga, catalog, testSecret).SetupRoutes(router)
	return router, mock
}

func bearerToken(t *testing.T, username string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func purchaseBody(t *testing.T) *bytes.Buffer {
	body, err := json.Marshal(gin.H{
		"quantity":        5,
		"card_number":     4111111111111111,
		"expiration_date": "08-2028",
		"cvv":             123,
		"card_holder":     "Alice Doe",
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestPurchase_RequiresAuth(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/1/purchase", purchaseBody(t))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPurchase_Success(t *testing.T) {
	router, mock := setupRouter(t)

	mock.ExpectQuery("SELECT \\* FROM products WHERE id = \\$1").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "zones", "ticket_class", "validity_days", "min_age", "created_at"}).
			AddRow(1, "30-day pass", 25.0, "A,B", "standard", 30, nil, time.Now()))
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(42, time.Now()))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/1/purchase", purchaseBody(t))
	req.Header.Set("Authorization", bearerToken(t, "alice"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp service.PurchaseTicketResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.OrderID)
	assert.Equal(t, models.OrderStatusPending, resp.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchase_InvalidBodyHasEmptyResponse(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/1/purchase", bytes.NewBufferString(`{"quantity":0}`))
	req.Header.Set("Authorization", bearerToken(t, "alice"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestPurchase_UnknownProductHasEmptyResponse(t *testing.T) {
	router, mock := setupRouter(t)

	mock.ExpectQuery("SELECT \\* FROM products WHERE id = \\$1").
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/9/purchase", purchaseBody(t))
	req.Header.Set("Authorization", bearerToken(t, "alice"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Body.Bytes())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrder_HidesOtherBuyersOrders(t *testing.T) {
	router, mock := setupRouter(t)

	mock.ExpectQuery("SELECT \\* FROM orders WHERE id = \\$1").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "product_id", "quantity", "unit_price", "total_price", "status", "created_at"}).
			AddRow(42, "bob", 1, 5, 25.0, 125.0, models.OrderStatusPending, time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/42", nil)
	req.Header.Set("Authorization", bearerToken(t, "alice"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := setupRouter(t)

	for _, path := range []string{"/health", "/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
