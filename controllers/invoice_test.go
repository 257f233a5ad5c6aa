package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"garagepro-backend/config"
	"garagepro-backend/models"
	"garagepro-backend/routes"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixtures struct {
	token     string
	customer  models.Customer
	vehicle   models.Vehicle
	service   models.Service
	part      models.Part
	partSpare models.Part
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Garage{},
		&models.User{},
		&models.Customer{},
		&models.Vehicle{},
		&models.Service{},
		&models.Part{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.InvoiceSequence{},
		&models.Payment{},
		&models.ReminderLog{},
	))
	config.DB = db

	return routes.SetupRouter()
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func seedFixtures(t *testing.T, r *gin.Engine) fixtures {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"email":      "owner@garage.test",
		"phone":      "+919876543210",
		"name":       "Owner",
		"password":   "supersecret",
		"garageName": "Test Garage",
		"gstin":      "24AAACC1206D1ZM",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var reg struct {
		Token string `json:"token"`
	}
	decode(t, w, &reg)
	require.NotEmpty(t, reg.Token)

	fx := fixtures{token: reg.Token}

	w = doJSON(t, r, http.MethodPost, "/api/customers", fx.token, gin.H{
		"name":  "Asha Patel",
		"phone": "+919812345678",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &fx.customer)

	w = doJSON(t, r, http.MethodPost, "/api/vehicles", fx.token, gin.H{
		"customerId":    fx.customer.ID,
		"make":          "Maruti",
		"model":         "Swift",
		"vehicleNumber": "GJ01AB1234",
		"vehicleType":   "car",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &fx.vehicle)

	w = doJSON(t, r, http.MethodPost, "/api/services", fx.token, gin.H{
		"name":      "Full Service",
		"basePrice": 1000.0,
		"gstRate":   18.0,
		"sacCode":   "998714",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &fx.service)

	w = doJSON(t, r, http.MethodPost, "/api/parts", fx.token, gin.H{
		"name":          "Oil Filter",
		"price":         500.0,
		"gstRate":       18.0,
		"hsnCode":       "8421",
		"stockQuantity": 10,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &fx.part)

	w = doJSON(t, r, http.MethodPost, "/api/parts", fx.token, gin.H{
		"name":          "Brake Pad",
		"price":         1200.0,
		"gstRate":       28.0,
		"stockQuantity": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &fx.partSpare)

	return fx
}

func createInvoice(t *testing.T, r *gin.Engine, fx fixtures, body gin.H) models.Invoice {
	t.Helper()
	payload := gin.H{
		"invoiceType": "gst",
		"customerId":  fx.customer.ID,
		"vehicleId":   fx.vehicle.ID,
	}
	for k, v := range body {
		payload[k] = v
	}
	w := doJSON(t, r, http.MethodPost, "/api/invoices", fx.token, payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var inv models.Invoice
	decode(t, w, &inv)
	return inv
}

func TestCreateInvoice_ServiceAndLabor(t *testing.T) {
	r := setupRouter(t)
	fx := seedFixtures(t, r)

	inv := createInvoice(t, r, fx, gin.H{
		"items":              []gin.H{{"itemType": "service", "itemId": fx.service.ID, "quantity": 1}},
		"laborCharges":       500.0,
		"discountPercentage": 10.0,
	})

	// 1000 @ 18% plus 500 untaxed labor, 10% off the subtotal.
	day := time.Now().Format("20060102")
	assert.Equal(t, fmt.Sprintf("GST-%s-001", day), inv.InvoiceNumber)
	assert.Equal(t, 1500.0, inv.Subtotal)
	assert.Equal(t, 150.0, inv.DiscountAmount)
	assert.Equal(t, 90.0, inv.CGSTAmount)
	assert.Equal(t, 90.0, inv.SGSTAmount)
	assert.Equal(t, 180.0, inv.TotalGSTAmount)
	assert.Equal(t, 1530.0, inv.Total)

	// Mark paid, then undo: paidAt comes and goes with the status.
	w := doJSON(t, r, http.MethodPost, "/api/invoices/"+inv.ID.String()+"/status", fx.token, gin.H{"status": "paid"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var paid models.Invoice
	decode(t, w, &paid)
	require.NotNil(t, paid.PaidAt)

	w = doJSON(t, r, http.MethodPost, "/api/invoices/"+inv.ID.String()+"/status", fx.token, gin.H{"status": "pending"})
	require.Equal(t, http.StatusOK, w.Code)
	var reopened models.Invoice
	decode(t, w, &reopened)
	assert.Equal(t, "pending", reopened.Status)
	assert.Nil(t, reopened.PaidAt)
}

func TestCreateInvoice_TotalsAndStock(t *testing.T) {
	r := setupRouter(t)
	fx := seedFixtures(t, r)

	inv := createInvoice(t, r, fx, gin.H{
		"items": []gin.H{
			{"itemType": "service", "itemId": fx.service.ID, "quantity": 1},
			{"itemType": "part", "itemId": fx.part.ID, "quantity": 2},
		},
		"laborCharges":       500.0,
		"discountPercentage": 10.0,
	})

	day := time.Now().Format("20060102")
	assert.Equal(t, fmt.Sprintf("GST-%s-001", day), inv.InvoiceNumber)
	assert.Equal(t, "pending", inv.Status)

	// service 1000 + parts 1000 + labor 500, 10% off, 18% GST on the lines
	assert.Equal(t, 2500.0, inv.Subtotal)
	assert.Equal(t, 250.0, inv.DiscountAmount)
	assert.Equal(t, 180.0, inv.CGSTAmount)
	assert.Equal(t, 180.0, inv.SGSTAmount)
	assert.Equal(t, 2610.0, inv.Total)
	require.Len(t, inv.Items, 2)

	// Billing the parts draws down stock.
	var part models.Part
	w := doJSON(t, r, http.MethodGet, "/api/parts/"+fx.part.ID.String(), fx.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &part)
	assert.Equal(t, 8, part.StockQuantity)

	// Customer stats reflect the visit.
	var customer models.Customer
	w = doJSON(t, r, http.MethodGet, "/api/customers/"+fx.customer.ID.String(), fx.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &customer)
	assert.Equal(t, 1, customer.TotalVisits)
	assert.Equal(t, 2610.0, customer.TotalSpent)
}

func TestCreateInvoice_SequencesPerTypeAndDay(t *testing.T) {
	r := setupRouter(t)
	fx := seedFixtures(t, r)

	items := []gin.H{{"itemType": "service", "itemId": fx.service.ID, "quantity": 1}}
	day := time.Now().Format("20060102")

	first := createInvoice(t, r, fx, gin.H{"items": items})
	second := createInvoice(t, r, fx, gin.H{"items": items})
	nonGST := createInvoice(t, r, fx, gin.H{"items": items, "invoiceType": "non-gst"})

	assert.Equal(t, fmt.Sprintf("GST-%s-001", day), first.InvoiceNumber)
	assert.Equal(t, fmt.Sprintf("GST-%s-002", day), second.InvoiceNumber)
	assert.Equal(t, fmt.Sprintf("NON-GST-%s-001", day), nonGST.InvoiceNumber)

	// Non-GST invoices carry no tax.
	assert.Zero(t, nonGST.TotalGSTAmount)
	assert.Equal(t, 1000.0, nonGST.Total)
}

func TestCreateInvoice_Rejections(t *testing.T) {
	r := setupRouter(t)
	fx := seedFixtures(t, r)

	// Vehicle belonging to another customer.
	w := doJSON(t, r, http.MethodPost, "/api/customers", fx.token, gin.H{
		"name":  "Second Customer",
		"phone": "+919800000001",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var other models.Customer
	decode(t, w, &other)

	w = doJSON(t, r, http.MethodPost, "/api/invoices", fx.token, gin.H{
		"invoiceType": "gst",
		"customerId":  other.ID,
		"vehicleId":   fx.vehicle.ID,
		"items":       []gin.H{{"itemType": "service", "itemId": fx.service.ID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// More parts than are in stock.
	w = doJSON(t, r, http.MethodPost, "/api/invoices", fx.token, gin.H{
		"invoiceType": "gst",
		"customerId":  fx.customer.ID,
		"vehicleId":   fx.vehicle.ID,
		"items":       []gin.H{{"itemType": "part", "itemId": fx.partSpare.ID, "quantity": 5}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown catalog reference.
	w = doJSON(t, r, http.MethodPost, "/api/invoices", fx.token, gin.H{
		"invoiceType": "gst",
		"customerId":  fx.customer.ID,
		"vehicleId":   fx.vehicle.ID,
		"items":       []gin.H{{"itemType": "service", "itemId": uuid.New(), "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceStatusTransitions(t *testing.T) {
	r := setupRouter(t)
	fx := seedFixtures(t, r)

	inv := createInvoice(t, r, fx, gin.H{
		"items": []gin.H{{"itemType": "service", "itemId": fx.service.ID, "quantity": 1}},
	})

	// pending -> paid stamps paidAt.
	w := doJSON(t, r, http.MethodPost, "/api/invoices/"+inv.ID.String()+"/status", fx.token, gin.H{"status": "paid"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var paid models.Invoice
	decode(t, w, &paid)
	assert.Equal(t, "paid", paid.Status)
	require.NotNil(t, paid.PaidAt)

	// paid -> cancelled is not a legal move.
	w = doJSON(t, r, http.MethodPost, "/api/invoices/"+inv.ID.String()+"/status", fx.token, gin.H{"status": "cancelled"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// paid -> pending undoes the payment mark.
	w = doJSON(t, r, http.MethodPost, "/api/invoices/"+inv.ID.String()+"/status", fx.token, gin.H{"status": "pending"})
	require.Equal(t, http.StatusOK, w.Code)
	var reopened models.Invoice
	decode(t, w, &reopened)
	assert.Equal(t, "pending", reopened.Status)
	assert.Nil(t, reopened.PaidAt)

	// Unknown target status.
	w = doJSON(t, r, http.MethodPost, "/api/invoices/"+inv.ID.String()+"/status", fx.token, gin.H{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePayment_CoveringTotalMarksPaid(t *testing.T) {
	r := setupRouter(t)
	fx := seedFixtures(t, r)

	inv := createInvoice(t, r, fx, gin.H{
		"items": []gin.H{{"itemType": "service", "itemId": fx.service.ID, "quantity": 1}},
	})

	w := doJSON(t, r, http.MethodPost, "/api/invoices/"+inv.ID.String()+"/payments", fx.token, gin.H{
		"amount": 500.0,
		"method": "cash",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Partial payment leaves the invoice open.
	w = doJSON(t, r, http.MethodGet, "/api/invoices/"+inv.ID.String(), fx.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view struct {
		Invoice models.Invoice `json:"invoice"`
	}
	decode(t, w, &view)
	assert.Equal(t, "pending", view.Invoice.Status)

	w = doJSON(t, r, http.MethodPost, "/api/invoices/"+inv.ID.String()+"/payments", fx.token, gin.H{
		"amount": inv.Total - 500.0,
		"method": "upi",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/invoices/"+inv.ID.String(), fx.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &view)
	assert.Equal(t, "paid", view.Invoice.Status)
	assert.NotNil(t, view.Invoice.PaidAt)

	w = doJSON(t, r, http.MethodGet, "/api/invoices/"+inv.ID.String()+"/payments", fx.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var payments []models.Payment
	decode(t, w, &payments)
	assert.Len(t, payments, 2)
}

func TestGetInvoices_FilterSearchAndPagination(t *testing.T) {
	r := setupRouter(t)
	fx := seedFixtures(t, r)

	items := []gin.H{{"itemType": "service", "itemId": fx.service.ID, "quantity": 1}}
	first := createInvoice(t, r, fx, gin.H{"items": items})
	createInvoice(t, r, fx, gin.H{"items": items})
	createInvoice(t, r, fx, gin.H{"items": items})

	// Mark one paid so the status filter has something to separate.
	w := doJSON(t, r, http.MethodPost, "/api/invoices/"+first.ID.String()+"/status", fx.token, gin.H{"status": "paid"})
	require.Equal(t, http.StatusOK, w.Code)

	type listResponse struct {
		Invoices   []models.Invoice `json:"invoices"`
		Page       int              `json:"page"`
		TotalCount int              `json:"totalCount"`
		TotalPages int              `json:"totalPages"`
	}

	var list listResponse
	w = doJSON(t, r, http.MethodGet, "/api/invoices", fx.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.Len(t, list.Invoices, 3)
	assert.Equal(t, 1, list.TotalPages)

	w = doJSON(t, r, http.MethodGet, "/api/invoices?status=paid", fx.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	require.Len(t, list.Invoices, 1)
	assert.Equal(t, first.ID, list.Invoices[0].ID)

	// Search matches the vehicle number case-insensitively.
	w = doJSON(t, r, http.MethodGet, "/api/invoices?search=gj01ab", fx.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.Len(t, list.Invoices, 3)

	w = doJSON(t, r, http.MethodGet, "/api/invoices?search=no-such-thing", fx.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.Empty(t, list.Invoices)
	assert.Equal(t, 1, list.TotalPages)

	// A page past the end is empty, not an error.
	w = doJSON(t, r, http.MethodGet, "/api/invoices?page=5", fx.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.Empty(t, list.Invoices)
	assert.Equal(t, 3, list.TotalCount)

	w = doJSON(t, r, http.MethodGet, "/api/invoices?status=archived", fx.token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/invoices?from=2020-13-01", fx.token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteInvoice_RestoresStockAndStats(t *testing.T) {
	r := setupRouter(t)
	fx := seedFixtures(t, r)

	inv := createInvoice(t, r, fx, gin.H{
		"items": []gin.H{{"itemType": "part", "itemId": fx.part.ID, "quantity": 3}},
	})

	w := doJSON(t, r, http.MethodDelete, "/api/invoices/"+inv.ID.String(), fx.token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var part models.Part
	w = doJSON(t, r, http.MethodGet, "/api/parts/"+fx.part.ID.String(), fx.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &part)
	assert.Equal(t, 10, part.StockQuantity)

	var customer models.Customer
	w = doJSON(t, r, http.MethodGet, "/api/customers/"+fx.customer.ID.String(), fx.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &customer)
	assert.Equal(t, 0, customer.TotalVisits)
	assert.Equal(t, 0.0, customer.TotalSpent)

	w = doJSON(t, r, http.MethodGet, "/api/invoices/"+inv.ID.String(), fx.token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/invoices", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
