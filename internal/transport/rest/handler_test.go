package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	perrors "github.com/mzherdev/product-catalog/internal/errors"
	"github.com/mzherdev/product-catalog/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProductService is a mock implementation of the ProductService interface.
// lastCall records which operation the handler dispatched to, so the filter
// precedence of the list endpoint can be asserted.
type mockProductService struct {
	product   *service.ProductDto
	products  []service.ProductDto
	counts    map[string]int64
	error     error
	lastCall  string
	threshold int32
}

func (m *mockProductService) FindAll(_ context.Context) ([]service.ProductDto, error) {
	m.lastCall = "FindAll"
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

func (m *mockProductService) FindByID(_ context.Context, _ uuid.UUID) (*service.ProductDto, error) {
	m.lastCall = "FindByID"
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductService) FindByCategory(_ context.Context, _ string) ([]service.ProductDto, error) {
	m.lastCall = "FindByCategory"
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

func (m *mockProductService) SearchByName(_ context.Context, _ string) ([]service.ProductDto, error) {
	m.lastCall = "SearchByName"
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

func (m *mockProductService) FindByPriceRange(_ context.Context, _, _ decimal.Decimal) ([]service.ProductDto, error) {
	m.lastCall = "FindByPriceRange"
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

func (m *mockProductService) FindLowStock(_ context.Context, threshold int32) ([]service.ProductDto, error) {
	m.lastCall = "FindLowStock"
	m.threshold = threshold
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

func (m *mockProductService) Create(_ context.Context, _ service.ProductCreateDto) (*service.ProductDto, error) {
	m.lastCall = "Create"
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductService) Update(_ context.Context, _ uuid.UUID, _ service.ProductUpdateDto) error {
	m.lastCall = "Update"
	return m.error
}

func (m *mockProductService) AdjustStock(_ context.Context, _ uuid.UUID, _ int32) error {
	m.lastCall = "AdjustStock"
	return m.error
}

func (m *mockProductService) DeleteByID(_ context.Context, _ uuid.UUID) error {
	m.lastCall = "DeleteByID"
	return m.error
}

func (m *mockProductService) CountByCategory(_ context.Context) (map[string]int64, error) {
	m.lastCall = "CountByCategory"
	if m.error != nil {
		return nil, m.error
	}
	return m.counts, nil
}

// toJSON is a helper function to convert a struct to JSON string
func toJSON(t *testing.T, v interface{}) string {
	t.Helper()
	bytes, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal to JSON: %v", err)
	}
	return string(bytes)
}

func newTestRouter(svc service.ProductService) *chi.Mux {
	mux := chi.NewRouter()
	handler := NewHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	handler.RegisterRoutes(mux)
	return mux
}

func doRequest(t *testing.T, mux *chi.Mux, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

var mockID = uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")

func mockDto() *service.ProductDto {
	return &service.ProductDto{
		ID:          mockID.String(),
		Name:        "Mechanical Keyboard",
		Description: "RGB mechanical gaming keyboard",
		Price:       decimal.NewFromFloat(149.99),
		Category:    "Electronics",
		Stock:       30,
		Created:     "2024-05-01T12:00:00Z",
	}
}

func Test_Handler_FindByID(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  *mockProductService
		productID    string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product found",
			mockService:  &mockProductService{product: mockDto()},
			productID:    mockID.String(),
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, mockDto()),
		},
		{
			name:         "Error - product not found",
			mockService:  &mockProductService{error: perrors.ErrProductNotFound},
			productID:    mockID.String(),
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Product not found"}`,
		},
		{
			name:         "Error - malformed ID",
			mockService:  &mockProductService{},
			productID:    "not-a-uuid",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid product ID: not-a-uuid"}`,
		},
		{
			name:         "Error - store failure",
			mockService:  &mockProductService{error: errors.New("connection refused")},
			productID:    mockID.String(),
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to retrieve product"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mux := newTestRouter(tc.mockService)
			rec := doRequest(t, mux, http.MethodGet, "/api/v1/products/"+tc.productID, "")
			assert.Equal(t, tc.expectedCode, rec.Code)
			assert.JSONEq(t, tc.expectedBody, rec.Body.String())
		})
	}
}

func Test_Handler_List_FilterPrecedence(t *testing.T) {
	testCases := []struct {
		name         string
		target       string
		expectedCall string
	}{
		{
			name:         "no filters - full list",
			target:       "/api/v1/products",
			expectedCall: "FindAll",
		},
		{
			name:         "category wins over search and price range",
			target:       "/api/v1/products?category=Electronics&search=mouse&minPrice=1&maxPrice=5",
			expectedCall: "FindByCategory",
		},
		{
			name:         "search wins over price range",
			target:       "/api/v1/products?search=mouse&minPrice=1&maxPrice=5",
			expectedCall: "SearchByName",
		},
		{
			name:         "price range needs both bounds",
			target:       "/api/v1/products?minPrice=1&maxPrice=5",
			expectedCall: "FindByPriceRange",
		},
		{
			name:         "single price bound falls back to full list",
			target:       "/api/v1/products?minPrice=1",
			expectedCall: "FindAll",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &mockProductService{products: []service.ProductDto{*mockDto()}}
			mux := newTestRouter(mockService)
			rec := doRequest(t, mux, http.MethodGet, tc.target, "")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.expectedCall, mockService.lastCall)
		})
	}
}

func Test_Handler_List_InvalidPriceBound(t *testing.T) {
	mockService := &mockProductService{}
	mux := newTestRouter(mockService)
	rec := doRequest(t, mux, http.MethodGet, "/api/v1/products?minPrice=abc&maxPrice=5", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid minPrice number: abc"}`, rec.Body.String())
}

func Test_Handler_List_StoreFailure(t *testing.T) {
	mockService := &mockProductService{error: errors.New("connection refused")}
	mux := newTestRouter(mockService)
	rec := doRequest(t, mux, http.MethodGet, "/api/v1/products", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to retrieve products"}`, rec.Body.String())
}

func Test_Handler_Create(t *testing.T) {
	validBody := `{"name":"Mechanical Keyboard","description":"RGB mechanical gaming keyboard","price":149.99,"category":"Electronics","stock":30}`
	testCases := []struct {
		name         string
		mockService  *mockProductService
		body         string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product created",
			mockService:  &mockProductService{product: mockDto()},
			body:         validBody,
			expectedCode: http.StatusCreated,
			expectedBody: toJSON(t, mockDto()),
		},
		{
			name:         "Error - invalid JSON body",
			mockService:  &mockProductService{},
			body:         `{"name":`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid request body"}`,
		},
		{
			name:         "Error - missing required fields",
			mockService:  &mockProductService{},
			body:         `{"price":1.50}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Name: failed on rule: required; Description: failed on rule: required; Category: failed on rule: required"}`,
		},
		{
			name:         "Error - overlong name",
			mockService:  &mockProductService{},
			body:         `{"name":"` + strings.Repeat("x", 101) + `","description":"A toy","price":1.50,"category":"Toys"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Name: failed on rule: max"}`,
		},
		{
			name:         "Error - negative price",
			mockService:  &mockProductService{error: perrors.ErrPriceNegative},
			body:         validBody,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Price cannot be negative"}`,
		},
		{
			name:         "Error - negative stock",
			mockService:  &mockProductService{error: perrors.ErrStockNegative},
			body:         validBody,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Stock cannot be negative"}`,
		},
		{
			name:         "Error - store failure",
			mockService:  &mockProductService{error: errors.New("connection refused")},
			body:         validBody,
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to create product"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mux := newTestRouter(tc.mockService)
			rec := doRequest(t, mux, http.MethodPost, "/api/v1/products", tc.body)
			assert.Equal(t, tc.expectedCode, rec.Code)
			assert.JSONEq(t, tc.expectedBody, rec.Body.String())
		})
	}
}

func Test_Handler_Update(t *testing.T) {
	validBody := `{"name":"Mechanical Keyboard","description":"RGB mechanical gaming keyboard","price":129.99,"category":"Electronics","stock":25}`
	testCases := []struct {
		name         string
		mockService  *mockProductService
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product updated",
			mockService:  &mockProductService{},
			expectedCode: http.StatusOK,
			expectedBody: `{"message":"Product updated successfully"}`,
		},
		{
			name:         "Error - product not found",
			mockService:  &mockProductService{error: perrors.ErrProductNotFound},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Product not found"}`,
		},
		{
			name:         "Error - negative price",
			mockService:  &mockProductService{error: perrors.ErrPriceNegative},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Price cannot be negative"}`,
		},
		{
			name:         "Error - store failure",
			mockService:  &mockProductService{error: errors.New("connection refused")},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to update product"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mux := newTestRouter(tc.mockService)
			rec := doRequest(t, mux, http.MethodPut, "/api/v1/products/"+mockID.String(), validBody)
			assert.Equal(t, tc.expectedCode, rec.Code)
			assert.JSONEq(t, tc.expectedBody, rec.Body.String())
		})
	}
}

func Test_Handler_AdjustStock(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  *mockProductService
		body         string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - stock adjusted",
			mockService:  &mockProductService{},
			body:         `{"quantity":-3}`,
			expectedCode: http.StatusOK,
			expectedBody: `{"message":"Stock updated successfully"}`,
		},
		{
			name:         "Error - insufficient stock",
			mockService:  &mockProductService{error: perrors.ErrInsufficientStock},
			body:         `{"quantity":-100}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Insufficient stock"}`,
		},
		{
			name:         "Error - product not found",
			mockService:  &mockProductService{error: perrors.ErrProductNotFound},
			body:         `{"quantity":1}`,
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Product not found"}`,
		},
		{
			name:         "Error - store failure",
			mockService:  &mockProductService{error: errors.New("connection refused")},
			body:         `{"quantity":1}`,
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to update stock"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mux := newTestRouter(tc.mockService)
			rec := doRequest(t, mux, http.MethodPut, "/api/v1/products/"+mockID.String()+"/stock", tc.body)
			assert.Equal(t, tc.expectedCode, rec.Code)
			assert.JSONEq(t, tc.expectedBody, rec.Body.String())
		})
	}
}

func Test_Handler_DeleteByID(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  *mockProductService
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product deleted",
			mockService:  &mockProductService{},
			expectedCode: http.StatusOK,
			expectedBody: `{"message":"Product deleted successfully"}`,
		},
		{
			name:         "Error - product not found",
			mockService:  &mockProductService{error: perrors.ErrProductNotFound},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Product not found"}`,
		},
		{
			name:         "Error - store failure",
			mockService:  &mockProductService{error: errors.New("connection refused")},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to delete product"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mux := newTestRouter(tc.mockService)
			rec := doRequest(t, mux, http.MethodDelete, "/api/v1/products/"+mockID.String(), "")
			assert.Equal(t, tc.expectedCode, rec.Code)
			assert.JSONEq(t, tc.expectedBody, rec.Body.String())
		})
	}
}

func Test_Handler_LowStock(t *testing.T) {
	testCases := []struct {
		name              string
		target            string
		expectedCode      int
		expectedThreshold int32
	}{
		{
			name:              "default threshold",
			target:            "/api/v1/products/stock/low",
			expectedCode:      http.StatusOK,
			expectedThreshold: 10,
		},
		{
			name:              "explicit threshold",
			target:            "/api/v1/products/stock/low?threshold=5",
			expectedCode:      http.StatusOK,
			expectedThreshold: 5,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &mockProductService{products: []service.ProductDto{*mockDto()}}
			mux := newTestRouter(mockService)
			rec := doRequest(t, mux, http.MethodGet, tc.target, "")
			require.Equal(t, tc.expectedCode, rec.Code)
			assert.Equal(t, "FindLowStock", mockService.lastCall)
			assert.Equal(t, tc.expectedThreshold, mockService.threshold)
		})
	}
}

func Test_Handler_LowStock_InvalidThreshold(t *testing.T) {
	mockService := &mockProductService{}
	mux := newTestRouter(mockService)
	rec := doRequest(t, mux, http.MethodGet, "/api/v1/products/stock/low?threshold=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid threshold number: -1"}`, rec.Body.String())
}

func Test_Handler_CategoryCount(t *testing.T) {
	mockService := &mockProductService{counts: map[string]int64{"Electronics": 2, "Furniture": 1}}
	mux := newTestRouter(mockService)
	rec := doRequest(t, mux, http.MethodGet, "/api/v1/products/stats/category-count", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"Electronics":2,"Furniture":1}`, rec.Body.String())
}

func Test_Handler_CategoryCount_StoreFailure(t *testing.T) {
	mockService := &mockProductService{error: errors.New("connection refused")}
	mux := newTestRouter(mockService)
	rec := doRequest(t, mux, http.MethodGet, "/api/v1/products/stats/category-count", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to retrieve category statistics"}`, rec.Body.String())
}
