package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	orderdomain "github.com/bloomloft/garland/internal/order/domain"
)

func adminRequest(srv *Server, method, path, apiKey, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if apiKey != "" {
		req.Header.Set("X-Api-Key", apiKey)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	return w
}

func TestAdminRoutesRequireAPIKey(t *testing.T) {
	srv, _ := newTestServer(t)

	w := adminRequest(srv, http.MethodGet, "/api/admin/orders", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = adminRequest(srv, http.MethodGet, "/api/admin/orders", "wrong-key", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminListOrders(t *testing.T) {
	srv, fakes := newTestServer(t)
	fakes.orders.order = orderdomain.Order{OrderNumber: "CD250101-AB12", Status: orderdomain.StatusConfirmed}

	w := adminRequest(srv, http.MethodGet, "/api/admin/orders?status=confirmed", "admin-key", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp orderdomain.ListOrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Orders, 1)
	require.Equal(t, "CD250101-AB12", resp.Orders[0].OrderNumber)
}

func TestSupportCannotMutateOrders(t *testing.T) {
	srv, _ := newTestServer(t)

	w := adminRequest(srv, http.MethodGet, "/api/admin/orders", "support-key", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = adminRequest(srv, http.MethodPatch, "/api/admin/orders/42/status", "support-key", `{"status":"processing"}`)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = adminRequest(srv, http.MethodPost, "/api/admin/orders/42/refund", "support-key", "")
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	srv, fakes := newTestServer(t)
	fakes.orders.order = orderdomain.Order{ID: 42, OrderNumber: "CD250101-AB12", Status: orderdomain.StatusConfirmed}

	w := adminRequest(srv, http.MethodPatch, "/api/admin/orders/42/status", "admin-key", `{"status":"processing"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, orderdomain.StatusProcessing, fakes.orders.lastStatus)
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	srv, fakes := newTestServer(t)
	fakes.orders.err = orderdomain.ErrInvalidTransition

	w := adminRequest(srv, http.MethodPatch, "/api/admin/orders/42/status", "admin-key", `{"status":"processing"}`)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateStatusRejectsBadID(t *testing.T) {
	srv, _ := newTestServer(t)

	w := adminRequest(srv, http.MethodPatch, "/api/admin/orders/not-a-number/status", "admin-key", `{"status":"processing"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefundOrder(t *testing.T) {
	srv, fakes := newTestServer(t)
	fakes.orders.order = orderdomain.Order{ID: 42, PaymentStatus: orderdomain.PaymentPaid}

	w := adminRequest(srv, http.MethodPost, "/api/admin/orders/42/refund", "admin-key", "")
	require.Equal(t, http.StatusOK, w.Code)

	var order orderdomain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	require.Equal(t, orderdomain.PaymentRefunded, order.PaymentStatus)
}

func TestRefundNotRefundableConflicts(t *testing.T) {
	srv, fakes := newTestServer(t)
	fakes.orders.err = orderdomain.ErrNotRefundable

	w := adminRequest(srv, http.MethodPost, "/api/admin/orders/42/refund", "admin-key", "")
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestPublicOrderLookup(t *testing.T) {
	srv, fakes := newTestServer(t)
	fakes.orders.order = orderdomain.Order{OrderNumber: "CD250101-AB12", Status: orderdomain.StatusConfirmed}

	req := httptest.NewRequest(http.MethodGet, "/api/orders/CD250101-AB12", nil)
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var order orderdomain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	require.Equal(t, "CD250101-AB12", order.OrderNumber)
}

func TestPublicOrderLookupNotFound(t *testing.T) {
	srv, fakes := newTestServer(t)
	fakes.orders.err = orderdomain.ErrNotFound

	req := httptest.NewRequest(http.MethodGet, "/api/orders/CD250101-ZZ99", nil)
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}
