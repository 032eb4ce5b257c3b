//go:build integration

package integration

import (
	"net/http"
	"regexp"
	"testing"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func createOrder(t *testing.T) orderResponse {
	t.Helper()

	resp := doAuth(t, http.MethodPost, "/api/orders", nil, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create order: expected 201, got %d", resp.StatusCode)
	}
	return decodeJSON[orderResponse](t, resp)
}

func addItem(t *testing.T, orderID, itemID string, quantity int) (*http.Response, orderResponse) {
	t.Helper()

	body := map[string]any{"item_id": itemID, "quantity": quantity}
	resp := doAuth(t, http.MethodPost, "/api/orders/"+orderID+"/items", body, testAPIKey)
	defer resp.Body.Close()

	var o orderResponse
	if resp.StatusCode == http.StatusOK {
		o = decodeJSON[orderResponse](t, resp)
	}
	return resp, o
}

func TestCreateOrder(t *testing.T) {
	o := createOrder(t)

	if !uuidPattern.MatchString(o.ID) {
		t.Errorf("order ID %q is not a valid UUID", o.ID)
	}
	if o.TotalPrice != "0.00" {
		t.Errorf("total: got %q, want %q", o.TotalPrice, "0.00")
	}
	if o.Currency != "" {
		t.Errorf("currency: got %q, want empty", o.Currency)
	}
}

func TestCreateOrder_NoAuth(t *testing.T) {
	resp := doAuth(t, http.MethodPost, "/api/orders", nil, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestOrderLifecycle(t *testing.T) {
	o := createOrder(t)

	// 2x Wireless Mouse @ 59.50 = 119.00
	resp, got := addItem(t, o.ID, "it-mouse", 2)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add item: expected 200, got %d", resp.StatusCode)
	}
	if got.TotalPrice != "119.00" {
		t.Errorf("total after mouse: got %q, want %q", got.TotalPrice, "119.00")
	}
	if got.Currency != "usd" {
		t.Errorf("currency: got %q, want %q", got.Currency, "usd")
	}

	// + Desk Mat @ 24.00 = 143.00
	resp, got = addItem(t, o.ID, "it-deskmat", 1)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add item: expected 200, got %d", resp.StatusCode)
	}
	if got.TotalPrice != "143.00" {
		t.Errorf("total after deskmat: got %q, want %q", got.TotalPrice, "143.00")
	}
	if len(got.Lines) != 2 {
		t.Errorf("lines: got %d, want 2", len(got.Lines))
	}

	// WELCOME10: 143.00 * 0.9 = 128.70
	resp = doAuth(t, http.MethodPut, "/api/orders/"+o.ID+"/discount",
		map[string]any{"coupon_id": "WELCOME10"}, testAPIKey)
	got = decodeJSON[orderResponse](t, resp)
	resp.Body.Close()
	if got.TotalPrice != "128.70" {
		t.Errorf("total with discount: got %q, want %q", got.TotalPrice, "128.70")
	}
	if got.CouponID != "WELCOME10" {
		t.Errorf("coupon: got %q, want %q", got.CouponID, "WELCOME10")
	}

	// vat-de (19%, exclusive): 128.70 * 1.19 = 153.15
	resp = doAuth(t, http.MethodPut, "/api/orders/"+o.ID+"/tax",
		map[string]any{"tax_id": "vat-de"}, testAPIKey)
	got = decodeJSON[orderResponse](t, resp)
	resp.Body.Close()
	if got.TotalPrice != "153.15" {
		t.Errorf("total with tax: got %q, want %q", got.TotalPrice, "153.15")
	}

	// Drop the discount: 143.00 * 1.19 = 170.17
	resp = doAuth(t, http.MethodDelete, "/api/orders/"+o.ID+"/discount", nil, testAPIKey)
	got = decodeJSON[orderResponse](t, resp)
	resp.Body.Close()
	if got.TotalPrice != "170.17" {
		t.Errorf("total without discount: got %q, want %q", got.TotalPrice, "170.17")
	}
	if got.CouponID != "" {
		t.Errorf("coupon: got %q, want empty", got.CouponID)
	}

	// Drop the tax: back to 143.00.
	resp = doAuth(t, http.MethodDelete, "/api/orders/"+o.ID+"/tax", nil, testAPIKey)
	got = decodeJSON[orderResponse](t, resp)
	resp.Body.Close()
	if got.TotalPrice != "143.00" {
		t.Errorf("total without tax: got %q, want %q", got.TotalPrice, "143.00")
	}

	// Remove the desk mat: 119.00.
	resp = doAuth(t, http.MethodDelete, "/api/orders/"+o.ID+"/items/it-deskmat", nil, testAPIKey)
	got = decodeJSON[orderResponse](t, resp)
	resp.Body.Close()
	if got.TotalPrice != "119.00" {
		t.Errorf("total after removal: got %q, want %q", got.TotalPrice, "119.00")
	}

	// Remove the last line: empty order, no currency.
	resp = doAuth(t, http.MethodDelete, "/api/orders/"+o.ID+"/items/it-mouse", nil, testAPIKey)
	got = decodeJSON[orderResponse](t, resp)
	resp.Body.Close()
	if got.TotalPrice != "0.00" {
		t.Errorf("total after emptying: got %q, want %q", got.TotalPrice, "0.00")
	}
	if got.Currency != "" {
		t.Errorf("currency after emptying: got %q, want empty", got.Currency)
	}
}

func TestAddItem_MergesQuantity(t *testing.T) {
	o := createOrder(t)

	addItem(t, o.ID, "it-mouse", 2)
	_, got := addItem(t, o.ID, "it-mouse", 3)

	if len(got.Lines) != 1 {
		t.Fatalf("lines: got %d, want 1", len(got.Lines))
	}
	if got.Lines[0].Quantity != 5 {
		t.Errorf("quantity: got %d, want 5", got.Lines[0].Quantity)
	}
	if got.TotalPrice != "297.50" {
		t.Errorf("total: got %q, want %q", got.TotalPrice, "297.50")
	}
}

func TestAddItem_MixedCurrencies(t *testing.T) {
	o := createOrder(t)

	addItem(t, o.ID, "it-mouse", 1) // usd
	resp, _ := addItem(t, o.ID, "it-headset", 1) // eur

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	// The failed add must not have touched the order.
	getResp := doAuth(t, http.MethodGet, "/api/orders/"+o.ID, nil, testAPIKey)
	defer getResp.Body.Close()
	got := decodeJSON[orderResponse](t, getResp)
	if len(got.Lines) != 1 {
		t.Errorf("lines: got %d, want 1", len(got.Lines))
	}
	if got.TotalPrice != "59.50" {
		t.Errorf("total: got %q, want %q", got.TotalPrice, "59.50")
	}
}

func TestAddItem_UnknownItem(t *testing.T) {
	o := createOrder(t)

	resp, _ := addItem(t, o.ID, "no-such-item", 1)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestAddItem_ZeroQuantity(t *testing.T) {
	o := createOrder(t)

	resp, _ := addItem(t, o.ID, "it-mouse", 0)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestRemoveItem_Absent(t *testing.T) {
	o := createOrder(t)
	addItem(t, o.ID, "it-mouse", 1)

	resp := doAuth(t, http.MethodDelete, "/api/orders/"+o.ID+"/items/it-deskmat", nil, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	got := decodeJSON[orderResponse](t, resp)
	if len(got.Lines) != 1 {
		t.Errorf("lines: got %d, want 1", len(got.Lines))
	}
}

func TestApplyDiscount_Unknown(t *testing.T) {
	o := createOrder(t)

	resp := doAuth(t, http.MethodPut, "/api/orders/"+o.ID+"/discount",
		map[string]any{"coupon_id": "NONEXISTENT"}, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestApplyTax_Inclusive(t *testing.T) {
	o := createOrder(t)
	addItem(t, o.ID, "it-deskmat", 1) // 24.00

	// vat-incl is embedded in prices; the total must not change.
	resp := doAuth(t, http.MethodPut, "/api/orders/"+o.ID+"/tax",
		map[string]any{"tax_id": "vat-incl"}, testAPIKey)
	defer resp.Body.Close()

	got := decodeJSON[orderResponse](t, resp)
	if got.TotalPrice != "24.00" {
		t.Errorf("total: got %q, want %q", got.TotalPrice, "24.00")
	}
	if got.TaxID != "vat-incl" {
		t.Errorf("tax: got %q, want %q", got.TaxID, "vat-incl")
	}
}

func TestCheckout_EmptyOrder(t *testing.T) {
	o := createOrder(t)

	resp := doAuth(t, http.MethodPost, "/api/orders/"+o.ID+"/checkout", nil, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	resp := doAuth(t, http.MethodGet, "/api/orders/00000000-0000-0000-0000-000000000000", nil, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
