package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/shopfront/store-api/internal/core/domain"
	"github.com/shopfront/store-api/internal/core/ports"
)

func decodeCart(t *testing.T, body []byte) cartResponse {
	t.Helper()
	var resp cartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestCartHandler_Get(t *testing.T) {
	stub := &stubCartService{
		getFn: func(ctx context.Context, userID string) (*domain.Cart, error) {
			return cartWith(userID, line("a", 3, "4.5"), line("b", 1, "0.0001")), nil
		},
	}

	c, rec := newJSONContext(http.MethodGet, "/cart", "", userAlice)
	if err := NewCartHandler(stub).Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	resp := decodeCart(t, rec.Body.Bytes())
	if resp.UserID != "u1" || resp.ItemCount != 2 {
		t.Fatalf("unexpected cart: %+v", resp)
	}
	if resp.Items[0].UnitPrice != "4.50" || resp.Items[0].Subtotal != "13.50" {
		t.Fatalf("unexpected first line: %+v", resp.Items[0])
	}
	if resp.Items[1].UnitPrice != "0.0001" {
		t.Fatalf("fractional price lost precision: %+v", resp.Items[1])
	}
	if resp.Total != "13.5001" {
		t.Fatalf("total = %s, want 13.5001", resp.Total)
	}
}

func TestCartHandler_AddItem(t *testing.T) {
	stub := &stubCartService{
		addFn: func(ctx context.Context, in ports.AddItemInput) (*domain.Cart, error) {
			if in.UserID != "u1" || in.ProductID != "p1" || in.Quantity != 2 || in.UnitPrice.String() != "9.99" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return cartWith(in.UserID, line(in.ProductID, in.Quantity, in.UnitPrice.String())), nil
		},
	}

	c, rec := newJSONContext(http.MethodPost, "/cart", `{"productId":"p1","quantity":2,"unitPrice":9.99}`, userAlice)
	if err := NewCartHandler(stub).AddItem(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp := decodeCart(t, rec.Body.Bytes()); resp.Total != "19.98" {
		t.Fatalf("total = %s, want 19.98", resp.Total)
	}
}

func TestCartHandler_AddItemAcceptsStringPrice(t *testing.T) {
	stub := &stubCartService{
		addFn: func(ctx context.Context, in ports.AddItemInput) (*domain.Cart, error) {
			if in.UnitPrice.String() != "0.1" {
				t.Fatalf("price = %s", in.UnitPrice)
			}
			return cartWith(in.UserID), nil
		},
	}

	c, _ := newJSONContext(http.MethodPost, "/cart", `{"productId":"p1","quantity":1,"unitPrice":"0.10"}`, userAlice)
	if err := NewCartHandler(stub).AddItem(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestCartHandler_AddItemRejectsBadPayload(t *testing.T) {
	stub := &stubCartService{
		addFn: func(ctx context.Context, in ports.AddItemInput) (*domain.Cart, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}

	for _, body := range []string{
		`{"quantity":1,"unitPrice":1}`,
		`{"productId":"p1","quantity":1}`,
		`{"productId":"p1","quantity":1,"unitPrice":"abc"}`,
		`{"productId":"p1","quantity":0,"unitPrice":1}`,
		`{"productId":"p1","quantity":10000,"unitPrice":1}`,
		`{"productId":"p1","quantity":9223372036854775807,"unitPrice":1}`,
	} {
		c, _ := newJSONContext(http.MethodPost, "/cart", body, userAlice)
		if err := NewCartHandler(stub).AddItem(c); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("body %s: expected ErrInvalidInput, got %v", body, err)
		}
	}
}

func TestCartHandler_AddItemPropagatesDomainErrors(t *testing.T) {
	stub := &stubCartService{
		addFn: func(ctx context.Context, in ports.AddItemInput) (*domain.Cart, error) {
			return nil, domain.ErrInvalidQuantity
		},
	}

	c, _ := newJSONContext(http.MethodPost, "/cart", `{"productId":"p1","quantity":9999,"unitPrice":1}`, userAlice)
	if err := NewCartHandler(stub).AddItem(c); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestCartHandler_RemoveItem(t *testing.T) {
	stub := &stubCartService{
		removeFn: func(ctx context.Context, userID, productID string) (*domain.Cart, bool, error) {
			if userID != "u1" || productID != "a" {
				t.Fatalf("unexpected args: %s %s", userID, productID)
			}
			return cartWith(userID, line("b", 1, "2")), true, nil
		},
	}

	c, rec := newJSONContext(http.MethodDelete, "/cart", `{"productId":"a"}`, userAlice)
	if err := NewCartHandler(stub).RemoveItem(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decodeCart(t, rec.Body.Bytes()); len(resp.Items) != 1 || resp.Items[0].ProductID != "b" {
		t.Fatalf("unexpected cart: %+v", resp)
	}
}

func TestCartHandler_RemoveItemByQuery(t *testing.T) {
	stub := &stubCartService{
		removeFn: func(ctx context.Context, userID, productID string) (*domain.Cart, bool, error) {
			if productID != "a" {
				t.Fatalf("unexpected product %s", productID)
			}
			return cartWith(userID), true, nil
		},
	}

	c, _ := newJSONContext(http.MethodDelete, "/cart?productId=a", "", userAlice)
	if err := NewCartHandler(stub).RemoveItem(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestCartHandler_RemoveItemNotFound(t *testing.T) {
	stub := &stubCartService{
		removeFn: func(ctx context.Context, userID, productID string) (*domain.Cart, bool, error) {
			return nil, false, nil
		},
	}

	c, _ := newJSONContext(http.MethodDelete, "/cart", `{"productId":"zzz"}`, userAlice)
	if err := NewCartHandler(stub).RemoveItem(c); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCartHandler_Delete(t *testing.T) {
	deleted := ""
	stub := &stubCartService{
		deleteFn: func(ctx context.Context, userID string) (*domain.Cart, bool, error) {
			deleted = userID
			return cartWith(userID, line("a", 1, "1")), true, nil
		},
	}

	tests := []struct {
		name   string
		caller domain.Identity
		owner  string
		want   error
	}{
		{"own cart", userAlice, "u1", nil},
		{"someone else's cart", userAlice, "u2", domain.ErrForbidden},
		{"admin deletes any cart", adminRoot, "u2", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deleted = ""
			c, rec := newJSONContext(http.MethodDelete, "/cart/"+tt.owner, "", tt.caller)
			c.SetParamNames("userId")
			c.SetParamValues(tt.owner)

			err := NewCartHandler(stub).Delete(c)
			if tt.want != nil {
				if !errors.Is(err, tt.want) {
					t.Fatalf("expected %v, got %v", tt.want, err)
				}
				if deleted != "" {
					t.Fatalf("cart %s must not be deleted", deleted)
				}
				return
			}
			if err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if deleted != tt.owner {
				t.Fatalf("deleted %q, want %q", deleted, tt.owner)
			}
			if resp := decodeCart(t, rec.Body.Bytes()); resp.UserID != tt.owner || len(resp.Items) != 1 {
				t.Fatalf("unexpected snapshot: %+v", resp)
			}
		})
	}
}

func TestCartHandler_DeleteMissing(t *testing.T) {
	stub := &stubCartService{
		deleteFn: func(ctx context.Context, userID string) (*domain.Cart, bool, error) {
			return nil, false, nil
		},
	}

	c, _ := newJSONContext(http.MethodDelete, "/cart/u1", "", userAlice)
	c.SetParamNames("userId")
	c.SetParamValues("u1")
	if err := NewCartHandler(stub).Delete(c); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}
