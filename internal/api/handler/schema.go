package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopfront/store-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// --- Auth ---

type registerRequest struct {
	Handle         string `json:"handle"         validate:"required,max=64"`
	Secret         string `json:"secret"         validate:"required,min=8,max=72"`
	ContactAddress string `json:"contactAddress" validate:"required,email"`
	Role           string `json:"role"           validate:"omitempty,oneof=user admin"`
}

type loginRequest struct {
	Handle string `json:"handle" validate:"required"`
	Secret string `json:"secret" validate:"required"`
}

type userResponse struct {
	ID             string    `json:"id"`
	Handle         string    `json:"handle"`
	ContactAddress string    `json:"contactAddress"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"createdAt"`
}

type authResponse struct {
	Token string        `json:"token,omitempty"`
	User  *userResponse `json:"user,omitempty"`
}

type profileResponse struct {
	UserID string        `json:"userId"`
	Role   string        `json:"role"`
	User   *userResponse `json:"user,omitempty"`
}

type adminDashboardResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// --- Cart ---

type addItemRequest struct {
	ProductID string           `json:"productId" validate:"required"`
	// max mirrors domain.MaxLineQuantity.
	Quantity  int              `json:"quantity" validate:"min=1,max=9999"`
	UnitPrice *decimal.Decimal `json:"unitPrice" validate:"required"`
}

type removeItemRequest struct {
	ProductID string `json:"productId" query:"productId" validate:"required"`
}

type lineItemResponse struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	Subtotal  string `json:"subtotal"`
}

type cartResponse struct {
	UserID    string             `json:"userId"`
	Items     []lineItemResponse `json:"items"`
	ItemCount int                `json:"itemCount"`
	Total     string             `json:"total"`
	UpdatedAt *time.Time         `json:"updatedAt,omitempty"`
}

type checkoutResponse struct {
	OrderRef        string `json:"orderRef"`
	Status          string `json:"status"`
	Total           string `json:"total"`
	ItemCount       int    `json:"itemCount"`
	NotifiedAddress string `json:"notifiedAddress"`
}

func toUserResponse(u *domain.User) *userResponse {
	if u == nil {
		return nil
	}
	return &userResponse{
		ID:             u.ID,
		Handle:         u.Handle,
		ContactAddress: u.Email,
		Role:           string(u.Role),
		CreatedAt:      u.CreatedAt,
	}
}

func toCartResponse(c *domain.Cart) cartResponse {
	resp := cartResponse{
		UserID: c.UserID,
		Items:  make([]lineItemResponse, 0, len(c.Items)),
		Total:  money(c.Total()),
	}
	for _, li := range c.Items {
		resp.Items = append(resp.Items, lineItemResponse{
			ProductID: li.ProductID,
			Quantity:  li.Quantity,
			UnitPrice: money(li.UnitPrice),
			Subtotal:  money(li.Subtotal()),
		})
	}
	resp.ItemCount = len(resp.Items)
	if !c.UpdatedAt.IsZero() {
		updated := c.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}

func toCheckoutResponse(r *domain.CheckoutResult) checkoutResponse {
	return checkoutResponse{
		OrderRef:        r.OrderRef,
		Status:          string(r.Status),
		Total:           money(r.Total),
		ItemCount:       r.ItemCount,
		NotifiedAddress: r.NotifiedAddress,
	}
}

// money renders at least two decimal places and never rounds away precision.
func money(d decimal.Decimal) string {
	if d.Equal(d.Round(2)) {
		return d.StringFixed(2)
	}
	return d.String()
}
