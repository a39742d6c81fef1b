package domain

import "github.com/shopspring/decimal"

// CheckoutStatus is the outcome reported to the caller of a checkout.
type CheckoutStatus string

const CheckoutCompleted CheckoutStatus = "completed"

// CheckoutResult exists only for the duration of one checkout call.
type CheckoutResult struct {
	OrderRef        string          `json:"orderRef"`
	Total           decimal.Decimal `json:"total"`
	ItemCount       int             `json:"itemCount"`
	NotifiedAddress string          `json:"notifiedAddress"`
	Status          CheckoutStatus  `json:"status"`
}

// Notification is the message handed to a Notifier.
type Notification struct {
	To       string
	Subject  string
	Body     string
	OrderRef string
	Total    decimal.Decimal
}
