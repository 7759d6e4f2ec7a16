package checkout

import (
	"github.com/freshcart/storefront/internal/shopping"
	"github.com/freshcart/storefront/pkg/config"
	"github.com/shopspring/decimal"
)

// Policy holds the delivery surcharge rules applied at checkout.
type Policy struct {
	DeliveryFee           decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
	Currency              string
}

// DefaultPolicy charges 40.00 for deliveries under 500.00.
func DefaultPolicy() Policy {
	return Policy{
		DeliveryFee:           decimal.RequireFromString("40.00"),
		FreeDeliveryThreshold: decimal.RequireFromString("500.00"),
		Currency:              "INR",
	}
}

// PolicyFromConfig builds the policy from checkout settings.
func PolicyFromConfig(cfg config.CheckoutConfig) Policy {
	return Policy{
		DeliveryFee:           cfg.DeliveryFee,
		FreeDeliveryThreshold: cfg.FreeDeliveryThreshold,
		Currency:              cfg.CurrencyCode,
	}
}

// Quote is the priced summary of a cart.
type Quote struct {
	Currency             string          `json:"currency"`
	Subtotal             decimal.Decimal `json:"-"`
	DeliveryFee          decimal.Decimal `json:"-"`
	Total                decimal.Decimal `json:"-"`
	FreeDelivery         bool            `json:"free_delivery"`
	AmountToFreeDelivery decimal.Decimal `json:"-"`
	Units                int             `json:"units"`
	Lines                int             `json:"lines"`
	Formatted            Formatted       `json:"formatted"`
}

// Formatted renders every amount with two fractional digits.
type Formatted struct {
	Subtotal             string `json:"subtotal"`
	DeliveryFee          string `json:"delivery_fee"`
	Total                string `json:"total"`
	AmountToFreeDelivery string `json:"amount_to_free_delivery"`
}

// Price quotes a subtotal. The fee applies strictly below the threshold and
// an empty order is never charged.
func (p Policy) Price(subtotal decimal.Decimal, units, lines int) Quote {
	fee := decimal.Zero
	remaining := decimal.Zero
	free := true
	if units > 0 && subtotal.LessThan(p.FreeDeliveryThreshold) {
		fee = p.DeliveryFee
		remaining = p.FreeDeliveryThreshold.Sub(subtotal)
		free = false
	}
	total := subtotal.Add(fee)

	return Quote{
		Currency:             p.Currency,
		Subtotal:             subtotal,
		DeliveryFee:          fee,
		Total:                total,
		FreeDelivery:         free,
		AmountToFreeDelivery: remaining,
		Units:                units,
		Lines:                lines,
		Formatted: Formatted{
			Subtotal:             FormatAmount(subtotal),
			DeliveryFee:          FormatAmount(fee),
			Total:                FormatAmount(total),
			AmountToFreeDelivery: FormatAmount(remaining),
		},
	}
}

// QuoteCart prices the engine's current cart.
func (p Policy) QuoteCart(engine *shopping.Engine) Quote {
	return p.QuoteSnapshot(engine.Snapshot())
}

// QuoteSnapshot prices a cart snapshot, so callers rendering the lines quote
// exactly what they show.
func (p Policy) QuoteSnapshot(snap shopping.CartSnapshot) Quote {
	return p.Price(snap.Total, snap.Count, snap.Unique)
}

// FormatAmount renders amount with exactly two fractional digits.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
