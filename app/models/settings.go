package models

// Settings is the singleton business configuration edited from the admin console
type Settings struct {
	BusinessName  string   `json:"business_name"`
	Currency      string   `json:"currency"`
	TaxRate       float64  `json:"tax_rate"` // Fraction, 0.07 for 7%
	LowStockLevel int      `json:"low_stock_level"`
	AllowCrypto   bool     `json:"allow_crypto"`
	Currencies    []string `json:"currencies"`
}

// AcceptsPayment reports whether the payment method may be used at checkout
func (s Settings) AcceptsPayment(m PaymentMethod) bool {
	if m == PaymentCrypto {
		return s.AllowCrypto
	}
	return m.Valid()
}
