package models

import "strings"

// Checkout form field names, as posted by the storefront.
const (
	FieldEmail         = "email"
	FieldFirstName     = "firstName"
	FieldLastName      = "lastName"
	FieldPhone         = "phone"
	FieldAddress       = "address"
	FieldCity          = "city"
	FieldState         = "state"
	FieldZip           = "zip"
	FieldPaymentMethod = "paymentMethod"
	FieldCardName      = "cardName"
	FieldCardNumber    = "cardNumber"
	FieldExpiry        = "expiry"
	FieldCVV           = "cvv"
)

type CheckoutForm struct {
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	Zip           string `json:"zip"`
	PaymentMethod string `json:"paymentMethod"`
	CardName      string `json:"cardName,omitempty"`
	CardNumber    string `json:"cardNumber,omitempty"`
	Expiry        string `json:"expiry,omitempty"`
	CVV           string `json:"cvv,omitempty"`
}

// Value returns the raw input for a field name, or "" for unknown names.
func (f CheckoutForm) Value(field string) string {
	switch field {
	case FieldEmail:
		return f.Email
	case FieldFirstName:
		return f.FirstName
	case FieldLastName:
		return f.LastName
	case FieldPhone:
		return f.Phone
	case FieldAddress:
		return f.Address
	case FieldCity:
		return f.City
	case FieldState:
		return f.State
	case FieldZip:
		return f.Zip
	case FieldPaymentMethod:
		return f.PaymentMethod
	case FieldCardName:
		return f.CardName
	case FieldCardNumber:
		return f.CardNumber
	case FieldExpiry:
		return f.Expiry
	case FieldCVV:
		return f.CVV
	}

	return ""
}

func (f CheckoutForm) Contact() ContactInfo {
	return ContactInfo{
		Email:     strings.TrimSpace(f.Email),
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Phone:     strings.TrimSpace(f.Phone),
		Address:   strings.TrimSpace(f.Address),
		City:      strings.TrimSpace(f.City),
		State:     strings.TrimSpace(f.State),
		Zip:       strings.TrimSpace(f.Zip),
	}
}

type FieldResult struct {
	Field  string `json:"field"`
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

type FormResult struct {
	Valid  bool          `json:"valid"`
	Fields []FieldResult `json:"fields,omitempty"`
}

// Invalid lists only the offending fields.
func (r FormResult) Invalid() []FieldResult {
	var out []FieldResult
	for _, f := range r.Fields {
		if !f.OK {
			out = append(out, f)
		}
	}

	return out
}

type ValidateFieldRequest struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value"`
}

type CheckoutSummary struct {
	Lines  []CartLineItem `json:"lines"`
	Promo  *PromoCode     `json:"promo,omitempty"`
	Totals TotalsView     `json:"totals"`
}
