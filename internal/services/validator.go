package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/events"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/models"
	"github.com/go-playground/validator/v10"
)

const minCardDigits = 13

var (
	emailRegex  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	zipRegex    = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	cvvRegex    = regexp.MustCompile(`^\d{3,4}$`)
	expiryRegex = regexp.MustCompile(`^(\d{1,2})/(\d{2})$`)
)

var fieldRules = map[string]string{
	models.FieldEmail:         "required,storefront_email",
	models.FieldFirstName:     "required",
	models.FieldLastName:      "required",
	models.FieldPhone:         "",
	models.FieldAddress:       "required",
	models.FieldCity:          "required",
	models.FieldState:         "required",
	models.FieldZip:           "required,zip",
	models.FieldPaymentMethod: "required,oneof=card paypal",
	models.FieldCardName:      "required",
	models.FieldCardNumber:    "required,luhn",
	models.FieldExpiry:        "required,expiry",
	models.FieldCVV:           "required,cvv",
}

var tagReasons = map[string]string{
	"required":         "This field is required",
	"storefront_email": "Please enter a valid email address",
	"zip":              "Please enter a valid ZIP code",
	"luhn":             "Please enter a valid card number",
	"expiry":           "Please enter a valid expiry date (MM/YY)",
	"cvv":              "Please enter a valid CVV",
	"oneof":            "Please select a payment method",
}

var (
	contactFields = []string{
		models.FieldEmail, models.FieldFirstName, models.FieldLastName, models.FieldPhone,
		models.FieldAddress, models.FieldCity, models.FieldState, models.FieldZip,
		models.FieldPaymentMethod,
	}
	cardFields = []string{models.FieldCardName, models.FieldCardNumber, models.FieldExpiry, models.FieldCVV}
)

// FieldRules holds the compiled checkout rules. It is safe to share between sessions.
type FieldRules struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewFieldRules builds the rule set; now decides which expiry dates are still valid.
func NewFieldRules(now func() time.Time) *FieldRules {

	if now == nil {
		now = time.Now
	}

	r := &FieldRules{validate: validator.New(), now: now}

	r.validate.RegisterValidation("storefront_email", func(fl validator.FieldLevel) bool {
		return emailRegex.MatchString(fl.Field().String())
	})
	r.validate.RegisterValidation("zip", func(fl validator.FieldLevel) bool {
		return zipRegex.MatchString(fl.Field().String())
	})
	r.validate.RegisterValidation("cvv", func(fl validator.FieldLevel) bool {
		return cvvRegex.MatchString(fl.Field().String())
	})
	r.validate.RegisterValidation("luhn", func(fl validator.FieldLevel) bool {
		return ValidCardNumber(fl.Field().String())
	})
	r.validate.RegisterValidation("expiry", func(fl validator.FieldLevel) bool {
		return ValidExpiry(fl.Field().String(), r.now())
	})

	return r
}

func KnownField(field string) bool {
	_, ok := fieldRules[field]
	return ok
}

// Check trims value and applies the rules for field. Fields without rules always pass.
func (r *FieldRules) Check(field, value string) models.FieldResult {

	rule := fieldRules[field]
	if rule == "" {
		return models.FieldResult{Field: field, OK: true}
	}

	err := r.validate.Var(strings.TrimSpace(value), rule)
	if err == nil {
		return models.FieldResult{Field: field, OK: true}
	}

	reason := "Invalid value"
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		if msg, ok := tagReasons[verrs[0].Tag()]; ok {
			reason = msg
		}
	}

	return models.FieldResult{Field: field, OK: false, Reason: reason}
}

// CheckForm evaluates every contact field, plus card fields when paying by card.
func (r *FieldRules) CheckForm(form models.CheckoutForm) models.FormResult {

	fields := contactFields
	if strings.TrimSpace(form.PaymentMethod) == string(models.PaymentMethodCard) {
		fields = append(append([]string{}, contactFields...), cardFields...)
	}

	result := models.FormResult{Valid: true, Fields: make([]models.FieldResult, 0, len(fields))}

	for _, field := range fields {
		fr := r.Check(field, form.Value(field))
		if !fr.OK {
			result.Valid = false
		}

		result.Fields = append(result.Fields, fr)
	}

	return result
}

// ValidCardNumber strips whitespace and requires at least 13 digits passing the Luhn checksum.
func ValidCardNumber(raw string) bool {

	number := strings.Join(strings.Fields(raw), "")
	if len(number) < minCardDigits {
		return false
	}

	sum := 0
	double := false

	for i := len(number) - 1; i >= 0; i-- {
		ch := number[i]
		if ch < '0' || ch > '9' {
			return false
		}

		digit := int(ch - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}

		sum += digit
		double = !double
	}

	return sum%10 == 0
}

// ValidExpiry accepts MM/YY with a month from 1 to 12 that is not before now's month.
func ValidExpiry(raw string, now time.Time) bool {

	m := expiryRegex.FindStringSubmatch(raw)
	if m == nil {
		return false
	}

	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])

	if month < 1 || month > 12 {
		return false
	}

	year += now.Year() / 100 * 100

	if year != now.Year() {
		return year > now.Year()
	}

	return month >= int(now.Month())
}

// CheckoutValidator is the per-session face of FieldRules; every check is announced on the bus.
type CheckoutValidator struct {
	rules     *FieldRules
	sessionID string
	bus       *events.Bus
}

func NewCheckoutValidator(sessionID string, rules *FieldRules, bus *events.Bus) *CheckoutValidator {
	return &CheckoutValidator{rules: rules, sessionID: sessionID, bus: bus}
}

func (v *CheckoutValidator) ValidateField(ctx context.Context, field, value string) models.FieldResult {

	result := v.rules.Check(field, value)

	v.bus.Publish(ctx, events.Event{
		Type:      events.ValidationResult,
		SessionID: v.sessionID,
		Payload:   events.ValidationResultPayload{Results: []models.FieldResult{result}},
	})

	return result
}

func (v *CheckoutValidator) ValidateForm(ctx context.Context, form models.CheckoutForm) models.FormResult {

	result := v.rules.CheckForm(form)

	v.bus.Publish(ctx, events.Event{
		Type:      events.ValidationResult,
		SessionID: v.sessionID,
		Payload:   events.ValidationResultPayload{Results: result.Fields},
	})

	return result
}
