// internal/domain/checkout/form.go
package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// PaymentMethod is how the customer pays
type PaymentMethod string

const (
	MethodCreditCard     PaymentMethod = "credit-card"
	MethodPayPal         PaymentMethod = "paypal"
	MethodOther          PaymentMethod = "other"
	MethodCashOnDelivery PaymentMethod = "cash-on-delivery"
)

// Valid reports whether m is a supported payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCreditCard, MethodPayPal, MethodOther, MethodCashOnDelivery:
		return true
	}
	return false
}

// CollectsOnline reports whether the method is charged at submission
func (m PaymentMethod) CollectsOnline() bool {
	return m != MethodCashOnDelivery
}

// Customer is the contact and shipping form
type Customer struct {
	FullName    string `json:"fullName" validate:"required,min=2,personname"`
	Email       string `json:"email" validate:"required,email"`
	CountryCode string `json:"countryCode" validate:"required,dialcode"`
	Phone       string `json:"phone" validate:"required"`
	Address     string `json:"address" validate:"required,min=5,alnumspace"`
	City        string `json:"city" validate:"required,min=2"`
	State       string `json:"state" validate:"required,min=2,letterspace"`
	PostalCode  string `json:"postalCode" validate:"required,min=3,digits"`
	Country     string `json:"country" validate:"required,oneof=morocco uae uk france spain italy china"`
}

// PaymentDetails holds the fields of the selected payment method
type PaymentDetails struct {
	Method     PaymentMethod `json:"method" validate:"required,oneof=credit-card paypal other cash-on-delivery"`
	CardNumber string        `json:"cardNumber,omitempty"`
	CardExpiry string        `json:"cardExpiry,omitempty"`
	CardCVC    string        `json:"cardCvc,omitempty"`
	CardName   string        `json:"cardName,omitempty"`
	Wallet     string        `json:"wallet,omitempty"`
}

var (
	personNamePattern  = regexp.MustCompile(`^[A-Za-zÀ-ÿ\s]+$`)
	letterSpacePattern = regexp.MustCompile(`^[A-Za-z\s]+$`)
	alnumSpacePattern  = regexp.MustCompile(`^[A-Za-z0-9\s]+$`)
	digitsPattern      = regexp.MustCompile(`^\d+$`)
	cardNumberPattern  = regexp.MustCompile(`^\d{13,19}$`)
	expiryPattern      = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvcPattern         = regexp.MustCompile(`^\d{3,4}$`)
)

var fieldLabels = map[string]string{
	"fullName":    "Full name",
	"email":       "Email",
	"countryCode": "Country code",
	"phone":       "Phone number",
	"address":     "Address",
	"city":        "City",
	"state":       "State/Province",
	"postalCode":  "Postal code",
	"country":     "Country",
	"method":      "Payment method",
	"cardNumber":  "Card number",
	"cardExpiry":  "Expiry date",
	"cardCvc":     "CVC",
	"cardName":    "Name on card",
	"wallet":      "Wallet",
}

// Validator checks checkout forms
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the checkout form rules registered
func NewValidator() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "personname", matches(personNamePattern))
	mustRegister(v, "letterspace", matches(letterSpacePattern))
	mustRegister(v, "alnumspace", matches(alnumSpacePattern))
	mustRegister(v, "digits", matches(digitsPattern))
	mustRegister(v, "dialcode", func(fl validator.FieldLevel) bool {
		_, ok := LookupDialCode(fl.Field().String())
		return ok
	})

	v.RegisterStructValidation(customerRules, Customer{})
	v.RegisterStructValidation(paymentRules, PaymentDetails{})

	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func customerRules(sl validator.StructLevel) {
	c := sl.Current().Interface().(Customer)
	if c.Phone == "" {
		return
	}
	dc, ok := LookupDialCode(c.CountryCode)
	if !ok {
		return
	}
	if !ValidatePhoneNumber(c.Phone, c.CountryCode) {
		sl.ReportError(c.Phone, "phone", "Phone", "phone", fmt.Sprintf("%d", dc.Digits))
	}
}

func paymentRules(sl validator.StructLevel) {
	p := sl.Current().Interface().(PaymentDetails)
	switch p.Method {
	case MethodCreditCard:
		number := strings.ReplaceAll(p.CardNumber, " ", "")
		if !cardNumberPattern.MatchString(number) {
			sl.ReportError(p.CardNumber, "cardNumber", "CardNumber", "cardnumber", "")
		}
		if !expiryPattern.MatchString(strings.TrimSpace(p.CardExpiry)) {
			sl.ReportError(p.CardExpiry, "cardExpiry", "CardExpiry", "expiry", "")
		}
		if !cvcPattern.MatchString(strings.TrimSpace(p.CardCVC)) {
			sl.ReportError(p.CardCVC, "cardCvc", "CardCVC", "cvc", "")
		}
		if strings.TrimSpace(p.CardName) == "" {
			sl.ReportError(p.CardName, "cardName", "CardName", "required", "")
		}
	case MethodOther:
		if p.Wallet != "apple-pay" && p.Wallet != "google-pay" {
			sl.ReportError(p.Wallet, "wallet", "Wallet", "wallet", "")
		}
	}
}

// ValidateCustomer returns a *ValidationError wrapping ErrInvalidCustomer when c is invalid
func (v *Validator) ValidateCustomer(c Customer) error {
	return v.check(c, ErrInvalidCustomer)
}

// ValidatePayment returns a *ValidationError wrapping ErrInvalidPayment when p is invalid
func (v *Validator) ValidatePayment(p PaymentDetails) error {
	return v.check(p, ErrInvalidPayment)
}

func (v *Validator) check(form any, kind error) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", kind, err)
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = message(fe)
	}
	return &ValidationError{Kind: kind, Fields: fields}
}

func message(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "personname", "letterspace":
		return label + " can only contain letters and spaces"
	case "alnumspace":
		return label + " can only contain letters, numbers and spaces"
	case "digits":
		return label + " must contain only digits"
	case "email":
		return "Email must be in format: something@something.something"
	case "dialcode":
		return "Country code is not supported"
	case "oneof":
		return label + " is required"
	case "phone":
		return fmt.Sprintf("Phone number must have %s digits after the country code", fe.Param())
	case "cardnumber":
		return "Card number must be 13 to 19 digits"
	case "expiry":
		return "Expiry date must be in MM/YY format"
	case "cvc":
		return "CVC must be 3 or 4 digits"
	case "wallet":
		return "Choose Apple Pay or Google Pay"
	}
	return label + " is invalid"
}
