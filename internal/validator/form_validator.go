package validator

import (
	"strings"

	"quickcart/internal/domain/model"
	"quickcart/internal/usecase"
)

const (
	msgRequired     = "This field is required"
	msgInvalidEmail = "Please enter a valid email address"
)

type formValidator struct{}

func NewCheckoutValidator() usecase.CheckoutValidator {
	return &formValidator{}
}

func NewContactValidator() usecase.ContactValidator {
	return &formValidator{}
}

// 配送先は全項目必須、請求先は同じでなければ必須
func (v *formValidator) ValidateCheckout(in usecase.CheckoutInput) map[string]string {
	fields := map[string]string{}

	validateAddress(fields, "", in.Shipping, true)
	if !in.SameAsShipping {
		validateAddress(fields, "billing_", in.Billing, false)
	}

	return orNil(fields)
}

func (v *formValidator) ValidateContact(in usecase.ContactInput) map[string]string {
	fields := map[string]string{}

	required(fields, "name", in.Name)
	required(fields, "message", in.Message)
	email(fields, "email", in.Email, true)

	return orNil(fields)
}

func validateAddress(fields map[string]string, prefix string, a model.Address, emailRequired bool) {
	required(fields, prefix+"full_name", a.FullName)
	required(fields, prefix+"address", a.Address)
	required(fields, prefix+"city", a.City)
	required(fields, prefix+"zip_code", a.ZipCode)
	email(fields, prefix+"email", a.Email, emailRequired)
}

func required(fields map[string]string, key string, value string) {
	if strings.TrimSpace(value) == "" {
		fields[key] = msgRequired
	}
}

// 空のときは必須チェックだけ
func email(fields map[string]string, key string, value string, mustHave bool) {
	if strings.TrimSpace(value) == "" {
		if mustHave {
			fields[key] = msgRequired
		}
		return
	}
	if !isEmailLike(value) {
		fields[key] = msgInvalidEmail
	}
}
