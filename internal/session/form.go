package session

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"habitat_payments/internal/domain/entities"
)

// Form holds what the payer typed. Card fields are only checked locally; the
// card itself is entered on the gateway's hosted page.
type Form struct {
	Channel        entities.Channel
	Phone          string
	CardNumber     string
	CardHolder     string
	CardExpiry     string
	CardCVV        string
	AcceptedPolicy bool
}

const (
	FieldChannel        = "channel"
	FieldPhone          = "phone"
	FieldCardNumber     = "card_number"
	FieldCardHolder     = "card_holder"
	FieldCardExpiry     = "card_expiry"
	FieldCardCVV        = "card_cvv"
	FieldAcceptedPolicy = "accepted_policy"
)

// FieldErrors maps a form field to the message shown next to it.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "invalid payment form: " + strings.Join(parts, "; ")
}

func (f FieldErrors) clone() FieldErrors {
	if f == nil {
		return nil
	}
	out := make(FieldErrors, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

type cardFields struct {
	Number string `json:"card_number" validate:"required,len=16,number"`
	Holder string `json:"card_holder" validate:"required"`
	Expiry string `json:"card_expiry" validate:"required,card_expiry"`
	CVV    string `json:"card_cvv" validate:"required,len=3,number"`
}

var (
	cardExpiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)
	validate          = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("card_expiry", func(fl validator.FieldLevel) bool {
		return cardExpiryPattern.MatchString(fl.Field().String())
	})
	return v
}

// check validates the form for its channel and returns the normalized phone
// for mobile money channels.
func (f Form) check() (string, FieldErrors) {
	errs := FieldErrors{}
	phone := ""

	switch {
	case !f.Channel.IsValid():
		errs[FieldChannel] = "select a payment method"
	case f.Channel.RequiresPhone():
		normalized, err := entities.NormalizePhone(f.Phone)
		if err != nil {
			errs[FieldPhone] = "enter a 9-digit mobile number"
		} else {
			phone = normalized
		}
	default:
		for field, msg := range checkCard(f) {
			errs[field] = msg
		}
	}

	if !f.AcceptedPolicy {
		errs[FieldAcceptedPolicy] = "accept the payment policy to continue"
	}

	if len(errs) == 0 {
		return phone, nil
	}
	return "", errs
}

func checkCard(f Form) FieldErrors {
	card := cardFields{
		Number: stripSpaces(f.CardNumber),
		Holder: strings.TrimSpace(f.CardHolder),
		Expiry: strings.TrimSpace(f.CardExpiry),
		CVV:    strings.TrimSpace(f.CardCVV),
	}
	err := validate.Struct(card)
	if err == nil {
		return nil
	}
	errs := FieldErrors{}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs[FieldCardNumber] = "is invalid"
		return errs
	}
	for _, fe := range verrs {
		errs[fe.Field()] = cardMessage(fe)
	}
	return errs
}

func cardMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "len":
		return fmt.Sprintf("must be %s digits", fe.Param())
	case "number":
		return "must contain digits only"
	case "card_expiry":
		return "must be MM/YY"
	}
	return "is invalid"
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, s)
}
