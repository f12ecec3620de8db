package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/xavierca1/coach-crm/internal/entity"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is returned by use cases whose input failed validation.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func AsValidationErrors(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// InputValidator wraps a validator instance that knows the pipeline vocabulary.
type InputValidator struct {
	validate *validator.Validate
	vocab    entity.StatusVocabulary
	now      func() time.Time
}

func NewInputValidator(vocab entity.StatusVocabulary) *InputValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("known_status", func(fl validator.FieldLevel) bool {
		return vocab.IsKnown(fl.Field().String())
	})
	return &InputValidator{validate: v, vocab: vocab, now: time.Now}
}

type StatusChangeInput struct {
	LeadID         string     `json:"lead_id" validate:"required"`
	Status         string     `json:"status" validate:"required,known_status"`
	FollowUpDate   *time.Time `json:"follow_up_date"`
	ExpectedAmount *float64   `json:"expected_amount" validate:"omitempty,gte=0"`
	Note           string     `json:"note" validate:"max=2000"`
}

func (v *InputValidator) ValidateStatusChange(in StatusChangeInput) ValidationErrors {
	errs := v.structErrors(in)

	if v.vocab.RequiresFollowUp(in.Status) {
		if in.FollowUpDate == nil {
			errs = append(errs, ValidationError{"follow_up_date", "is required for status " + in.Status})
		} else if in.FollowUpDate.Before(startOfDay(v.now())) {
			errs = append(errs, ValidationError{"follow_up_date", "must not be in the past"})
		}
	}

	if strings.EqualFold(in.Status, v.vocab.ExpectedPayment) && (in.ExpectedAmount == nil || *in.ExpectedAmount <= 0) {
		errs = append(errs, ValidationError{"expected_amount", "must be greater than 0 for status " + in.Status})
	}

	return errs
}

type CreateBillInput struct {
	LeadID         string           `json:"lead_id" validate:"required"`
	PackageName    string           `json:"package_name" validate:"required,max=200"`
	Description    string           `json:"description" validate:"max=2000"`
	BaseAmount     float64          `json:"base_amount" validate:"gte=0"`
	Discount       *entity.Discount `json:"discount,omitempty"`
	Taxable        bool             `json:"taxable"`
	TaxRatePercent *float64         `json:"gst_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	GSTNumber      string           `json:"gst_number,omitempty" validate:"omitempty,len=15,alphanum"`
	PlaceOfSupply  string           `json:"place_of_supply,omitempty"`
	PaidAmount     float64          `json:"paid_amount" validate:"gte=0"`
	PaymentMethod  string           `json:"payment_method,omitempty"`
	Comments       string           `json:"payment_comments,omitempty" validate:"max=2000"`
	DueDate        time.Time        `json:"due_date" validate:"required"`
	FollowUpDate   *time.Time       `json:"follow_up_date,omitempty"`
}

func (v *InputValidator) ValidateBill(in CreateBillInput) ValidationErrors {
	errs := v.structErrors(in)
	if in.Discount != nil && in.Discount.Type == entity.DiscountPercentage && in.Discount.Value > 100 {
		errs = append(errs, ValidationError{"discount.value", "must not exceed 100 for a percentage discount"})
	}
	return errs
}

// ValidateBillPreview checks the arithmetic inputs only.
func (v *InputValidator) ValidateBillPreview(in BillInput) ValidationErrors {
	errs := v.structErrors(in)
	if in.Discount != nil && in.Discount.Type == entity.DiscountPercentage && in.Discount.Value > 100 {
		errs = append(errs, ValidationError{"discount.value", "must not exceed 100 for a percentage discount"})
	}
	return errs
}

type AssignLeadInput struct {
	LeadID     string `json:"lead_id" validate:"required"`
	AssignedTo string `json:"assigned_to" validate:"required"`
}

func (v *InputValidator) ValidateAssignment(in AssignLeadInput) ValidationErrors {
	return v.structErrors(in)
}

func (v *InputValidator) structErrors(in any) ValidationErrors {
	err := v.validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{{Field: "input", Message: err.Error()}}
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fieldPath(fe), Message: message(fe)})
	}
	return out
}

// fieldPath drops the struct name from the namespace: "CreateBillInput.discount.value" -> "discount.value".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "known_status":
		return fmt.Sprintf("unknown status %q", fe.Value())
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "max":
		return "must not exceed " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "len":
		return "must have exactly " + fe.Param() + " characters"
	case "alphanum":
		return "must be alphanumeric"
	}
	return "is invalid"
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
