package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/coach-crm/internal/entity"
)

const (
	BillStatusGenerated = "Generated"
	DefaultCurrency     = "INR"
)

type CreateBillUseCase struct {
	Leads          entity.LeadRepositoryInterface
	Bills          entity.BillRepositoryInterface
	Scopes         *ScopeResolver
	Validator      *InputValidator
	TaxRatePercent float64
	Now            func() time.Time
}

func NewCreateBillUseCase(
	leads entity.LeadRepositoryInterface,
	bills entity.BillRepositoryInterface,
	scopes *ScopeResolver,
	validator *InputValidator,
	taxRatePercent float64,
) *CreateBillUseCase {
	return &CreateBillUseCase{
		Leads:          leads,
		Bills:          bills,
		Scopes:         scopes,
		Validator:      validator,
		TaxRatePercent: taxRatePercent,
		Now:            time.Now,
	}
}

// Preview computes a breakdown without persisting. A taxable input without a rate uses the
// configured rate.
func (uc *CreateBillUseCase) Preview(in BillInput) (BillBreakdown, error) {
	if in.Taxable && in.TaxRatePercent == 0 {
		in.TaxRatePercent = uc.TaxRatePercent
	}
	if errs := uc.Validator.ValidateBillPreview(in); len(errs) > 0 {
		return BillBreakdown{}, errs
	}
	return ComputeBill(in), nil
}

func (uc *CreateBillUseCase) Execute(ctx context.Context, actor Actor, in CreateBillInput) (*entity.Bill, error) {
	if errs := uc.Validator.ValidateBill(in); len(errs) > 0 {
		return nil, errs
	}

	lead, err := uc.Leads.FindByID(ctx, in.LeadID)
	if err != nil {
		return nil, &TechnicalError{Code: CodeFetchFailed, Message: "failed to load lead", Retryable: true, Err: err}
	}
	if lead == nil {
		return nil, &DomainError{Code: CodeLeadNotFound, Message: "lead not found: " + in.LeadID}
	}
	scope, err := uc.Scopes.Resolve(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := requireVisible(scope, lead.ID); err != nil {
		return nil, err
	}

	rate := uc.TaxRatePercent
	if in.TaxRatePercent != nil {
		rate = *in.TaxRatePercent
	}
	breakdown := ComputeBill(BillInput{
		BaseAmount:     in.BaseAmount,
		Discount:       in.Discount,
		Taxable:        in.Taxable,
		TaxRatePercent: rate,
		PaidAmount:     in.PaidAmount,
	})

	now := uc.Now()
	bill := &entity.Bill{
		ID:                  uuid.New().String(),
		BillNumber:          NewBillNumber(now),
		LeadID:              lead.ID,
		PackageName:         in.PackageName,
		Description:         in.Description,
		BaseAmount:          in.BaseAmount,
		Discount:            in.Discount,
		Taxable:             in.Taxable,
		TaxRatePercent:      rate,
		GSTNumber:           in.GSTNumber,
		PlaceOfSupply:       in.PlaceOfSupply,
		DiscountAmount:      breakdown.DiscountAmount,
		AmountAfterDiscount: breakdown.AmountAfterDiscount,
		GSTAmount:           breakdown.TaxAmount,
		TotalAmount:         breakdown.Total,
		PaidAmount:          breakdown.PaidAmount,
		Balance:             breakdown.Balance,
		PaymentStatus:       breakdown.PaymentStatus,
		PaymentMethod:       in.PaymentMethod,
		Comments:            in.Comments,
		Currency:            DefaultCurrency,
		Status:              BillStatusGenerated,
		DueDate:             in.DueDate,
		FollowUpDate:        in.FollowUpDate,
		CreatedAt:           now,
	}

	err = uc.Bills.Create(ctx, bill)
	if errors.Is(err, entity.ErrDuplicateBillNumber) {
		logrus.WithField("bill_number", bill.BillNumber).Warn("⚠️ [BILL] bill number taken, retrying once")
		bill.BillNumber = NewBillNumber(uc.Now())
		err = uc.Bills.Create(ctx, bill)
	}
	if err != nil {
		return nil, &TechnicalError{Code: CodePersistFailed, Message: "failed to create bill", Retryable: true, Err: err}
	}

	logrus.WithFields(logrus.Fields{"bill_number": bill.BillNumber, "lead_id": lead.ID, "total": bill.TotalAmount}).
		Info("🧾 [BILL] bill created")
	return bill, nil
}

// ForLead lists the bills raised for a lead the actor can see.
func (uc *CreateBillUseCase) ForLead(ctx context.Context, actor Actor, leadID string) ([]entity.Bill, error) {
	scope, err := uc.Scopes.Resolve(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := requireVisible(scope, leadID); err != nil {
		return nil, err
	}

	bills, err := uc.Bills.FindByLeadID(ctx, leadID)
	if err != nil {
		return nil, &TechnicalError{Code: CodeFetchFailed, Message: "failed to load bills", Retryable: true, Err: err}
	}
	if bills == nil {
		bills = []entity.Bill{}
	}
	return bills, nil
}

// NewBillNumber returns BILL-<last 8 digits of the unix millis>-<4 random upper-case characters>.
func NewBillNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:4]
	return fmt.Sprintf("BILL-%08d-%s", now.UnixMilli()%100_000_000, suffix)
}
