package procurement

import (
	"time"

	"github.com/cafe/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how a vendor was paid
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodUPI          PaymentMethod = "upi"
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodCard         PaymentMethod = "card"
)

// IsValid returns true if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodUPI, PaymentMethodCheque, PaymentMethodCard:
		return true
	}
	return false
}

// PaymentStatus of a vendor payment. There is no draft state.
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
)

// Business rule codes raised by payment validation
const (
	CodePaymentExceedsOutstanding = "PAYMENT_EXCEEDS_OUTSTANDING"
	CodePaymentExceedsGRNValue    = "PAYMENT_EXCEEDS_GRN_VALUE"
)

// Payment is an append-only vendor payment against a purchase order
type Payment struct {
	shared.BaseEntity
	PaymentNumber        string
	PurchaseOrderID      uuid.UUID
	VendorID             uuid.UUID
	PaymentDate          time.Time
	Amount               decimal.Decimal
	Method               PaymentMethod
	Status               PaymentStatus
	TransactionReference string
	Remarks              string
}

// NewPayment creates a completed payment for the order
func NewPayment(paymentNumber string, po *PurchaseOrder, amount decimal.Decimal, method PaymentMethod, paymentDate time.Time, reference, remarks string) (*Payment, error) {
	if paymentNumber == "" {
		return nil, shared.NewValidationError("payment_number", "Payment number is required")
	}
	if po == nil {
		return nil, shared.NewValidationError("po_id", "Purchase order is required")
	}
	if err := ValidatePaymentAmount(amount); err != nil {
		return nil, err
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError("payment_method", "Invalid payment method")
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}
	return &Payment{
		BaseEntity:           shared.NewBaseEntity(),
		PaymentNumber:        paymentNumber,
		PurchaseOrderID:      po.ID,
		VendorID:             po.VendorID,
		PaymentDate:          paymentDate,
		Amount:               amount,
		Method:               method,
		Status:               PaymentStatusCompleted,
		TransactionReference: reference,
		Remarks:              remarks,
	}, nil
}

// ValidatePaymentAmount rejects non-positive amounts
func ValidatePaymentAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("amount", "Payment amount must be greater than zero")
	}
	return nil
}

// CheckPaymentBounds enforces both payment ceilings for a requested amount:
// the contracted outstanding amount, and when any GRN exists, the value of
// goods actually received. grnValue is nil when the order has no GRN.
func CheckPaymentBounds(po *PurchaseOrder, amount decimal.Decimal, grnValue *decimal.Decimal) error {
	receivable := po.ReceivableAmount()
	outstanding := receivable.Sub(po.TotalPaid)
	if amount.GreaterThan(outstanding) {
		return shared.NewBusinessRuleError(CodePaymentExceedsOutstanding,
			"Payment amount exceeds the outstanding amount of the purchase order",
			map[string]any{
				"po_number":          po.PONumber,
				"receivable_amount":  receivable.StringFixed(2),
				"total_paid":         po.TotalPaid.StringFixed(2),
				"outstanding_amount": outstanding.StringFixed(2),
				"requested_amount":   amount.StringFixed(2),
			})
	}

	if grnValue == nil {
		return nil
	}
	if po.TotalPaid.Add(amount).GreaterThan(*grnValue) {
		payable := grnValue.Sub(po.TotalPaid)
		if payable.IsNegative() {
			payable = decimal.Zero
		}
		return shared.NewBusinessRuleError(CodePaymentExceedsGRNValue,
			"Payment amount exceeds the value of goods received",
			map[string]any{
				"po_number":        po.PONumber,
				"grn_total_value":  grnValue.StringFixed(2),
				"total_paid":       po.TotalPaid.StringFixed(2),
				"payable_amount":   payable.StringFixed(2),
				"requested_amount": amount.StringFixed(2),
			})
	}
	return nil
}
