package procurement

import (
	"context"
	"errors"
	"time"

	appinventory "github.com/cafe/backend/internal/application/inventory"
	"github.com/cafe/backend/internal/domain/numbering"
	"github.com/cafe/backend/internal/domain/procurement"
	"github.com/cafe/backend/internal/domain/shared"
	"github.com/cafe/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService records vendor payments within the contracted and received bounds
type PaymentService struct {
	scope   appinventory.TransactionScope
	numbers NumberAllocator
	logger  *zap.Logger
	metrics *telemetry.ProcurementMetrics
	now     func() time.Time
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(scope appinventory.TransactionScope, numbers NumberAllocator, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		scope:   scope,
		numbers: numbers,
		logger:  logger,
		now:     time.Now,
	}
}

// SetMetrics sets the metrics collector
func (s *PaymentService) SetMetrics(m *telemetry.ProcurementMetrics) {
	s.metrics = m
}

// RecordPayment validates the amount against the outstanding receivable and,
// once goods were received, against their value. The purchase order row is
// locked for the whole check-and-insert so concurrent payments serialize.
func (s *PaymentService) RecordPayment(ctx context.Context, purchaseOrderID uuid.UUID, req RecordPaymentRequest) (_ *RecordPaymentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record",
		telemetry.WithAttribute(telemetry.SpanAttrPurchaseOrderID, purchaseOrderID),
		telemetry.WithAttribute(telemetry.SpanAttrAmount, req.Amount),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := procurement.ValidatePaymentAmount(req.Amount); err != nil {
		return nil, err
	}
	method := procurement.PaymentMethod(req.PaymentMethod)
	if !method.IsValid() {
		return nil, shared.NewValidationError("payment_method", "Invalid payment method")
	}
	paymentDate := req.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = s.now()
	}

	var (
		payment *procurement.Payment
		po      *procurement.PurchaseOrder
	)
	_, err = s.numbers.Allocate(ctx, numbering.KindPayment, paymentDate, func(number string) error {
		return s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
			var err error
			po, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, purchaseOrderID)
			if err != nil {
				return notFound(err, "purchase order")
			}
			if err := checkPaymentBounds(ctx, repos, po, req.Amount); err != nil {
				return err
			}

			payment, err = procurement.NewPayment(number, po, req.Amount, method, paymentDate, req.TransactionReference, req.Remarks)
			if err != nil {
				return err
			}
			if err := repos.Payments().Create(ctx, payment); err != nil {
				if errors.Is(err, shared.ErrDuplicateNumber) {
					return err
				}
				return shared.NewIntegrityError("insert payment", err)
			}

			totalPaid, err := repos.Payments().SumByPurchaseOrder(ctx, po.ID)
			if err != nil {
				return err
			}
			po.ApplyTotalPaid(totalPaid)
			if err := repos.PurchaseOrders().UpdateTotalPaid(ctx, po.ID, totalPaid); err != nil {
				return shared.NewIntegrityError("update purchase order total paid", err)
			}
			return nil
		})
	})
	if err != nil {
		s.recordRejection(ctx, purchaseOrderID, req.Amount, err)
		return nil, err
	}

	s.logger.Info("Payment recorded",
		zap.String("payment_number", payment.PaymentNumber),
		zap.String("po_number", po.PONumber),
		zap.String("amount", payment.Amount.String()),
		zap.String("total_paid", po.TotalPaid.String()),
	)
	if s.metrics != nil {
		s.metrics.RecordPaymentAccepted(ctx, string(payment.Method), payment.Amount)
	}

	return &RecordPaymentResponse{
		Payment:           ToPaymentResponse(payment),
		TotalPaid:         po.TotalPaid,
		OutstandingAmount: po.OutstandingAmount(),
	}, nil
}

// checkPaymentBounds refreshes total paid from the ledger and applies both
// ceilings. The GRN ceiling only applies once a GRN exists.
func checkPaymentBounds(ctx context.Context, repos appinventory.TransactionalRepositories, po *procurement.PurchaseOrder, amount decimal.Decimal) error {
	paid, err := repos.Payments().SumByPurchaseOrder(ctx, po.ID)
	if err != nil {
		return err
	}
	po.TotalPaid = paid

	hasGRN, err := repos.GoodsReceipts().ExistsForPurchaseOrder(ctx, po.ID)
	if err != nil {
		return err
	}
	var grnValue *decimal.Decimal
	if hasGRN {
		value, err := repos.GoodsReceipts().SumReceivedValue(ctx, po.ID)
		if err != nil {
			return err
		}
		grnValue = &value
	}
	return procurement.CheckPaymentBounds(po, amount, grnValue)
}

func (s *PaymentService) recordRejection(ctx context.Context, purchaseOrderID uuid.UUID, amount decimal.Decimal, err error) {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) || domainErr.Category != shared.CategoryBusinessRule {
		return
	}
	s.logger.Info("Payment rejected",
		zap.String("po_id", purchaseOrderID.String()),
		zap.String("code", domainErr.Code),
		zap.String("requested_amount", amount.String()),
	)
	if s.metrics != nil {
		s.metrics.RecordPaymentRejected(ctx, domainErr.Code)
	}
}

// ListPayments lists the payments of a purchase order
func (s *PaymentService) ListPayments(ctx context.Context, purchaseOrderID uuid.UUID) ([]PaymentResponse, error) {
	repos := s.scope.Repositories()
	if _, err := repos.PurchaseOrders().FindByID(ctx, purchaseOrderID); err != nil {
		return nil, notFound(err, "purchase order")
	}
	payments, err := repos.Payments().FindByPurchaseOrder(ctx, purchaseOrderID)
	if err != nil {
		return nil, err
	}
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses, nil
}
