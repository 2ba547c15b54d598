package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/stitchlink/stitchlink-backend/internal/orders"
	"github.com/stitchlink/stitchlink-backend/pkg/db/models"
	"github.com/stitchlink/stitchlink-backend/pkg/enums"
	pkgerrors "github.com/stitchlink/stitchlink-backend/pkg/errors"
	"github.com/stitchlink/stitchlink-backend/pkg/logger"
	"github.com/stitchlink/stitchlink-backend/pkg/metrics"
)

// Settlement paths, used as metric labels.
const (
	PathConfirm = "confirm"
	PathWebhook = "webhook"
)

// Service exposes payment capture, settlement, and payout onboarding.
type Service interface {
	CreatePaymentIntent(ctx context.Context, customerID, orderID uuid.UUID) (*PaymentIntentDTO, error)
	ConfirmPayment(ctx context.Context, customerID, orderID uuid.UUID) (*SettlementDTO, error)
	SettleByPaymentIntent(ctx context.Context, paymentIntentID, path string) (*SettlementDTO, error)
	FailByPaymentIntent(ctx context.Context, paymentIntentID string) error
	ListTransfers(ctx context.Context, orderID uuid.UUID) ([]TransferDTO, error)
	StartOnboarding(ctx context.Context, userID uuid.UUID, refreshURL, returnURL string) (*OnboardingDTO, error)
	AccountStatus(ctx context.Context, userID uuid.UUID) (*AccountStatusDTO, error)
}

type orderStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time) (bool, error)
	MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) error
	SetPaymentIntentID(ctx context.Context, orderID uuid.UUID, paymentIntentID string) (bool, error)
	AppendTimeline(ctx context.Context, entry *models.OrderTimelineEntry) error
}

type userStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateStripeAccountID(ctx context.Context, id uuid.UUID, accountID string) error
}

type transferStore interface {
	Create(ctx context.Context, t *models.Transfer) (*models.Transfer, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Transfer, error)
}

type service struct {
	orders      orderStore
	users       userStore
	transfers   transferStore
	stripe      StripePaymentClient
	notifier    orders.Notifier
	logg        *logger.Logger
	metrics     *metrics.PaymentMetrics
	residualFee ResidualFee
}

// ServiceParams bundles the dependencies for the payment service.
type ServiceParams struct {
	Orders      orderStore
	Users       userStore
	Transfers   transferStore
	Stripe      StripePaymentClient
	Notifier    orders.Notifier
	Logger      *logger.Logger
	Metrics     *metrics.PaymentMetrics
	ResidualFee ResidualFee
}

// NewService constructs the payment service.
func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("order store required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user store required")
	}
	if params.Transfers == nil {
		return nil, fmt.Errorf("transfer store required")
	}
	if params.Stripe == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		orders:      params.Orders,
		users:       params.Users,
		transfers:   params.Transfers,
		stripe:      params.Stripe,
		notifier:    params.Notifier,
		logg:        params.Logger,
		metrics:     params.Metrics,
		residualFee: params.ResidualFee,
	}, nil
}

// CreatePaymentIntent opens a Stripe payment for an approved order. The
// amount always comes from the frozen order total.
func (s *service) CreatePaymentIntent(ctx context.Context, customerID, orderID uuid.UUID) (*PaymentIntentDTO, error) {
	order, err := s.loadCustomerOrder(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order must be approved before payment")
	}
	if order.PaymentStatus == enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(order.TotalCents)),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("order_id", order.ID.String())

	intent, err := s.stripe.CreatePaymentIntent(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stripe: create payment intent")
	}

	attached, err := s.orders.SetPaymentIntentID(ctx, order.ID, intent.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach payment intent")
	}
	if !attached {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already has a payment in flight")
	}

	return &PaymentIntentDTO{
		OrderID:         order.ID,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		AmountCents:     order.TotalCents,
	}, nil
}

// ConfirmPayment is the synchronous settlement path: the client reports
// the payment finished and we verify against Stripe before settling. The
// webhook path converges on the same conditional write, so both can race
// safely.
func (s *service) ConfirmPayment(ctx context.Context, customerID, orderID uuid.UUID) (*SettlementDTO, error) {
	order, err := s.loadCustomerOrder(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.StripePaymentIntentID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no payment in flight for this order")
	}

	intent, err := s.stripe.GetPaymentIntent(ctx, *order.StripePaymentIntentID, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stripe: load payment intent")
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment has not succeeded").
			WithDetails(map[string]any{"stripe_status": intent.Status})
	}

	return s.settle(ctx, order, PathConfirm)
}

// SettleByPaymentIntent settles from a verified webhook event.
func (s *service) SettleByPaymentIntent(ctx context.Context, paymentIntentID, path string) (*SettlementDTO, error) {
	order, err := s.orders.FindByPaymentIntentID(ctx, paymentIntentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no order for payment intent")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order by payment intent")
	}
	return s.settle(ctx, order, path)
}

// FailByPaymentIntent records a failed capture. The order stays approved
// so the customer can retry.
func (s *service) FailByPaymentIntent(ctx context.Context, paymentIntentID string) error {
	order, err := s.orders.FindByPaymentIntentID(ctx, paymentIntentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no order for payment intent")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order by payment intent")
	}
	if err := s.orders.MarkPaymentFailed(ctx, order.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment failed")
	}
	return nil
}

// settle performs the single-winner transition into PAID and then runs
// the payout transfers. The conditional write decides the winner; the
// loser sees AlreadySettled and must not run transfers again. Transfer
// failures are recorded and alerted but never unwind the capture.
func (s *service) settle(ctx context.Context, order *models.Order, path string) (*SettlementDTO, error) {
	ctx = s.logg.WithOrderID(ctx, order.ID.String())

	now := time.Now().UTC()
	settled, err := s.orders.MarkPaid(ctx, order.ID, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
	}
	if !settled {
		s.metrics.ObserveSettlement(path, "already_settled")
		current, err := s.orders.FindByID(ctx, order.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		if current.PaymentStatus != enums.PaymentStatusPaid {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not payable in current state").
				WithDetails(map[string]any{"status": current.Status})
		}
		return &SettlementDTO{
			OrderID:        current.ID,
			Status:         current.Status,
			PaymentStatus:  current.PaymentStatus,
			AlreadySettled: true,
		}, nil
	}
	s.metrics.ObserveSettlement(path, "paid")

	entry := &models.OrderTimelineEntry{
		OrderID: order.ID,
		Status:  enums.OrderStatusPaid,
		Note:    "payment captured",
	}
	if err := s.orders.AppendTimeline(ctx, entry); err != nil {
		s.logg.Error(ctx, "append paid timeline entry", err)
	}

	if err := s.runTransfers(ctx, order); err != nil {
		s.logg.Error(ctx, "payout transfers incomplete", err)
	}

	s.notifier.Emit(ctx, order.SeamstressID, enums.NotificationOrderPaid,
		"Order paid", "Payment received. You can start production.", orderLink(order.ID))
	s.notifier.Emit(ctx, order.DesignerID, enums.NotificationOrderPaid,
		"Design sold", "Your design royalty is on its way.", orderLink(order.ID))

	return &SettlementDTO{
		OrderID:       order.ID,
		Status:        enums.OrderStatusPaid,
		PaymentStatus: enums.PaymentStatusPaid,
	}, nil
}

// runTransfers moves the designer royalty and the seamstress earning to
// their connected accounts. The seamstress leg carries the residual
// processing fee; the royalty is paid in full. Each leg is independent;
// one failing never blocks the other.
func (s *service) runTransfers(ctx context.Context, order *models.Order) error {
	var errs error
	legs := []struct {
		recipient   enums.TransferRecipient
		userID      uuid.UUID
		amountCents int
	}{
		{enums.TransferRecipientDesigner, order.DesignerID, order.DesignerRoyaltyCents},
		{enums.TransferRecipientSeamstress, order.SeamstressID, s.residualFee.Net(order.SeamstressEarningCents)},
	}

	for _, leg := range legs {
		if leg.amountCents <= 0 {
			continue
		}
		if err := s.transferLeg(ctx, order, leg.recipient, leg.userID, leg.amountCents); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s transfer: %w", leg.recipient, err))
		}
	}
	return errs
}

func (s *service) transferLeg(ctx context.Context, order *models.Order, recipient enums.TransferRecipient, userID uuid.UUID, amountCents int) error {
	record := &models.Transfer{
		OrderID:         order.ID,
		RecipientUserID: userID,
		Recipient:       recipient,
		AmountCents:     amountCents,
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return s.recordFailure(ctx, record, userID, fmt.Errorf("load recipient: %w", err))
	}
	if user.StripeAccountID == nil || *user.StripeAccountID == "" {
		return s.recordFailure(ctx, record, userID, errors.New("recipient has no connected account"))
	}

	params := &stripe.TransferParams{
		Amount:        stripe.Int64(int64(amountCents)),
		Currency:      stripe.String(string(stripe.CurrencyUSD)),
		Destination:   stripe.String(*user.StripeAccountID),
		TransferGroup: stripe.String(order.ID.String()),
	}
	params.AddMetadata("order_id", order.ID.String())
	params.AddMetadata("recipient", recipient.String())

	stripeTransfer, err := s.stripe.CreateTransfer(ctx, params)
	if err != nil {
		return s.recordFailure(ctx, record, userID, err)
	}

	record.Status = enums.TransferStatusInitiated
	record.StripeTransferID = &stripeTransfer.ID
	if _, err := s.transfers.Create(ctx, record); err != nil {
		// the money moved; only the bookkeeping row is missing
		s.logg.Error(ctx, "record initiated transfer", err)
	}
	return nil
}

func (s *service) recordFailure(ctx context.Context, record *models.Transfer, userID uuid.UUID, cause error) error {
	reason := cause.Error()
	record.Status = enums.TransferStatusFailed
	record.FailureReason = &reason
	if _, err := s.transfers.Create(ctx, record); err != nil {
		s.logg.Error(ctx, "record failed transfer", err)
	}
	s.metrics.IncTransferFailure(record.Recipient.String())
	s.notifier.Emit(ctx, userID, enums.NotificationPayoutAlert,
		"Payout delayed", "We could not transfer your earnings. Our team is looking into it.", orderLink(record.OrderID))
	return cause
}

func (s *service) ListTransfers(ctx context.Context, orderID uuid.UUID) ([]TransferDTO, error) {
	rows, err := s.transfers.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list transfers")
	}
	dtos := make([]TransferDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *TransferFromModel(&rows[i]))
	}
	return dtos, nil
}

// StartOnboarding creates (or reuses) the user's Express account and
// returns a hosted onboarding link.
func (s *service) StartOnboarding(ctx context.Context, userID uuid.UUID, refreshURL, returnURL string) (*OnboardingDTO, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	accountID := ""
	if user.StripeAccountID != nil {
		accountID = *user.StripeAccountID
	}
	if accountID == "" {
		accountParams := &stripe.AccountParams{
			Type:  stripe.String(string(stripe.AccountTypeExpress)),
			Email: stripe.String(user.Email),
		}
		accountParams.AddMetadata("user_id", user.ID.String())
		account, err := s.stripe.CreateAccount(ctx, accountParams)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stripe: create account")
		}
		accountID = account.ID
		if err := s.users.UpdateStripeAccountID(ctx, user.ID, accountID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save connected account")
		}
	}

	link, err := s.stripe.CreateAccountLink(ctx, &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stripe: create account link")
	}

	return &OnboardingDTO{AccountID: accountID, URL: link.URL}, nil
}

func (s *service) AccountStatus(ctx context.Context, userID uuid.UUID) (*AccountStatusDTO, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user.StripeAccountID == nil || *user.StripeAccountID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no connected account")
	}

	account, err := s.stripe.GetAccount(ctx, *user.StripeAccountID, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stripe: load account")
	}

	return &AccountStatusDTO{
		AccountID:      account.ID,
		ChargesEnabled: account.ChargesEnabled,
		PayoutsEnabled: account.PayoutsEnabled,
	}, nil
}

func (s *service) loadCustomerOrder(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
	}
	return order, nil
}

func orderLink(orderID uuid.UUID) *string {
	link := "/orders/" + orderID.String()
	return &link
}
