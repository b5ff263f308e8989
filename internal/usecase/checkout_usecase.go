package usecase

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"quickcart/internal/domain/model"
	"quickcart/internal/pricing"
	repo "quickcart/internal/repository"

	"github.com/shopspring/decimal"
)

// 決済の約束（実際の決済はしない）
type PaymentProcessor interface {
	Charge(ctx context.Context, amount decimal.Decimal) bool
}

// 成功率 rate でランダムに成功する
type RandomPayment struct {
	rate float64
}

// DI
func NewRandomPayment(rate float64) *RandomPayment {
	return &RandomPayment{rate: rate}
}

func (p *RandomPayment) Charge(_ context.Context, _ decimal.Decimal) bool {
	return rand.Float64() < p.rate
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// 注文フォーム
type CheckoutInput struct {
	Shipping       model.Address `json:"shipping"`
	SameAsShipping bool          `json:"same_as_shipping"`
	Billing        model.Address `json:"billing"`
}

// usecaseがValidatorInterfaceに依存する約束
type CheckoutValidator interface {
	ValidateCheckout(in CheckoutInput) map[string]string
}

type CheckoutSummary struct {
	Items   []CartLine      `json:"items"`
	Summary pricing.Summary `json:"summary"`
}

type PlaceOrderOutput struct {
	Order   model.Order `json:"order"`
	Message string      `json:"message"`
}

type CheckoutUsecase struct {
	carts     repo.CartStore
	orders    repo.OrderRepository
	sessions  repo.SessionRepository
	validator CheckoutValidator
	payment   PaymentProcessor
	clock     Clock
	notifier  CartNotifier
	policy    pricing.Policy
	log       *slog.Logger
}

// DI
func NewCheckoutUsecase(
	carts repo.CartStore,
	orders repo.OrderRepository,
	sessions repo.SessionRepository,
	validator CheckoutValidator,
	payment PaymentProcessor,
	clock Clock,
	notifier CartNotifier,
	policy pricing.Policy,
	log *slog.Logger,
) *CheckoutUsecase {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &CheckoutUsecase{
		carts:     carts,
		orders:    orders,
		sessions:  sessions,
		validator: validator,
		payment:   payment,
		clock:     clock,
		notifier:  notifier,
		policy:    policy,
		log:       log,
	}
}

func (u *CheckoutUsecase) loadCart(ctx context.Context, sessionID string) ([]model.CartItem, error) {
	items, err := u.carts.Get(ctx, sessionID)
	if err != nil {
		u.log.ErrorContext(ctx, "cart store failed", "session_id", sessionID, "err", err)
		return nil, NewHTTPError(http.StatusInternalServerError, "store error")
	}
	if len(items) == 0 {
		return nil, NewRedirectError(http.StatusBadRequest, "Your cart is empty", "/cart.html")
	}
	return items, nil
}

// Summary はカートページと同じ料金ルールで注文内容を出す。
func (u *CheckoutUsecase) Summary(ctx context.Context, sessionID string) (CheckoutSummary, error) {
	items, err := u.loadCart(ctx, sessionID)
	if err != nil {
		return CheckoutSummary{}, err
	}

	lines := make([]CartLine, 0, len(items))
	for _, it := range items {
		lt := pricing.LineTotal(it)
		lines = append(lines, CartLine{CartItem: it, LineTotal: pricing.Cents(lt), LineTotalLabel: pricing.FormatCurrency(lt)})
	}
	return CheckoutSummary{
		Items:   lines,
		Summary: u.policy.Totals(items).Summary(),
	}, nil
}

// PlaceOrder は入力検証→決済→注文保存→カート削除の順。
// 決済失敗時はカートに触らない（再送できる）。
// 注文はログイン中ユーザーの履歴に入る。
func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, sessionID string, in CheckoutInput) (PlaceOrderOutput, error) {
	s, err := u.sessions.Find(ctx, sessionID)
	if err != nil {
		u.log.ErrorContext(ctx, "load session failed", "session_id", sessionID, "err", err)
		return PlaceOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "store error")
	}
	if !s.LoggedIn || s.Email == "" {
		return PlaceOrderOutput{}, NewRedirectError(http.StatusUnauthorized, "unauthorized", "/login.html")
	}

	items, err := u.loadCart(ctx, sessionID)
	if err != nil {
		return PlaceOrderOutput{}, err
	}

	if fields := u.validator.ValidateCheckout(in); len(fields) > 0 {
		return PlaceOrderOutput{}, NewFieldError("Please fill in all required fields", fields)
	}

	totals := u.policy.Totals(items)

	if !u.payment.Charge(ctx, totals.Total) {
		u.log.WarnContext(ctx, "payment failed", "session_id", sessionID, "total", totals.Total.StringFixed(2))
		return PlaceOrderOutput{}, NewHTTPError(http.StatusPaymentRequired, "Payment failed. Please try again.")
	}

	now := u.clock.Now()
	order := model.Order{
		ID:        NewOrderID(now),
		Status:    model.OrderStatusConfirmed,
		Items:     toOrderItems(items),
		Subtotal:  pricing.Cents(totals.Subtotal),
		Shipping:  pricing.Cents(totals.Shipping),
		Tax:       pricing.Cents(totals.Tax),
		Total:     pricing.Cents(totals.Total),
		ShipTo:    in.Shipping,
		BillTo:    in.Billing,
		CreatedAt: now,
	}
	if in.SameAsShipping {
		order.BillTo = in.Shipping
	}

	if err := u.orders.Save(ctx, s.Email, order); err != nil {
		u.log.ErrorContext(ctx, "save order failed", "session_id", sessionID, "order_id", order.ID, "err", err)
		return PlaceOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "store error")
	}

	// 注文は確定済み。カート削除の失敗で再送させると二重注文になるのでログだけ残す
	if err := u.carts.Clear(ctx, sessionID); err != nil {
		u.log.ErrorContext(ctx, "clear cart failed after order", "session_id", sessionID, "order_id", order.ID, "err", err)
	} else {
		u.notifier.CartChanged(ctx, sessionID, 0)
	}

	u.log.InfoContext(ctx, "order placed",
		"session_id", sessionID,
		"order_id", order.ID,
		"items", totals.ItemCount,
		"total", order.Total,
	)

	return PlaceOrderOutput{Order: order, Message: "Order placed successfully!"}, nil
}

// "QC" + unixミリ秒の下8桁
func NewOrderID(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 8 {
		ms = ms[len(ms)-8:]
	}
	return "QC" + ms
}

func toOrderItems(items []model.CartItem) []model.OrderItem {
	out := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, model.OrderItem{
			ProductID: it.ID,
			Title:     it.Title,
			Image:     it.Image,
			UnitPrice: it.Price,
			Quantity:  it.Quantity,
			LineTotal: pricing.Cents(pricing.LineTotal(it)),
		})
	}
	return out
}
