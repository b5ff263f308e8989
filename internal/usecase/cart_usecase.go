package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"quickcart/internal/catalog"
	"quickcart/internal/domain/model"
	"quickcart/internal/pricing"
	repo "quickcart/internal/repository"

	"github.com/shopspring/decimal"
)

// カタログから1商品を引く約束
type ProductReader interface {
	GetProduct(ctx context.Context, id int64) (model.Product, error)
}

// カートの個数が変わったら呼ばれる（バッジ更新）
type CartNotifier interface {
	CartChanged(ctx context.Context, sessionID string, count int)
}

type nopNotifier struct{}

func (nopNotifier) CartChanged(context.Context, string, int) {}

const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

type Notice struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// 明細1行と行合計
type CartLine struct {
	model.CartItem
	LineTotal      float64 `json:"line_total"`
	LineTotalLabel string  `json:"line_total_label"`
}

// カートページの描画に必要なもの一式
type CartView struct {
	Items     []CartLine      `json:"items"`
	Summary   pricing.Summary `json:"summary"`
	CartCount int             `json:"cart_count"`
	Notice    *Notice         `json:"notice,omitempty"`
}

// CartUsecase はセッションごとのカート集計。
// 変更はすべて CartStore に書き戻してから通知する。
type CartUsecase struct {
	carts    repo.CartStore
	products ProductReader
	notifier CartNotifier
	policy   pricing.Policy
	log      *slog.Logger
}

// DI
func NewCartUsecase(
	carts repo.CartStore,
	products ProductReader,
	notifier CartNotifier,
	policy pricing.Policy,
	log *slog.Logger,
) *CartUsecase {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &CartUsecase{
		carts:    carts,
		products: products,
		notifier: notifier,
		policy:   policy,
		log:      log,
	}
}

func (u *CartUsecase) storeError(ctx context.Context, sessionID string, err error) error {
	u.log.ErrorContext(ctx, "cart store failed", "session_id", sessionID, "err", err)
	return NewHTTPError(http.StatusInternalServerError, "store error")
}

func (u *CartUsecase) save(ctx context.Context, sessionID string, items []model.CartItem) error {
	if err := u.carts.Set(ctx, sessionID, items); err != nil {
		return u.storeError(ctx, sessionID, err)
	}
	u.notifier.CartChanged(ctx, sessionID, pricing.ItemCount(items))
	return nil
}

func indexOf(items []model.CartItem, productID int64) int {
	for i, it := range items {
		if it.ProductID() == productID {
			return i
		}
	}
	return -1
}

// GetCart は保存済みカートを返す（無い・壊れている場合は空）。
func (u *CartUsecase) GetCart(ctx context.Context, sessionID string) ([]model.CartItem, error) {
	items, err := u.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, u.storeError(ctx, sessionID, err)
	}
	return items, nil
}

// AddItem は同じ商品なら数量を加算、無ければスナップショットを末尾に追加する。
// 上限のクランプはここではしない。
func (u *CartUsecase) AddItem(ctx context.Context, sessionID string, product model.Product, quantity int) ([]model.CartItem, error) {
	if product.ID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if quantity < 1 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	items, err := u.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if i := indexOf(items, product.ID); i >= 0 {
		items[i].Quantity += quantity
	} else {
		items = append(items, model.CartItem{Product: product, Quantity: quantity})
	}

	if err := u.save(ctx, sessionID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddProduct は商品詳細・一覧からの追加。
// カタログから商品を取得し、数量は 1..10 に収めてから AddItem する。
func (u *CartUsecase) AddProduct(ctx context.Context, sessionID string, productID int64, quantity int) (CartView, error) {
	if productID <= 0 {
		return CartView{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	p, err := u.products.GetProduct(ctx, productID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return CartView{}, NewHTTPError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		u.log.ErrorContext(ctx, "catalog fetch failed", "product_id", productID, "err", err)
		return CartView{}, NewHTTPError(http.StatusBadGateway, "Failed to add item to cart")
	}

	quantity = model.ClampQuantity(quantity)
	items, err := u.AddItem(ctx, sessionID, p, quantity)
	if err != nil {
		return CartView{}, err
	}

	qtyText := ""
	if quantity > 1 {
		qtyText = fmt.Sprintf(" (%d items)", quantity)
	}
	return u.viewOf(items, &Notice{
		Type:    NoticeSuccess,
		Message: fmt.Sprintf("%s%s added to cart!", p.Title, qtyText),
	}), nil
}

// UpdateQuantity は 0以下なら削除、それ以外はそのまま設定する（無い商品は何もしない）。
func (u *CartUsecase) UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int) ([]model.CartItem, error) {
	if quantity <= 0 {
		return u.RemoveFromCart(ctx, sessionID, productID)
	}

	items, err := u.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	i := indexOf(items, productID)
	if i < 0 {
		return items, nil
	}
	items[i].Quantity = quantity

	if err := u.save(ctx, sessionID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// RemoveFromCart は冪等。無い商品でもエラーにしない。
func (u *CartUsecase) RemoveFromCart(ctx context.Context, sessionID string, productID int64) ([]model.CartItem, error) {
	items, err := u.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	kept := make([]model.CartItem, 0, len(items))
	for _, it := range items {
		if it.ProductID() != productID {
			kept = append(kept, it)
		}
	}

	if err := u.save(ctx, sessionID, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// ClearCart はキーごと消す。
func (u *CartUsecase) ClearCart(ctx context.Context, sessionID string) error {
	if err := u.carts.Clear(ctx, sessionID); err != nil {
		return u.storeError(ctx, sessionID, err)
	}
	u.notifier.CartChanged(ctx, sessionID, 0)
	return nil
}

func (u *CartUsecase) CartTotal(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	items, err := u.GetCart(ctx, sessionID)
	if err != nil {
		return decimal.Zero, err
	}
	return pricing.Subtotal(items), nil
}

func (u *CartUsecase) ItemCount(ctx context.Context, sessionID string) (int, error) {
	items, err := u.GetCart(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return pricing.ItemCount(items), nil
}

// UpdateCartQuantity は +/- ボタン。
// 下限未満は削除フロー、上限超えは変更せずに通知を返す。
func (u *CartUsecase) UpdateCartQuantity(ctx context.Context, sessionID string, productID int64, delta int, confirmed bool) (CartView, error) {
	items, err := u.GetCart(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}

	i := indexOf(items, productID)
	if i < 0 {
		return u.viewOf(items, nil), nil
	}

	next := items[i].Quantity + delta
	if next < model.MinQuantity {
		return u.RemoveCartItem(ctx, sessionID, productID, confirmed)
	}
	if next > model.MaxQuantity {
		return u.viewOf(items, &Notice{
			Type:    NoticeError,
			Message: fmt.Sprintf("Maximum quantity is %d", model.MaxQuantity),
		}), nil
	}

	items, err = u.UpdateQuantity(ctx, sessionID, productID, next)
	if err != nil {
		return CartView{}, err
	}
	return u.viewOf(items, nil), nil
}

// SetCartQuantity は数量入力欄。上限超えは黙って上限にする。
func (u *CartUsecase) SetCartQuantity(ctx context.Context, sessionID string, productID int64, quantity int, confirmed bool) (CartView, error) {
	if quantity < model.MinQuantity {
		return u.RemoveCartItem(ctx, sessionID, productID, confirmed)
	}
	if quantity > model.MaxQuantity {
		quantity = model.MaxQuantity
	}

	items, err := u.UpdateQuantity(ctx, sessionID, productID, quantity)
	if err != nil {
		return CartView{}, err
	}
	return u.viewOf(items, nil), nil
}

// RemoveCartItem は確認済みのときだけ削除する。
func (u *CartUsecase) RemoveCartItem(ctx context.Context, sessionID string, productID int64, confirmed bool) (CartView, error) {
	items, err := u.GetCart(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}

	i := indexOf(items, productID)
	if i < 0 {
		return u.viewOf(items, nil), nil
	}
	title := items[i].Title

	if !confirmed {
		return CartView{}, &ConfirmationError{
			Title:   "Remove Item?",
			Message: fmt.Sprintf("Are you sure you want to remove \"%s\" from your cart?", title),
		}
	}

	items, err = u.RemoveFromCart(ctx, sessionID, productID)
	if err != nil {
		return CartView{}, err
	}
	return u.viewOf(items, &Notice{
		Type:    NoticeSuccess,
		Message: fmt.Sprintf("%s has been removed from your cart.", title),
	}), nil
}

// ClearCartConfirmed はカートを空にする（空なら何もしない）。
func (u *CartUsecase) ClearCartConfirmed(ctx context.Context, sessionID string, confirmed bool) (CartView, error) {
	items, err := u.GetCart(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	if len(items) == 0 {
		return u.viewOf(items, nil), nil
	}

	if !confirmed {
		return CartView{}, &ConfirmationError{
			Title:   "Clear Entire Cart?",
			Message: fmt.Sprintf("This will remove all %d items from your cart. This action cannot be undone.", pricing.ItemCount(items)),
		}
	}

	if err := u.ClearCart(ctx, sessionID); err != nil {
		return CartView{}, err
	}
	return u.viewOf([]model.CartItem{}, &Notice{
		Type:    NoticeSuccess,
		Message: "Your cart has been successfully cleared.",
	}), nil
}

// View は毎回ストアから読み直して組み立てる。
func (u *CartUsecase) View(ctx context.Context, sessionID string) (CartView, error) {
	items, err := u.GetCart(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	return u.viewOf(items, nil), nil
}

// BeginCheckout は空カートならチェックアウトへ進ませない。
func (u *CartUsecase) BeginCheckout(ctx context.Context, sessionID string) (CartView, error) {
	items, err := u.GetCart(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	if len(items) == 0 {
		return CartView{}, NewHTTPError(http.StatusBadRequest, "Your cart is empty")
	}
	return u.viewOf(items, nil), nil
}

func (u *CartUsecase) viewOf(items []model.CartItem, notice *Notice) CartView {
	lines := make([]CartLine, 0, len(items))
	for _, it := range items {
		lt := pricing.LineTotal(it)
		lines = append(lines, CartLine{
			CartItem:       it,
			LineTotal:      pricing.Cents(lt),
			LineTotalLabel: pricing.FormatCurrency(lt),
		})
	}

	totals := u.policy.Totals(items)
	return CartView{
		Items:     lines,
		Summary:   totals.Summary(),
		CartCount: totals.ItemCount,
		Notice:    notice,
	}
}
