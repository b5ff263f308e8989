package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"quickcart/internal/catalog"
	"quickcart/internal/domain/model"

	"golang.org/x/sync/errgroup"
)

// 商品カタログの読み取り
type CatalogReader interface {
	ProductReader
	ListProducts(ctx context.Context) ([]model.Product, error)
	ListByCategory(ctx context.Context, category string) ([]model.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
}

// トップページ（商品一覧 + カテゴリ）
type HomeView struct {
	Products   []model.Product `json:"products"`
	Categories []string        `json:"categories"`
}

type ProductUsecase struct {
	catalog CatalogReader
	log     *slog.Logger
}

// DI
func NewProductUsecase(catalog CatalogReader, log *slog.Logger) *ProductUsecase {
	return &ProductUsecase{catalog: catalog, log: log}
}

// ListProducts は全件取得して絞り込み・並び替えする。
func (u *ProductUsecase) ListProducts(ctx context.Context, f catalog.Filter) ([]model.Product, error) {
	products, err := u.catalog.ListProducts(ctx)
	if err != nil {
		u.log.ErrorContext(ctx, "list products failed", "err", err)
		return nil, NewHTTPError(http.StatusBadGateway, "Failed to load products")
	}

	out, err := f.Apply(products)
	if errors.Is(err, catalog.ErrInvalidPriceRange) {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid price_range")
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return out, nil
}

func (u *ProductUsecase) ListCategories(ctx context.Context) ([]string, error) {
	categories, err := u.catalog.ListCategories(ctx)
	if err != nil {
		u.log.ErrorContext(ctx, "list categories failed", "err", err)
		return nil, NewHTTPError(http.StatusBadGateway, "Failed to load categories")
	}
	return categories, nil
}

func (u *ProductUsecase) ListByCategory(ctx context.Context, category string) ([]model.Product, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid category")
	}

	products, err := u.catalog.ListByCategory(ctx, category)
	if err != nil {
		u.log.ErrorContext(ctx, "list by category failed", "category", category, "err", err)
		return nil, NewHTTPError(http.StatusBadGateway, "Failed to load products")
	}
	return products, nil
}

func (u *ProductUsecase) ProductDetail(ctx context.Context, id int64) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := u.catalog.GetProduct(ctx, id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		u.log.ErrorContext(ctx, "product detail failed", "product_id", id, "err", err)
		return model.Product{}, NewHTTPError(http.StatusBadGateway, "Failed to load product details")
	}
	return p, nil
}

// Home は一覧とカテゴリを並行で取得する。どちらか失敗したら全体を失敗にする。
func (u *ProductUsecase) Home(ctx context.Context, f catalog.Filter) (HomeView, error) {
	var view HomeView

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		products, err := u.ListProducts(gctx, f)
		view.Products = products
		return err
	})
	g.Go(func() error {
		categories, err := u.ListCategories(gctx)
		view.Categories = categories
		return err
	})

	if err := g.Wait(); err != nil {
		return HomeView{}, err
	}
	return view, nil
}
