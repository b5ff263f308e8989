package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"quickcart/internal/domain/model"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"
)

const DefaultBaseURL = "https://fakestoreapi.com"

// デモAPIは存在しないIDに 200 + 空ボディを返す
var ErrProductNotFound = errors.New("product not found")

// 2xx 以外のレスポンス
type FetchError struct {
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

type Options struct {
	BaseURL string
	Timeout time.Duration
	// 連続失敗でブレーカーを開く回数
	MaxFailures uint32
	// open から half-open に移るまで
	OpenTimeout time.Duration
	HTTPClient  *http.Client
}

// Client は商品カタログAPIの読み取り専用クライアント。リトライはしない。
type Client struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[[]byte]
	sf      singleflight.Group
	log     *slog.Logger
}

// DI
func NewClient(opts Options, log *slog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxFailures == 0 {
		opts.MaxFailures = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	maxFailures := opts.MaxFailures
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "catalog",
		Timeout: opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// 4xx と呼び出し側のキャンセルは障害として数えない
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var fe *FetchError
			if errors.As(err, &fe) && fe.Status < 500 {
				return true
			}
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    hc,
		cb:      cb,
		log:     log,
	}
}

// 同じパスへの同時リクエストは1本にまとめる
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	// 相乗りした呼び出し元がいるので、先頭の呼び出し元のキャンセルを共有の取得に伝えない
	shared := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(path, func() (interface{}, error) {
		return c.cb.Execute(func() ([]byte, error) {
			return c.fetch(shared, path)
		})
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	v, err := res.Val, res.Err
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("catalog unavailable: %w", err)
		}
		return nil, err
	}
	return v.([]byte), nil
}

func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, &FetchError{Status: res.StatusCode}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("catalog read failed: %w", err)
	}
	return body, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]model.Product, error) {
	body, err := c.get(ctx, "/products")
	if err != nil {
		return nil, err
	}

	var products []model.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	body, err := c.get(ctx, "/products/"+strconv.FormatInt(id, 10))
	if err != nil {
		return model.Product{}, err
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return model.Product{}, ErrProductNotFound
	}

	var p model.Product
	if err := json.Unmarshal(body, &p); err != nil {
		return model.Product{}, fmt.Errorf("decode product: %w", err)
	}
	return p, nil
}

func (c *Client) ListByCategory(ctx context.Context, category string) ([]model.Product, error) {
	body, err := c.get(ctx, "/products/category/"+url.PathEscape(category))
	if err != nil {
		return nil, err
	}

	var products []model.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, "/products/categories")
	if err != nil {
		return nil, err
	}

	var categories []string
	if err := json.Unmarshal(body, &categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return categories, nil
}

// ブレーカーの状態（healthz 用）
func (c *Client) State() string {
	return c.cb.State().String()
}
