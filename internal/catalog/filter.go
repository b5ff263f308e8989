package catalog

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"

	"quickcart/internal/domain/model"
)

var ErrInvalidPriceRange = errors.New("invalid price range")

// トップページの絞り込み・並び替え条件
// 空のフィールドは条件なし。
type Filter struct {
	Category   string
	PriceRange string
	// "price-asc" "rating-desc" "name-asc" など
	Sort string
}

// "10-50" は両端を含む、"100+" は下限のみ
type PriceRange struct {
	Min float64
	Max float64
}

func ParsePriceRange(s string) (PriceRange, error) {
	s = strings.TrimSpace(s)

	if strings.Contains(s, "+") {
		min, err := strconv.ParseFloat(strings.ReplaceAll(s, "+", ""), 64)
		if err != nil {
			return PriceRange{}, ErrInvalidPriceRange
		}
		return PriceRange{Min: min, Max: math.Inf(1)}, nil
	}

	lo, hi, ok := strings.Cut(s, "-")
	if !ok {
		return PriceRange{}, ErrInvalidPriceRange
	}
	min, err := strconv.ParseFloat(lo, 64)
	if err != nil {
		return PriceRange{}, ErrInvalidPriceRange
	}
	max, err := strconv.ParseFloat(hi, 64)
	if err != nil {
		return PriceRange{}, ErrInvalidPriceRange
	}
	return PriceRange{Min: min, Max: max}, nil
}

func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// Apply は元のスライスを変更せずに結果を返す。
func (f Filter) Apply(products []model.Product) ([]model.Product, error) {
	out := make([]model.Product, 0, len(products))

	var pr *PriceRange
	if f.PriceRange != "" {
		r, err := ParsePriceRange(f.PriceRange)
		if err != nil {
			return nil, err
		}
		pr = &r
	}

	for _, p := range products {
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if pr != nil && !pr.Contains(p.Price) {
			continue
		}
		out = append(out, p)
	}

	if f.Sort != "" {
		sortProducts(out, f.Sort)
	}
	return out, nil
}

// 未知のフィールドなら並びはそのまま
func sortProducts(products []model.Product, by string) {
	field, order, _ := strings.Cut(by, "-")

	var less func(a, b model.Product) bool
	switch field {
	case "price":
		less = func(a, b model.Product) bool { return a.Price < b.Price }
	case "rating":
		less = func(a, b model.Product) bool { return a.Rating.Rate < b.Rating.Rate }
	case "name":
		less = func(a, b model.Product) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	default:
		return
	}

	desc := order != "asc"
	sort.SliceStable(products, func(i, j int) bool {
		if desc {
			return less(products[j], products[i])
		}
		return less(products[i], products[j])
	})
}
