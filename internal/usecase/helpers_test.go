package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"quickcart/internal/domain/model"

	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// =====================
// Mock: CatalogReader
// =====================

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *MockCatalog) ListProducts(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Error(1)
}

func (m *MockCatalog) ListByCategory(ctx context.Context, category string) ([]model.Product, error) {
	args := m.Called(ctx, category)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Error(1)
}

func (m *MockCatalog) ListCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	cs, _ := args.Get(0).([]string)
	return cs, args.Error(1)
}

// 通知を記録するだけ
type recordingNotifier struct {
	mu     sync.Mutex
	counts []int
}

func (n *recordingNotifier) CartChanged(_ context.Context, _ string, count int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.counts = append(n.counts, count)
}

func (n *recordingNotifier) last() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.counts) == 0 {
		return -1
	}
	return n.counts[len(n.counts)-1]
}

func product(id int64, price float64) model.Product {
	return model.Product{ID: id, Title: "Product " + string(rune('A'+id-1)), Price: price, Category: "test"}
}
