package usecase_test

import (
	"context"
	"fmt"
	"testing"

	"quickcart/internal/domain/model"
	infraRepo "quickcart/internal/infra/repository"
	"quickcart/internal/kvstore"
	"quickcart/internal/pricing"
	"quickcart/internal/usecase"

	"github.com/cucumber/godog"
)

const featureSession = "feature-session"

type cartFeatureContext struct {
	uc   *usecase.CartUsecase
	view usecase.CartView
	err  error
}

func (c *cartFeatureContext) reset() {
	log := discardLogger()
	store := kvstore.NewMemoryStore()
	c.uc = usecase.NewCartUsecase(infraRepo.NewCartKVRepository(store, log), new(MockCatalog), nil, pricing.DefaultPolicy(), log)
	c.view = usecase.CartView{}
	c.err = nil
}

func (c *cartFeatureContext) refresh(ctx context.Context) error {
	v, err := c.uc.View(ctx, featureSession)
	if err != nil {
		return err
	}
	notice := c.view.Notice
	c.view = v
	c.view.Notice = notice
	return nil
}

func (c *cartFeatureContext) anEmptyCart() error {
	return nil
}

func (c *cartFeatureContext) iAddProductPricedWithQuantity(ctx context.Context, id int64, price float64, qty int) error {
	_, err := c.uc.AddItem(ctx, featureSession, model.Product{ID: id, Title: fmt.Sprintf("Product %d", id), Price: price}, qty)
	if err != nil {
		return err
	}
	return c.refresh(ctx)
}

func (c *cartFeatureContext) press(ctx context.Context, id int64, delta int, confirmed bool) error {
	c.view, c.err = c.uc.UpdateCartQuantity(ctx, featureSession, id, delta, confirmed)
	if c.err != nil {
		if _, ok := usecase.AsConfirmationError(c.err); ok {
			return c.refresh(ctx)
		}
		return c.err
	}
	return nil
}

func (c *cartFeatureContext) iPressIncreaseOnProduct(ctx context.Context, id int64) error {
	return c.press(ctx, id, +1, false)
}

func (c *cartFeatureContext) iPressDecreaseOnProduct(ctx context.Context, id int64) error {
	return c.press(ctx, id, -1, false)
}

func (c *cartFeatureContext) iPressDecreaseOnProductAndConfirm(ctx context.Context, id int64) error {
	return c.press(ctx, id, -1, true)
}

func (c *cartFeatureContext) iClearTheCart(ctx context.Context) error {
	if err := c.uc.ClearCart(ctx, featureSession); err != nil {
		return err
	}
	return c.refresh(ctx)
}

func (c *cartFeatureContext) theCartHasLines(n int) error {
	if len(c.view.Items) != n {
		return fmt.Errorf("expected %d lines, got %d", n, len(c.view.Items))
	}
	return nil
}

func (c *cartFeatureContext) productHasQuantity(id int64, qty int) error {
	for _, it := range c.view.Items {
		if it.ID == id {
			if it.Quantity != qty {
				return fmt.Errorf("expected quantity %d, got %d", qty, it.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("product %d not in cart", id)
}

func (c *cartFeatureContext) theSubtotalIs(label string) error {
	return expectLabel("subtotal", label, c.view.Summary.SubtotalLabel)
}

func (c *cartFeatureContext) theTotalIs(label string) error {
	return expectLabel("total", label, c.view.Summary.TotalLabel)
}

func (c *cartFeatureContext) theShippingLabelIs(label string) error {
	return expectLabel("shipping", label, c.view.Summary.ShippingLabel)
}

func (c *cartFeatureContext) theShippingMessageIs(msg string) error {
	return expectLabel("shipping message", msg, c.view.Summary.ShippingMessage)
}

func (c *cartFeatureContext) theNoticeIs(msg string) error {
	if c.view.Notice == nil {
		return fmt.Errorf("expected notice %q, got none", msg)
	}
	return expectLabel("notice", msg, c.view.Notice.Message)
}

func (c *cartFeatureContext) aConfirmationIsRequired(title string) error {
	ce, ok := usecase.AsConfirmationError(c.err)
	if !ok {
		return fmt.Errorf("expected confirmation, got %v", c.err)
	}
	return expectLabel("confirmation", title, ce.Title)
}

func (c *cartFeatureContext) theItemCountIs(n int) error {
	if c.view.CartCount != n {
		return fmt.Errorf("expected item count %d, got %d", n, c.view.CartCount)
	}
	return nil
}

func expectLabel(what, want, got string) error {
	if want != got {
		return fmt.Errorf("expected %s %q, got %q", what, want, got)
	}
	return nil
}

func InitializeCartScenario(ctx *godog.ScenarioContext) {
	tc := &cartFeatureContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an empty cart$`, tc.anEmptyCart)

	// When steps
	ctx.Step(`^I add product (\d+) priced (\d+\.\d+) with quantity (\d+)$`, tc.iAddProductPricedWithQuantity)
	ctx.Step(`^I press increase on product (\d+)$`, tc.iPressIncreaseOnProduct)
	ctx.Step(`^I press decrease on product (\d+)$`, tc.iPressDecreaseOnProduct)
	ctx.Step(`^I press decrease on product (\d+) and confirm$`, tc.iPressDecreaseOnProductAndConfirm)
	ctx.Step(`^I clear the cart$`, tc.iClearTheCart)

	// Then steps
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^product (\d+) has quantity (\d+)$`, tc.productHasQuantity)
	ctx.Step(`^the subtotal is "([^"]*)"$`, tc.theSubtotalIs)
	ctx.Step(`^the total is "([^"]*)"$`, tc.theTotalIs)
	ctx.Step(`^the shipping label is "([^"]*)"$`, tc.theShippingLabelIs)
	ctx.Step(`^the shipping message is "([^"]*)"$`, tc.theShippingMessageIs)
	ctx.Step(`^the notice is "([^"]*)"$`, tc.theNoticeIs)
	ctx.Step(`^a confirmation "([^"]*)" is required$`, tc.aConfirmationIsRequired)
	ctx.Step(`^the item count is (\d+)$`, tc.theItemCountIs)
}

func TestCartFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeCartScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/cart.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
