package home_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/omeyang/xfluent/internal/pages/home"
	"github.com/omeyang/xfluent/pkg/browser/xdriver"
	"github.com/omeyang/xfluent/pkg/browser/xdriver/xdrivertest"
	"github.com/omeyang/xfluent/pkg/browser/xfixture"
	"github.com/omeyang/xfluent/pkg/observability/xlog"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// shop 模拟首页、搜索结果与 Women 分类页共用的元素。
type shop struct {
	session *xdrivertest.Session
	search  *xdrivertest.Element
	button  *xdrivertest.Element
	title   *xdrivertest.Element
	women   *xdrivertest.Element
	sort    *xdrivertest.Element
}

func newShop() *shop {
	s := xdrivertest.NewSession()
	return &shop{
		session: s,
		search:  s.Add(home.SearchField, xdrivertest.NewElement(xdrivertest.WithTag("input"))),
		button:  s.Add(home.SearchButton, xdrivertest.NewElement(xdrivertest.WithTag("button"))),
		title:   s.Add(home.SearchTextValidation, xdrivertest.NewElement(xdrivertest.WithText(`"FADED SHORT SLEEVE T-SHIRTS"`))),
		women:   s.Add(home.WomenMenu, xdrivertest.NewElement(xdrivertest.WithTag("a"))),
		sort: s.Add(home.SortBySelect, xdrivertest.Select(
			xdrivertest.Option("position", "--"),
			xdrivertest.Option("price:asc", "Price: Lowest first"),
			xdrivertest.Option("price:desc", "Price: Highest first"),
			xdrivertest.Option("name:asc", "Product Name: A to Z"),
			xdrivertest.Option("name:desc", "Product Name: Z to A"),
			xdrivertest.Option("reference:asc", "Reference: Lowest first"),
		)),
	}
}

func newFixture(t *testing.T, s xdriver.Session) *xfixture.Fixture {
	t.Helper()
	cfg := xfixture.DefaultConfig()
	cfg.Fixture.RetryBudget = 100 * time.Millisecond
	cfg.Fixture.WaitTimeout = 20 * time.Millisecond
	cfg.Fixture.PollInterval = 2 * time.Millisecond

	f, err := xfixture.New(context.Background(), cfg,
		xfixture.WithSession(s),
		xfixture.WithLogger(xlog.Discard()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close(context.Background()) })
	return f
}

func TestOpenAndSearchTShirt(t *testing.T) {
	ctx := context.Background()
	shop := newShop()
	f := newFixture(t, shop.session)

	err := home.Open(ctx, f, true).
		EnterValueInTheSearchField(ctx).
		ClickSearchButton(ctx).
		ValidateSearchText(ctx).
		Err()

	require.NoError(t, err)
	assert.Equal(t, []string{xfixture.DefaultBaseURL}, shop.session.Visited())
	assert.Equal(t, home.SearchValue, shop.search.Value())
	assert.Equal(t, 1, shop.button.Clicks())
}

func TestSelectValuesFromDropDownList(t *testing.T) {
	ctx := context.Background()
	shop := newShop()
	f := newFixture(t, shop.session)

	err := home.Open(ctx, f, true).
		ClickWomenMenu(ctx).
		ClickSortByButtonAndSelectValueFromDropDown(ctx).
		Err()

	require.NoError(t, err)
	assert.Equal(t, 1, shop.women.Clicks())
	assert.Equal(t, "reference:asc", shop.sort.Selected())
	assert.Equal(t, len(home.SortOptions), shop.sort.Clicks())
}

func TestHomePage_FirstErrorLatched(t *testing.T) {
	ctx := context.Background()
	shop := newShop()
	shop.session.Remove(home.SearchField)
	f := newFixture(t, shop.session)

	page := home.Open(ctx, f, false)
	same := page.EnterSearchValue(ctx, "shirt")
	err := same.ClickSearchButton(ctx).ValidateSearchText(ctx).Err()

	assert.Same(t, page, same)
	var actionErr *xfixture.ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, xfixture.ActionType, actionErr.Action)
	assert.Equal(t, home.SearchField, actionErr.Locator)
	assert.Zero(t, shop.button.Clicks(), "步骤在首个失败后不再执行")
	assert.Empty(t, shop.session.Visited())
}

func TestHomePage_SortByUnknownOption(t *testing.T) {
	ctx := context.Background()
	shop := newShop()
	f := newFixture(t, shop.session)

	err := home.Open(ctx, f, false).
		SortBy(ctx, "In stock").
		SortBy(ctx, "Price: Lowest first").
		Err()

	assert.ErrorIs(t, err, xfixture.ErrOptionNotFound)
	assert.Empty(t, shop.sort.Selected())
}

func TestHomePage_ValidateSearchTextMismatch(t *testing.T) {
	ctx := context.Background()
	shop := newShop()
	shop.title.SetText("0 results have been found.")
	f := newFixture(t, shop.session)

	err := home.Open(ctx, f, false).ValidateSearchText(ctx).Err()
	assert.ErrorIs(t, err, xfixture.ErrTextMismatch)
}
