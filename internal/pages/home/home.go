// Package home 是被测商店首页的页面对象。
//
// 方法返回同一个 *HomePage 以便链式调用；第一个失败被记录下来，
// 之后的步骤不再执行，链尾用 Err 取回该错误。
package home

import (
	"context"

	"github.com/omeyang/xfluent/pkg/browser/xdriver"
	"github.com/omeyang/xfluent/pkg/browser/xfixture"
)

// 页面元素定位器。
var (
	SearchField          = xdriver.ByID("search_query_top")
	SearchButton         = xdriver.ByName("submit_search")
	SearchTextValidation = xdriver.ByXPath("//*[@id='center_column']/h1/span[1]")
	WomenMenu            = xdriver.ByCSS("#block_top_menu a[title='Women']")
	SortBySelect         = xdriver.ByID("selectProductSort")
)

const (
	// SearchValue 搜索框输入的商品名。
	SearchValue = "Faded Short Sleeve T-shirts"

	// ExpectedSearchText 搜索结果标题应包含的文本。
	ExpectedSearchText = "FADED SHORT SLEEVE T-SHIRTS"
)

// SortOptions 排序下拉框中依次选择的选项，前几项按可见文本，最后一项按 value。
var SortOptions = []string{
	"Price: Lowest first",
	"Price: Highest first",
	"Product Name: A to Z",
	"Product Name: Z to A",
	"reference:asc",
}

// HomePage 首页页面对象。
type HomePage struct {
	f   *xfixture.Fixture
	err error
}

// Open 创建页面对象；startingPage 为 true 时先打开站点首页。
func Open(ctx context.Context, f *xfixture.Fixture, startingPage bool) *HomePage {
	p := &HomePage{f: f}
	if startingPage {
		p.step(func() error {
			return f.VisitURL(ctx, f.Config().Site.BaseURL)
		})
	}
	return p
}

// step 在此前所有步骤成功时执行 fn，并记录它的错误。
func (p *HomePage) step(fn func() error) *HomePage {
	if p.err == nil {
		p.err = fn()
	}
	return p
}

// Err 返回第一个失败步骤的错误。
func (p *HomePage) Err() error { return p.err }

// EnterValueInTheSearchField 在搜索框输入 SearchValue。
func (p *HomePage) EnterValueInTheSearchField(ctx context.Context) *HomePage {
	return p.EnterSearchValue(ctx, SearchValue)
}

// EnterSearchValue 清空搜索框后输入 value。
func (p *HomePage) EnterSearchValue(ctx context.Context, value string) *HomePage {
	return p.step(func() error {
		return p.f.Type(ctx, SearchField, value)
	})
}

// ClickSearchButton 点击搜索按钮。
func (p *HomePage) ClickSearchButton(ctx context.Context) *HomePage {
	return p.step(func() error {
		return p.f.Click(ctx, SearchButton)
	})
}

// ValidateSearchText 校验搜索结果标题。
func (p *HomePage) ValidateSearchText(ctx context.Context) *HomePage {
	return p.step(func() error {
		return p.f.VerifyElementTextIsCorrect(ctx, SearchTextValidation, ExpectedSearchText)
	})
}

// ClickWomenMenu 打开顶部菜单中的 Women 分类。
func (p *HomePage) ClickWomenMenu(ctx context.Context) *HomePage {
	return p.step(func() error {
		return p.f.Click(ctx, WomenMenu)
	})
}

// SortBy 在排序下拉框中选择 option，可见文本或 value 均可。
func (p *HomePage) SortBy(ctx context.Context, option string) *HomePage {
	return p.step(func() error {
		return p.f.Select(ctx, SortBySelect, option)
	})
}

// ClickSortByButtonAndSelectValueFromDropDown 依次选择 SortOptions 中的每一项。
func (p *HomePage) ClickSortByButtonAndSelectValueFromDropDown(ctx context.Context) *HomePage {
	for _, option := range SortOptions {
		p.SortBy(ctx, option)
	}
	return p
}
