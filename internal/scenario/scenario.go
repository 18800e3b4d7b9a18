// Package scenario 登记可由命令行运行的首页测试场景。
package scenario

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/omeyang/xfluent/internal/pages/home"
	"github.com/omeyang/xfluent/pkg/browser/xfixture"
)

// All 选择全部场景的名称。
const All = "all"

// ErrUnknown 场景名未登记。
var ErrUnknown = errors.New("scenario: unknown scenario")

// Func 在一个已打开的夹具上执行场景。
type Func func(ctx context.Context, f *xfixture.Fixture) error

// Scenario 具名测试场景。
type Scenario struct {
	Name        string
	Description string
	Run         Func
}

var registry = []Scenario{
	{Name: "search", Description: "搜索 T 恤并校验结果标题", Run: Search},
	{Name: "sort", Description: "打开 Women 分类并依次选择每个排序项", Run: Sort},
}

// List 返回全部场景，按登记顺序。
func List() []Scenario {
	return append([]Scenario(nil), registry...)
}

// Lookup 按名称查找场景，忽略大小写与首尾空白。
func Lookup(name string) (Scenario, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, s := range registry {
		if s.Name == n {
			return s, nil
		}
	}
	return Scenario{}, fmt.Errorf("%w: %q", ErrUnknown, name)
}

// Resolve 把名称列表解析为场景，空列表或包含 All 时返回全部场景。重复名称只保留一次。
func Resolve(names []string) ([]Scenario, error) {
	if len(names) == 0 {
		return List(), nil
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]Scenario, 0, len(names))
	for _, name := range names {
		if strings.EqualFold(strings.TrimSpace(name), All) {
			return List(), nil
		}
		s, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[s.Name]; ok {
			continue
		}
		seen[s.Name] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

// Search 打开首页，搜索 home.SearchValue 并校验结果标题。
func Search(ctx context.Context, f *xfixture.Fixture) error {
	return home.Open(ctx, f, true).
		EnterValueInTheSearchField(ctx).
		ClickSearchButton(ctx).
		ValidateSearchText(ctx).
		Err()
}

// Sort 打开首页，进入 Women 分类后依次选择 home.SortOptions。
func Sort(ctx context.Context, f *xfixture.Fixture) error {
	return home.Open(ctx, f, true).
		ClickWomenMenu(ctx).
		ClickSortByButtonAndSelectValueFromDropDown(ctx).
		Err()
}
