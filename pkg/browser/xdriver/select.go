package xdriver

import (
	"fmt"
	"strings"
)

var optionLocator = ByTagName("option")

// SelectByText 在 <select> 元素中选择可见文本等于 text 的选项。
// 文本比较前去除首尾空白；已选中的选项不再点击。
func SelectByText(el Element, text string) error {
	return selectOption(el, "text", text, func(opt Element) (string, error) {
		t, err := opt.Text()
		return strings.TrimSpace(t), err
	})
}

// SelectByValue 在 <select> 元素中选择 value 属性等于 value 的选项。
func SelectByValue(el Element, value string) error {
	return selectOption(el, "value", value, func(opt Element) (string, error) {
		return opt.GetAttribute("value")
	})
}

func selectOption(el Element, kind, want string, read func(Element) (string, error)) error {
	if el == nil {
		return ErrNilElement
	}
	tag, err := el.TagName()
	if err != nil {
		return err
	}
	if !strings.EqualFold(tag, "select") {
		return fmt.Errorf("%w: <%s>", ErrNotSelect, tag)
	}

	options, err := el.FindElements(optionLocator)
	if err != nil {
		return err
	}
	for _, opt := range options {
		got, err := read(opt)
		if err != nil {
			return err
		}
		if got != want {
			continue
		}
		selected, err := opt.IsSelected()
		if err != nil {
			return err
		}
		if selected {
			return nil
		}
		return opt.Click()
	}
	return fmt.Errorf("%w: %s %q", ErrNoSuchOption, kind, want)
}
