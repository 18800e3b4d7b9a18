package xdriver

import "github.com/tebeka/selenium"

// By 元素定位策略，取值与 WebDriver 协议一致。
type By string

// 支持的定位策略。
const (
	StrategyID          By = selenium.ByID
	StrategyName        By = selenium.ByName
	StrategyXPath       By = selenium.ByXPATH
	StrategyCSSSelector By = selenium.ByCSSSelector
	StrategyTagName     By = selenium.ByTagName
	StrategyLinkText    By = selenium.ByLinkText
)

var byNames = map[By]string{
	StrategyID:          "Id",
	StrategyName:        "Name",
	StrategyXPath:       "XPath",
	StrategyCSSSelector: "CssSelector",
	StrategyTagName:     "TagName",
	StrategyLinkText:    "LinkText",
}

// Locator 描述如何在页面上找到元素。Locator 是值类型，可作为 map 键。
type Locator struct {
	By    By
	Value string
}

// ByID 按 id 属性定位。
func ByID(id string) Locator { return Locator{By: StrategyID, Value: id} }

// ByName 按 name 属性定位。
func ByName(name string) Locator { return Locator{By: StrategyName, Value: name} }

// ByXPath 按 XPath 表达式定位。
func ByXPath(expr string) Locator { return Locator{By: StrategyXPath, Value: expr} }

// ByCSS 按 CSS 选择器定位。
func ByCSS(selector string) Locator { return Locator{By: StrategyCSSSelector, Value: selector} }

// ByTagName 按标签名定位。
func ByTagName(tag string) Locator { return Locator{By: StrategyTagName, Value: tag} }

// ByLinkText 按链接文本定位。
func ByLinkText(text string) Locator { return Locator{By: StrategyLinkText, Value: text} }

// String 返回 "By.Id: search_query_top" 形式的描述，用于错误消息与日志。
func (l Locator) String() string {
	name, ok := byNames[l.By]
	if !ok {
		name = string(l.By)
	}
	return "By." + name + ": " + l.Value
}

// IsZero 判断是否为未设置的定位器。
func (l Locator) IsZero() bool {
	return l.By == "" && l.Value == ""
}
