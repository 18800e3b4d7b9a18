// Package xdrivertest 提供内存中的 xdriver.Session 与 xdriver.Element 实现，
// 用于不启动浏览器的单元测试。
//
// 页面由 Locator 到 Element 的映射描述；每个方法可预置一组错误，
// 依次在后续调用中返回，用来模拟元素未渲染、引用失效等瞬时失败。
package xdrivertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/omeyang/xfluent/pkg/browser/xdriver"
)

// 可预置错误的方法名。
const (
	MethodGet          = "Get"
	MethodCurrentURL   = "CurrentURL"
	MethodFindElement  = "FindElement"
	MethodQuit         = "Quit"
	MethodClick        = "Click"
	MethodSendKeys     = "SendKeys"
	MethodClear        = "Clear"
	MethodText         = "Text"
	MethodIsDisplayed  = "IsDisplayed"
	MethodMoveTo       = "MoveTo"
	MethodFindElements = "FindElements"
)

// failures 按方法名排队的错误。
type failures struct {
	queued map[string][]error
}

func (f *failures) push(method string, errs ...error) {
	if f.queued == nil {
		f.queued = make(map[string][]error)
	}
	f.queued[method] = append(f.queued[method], errs...)
}

func (f *failures) pop(method string) error {
	q := f.queued[method]
	if len(q) == 0 {
		return nil
	}
	f.queued[method] = q[1:]
	return q[0]
}

var _ xdriver.Session = (*Session)(nil)

// Session 内存浏览器会话，并发安全。
type Session struct {
	mu        sync.Mutex
	url       string
	redirects map[string]string
	elements  map[xdriver.Locator]*Element
	failures  failures
	visited   []string
	quits     int
}

// NewSession 创建空白页面的会话。
func NewSession() *Session {
	return &Session{
		url:       "about:blank",
		redirects: make(map[string]string),
		elements:  make(map[xdriver.Locator]*Element),
	}
}

// Add 在页面上放置元素并返回它。
func (s *Session) Add(loc xdriver.Locator, el *Element) *Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements[loc] = el
	return el
}

// Remove 从页面移除元素。
func (s *Session) Remove(loc xdriver.Locator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.elements, loc)
}

// Redirect 使导航到 from 时落在 to。
func (s *Session) Redirect(from, to string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redirects[from] = to
}

// Fail 令 method 的后续调用依次返回 errs。
func (s *Session) Fail(method string, errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures.push(method, errs...)
}

// Visited 返回 Get 成功导航过的地址。
func (s *Session) Visited() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.visited...)
}

// Quits 返回 Quit 被调用的次数。
func (s *Session) Quits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quits
}

func (s *Session) Get(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures.pop(MethodGet); err != nil {
		return err
	}
	if to, ok := s.redirects[url]; ok {
		url = to
	}
	s.url = url
	s.visited = append(s.visited, url)
	return nil
}

func (s *Session) CurrentURL() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures.pop(MethodCurrentURL); err != nil {
		return "", err
	}
	return s.url, nil
}

func (s *Session) FindElement(loc xdriver.Locator) (xdriver.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures.pop(MethodFindElement); err != nil {
		return nil, err
	}
	el, ok := s.elements[loc]
	if !ok {
		return nil, NoSuchElement(loc)
	}
	return el, nil
}

func (s *Session) FindElements(loc xdriver.Locator) ([]xdriver.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures.pop(MethodFindElements); err != nil {
		return nil, err
	}
	el, ok := s.elements[loc]
	if !ok {
		return []xdriver.Element{}, nil
	}
	return []xdriver.Element{el}, nil
}

// Wait 使用 xdriver.Poll 轮询。
func (s *Session) Wait(ctx context.Context, cond xdriver.Condition, timeout, interval time.Duration) error {
	return xdriver.Poll(ctx, s, cond, timeout, interval)
}

func (s *Session) Quit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quits++
	return s.failures.pop(MethodQuit)
}

var _ xdriver.Element = (*Element)(nil)

// Element 内存页面元素，并发安全。
//
// 零值为可见、可用的空 <div>。
type Element struct {
	mu       sync.Mutex
	tag      string
	text     string
	attrs    map[string]string
	value    string
	hidden   int
	disabled bool
	readOnly bool
	selected bool
	options  []*Element
	parent   *Element
	failures failures
	clicks   int
	moves    int
	clears   int
	sentKeys []string
}

// NewElement 创建元素。
func NewElement(opts ...ElementOption) *Element {
	e := &Element{tag: "div", attrs: make(map[string]string)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ElementOption 元素配置选项。
type ElementOption func(*Element)

// WithTag 设置标签名。
func WithTag(tag string) ElementOption {
	return func(e *Element) { e.tag = tag }
}

// WithText 设置可见文本。
func WithText(text string) ElementOption {
	return func(e *Element) { e.text = text }
}

// WithAttribute 设置属性。
func WithAttribute(name, value string) ElementOption {
	return func(e *Element) { e.attrs[name] = value }
}

// HiddenFor 令元素在前 n 次 IsDisplayed 检查中不可见。
func HiddenFor(n int) ElementOption {
	return func(e *Element) { e.hidden = n }
}

// Disabled 令元素不可用。
func Disabled() ElementOption {
	return func(e *Element) { e.disabled = true }
}

// ReadOnly 令 Clear 返回 invalid element state 错误。
func ReadOnly() ElementOption {
	return func(e *Element) { e.readOnly = true }
}

// Option 创建 <option> 元素。
func Option(value, text string) *Element {
	return NewElement(WithTag("option"), WithText(text), WithAttribute("value", value))
}

// Select 创建包含 options 的 <select> 元素，可见文本为各选项文本按行拼接。
func Select(options ...*Element) *Element {
	e := NewElement(WithTag("select"))
	texts := make([]string, 0, len(options))
	for _, opt := range options {
		opt.parent = e
		texts = append(texts, opt.text)
	}
	e.options = options
	e.text = strings.Join(texts, "\n")
	return e
}

// Fail 令 method 的后续调用依次返回 errs。
func (e *Element) Fail(method string, errs ...error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures.push(method, errs...)
}

// SetText 修改可见文本。
func (e *Element) SetText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = text
}

// Value 返回输入框当前内容。
func (e *Element) Value() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value
}

// SentKeys 返回 SendKeys 收到的全部输入。
func (e *Element) SentKeys() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.sentKeys...)
}

// Clicks 返回成功点击的次数。
func (e *Element) Clicks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clicks
}

// Moves 返回指针移入的次数。
func (e *Element) Moves() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.moves
}

// Clears 返回成功清空的次数。
func (e *Element) Clears() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clears
}

// Selected 返回被选中的选项值，没有则返回空字符串。
func (e *Element) Selected() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, opt := range e.options {
		if opt.isSelected() {
			return opt.attr("value")
		}
	}
	return ""
}

func (e *Element) isSelected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected
}

func (e *Element) attr(name string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attrs[name]
}

func (e *Element) Click() error {
	e.mu.Lock()
	if err := e.failures.pop(MethodClick); err != nil {
		e.mu.Unlock()
		return err
	}
	if e.disabled {
		e.mu.Unlock()
		return xdriver.NewError(xdriver.CodeNotInteractable, "element is disabled")
	}
	e.clicks++
	parent := e.parent
	e.mu.Unlock()

	if parent != nil {
		parent.choose(e)
	}
	return nil
}

// choose 单选：选中 opt，取消其他选项。
func (e *Element) choose(opt *Element) {
	e.mu.Lock()
	options := e.options
	e.mu.Unlock()
	for _, o := range options {
		o.mu.Lock()
		o.selected = o == opt
		o.mu.Unlock()
	}
}

func (e *Element) SendKeys(keys string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.failures.pop(MethodSendKeys); err != nil {
		return err
	}
	e.sentKeys = append(e.sentKeys, keys)
	e.value += keys
	return nil
}

func (e *Element) Clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.failures.pop(MethodClear); err != nil {
		return err
	}
	if e.readOnly {
		return xdriver.NewError(xdriver.CodeInvalidElementState, "element is read-only")
	}
	e.clears++
	e.value = ""
	return nil
}

func (e *Element) Text() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.failures.pop(MethodText); err != nil {
		return "", err
	}
	return e.text, nil
}

func (e *Element) IsDisplayed() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.failures.pop(MethodIsDisplayed); err != nil {
		return false, err
	}
	if e.hidden > 0 {
		e.hidden--
		return false, nil
	}
	return true, nil
}

func (e *Element) IsEnabled() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.disabled, nil
}

func (e *Element) IsSelected() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected, nil
}

func (e *Element) MoveTo(int, int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.failures.pop(MethodMoveTo); err != nil {
		return err
	}
	e.moves++
	return nil
}

func (e *Element) GetAttribute(name string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if name == "value" && e.tag != "option" {
		return e.value, nil
	}
	return e.attrs[name], nil
}

func (e *Element) TagName() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tag, nil
}

// FindElements 只支持按标签名查找 <option> 子元素。
func (e *Element) FindElements(loc xdriver.Locator) ([]xdriver.Element, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.failures.pop(MethodFindElements); err != nil {
		return nil, err
	}
	if loc.By != xdriver.StrategyTagName || !strings.EqualFold(loc.Value, "option") {
		return []xdriver.Element{}, nil
	}
	out := make([]xdriver.Element, 0, len(e.options))
	for _, opt := range e.options {
		out = append(out, opt)
	}
	return out, nil
}

// NoSuchElement 返回与真实驱动一致的元素不存在错误。
func NoSuchElement(loc xdriver.Locator) error {
	return xdriver.NewError(xdriver.CodeNoSuchElement, fmt.Sprintf("unable to locate element: %s", loc))
}

// StaleElement 返回元素引用失效错误。
func StaleElement() error {
	return xdriver.NewError(xdriver.CodeStaleElement, "element is not attached to the page document")
}

// NotInteractable 返回元素不可交互错误。
func NotInteractable() error {
	return xdriver.NewError(xdriver.CodeNotInteractable, "element not interactable")
}
