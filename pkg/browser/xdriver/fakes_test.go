package xdriver

import (
	"fmt"
	"sync"
	"time"

	"github.com/tebeka/selenium"
)

// fakeWebDriver 只实现适配器用到的 selenium.WebDriver 方法，其余方法调用会 panic。
type fakeWebDriver struct {
	selenium.WebDriver

	mu       sync.Mutex
	url      string
	elements map[string]*fakeWebElement
	quits    int
}

func newFakeWebDriver() *fakeWebDriver {
	return &fakeWebDriver{elements: make(map[string]*fakeWebElement)}
}

func (d *fakeWebDriver) key(by, value string) string { return by + "=" + value }

func (d *fakeWebDriver) Get(url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.url = url
	return nil
}

func (d *fakeWebDriver) CurrentURL() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url, nil
}

func (d *fakeWebDriver) FindElement(by, value string) (selenium.WebElement, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	el, ok := d.elements[d.key(by, value)]
	if !ok {
		return nil, &selenium.Error{Err: CodeNoSuchElement, Message: value}
	}
	return el, nil
}

func (d *fakeWebDriver) FindElements(by, value string) ([]selenium.WebElement, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if el, ok := d.elements[d.key(by, value)]; ok {
		return []selenium.WebElement{el}, nil
	}
	return nil, nil
}

// WaitWithTimeoutAndInterval 与 selenium 的实现一致：判定报错立即返回，超时返回普通错误。
func (d *fakeWebDriver) WaitWithTimeoutAndInterval(cond selenium.Condition, timeout, interval time.Duration) error {
	start := time.Now()
	for {
		done, err := cond(d)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if elapsed := time.Since(start); elapsed > timeout {
			return fmt.Errorf("timeout after %v", elapsed)
		}
		time.Sleep(interval)
	}
}

func (d *fakeWebDriver) Quit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.quits++
	return nil
}

type fakeWebElement struct {
	selenium.WebElement

	text     string
	keys     string
	clicks   int
	children []selenium.WebElement
}

func (e *fakeWebElement) Click() error {
	e.clicks++
	return nil
}

func (e *fakeWebElement) SendKeys(keys string) error {
	e.keys += keys
	return nil
}

func (e *fakeWebElement) Clear() error {
	e.keys = ""
	return nil
}

func (e *fakeWebElement) Text() (string, error) {
	return e.text, nil
}

func (e *fakeWebElement) IsDisplayed() (bool, error) {
	return true, nil
}

func (e *fakeWebElement) IsEnabled() (bool, error) {
	return true, nil
}

func (e *fakeWebElement) IsSelected() (bool, error) {
	return false, nil
}

func (e *fakeWebElement) MoveTo(int, int) error {
	return nil
}

func (e *fakeWebElement) TagName() (string, error) {
	return "div", nil
}

func (e *fakeWebElement) GetAttribute(name string) (string, error) {
	return name, nil
}

func (e *fakeWebElement) FindElements(string, string) ([]selenium.WebElement, error) {
	return e.children, nil
}
