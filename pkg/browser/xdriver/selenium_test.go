package xdriver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tebeka/selenium"
)

func TestNewSession_Nil(t *testing.T) {
	_, err := NewSession(nil)
	assert.ErrorIs(t, err, ErrNilSession)
}

func TestSeleniumSession_Delegates(t *testing.T) {
	wd := newFakeWebDriver()
	el := &fakeWebElement{text: "FADED SHORT SLEEVE T-SHIRTS", children: []selenium.WebElement{&fakeWebElement{}}}
	wd.elements[wd.key("id", "search_query_top")] = el

	s, err := NewSession(wd)
	require.NoError(t, err)

	require.NoError(t, s.Get("http://shop.test/index.php"))
	url, err := s.CurrentURL()
	require.NoError(t, err)
	assert.Equal(t, "http://shop.test/index.php", url)

	got, err := s.FindElement(ByID("search_query_top"))
	require.NoError(t, err)
	require.NoError(t, got.SendKeys("Faded"))
	require.NoError(t, got.Click())
	require.NoError(t, got.MoveTo(0, 0))
	assert.Equal(t, "Faded", el.keys)
	assert.Equal(t, 1, el.clicks)

	text, err := got.Text()
	require.NoError(t, err)
	assert.Equal(t, "FADED SHORT SLEEVE T-SHIRTS", text)

	children, err := got.FindElements(ByTagName("option"))
	require.NoError(t, err)
	assert.Len(t, children, 1)

	all, err := s.FindElements(ByID("search_query_top"))
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = s.FindElement(ByName("missing"))
	assert.True(t, IsNoSuchElement(err))

	require.NoError(t, s.Quit())
	assert.Equal(t, 1, wd.quits)
}

func TestSeleniumSession_Wait(t *testing.T) {
	s, err := NewSession(newFakeWebDriver())
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("Satisfied", func(t *testing.T) {
		var calls int
		err := s.Wait(ctx, func(Session) (bool, error) {
			calls++
			return calls == 3, nil
		}, time.Second, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("TimeoutMapsToErrWaitTimeout", func(t *testing.T) {
		err := s.Wait(ctx, func(Session) (bool, error) {
			return false, nil
		}, 10*time.Millisecond, time.Millisecond)
		assert.ErrorIs(t, err, ErrWaitTimeout)
	})

	t.Run("ConditionErrorReturned", func(t *testing.T) {
		boom := errors.New("invalid selector")
		err := s.Wait(ctx, func(Session) (bool, error) {
			return false, boom
		}, time.Second, time.Millisecond)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrWaitTimeout)
	})

	t.Run("ContextCanceled", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		err := s.Wait(canceled, func(Session) (bool, error) {
			return true, nil
		}, time.Second, time.Millisecond)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("NilCondition", func(t *testing.T) {
		assert.ErrorIs(t, s.Wait(ctx, nil, time.Second, time.Millisecond), ErrNilCondition)
	})
}
