package scrape

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog"

	"github.com/uscdining/dishwatch/config"
	"github.com/uscdining/dishwatch/content"
	"github.com/uscdining/dishwatch/log"
)

const (
	DATE_INPUT_SELECTOR = "input#date, input.js-menu-date"
	// tabClickTimeoutMs bounds how long a missing tab is looked for.
	tabClickTimeoutMs = 10_000
)

// BrowserNavigator renders the menu page in headless Chromium through Playwright.
type BrowserNavigator struct {
	log      zerolog.Logger
	url      string
	timing   config.Timing
	headless bool

	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
}

func NewBrowserNavigator(url string, timing config.Timing, headless bool) *BrowserNavigator {
	return &BrowserNavigator{
		log:      log.NewLogger("browser"),
		url:      url,
		timing:   timing,
		headless: headless,
	}
}

func (b *BrowserNavigator) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.log.Info().Msg("Launching browser")

	pw, err := playwright.Run()
	if err != nil {
		return errors.Wrap(err, "failed to start playwright")
	}
	b.pw = pw

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(b.headless),
	})
	if err != nil {
		return errors.Wrap(err, "failed to launch chromium")
	}
	b.browser = browser

	page, err := browser.NewPage()
	if err != nil {
		return errors.Wrap(err, "failed to open page")
	}
	b.page = page

	b.log.Info().Str("url", b.url).Msg("Navigating to menu page")
	if _, err := page.Goto(b.url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(ms(b.timing.PageLoadTimeoutMs)),
	}); err != nil {
		return errors.Wrapf(ErrPageLoad, "%s: %s", b.url, err)
	}

	page.WaitForTimeout(ms(b.timing.PageSettleMs))
	return nil
}

func (b *BrowserNavigator) EnsureDateIsToday(ctx context.Context, todayISO string) {
	if ctx.Err() != nil {
		return
	}

	b.log.Info().Str("today", todayISO).Msg("Setting date picker to today")
	if err := b.setDate(todayISO); err != nil {
		b.log.Warn().Err(err).Msg("Could not set date picker, scraping the displayed date")
		return
	}

	b.page.WaitForTimeout(ms(b.timing.DateSettleMs))
}

func (b *BrowserNavigator) setDate(todayISO string) error {
	inputs := b.page.Locator(DATE_INPUT_SELECTOR)
	count, err := inputs.Count()
	if err != nil {
		return errors.Wrap(err, "failed to look up date input")
	}
	if count == 0 {
		return errors.New("could not find date input")
	}

	input := inputs.First()
	current, err := input.InputValue()
	if err != nil {
		return errors.Wrap(err, "failed to read date input")
	}

	b.log.Debug().Str("value", current).Msg("Current date value")
	if current == todayISO {
		b.log.Info().Msg("Date is already set to today")
		return nil
	}

	if err := input.Click(); err != nil {
		return errors.Wrap(err, "failed to open date picker")
	}
	b.page.WaitForTimeout(500)

	todayButton := b.page.GetByText("Today", playwright.PageGetByTextOptions{Exact: playwright.Bool(true)})
	if n, err := todayButton.Count(); err == nil && n > 0 {
		if err := todayButton.First().Click(); err != nil {
			return errors.Wrap(err, "failed to click Today")
		}
		b.log.Debug().Msg("Clicked \"Today\" button")
		b.page.WaitForTimeout(1000)
	} else {
		// No "Today" button, set the value and fire the change event by hand.
		if err := input.Fill(todayISO); err != nil {
			return errors.Wrap(err, "failed to fill date input")
		}

		script := fmt.Sprintf(`() => {
			const input = document.querySelector(%q)
			if (input) input.dispatchEvent(new Event('change', { bubbles: true }))
		}`, DATE_INPUT_SELECTOR)
		if _, err := b.page.Evaluate(script); err != nil {
			return errors.Wrap(err, "failed to dispatch change event")
		}
		b.log.Debug().Str("value", todayISO).Msg("Set date input")
		b.page.WaitForTimeout(2000)
	}

	updated, err := input.InputValue()
	if err != nil {
		return errors.Wrap(err, "failed to read date input after update")
	}
	b.log.Info().Str("value", updated).Msg("Date value after update")

	return nil
}

func (b *BrowserNavigator) SelectHallView(ctx context.Context, tabLabel string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tab := b.page.Locator("text=" + tabLabel).First()
	if err := tab.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(tabClickTimeoutMs),
	}); err != nil {
		return nil, errors.Wrapf(ErrTabNotFound, "%s: %s", tabLabel, err)
	}

	b.page.WaitForTimeout(ms(b.timing.TabSettleMs))

	text, err := b.page.InnerText("body")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read page text for %s", tabLabel)
	}

	return content.SplitLines(text), nil
}

func (b *BrowserNavigator) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return b.page.Content()
}

func (b *BrowserNavigator) Close() error {
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			b.log.Warn().Err(err).Msg("Failed to close browser")
		}
	}

	if b.pw != nil {
		return b.pw.Stop()
	}

	return nil
}
