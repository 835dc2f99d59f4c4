package scrape

import (
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/uscdining/dishwatch/config"
	"github.com/uscdining/dishwatch/content"
	"github.com/uscdining/dishwatch/log"
	"github.com/uscdining/dishwatch/util"
)

const USER_AGENT = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// StaticNavigator reads the menu page without a browser, from an HTTP URL or a
// local HTML file. Nothing on the page is executed, so it only sees the menu
// as served and cannot change the page's date.
type StaticNavigator struct {
	log    zerolog.Logger
	source string
	client *resty.Client

	raw []byte
	doc *goquery.Document
}

func NewStaticNavigator(source string, timing config.Timing) *StaticNavigator {
	client := resty.New().
		SetTimeout(timing.PageLoadTimeout()).
		SetHeader("User-Agent", USER_AGENT).
		SetHeader("Accept", "text/html,application/xhtml+xml")

	return &StaticNavigator{
		log:    log.NewLogger("static"),
		source: source,
		client: client,
	}
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func (s *StaticNavigator) Open(ctx context.Context) error {
	var raw []byte

	if isURL(s.source) {
		res, err := s.client.R().SetContext(ctx).Get(s.source)
		if err != nil {
			return errors.Wrapf(ErrPageLoad, "%s: %s", s.source, err)
		}
		if res.IsError() {
			return errors.Wrapf(ErrPageLoad, "%s: %s", s.source, res.Status())
		}
		raw = res.Body()
	} else {
		file, err := os.ReadFile(strings.TrimPrefix(s.source, "file://"))
		if err != nil {
			return errors.Wrapf(ErrPageLoad, "%s: %s", s.source, err)
		}
		raw = file
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return errors.Wrap(err, "failed to parse menu page")
	}

	s.raw = raw
	s.doc = doc
	s.log.Info().Str("source", s.source).Str("size", util.FormatBytes(int64(len(raw)))).Msg("Loaded menu page")

	return nil
}

func (s *StaticNavigator) EnsureDateIsToday(_ context.Context, todayISO string) {
	value, ok := s.doc.Find(DATE_INPUT_SELECTOR).First().Attr("value")
	switch {
	case !ok:
		s.log.Warn().Msg("Could not find date input")
	case value != todayISO:
		s.log.Warn().Str("page", value).Str("today", todayISO).Msg("Page shows a different date, scraping it anyway")
	default:
		s.log.Debug().Msg("Date is already set to today")
	}
}

// findTab returns the tab control whose text contains label.
func (s *StaticNavigator) findTab(label string) *goquery.Selection {
	return s.doc.Find(`[role="tab"], .nav-tabs a, .tabs a, button`).FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return strings.Contains(strings.TrimSpace(sel.Text()), label)
	}).First()
}

// panelFor returns the element a tab controls, through aria-controls or an
// in-page href.
func (s *StaticNavigator) panelFor(tab *goquery.Selection) *goquery.Selection {
	id, ok := tab.Attr("aria-controls")
	if !ok {
		href, _ := tab.Attr("href")
		id, ok = strings.CutPrefix(href, "#")
	}

	if !ok || id == "" {
		return nil
	}

	panel := s.doc.Find(`[id="` + id + `"]`).First()
	if panel.Length() == 0 {
		return nil
	}
	return panel
}

func (s *StaticNavigator) SelectHallView(ctx context.Context, tabLabel string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tab := s.findTab(tabLabel)
	if tab.Length() == 0 {
		return nil, errors.Wrap(ErrTabNotFound, tabLabel)
	}

	view := s.panelFor(tab)
	if view == nil {
		s.log.Debug().Str("tab", tabLabel).Msg("Tab has no panel, using the whole page")
		view = s.doc.Find("body")
	}

	lines := make([]string, 0)
	for _, node := range view.Nodes {
		lines = append(lines, content.SplitLines(panelText(node))...)
	}

	return lines, nil
}

// panelText renders the children of a panel. The panel itself is usually
// hidden until its tab is clicked, which never happens without a browser.
func panelText(panel *html.Node) string {
	var text strings.Builder
	for child := panel.FirstChild; child != nil; child = child.NextSibling {
		text.WriteString(content.VisibleText(child))
	}
	return text.String()
}

func (s *StaticNavigator) HTML(_ context.Context) (string, error) {
	return string(s.raw), nil
}

func (s *StaticNavigator) Close() error {
	return nil
}
