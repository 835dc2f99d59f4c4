package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uscdining/dishwatch/config"
)

func menuServer(t *testing.T) *httptest.Server {
	t.Helper()

	page, err := os.ReadFile(filepath.Join("testdata", "menu.html"))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dining-hall-menus/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func openStatic(t *testing.T, source string) *StaticNavigator {
	t.Helper()

	nav := NewStaticNavigator(source, config.Default().Timing)
	require.NoError(t, nav.Open(context.Background()))
	t.Cleanup(func() { nav.Close() })

	return nav
}

func TestStaticSelectHallView(t *testing.T) {
	srv := menuServer(t)
	nav := openStatic(t, srv.URL+"/dining-hall-menus/")
	ctx := context.Background()

	lines, err := nav.SelectHallView(ctx, "USC Village")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Breakfast", "EXPO", "Belgian Waffle", "Flour", "dairy",
		"Lunch", "GRILL", "Cheeseburger", "Beef Patty",
		"EXPO", "Grilled Salmon", "Salmon", "Lemon", "fish",
		"Dinner", "EXPO", "Grilled Salmon", "Salmon", "Dill",
	}, lines)

	// Hidden panels are still read: their tab is never clicked.
	lines, err = nav.SelectHallView(ctx, "Parkside")
	require.NoError(t, err)
	assert.Equal(t, []string{"Lunch", "BISTRO", "Chicken Pesto Pasta", "Penne", "Basil Pesto"}, lines)

	lines, err = nav.SelectHallView(ctx, "Everybody")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Lunch", "SALAD BAR", "Romaine", "QUESADILLA BAR", "Cheese", "Salsa",
		"Dinner", "PHO BAR", "Rice Noodles", "Beef Broth",
	}, lines)
}

func TestStaticTabNotFound(t *testing.T) {
	srv := menuServer(t)
	nav := openStatic(t, srv.URL+"/dining-hall-menus/")

	_, err := nav.SelectHallView(context.Background(), "McCarthy Quad")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTabNotFound))
}

func TestStaticOpenFails(t *testing.T) {
	srv := menuServer(t)

	nav := NewStaticNavigator(srv.URL+"/missing/", config.Default().Timing)
	err := nav.Open(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPageLoad))

	nav = NewStaticNavigator(filepath.Join(t.TempDir(), "nope.html"), config.Default().Timing)
	err = nav.Open(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPageLoad))
}

func TestStaticFromFile(t *testing.T) {
	nav := openStatic(t, filepath.Join("testdata", "menu.html"))

	// Only logs, the page's date cannot be changed.
	nav.EnsureDateIsToday(context.Background(), "2024-09-04")

	lines, err := nav.SelectHallView(context.Background(), "Parkside")
	require.NoError(t, err)
	assert.Contains(t, lines, "BISTRO")

	raw, err := nav.HTML(context.Background())
	require.NoError(t, err)
	assert.Contains(t, raw, `id="evk"`)
}

func TestStaticPanelFallsBackToBody(t *testing.T) {
	page := `<html><body><button>Parkside</button><p>Lunch</p><p>BISTRO</p></body></html>`
	path := filepath.Join(t.TempDir(), "menu.html")
	require.NoError(t, os.WriteFile(path, []byte(page), 0o644))

	nav := openStatic(t, path)
	lines, err := nav.SelectHallView(context.Background(), "Parkside")
	require.NoError(t, err)
	assert.Equal(t, []string{"Parkside", "Lunch", "BISTRO"}, lines)
}
