package pdf

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/statement-press/internal/engine"
	"github.com/Veraticus/statement-press/internal/model"
	"github.com/Veraticus/statement-press/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func composeDoc(t *testing.T, profile string, n int) Document {
	t.Helper()

	p, err := engine.LookupProfile(profile)
	require.NoError(t, err)

	txns := testutil.CashLedger("ACC-1", n)
	if p.Variant == model.VariantUnitFund {
		txns = testutil.FundLedger("ACC-1", n)
	}

	pages, err := engine.Compose(engine.Statement{
		Name:         "render-test",
		Holder:       testutil.Holder("ACC-1"),
		Branding:     engine.DefaultBranding(),
		Transactions: txns,
		Profile:      p,
	})
	require.NoError(t, err)

	return Document{Title: "render-test", Profile: p, Pages: pages}
}

func TestRender(t *testing.T) {
	for _, profile := range engine.ProfileNames() {
		t.Run(profile, func(t *testing.T) {
			doc := composeDoc(t, profile, 40)

			var progress []int
			r := NewRenderer(nil, WithProgress(func(done, total int) {
				assert.Equal(t, len(doc.Pages), total)
				progress = append(progress, done)
			}))

			var buf bytes.Buffer
			require.NoError(t, r.Render(context.Background(), &buf, doc))

			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
			assert.Len(t, progress, len(doc.Pages))
			assert.Equal(t, len(doc.Pages), progress[len(progress)-1])
		})
	}
}

func TestRender_NoPages(t *testing.T) {
	err := NewRenderer(nil).Render(context.Background(), &bytes.Buffer{}, Document{Title: "empty"})
	assert.Error(t, err)
}

func TestRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewRenderer(nil).Render(ctx, &bytes.Buffer{}, composeDoc(t, engine.ProfileCashFlow, 5))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out-temp.pdf")

	require.NoError(t, NewRenderer(nil).RenderFile(context.Background(), path, composeDoc(t, engine.ProfileUnitFund, 3)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRenderFile_RemovesPartialOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken-temp.pdf")

	err := NewRenderer(nil).RenderFile(context.Background(), path, Document{Title: "broken"})
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRender_MissingLogoIsSkipped(t *testing.T) {
	doc := composeDoc(t, engine.ProfileCashFlow, 2)
	for i := range doc.Pages {
		doc.Pages[i].Header.LogoPath = filepath.Join(t.TempDir(), "missing.png")
	}

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(nil).Render(context.Background(), &buf, doc))
	assert.NotZero(t, buf.Len())
}

func TestPaletteFallsBackToDefault(t *testing.T) {
	p := Palette{engine.ToneDefault: {R: 1, G: 2, B: 3}}
	assert.Equal(t, RGB{R: 1, G: 2, B: 3}, p.color(engine.ToneSale))
}

func TestDefaultPalette(t *testing.T) {
	p := DefaultPalette()
	assert.Equal(t, RGB{R: 190, G: 0, B: 0}, p.color(engine.ToneAccent))
	assert.Equal(t, RGB{R: 230, G: 230, B: 230}, p.color(engine.ToneNeutral))
	assert.NotEqual(t, p.color(engine.TonePurchase), p.color(engine.ToneSale))
}
