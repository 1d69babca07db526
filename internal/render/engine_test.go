package render_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"thiepcuoi.vn/web/internal/domain"
	"thiepcuoi.vn/web/internal/render"
	"thiepcuoi.vn/web/internal/testutil"
)

func TestRenderHTMLEscapesValues(t *testing.T) {
	t.Parallel()

	out := render.RenderHTML(`<h1>{{ groom_name }} &amp; {{bride_name}}</h1><p>{{unknown}}</p>`, map[string]string{
		"groom_name": `<script>alert("x")</script>`,
		"bride_name": "Lan's",
	})
	require.Equal(t, `<h1>&lt;script&gt;alert(&quot;x&quot;)&lt;&#x2F;script&gt; &amp; Lan&#x27;s</h1><p></p>`, out)
}

func TestRenderCSSStripsBreakoutCharacters(t *testing.T) {
	t.Parallel()

	out := render.RenderCSS(`.name{color:{{ color }};}`, map[string]string{"color": "red;}body{display:none"})
	require.Equal(t, `.name{color:redbodydisplay:none;}`, out)
}

func TestEngineRenderUsesBothContents(t *testing.T) {
	t.Parallel()

	html, css := render.NewEngine().Render(domain.CardTemplate{
		HTMLContent: `<p class="v">{{wedding_venue}}</p>`,
		CSSContent:  `.v{font-family:"{{font}}"}`,
	}, map[string]string{"wedding_venue": "Hà Nội", "font": "Dancing Script"})
	require.Equal(t, `<p class="v">Hà Nội</p>`, html)
	require.Equal(t, `.v{font-family:"Dancing Script"}`, css)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	engine := render.NewEngine()
	vars := `{"groom_name":"Tên chú rể","bride_name":"Tên cô dâu","wedding_date":"Ngày cưới","wedding_venue":"Địa điểm"}`
	full := map[string]string{
		"groom_name":    "Minh",
		"bride_name":    "Lan",
		"wedding_date":  "20/12/2026",
		"wedding_venue": "",
	}

	require.NoError(t, engine.Validate(vars, full))
	require.NoError(t, engine.Validate("", nil), "no declared variables accepts anything")

	blankRequired := map[string]string{"groom_name": " ", "bride_name": "Lan", "wedding_date": "x", "wedding_venue": ""}
	err := engine.Validate(vars, blankRequired)
	require.ErrorIs(t, err, render.ErrInvalidData)
	var verr *render.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, []string{"groom_name"}, verr.Missing)

	absent := map[string]string{"groom_name": "Minh", "bride_name": "Lan", "wedding_date": "x"}
	err = engine.Validate(vars, absent)
	require.ErrorAs(t, err, &verr)
	require.Equal(t, []string{"wedding_venue"}, verr.Missing)

	err = engine.Validate(`{not json`, full)
	require.ErrorAs(t, err, &verr)
	require.True(t, verr.Malformed)
}

func TestPlaceholders(t *testing.T) {
	t.Parallel()

	got := render.Placeholders(`{{a}} {{ b }} {{a}}`)
	require.Equal(t, []string{"a", "b"}, got)
}

func TestSanitizeDropsScripts(t *testing.T) {
	t.Parallel()

	out := render.Sanitize(`<div class="card" onclick="steal()"><script>x()</script><h2>Minh</h2></div>`)
	require.NotContains(t, out, "script")
	require.NotContains(t, out, "onclick")
	require.Contains(t, out, `class="card"`)
	require.Contains(t, out, "<h2>Minh</h2>")
}

func TestDocumentEmbedsCSS(t *testing.T) {
	t.Parallel()

	doc, err := render.Document(`<div class="card"><h1>Minh</h1></div>`, `.card{color:red}`)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))

	dom := testutil.ParseString(t, doc)
	require.Equal(t, ".card{color:red}", dom.Find("head style").Text())
	require.Equal(t, "Minh", dom.Find("body .card h1").Text())
}

func TestMarkdownIsSanitized(t *testing.T) {
	t.Parallel()

	out := string(render.Markdown("**Sang trọng**\n\n<script>x()</script>"))
	require.Contains(t, out, "<strong>Sang trọng</strong>")
	require.NotContains(t, out, "<script>")
}

type templateSource map[domain.ID]domain.CardTemplate

func (s templateSource) CardTemplate(_ context.Context, id domain.ID) (domain.CardTemplate, error) {
	tpl, ok := s[id]
	if !ok {
		return domain.CardTemplate{}, errors.New("not found")
	}
	return tpl, nil
}

type recordingSaver struct {
	saved []domain.CustomizedCard
}

func (r *recordingSaver) SaveCard(_ context.Context, card domain.CustomizedCard) (domain.CustomizedCard, error) {
	card.ID = "card-1"
	r.saved = append(r.saved, card)
	return card, nil
}

func TestLocalRendererPreviewNeverSaves(t *testing.T) {
	t.Parallel()

	saver := &recordingSaver{}
	r := render.NewLocalRenderer(templateSource{
		"5": {ID: "5", TemplateID: "2", CardTemplateName: "Cổ điển", HTMLContent: "<h1>{{groom_name}} - {{bride_name}}</h1>"},
	}, saver)
	data := map[string]string{"groom_name": "Minh", "bride_name": "Lan"}

	card, err := r.Render(context.Background(), domain.RenderRequest{CardTemplateID: "5", CustomData: data})
	require.NoError(t, err)
	require.True(t, card.ID.IsZero())
	require.Empty(t, saver.saved)
	require.Equal(t, "<h1>Minh - Lan</h1>", card.RenderedHTML)

	card, err = r.Render(context.Background(), domain.RenderRequest{CardTemplateID: "5", CustomData: data, SaveCard: true})
	require.NoError(t, err)
	require.Equal(t, domain.ID("card-1"), card.ID)
	require.True(t, card.IsSaved)
	require.Len(t, saver.saved, 1)
	require.Equal(t, "Minh", saver.saved[0].GroomName)
}

func TestLocalRendererSaveWithoutSaver(t *testing.T) {
	t.Parallel()

	r := render.NewLocalRenderer(templateSource{"5": {ID: "5", HTMLContent: "x"}}, nil)
	_, err := r.Render(context.Background(), domain.RenderRequest{CardTemplateID: "5", SaveCard: true})
	require.ErrorIs(t, err, render.ErrSaveUnavailable)
}
