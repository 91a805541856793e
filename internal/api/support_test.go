package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/avereyes/promptdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (a *testApp) postForm(t *testing.T, cookie *http.Cookie, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		r.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, r)
	return w
}

func TestLooksNetworkRelated(t *testing.T) {
	assert.True(t, looksNetworkRelated("Excel says cannot connect to server"))
	assert.True(t, looksNetworkRelated("VPN drops every hour"))
	assert.False(t, looksNetworkRelated("my formula returns the wrong value"))
}

func TestHelpRendersSteps(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t)
	app.gw.replies = []string{"1. Open Insert.\n2. Warning: this replaces the header.\n3. Click Save."}

	w := app.postForm(t, cookie, "/help", url.Values{"question": {"How do I add a header in Word?"}})

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Open Insert.")
	assert.Contains(t, body, "this replaces the header")
}

func TestHelpGatewayFailureShowsDegradedMessage(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t)

	w := app.postForm(t, cookie, "/help", url.Values{"question": {"anything"}})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "error fetching help")
}

func TestAskHelpRequiresBothFields(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t)

	w := app.postForm(t, cookie, "/ask_help", url.Values{"app": {"Word"}})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "select an app and describe the problem")
}

func TestTroubleshooterSplitsSections(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t)
	app.gw.replies = []string{
		"Step-by-Step Fix:\n1. Restart Outlook.\n2. Clear the cache.\nCopilot Prompt:\nHelp me fix Outlook sync errors.",
	}

	w := app.postForm(t, cookie, "/troubleshooter", url.Values{
		"m365_app":    {"Outlook"},
		"description": {"emails stuck in outbox"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Restart Outlook.")
	assert.Contains(t, body, "Help me fix Outlook sync errors.")
}

func TestTroubleshooterFlagsNetworkIssues(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t)
	app.gw.replies = []string{"Step-by-Step Fix:\n1. Check the cable."}

	w := app.postForm(t, cookie, "/troubleshooter", url.Values{
		"m365_app":    {"Teams"},
		"description": {"cannot connect, maybe the VPN"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "network or connectivity issue")
}

func TestToViewCardsKeepsEscapedText(t *testing.T) {
	cards := toViewCards([]domain.Card{{Number: 1, Text: "Click &lt;File&gt;", Flagged: true}})

	require.Len(t, cards, 1)
	assert.Equal(t, 1, cards[0].Number)
	assert.Equal(t, "Click &lt;File&gt;", string(cards[0].Text))
	assert.True(t, cards[0].Flagged)
}
