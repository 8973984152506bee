package mailtemplate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var received = time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)

func TestRenderEscapesUserContent(t *testing.T) {
	out, err := Render(ManagerRequest{
		Subject:     "Budget <update>",
		ClientName:  `<script>alert("x")</script>`,
		ClientEmail: `eve@example.com"><img src=x>`,
		Message:     "Line one & <b>bold</b>",
		ReceivedAt:  received,
	})
	require.NoError(t, err)

	assert.NotContains(t, out.HTML, "<script>")
	assert.Contains(t, out.HTML, "&lt;script&gt;")
	assert.NotContains(t, out.HTML, "<b>bold</b>")
	assert.Contains(t, out.HTML, "Line one &amp; &lt;b&gt;bold&lt;/b&gt;")
	assert.NotContains(t, out.HTML, `"><img src=x>`)
	assert.Contains(t, out.HTML, "Budget &lt;update&gt;")
}

func TestRenderDefaults(t *testing.T) {
	out, err := Render(ManagerRequest{
		ClientName:  "Ann",
		ClientEmail: "ann@example.com",
		Message:     "Please call me",
		ReceivedAt:  received,
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultSubject, out.Subject)
	assert.Contains(t, out.HTML, "Hi Manager,")
	assert.Contains(t, out.HTML, `href="mailto:ann@example.com"`)
	assert.Contains(t, out.HTML, "Mar 9, 2024 14:30:00 UTC")
	assert.NotContains(t, out.HTML, "View in Dashboard")
}

func TestRenderText(t *testing.T) {
	out, err := Render(ManagerRequest{
		Subject:      "Site visit",
		ClientName:   "Ann <Client>",
		ClientEmail:  "ann@example.com",
		Message:      "Tomorrow 9am?",
		ReceivedAt:   received,
		DashboardURL: "https://bim.example.com/messages",
	})
	require.NoError(t, err)

	assert.True(t, len(out.Text) > 0)
	assert.Contains(t, out.Text, "Site visit")
	assert.Contains(t, out.Text, "Name: Ann <Client>")
	assert.Contains(t, out.Text, "Message:\nTomorrow 9am?")
	assert.Contains(t, out.Text, "View in Dashboard: https://bim.example.com/messages")
	assert.Contains(t, out.HTML, `href="https://bim.example.com/messages"`)
}
