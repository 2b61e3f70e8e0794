package transcript

import (
	"testing"

	"github.com/stretchr/testify/require"

	"querychat/internal/models"
	"querychat/internal/session"
)

func entry(content string, user bool, delivery session.Delivery) session.Entry {
	return session.Entry{
		Message:  models.Message{Content: content, IsUserMessage: user},
		Delivery: delivery,
	}
}

func TestRender(t *testing.T) {
	out := Render([]session.Entry{
		entry("hello", true, session.Delivered),
		entry("Merci pour votre message !", false, session.Delivered),
	}, false)

	require.Equal(t, "[vous] hello\n[bot]  Merci pour votre message !\n", out)
}

func TestRender_FailedAndTyping(t *testing.T) {
	out := Render([]session.Entry{
		entry("hello", true, session.Failed),
	}, true)

	require.Equal(t, "[vous] hello (non envoyé)\n[bot]  …\n", out)
}

func TestRender_Empty(t *testing.T) {
	require.Equal(t, "", Render(nil, false))
}
