package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpiprint/zap-notify/pkg/core"
)

func TestMetadataTargets(t *testing.T) {
	s := testSchedule()
	s.Metadata = map[string]any{
		MetaName:           "Ada",
		MetaEmail:          "ada@example.com",
		MetaTelegramChatID: float64(-100123456789),
	}

	tg, err := MetadataTargets.ResolveTarget(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "user#42", tg.String())
	assert.Equal(t, "Ada", tg.Name)

	mail, ok := tg.Route(core.ChannelMail)
	assert.True(t, ok)
	assert.Equal(t, "ada@example.com", mail)
	chat, ok := tg.Route(core.ChannelTelegram)
	assert.True(t, ok)
	assert.Equal(t, "-100123456789", chat)
}

func TestMetadataTargets_NoMetadata(t *testing.T) {
	tg, err := MetadataTargets.ResolveTarget(context.Background(), testSchedule())
	require.NoError(t, err)
	assert.Empty(t, tg.Routes)
	_, ok := tg.Route(core.ChannelMail)
	assert.False(t, ok)
}
