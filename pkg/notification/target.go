package notification

import (
	"context"
	"fmt"

	"github.com/cpiprint/zap-notify/pkg/core"
)

// Metadata keys read by MetadataTargets.
const (
	MetaName           = "notify_name"
	MetaEmail          = "notify_email"
	MetaTelegramChatID = "notify_telegram_chat_id"
)

// MetadataTargets resolves routes from the schedule's metadata. It lets a
// deployment without a user table address mail and telegram recipients.
var MetadataTargets core.TargetResolver = core.TargetResolverFunc(metadataTarget)

func metadataTarget(_ context.Context, s *core.Schedule) (core.Target, error) {
	t := s.Target()
	if s.Metadata == nil {
		return t, nil
	}
	t.Name = metaString(s.Metadata[MetaName])
	routes := make(map[core.Channel]string)
	if v := metaString(s.Metadata[MetaEmail]); v != "" {
		routes[core.ChannelMail] = v
	}
	if v := metaString(s.Metadata[MetaTelegramChatID]); v != "" {
		routes[core.ChannelTelegram] = v
	}
	if len(routes) > 0 {
		t.Routes = routes
	}
	return t, nil
}

// metaString formats scalar metadata values. JSON numbers decode as
// float64, so whole numbers are printed without a fraction.
func metaString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprint(x)
	default:
		return fmt.Sprint(x)
	}
}
