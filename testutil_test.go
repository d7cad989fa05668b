package zap_test

import (
	"context"
	"time"

	zap "github.com/cpiprint/zap-notify"
)

type fixed time.Time

func (f fixed) Now() time.Time { return time.Time(f) }

type nopDelivery struct{}

func (nopDelivery) SendNow(context.Context, zap.Target, zap.Notification) error    { return nil }
func (nopDelivery) SendQueued(context.Context, zap.Target, zap.Notification) error { return nil }
