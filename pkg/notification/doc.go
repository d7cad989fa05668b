// Package notification resolves and dispatches schedule notifications.
//
// A Notification is built by a named Factory held in a Registry. The name is
// stored on the schedule (before_notification_class / after_notification_class)
// together with an optional payload. When the payload carries a
// "constructor_params" object, the factory's declared parameter names are
// matched against it positionally; otherwise the factory receives the
// schedule and payload directly.
//
// Notifications declare their channels with Via and render one Payload per
// channel. Delivery itself is delegated to a Delivery implementation, chosen
// per send between queued and immediate according to core.Config.Queue.
//
// The built-in "zap.starting" and "zap.completed" notifications are
// registered by RegisterDefaults.
package notification
