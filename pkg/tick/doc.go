// Package tick runs one notification tick: the once-per-minute pass that
// finds every before/after notification due at the current minute and
// dispatches each (period, type, notify-at) triple at most once.
//
// A tick plans firings first. For before-notifications it considers period
// occurrences from today forward, for after-notifications from today back,
// as many days as the longest offset reaches, so offsets that cross
// midnight fire on the right minute. Only instants equal to the current
// minute are kept.
//
// Each firing is then checked against the ledger, dispatched, and recorded.
// Delivery failures are logged and recorded like successes so a failing
// notification is not retried every minute. In claim-first mode the ledger
// row is inserted atomically before dispatch, which makes concurrent ticks
// from several processes safe.
package tick
