// Package delivery sends rendered notifications through per-channel senders.
//
// This package includes:
//   - Service: implements notification.Delivery with immediate (SendNow) and
//     queued (SendQueued) paths; the queue is drained by a worker pool with a
//     token-bucket rate limiter and retry with exponential backoff
//   - Senders for the log, database, broadcast, telegram and mail channels
//
// Errors wrapped with core.NoRetry are not retried; core.RetryAfter
// overrides the next backoff delay.
package delivery
