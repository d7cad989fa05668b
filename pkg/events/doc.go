// Package events provides an in-process publish/subscribe bus for
// core.Event values emitted by ticks, executions and the broadcast channel.
//
// Emit never blocks: events are dropped for subscribers whose buffer is full.
package events
