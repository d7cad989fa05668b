// Package offset turns a period boundary and minute offsets into absolute
// notify-at instants.
//
// A period carries only a time of day. The caller supplies the calendar day
// the boundary is placed on, and each offset is subtracted (before) or added
// (after). Results are truncated to the minute and may fall on a different
// calendar day than the one supplied.
package offset
