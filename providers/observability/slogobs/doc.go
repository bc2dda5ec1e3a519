// Package slogobs implements observability.Provider on top of log/slog.
//
// Spans, counters and histograms are rendered as debug log lines, so a
// single handler covers all three concerns. [New] reads its defaults from
// STATEGRAPH_LOG_LEVEL and STATEGRAPH_LOG_FORMAT; [WithFormat], [WithLevel],
// [WithOutput], [WithColors] and [WithLogger] override them.
package slogobs
