// Package logtail reads the tail of the application log for the TUI's log
// view.
//
// # Reading Log Files
//
// Read keeps a ring buffer of the last maxLines lines while scanning the
// file once, so memory is O(maxLines) regardless of file size. Lines come
// back in file order. A missing file is not an error; the log view simply
// starts empty.
//
//	lines, err := logtail.Read(cfg.LogPath(), 400)
//
// # Levels
//
// The application logs with slog's text handler, so every record carries a
// "level=" field. Level extracts it and FilterLevel drops records below a
// threshold, which backs the log view's level toggle. Lines without a
// level are kept.
package logtail
