// Package jsonstore keeps a task list in a single JSON file.
//
// The current file format is a list of objects:
//
//	[
//	  {"task": "buy milk", "done": false}
//	]
//
// Load also accepts the shapes older versions wrote, converting them once
// and writing the current format back:
//
//   - a list of bare strings: ["buy milk", "walk dog"]
//   - objects keyed by "title" instead of "task", or missing "done"
//   - the list wrapped in an object: {"tasks": [...]}
//
// Entries of any other type are dropped with a warning. A file that is not
// JSON at all, or whose top level is neither shape, loads as an empty list
// and is left on disk until the next Save replaces it.
package jsonstore
