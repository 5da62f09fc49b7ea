// SPDX-License-Identifier: MPL-2.0

// Package issue carries user-facing error context: what was attempted, on
// which resource, and what to try next. It also holds a catalog of known
// failure modes with Markdown guidance rendered for the terminal.
package issue
