// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package views renders the portal's HTML pages from embedded templates.
// Job output is rendered as Markdown with raw HTML stripped; timestamps are
// shown relative to now.
package views
