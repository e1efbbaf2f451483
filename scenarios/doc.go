// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package scenarios loads the list of injection scenarios from a saved HTML
// snippet of the competition site. The catalog is built once at startup and
// only read afterwards.
package scenarios
