// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
)

// Flash categories, matching the alert styles in the templates
const (
	CategorySuccess = "success"
	CategoryInfo    = "info"
	CategoryWarning = "warning"
	CategoryDanger  = "danger"
	CategoryError   = "error"
)

// Flash is a one-shot message shown on the next rendered page
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// maxFlashes bounds the cookie size
const maxFlashes = 10

// Flash queues a message for the next rendered page.
// Messages queued during one request accumulate.
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, category, message string) {
	st := stateFrom(r)
	if st == nil {
		st = &state{flashes: readFlashCookie(r)}
	}
	st.flashes = append(st.flashes, Flash{Category: category, Message: message})
	if len(st.flashes) > maxFlashes {
		st.flashes = st.flashes[len(st.flashes)-maxFlashes:]
	}

	b, err := json.Marshal(st.flashes)
	if err != nil {
		return
	}
	dropSetCookie(w, FlashCookieName)
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(b),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// Flashes pops all pending messages and clears the flash cookie
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	var flashes []Flash
	if st := stateFrom(r); st != nil {
		flashes, st.flashes = st.flashes, nil
	} else {
		flashes = readFlashCookie(r)
	}
	if len(flashes) == 0 {
		return nil
	}

	dropSetCookie(w, FlashCookieName)
	m.expire(w, r, FlashCookieName)
	return flashes
}

func readFlashCookie(r *http.Request) []Flash {
	c, err := r.Cookie(FlashCookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	b, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(b, &flashes); err != nil {
		return nil
	}
	return flashes
}

// dropSetCookie removes an already queued Set-Cookie for name so the
// response carries a single value for it
func dropSetCookie(w http.ResponseWriter, name string) {
	h := w.Header()
	kept := h["Set-Cookie"][:0]
	for _, v := range h["Set-Cookie"] {
		if !strings.HasPrefix(v, name+"=") {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		h.Del("Set-Cookie")
		return
	}
	h["Set-Cookie"] = kept
}
