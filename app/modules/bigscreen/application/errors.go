package bigscreenservice

import "errors"

// ErrStaleResponse is returned when a response arrives after a newer one was applied.
var ErrStaleResponse = errors.New("response superseded by a newer request")

// LiveUnavailableMessage replaces the live panel when the live feed cannot be loaded.
const LiveUnavailableMessage = "Live games are unavailable right now."
