package handler

import (
	"errors"
	"strings"
)

// webSessionPrefix keeps web chat sessions out of the keyspace used by calls
// (CallSid) and SMS ("sms:" + number).
const webSessionPrefix = "web:"

var (
	ErrSessionRequired = errors.New("session_id is required")
	ErrReservedSession = errors.New("session_id must not contain ':'")
)

// sessionKey maps a client-chosen id to its store key. Ids containing ':' are
// refused so no client can name another channel's session.
func sessionKey(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrSessionRequired
	}
	if strings.Contains(id, ":") {
		return "", ErrReservedSession
	}
	return webSessionPrefix + id, nil
}
