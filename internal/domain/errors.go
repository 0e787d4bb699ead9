package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure sentinels with no infrastructure dependency.

var (
	// Locator errors
	ErrNoIdentity  = errors.New("locator has no checksum identity before '@'")
	ErrBadIdentity = errors.New("identity is not a valid checksum address")
	ErrWrongScheme = errors.New("invalid locator scheme: only https is allowed")
	ErrBadPort     = errors.New("locator port is not a valid port number")
	ErrBadAddress  = errors.New("malformed peer address bytes")

	// Availability errors
	ErrUnreachable              = errors.New("node is unreachable")
	ErrSensitivityExceedsSample = errors.New("sensitivity cannot be greater than the sample size")
	ErrTooFewPeers              = errors.New("not enough known peers to sample")
	ErrSensorRunning            = errors.New("availability sensor is already running")
	ErrSensorStopped            = errors.New("availability sensor is not running")

	// Directory errors
	ErrPeerNotFound = errors.New("peer not found in directory")
)
