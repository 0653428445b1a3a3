package capability

// Status is the normalized readiness of a capability. Some values come from
// the host verbatim; the rest are synthesized by the prober when the host's
// answer is absent, malformed, or untyped. Normalization happens at the
// boundary, immediately after the host call.
type Status string

const (
	// StatusUnavailable means the capability reported itself unusable.
	StatusUnavailable Status = "unavailable"

	// StatusNoHandle means no capability object was found at any location.
	StatusNoHandle Status = "unavailable-no-handle"

	// StatusError means the availability check failed with no recoverable path.
	StatusError Status = "error"

	// StatusDownloadable means a one-time model download is required.
	StatusDownloadable Status = "downloadable"

	// StatusAfterDownload means the capability becomes usable once an
	// in-flight download completes.
	StatusAfterDownload Status = "after-download"

	// StatusReadily means the capability is ready for immediate use.
	StatusReadily Status = "readily"

	// StatusAvailable is the newer host revision's spelling of readiness.
	StatusAvailable Status = "available"

	// StatusAvailableObject means the host answered with a structured object
	// lacking an availability field. Treated as usable, tier unknown.
	StatusAvailableObject Status = "available_object"

	// StatusUnknownMethods means the object exposes no availability check at
	// all. Assumed usable; callers must still handle downstream failure.
	StatusUnknownMethods Status = "available_unknown_methods"
)

// Usable reports whether a session may be created for this status without a
// download step.
func (s Status) Usable() bool {
	switch s {
	case StatusReadily, StatusAvailable, StatusAvailableObject, StatusUnknownMethods:
		return true
	}
	return false
}

// NeedsDownload reports whether the capability requires a one-time model
// download before use.
func (s Status) NeedsDownload() bool {
	return s == StatusDownloadable || s == StatusAfterDownload
}

// IsValid checks if the status is one of the enumerated values. Host tokens
// outside the enumeration are passed through by the prober, so callers that
// need the closed set should check this first.
func (s Status) IsValid() bool {
	switch s {
	case StatusUnavailable, StatusNoHandle, StatusError, StatusDownloadable,
		StatusAfterDownload, StatusReadily, StatusAvailable,
		StatusAvailableObject, StatusUnknownMethods:
		return true
	}
	return false
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}
