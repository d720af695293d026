package snapshot

import "errors"

// ErrCorrupt covers both a CRC mismatch and a version mismatch: spec.md
// §4.9 treats both identically — reject the file, start from an empty
// arena. Callers branch on it with errors.Is, never on the message.
var ErrCorrupt = errors.New("snapshot: file missing, truncated, or failed integrity check")
