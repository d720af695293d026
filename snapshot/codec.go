package snapshot

import (
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/katalvlaran/meridian/core"
)

// Save writes a, st's combined state to path, atomically: the payload is
// built in memory, a trailing CRC32 is appended, and the result lands via
// write-to-temp-then-rename so a crash mid-write never leaves a half
// written file at path (spec.md §4.9).
func Save(path string, a *core.Arena, st State) error {
	payload := encode(a, st)
	sum := crc32.ChecksumIEEE(payload)

	out := make([]byte, 0, len(payload)+4)
	out = append(out, payload...)
	out = appendUint32(out, sum)

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Load reads and validates a file written by Save. Any structural problem —
// missing file, truncation, CRC mismatch, or a magic/version that doesn't
// match this build — is reported as ErrCorrupt so the caller's only
// reasonable response is to start from an empty arena (spec.md §6.3).
func Load(path string) (*core.Arena, State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, State{}, ErrCorrupt
		}
		return nil, State{}, err
	}
	if len(data) < 4 {
		return nil, State{}, ErrCorrupt
	}

	payload := data[:len(data)-4]
	wantSum := readUint32LE(data[len(data)-4:])
	if crc32.ChecksumIEEE(payload) != wantSum {
		return nil, State{}, ErrCorrupt
	}

	d, err := decode(payload)
	if err != nil {
		return nil, State{}, err
	}

	a := core.RestoreArena(d.restore)
	return a, d.state, nil
}

func appendUint32(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func readUint32LE(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
