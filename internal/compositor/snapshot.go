package compositor

import (
	"os"

	"github.com/deepzoom/mandelcore/internal/encode"
)

// SaveSnapshot encodes a composited Frame through one of the teacher's kept
// encoders and writes it to path, for cmd/mandelsnap and golden-image tests
// (SPEC_FULL.md §4.11).
func SaveSnapshot(frame *Frame, format string, quality int, path string) error {
	enc, err := encode.NewEncoder(format, quality)
	if err != nil {
		return err
	}
	data, err := enc.Encode(frame)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
