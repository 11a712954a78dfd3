package exifmeta

import (
	"hash/fnv"
	"io"
	"strings"
	"time"
)

// Summary is the fingerprint extracted from embedded image metadata. Every
// field is optional; an absent field is the empty string. Summaries are
// compared only through Hash, never field by field.
type Summary struct {
	DateTimeOriginal string `json:"datetime_original,omitempty"`
	MakeModel        string `json:"make_model,omitempty"`
	CameraSerial     string `json:"camera_serial,omitempty"`
	ImageUniqueID    string `json:"image_unique_id,omitempty"`
	Dimensions       string `json:"image_dimensions,omitempty"`
}

// Hash reduces the summary to a 64-bit FNV hash over a fixed delimiter-joined
// rendering of the five fields. The result is deterministic across runs and
// platforms; collision resistance is not required.
func (s Summary) Hash() uint64 {
	h := fnv.New64a()
	_, _ = io.WriteString(h, strings.Join([]string{
		s.DateTimeOriginal,
		s.MakeModel,
		s.CameraSerial,
		s.ImageUniqueID,
		s.Dimensions,
	}, ":"))
	return h.Sum64()
}

// Metadata is the parsed result of reading a file's embedded metadata: the
// fingerprint summary plus the capture timestamp when one was present.
type Metadata struct {
	Summary     Summary
	CaptureTime time.Time // zero when DateTimeOriginal is absent or malformed
}

// JoinMakeModel combines the camera make and model into one field. Both
// present joins with "/"; one present passes through; neither yields absent.
func JoinMakeModel(make, model string) string {
	switch {
	case make != "" && model != "":
		return make + "/" + model
	case make != "":
		return make
	default:
		return model
	}
}

// JoinDimensions renders "<width>x<height>". The field is absent unless both
// dimensions are present.
func JoinDimensions(width, height string) string {
	if width == "" || height == "" {
		return ""
	}
	return width + "x" + height
}
