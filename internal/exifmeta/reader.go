package exifmeta

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// ErrMetadataRead indicates the embedded metadata container could not be
// parsed. Absent individual tags are normal and never produce this error.
var ErrMetadataRead = errors.New("metadata unreadable")

// captureLayout is the EXIF DateTimeOriginal rendering.
const captureLayout = "2006:01:02 15:04:05"

// bodySerialTagID is BodySerialNumber, added in EXIF 2.3.
const bodySerialTagID uint16 = 0xA431

// Reader parses embedded metadata from image containers on disk.
type Reader struct{}

// Read extracts a Metadata from the image at path.
func (Reader) Read(path string) (Metadata, error) {
	return Read(path)
}

// Read parses the EXIF container of the image at path and derives its
// fingerprint summary. A file without a parseable container fails with
// ErrMetadataRead; files missing individual tags succeed with those fields
// absent.
func Read(path string) (Metadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: open %s: %v", ErrMetadataRead, path, err)
	}
	defer file.Close()

	parsed, err := exif.Decode(bufio.NewReader(file))
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: parse %s: %v", ErrMetadataRead, path, err)
	}

	summary := Summary{
		DateTimeOriginal: tagString(parsed, exif.DateTimeOriginal),
		MakeModel: JoinMakeModel(
			tagString(parsed, exif.Make),
			tagString(parsed, exif.Model),
		),
		CameraSerial:  cameraSerial(parsed),
		ImageUniqueID: tagString(parsed, exif.ImageUniqueID),
		Dimensions: JoinDimensions(
			tagInt(parsed, exif.PixelXDimension),
			tagInt(parsed, exif.PixelYDimension),
		),
	}

	meta := Metadata{Summary: summary}
	if summary.DateTimeOriginal != "" {
		if ts, err := time.ParseInLocation(captureLayout, summary.DateTimeOriginal, time.Local); err == nil {
			meta.CaptureTime = ts
		}
	}
	return meta, nil
}

// cameraSerial recovers BodySerialNumber from the decoded TIFF structure.
// goexif's tag dictionary predates EXIF 2.3 and silently drops tag IDs it
// does not know, so the serial is unreachable through the named lookup.
func cameraSerial(parsed *exif.Exif) string {
	for _, dir := range parsed.Tiff.Dirs {
		if value := tagByID(dir, bodySerialTagID); value != "" {
			return value
		}
	}

	// The EXIF sub-IFD is not part of the top-level chain; re-walk it from
	// the raw TIFF bytes via the IFD pointer.
	pointer, err := parsed.Get(exif.ExifIFDPointer)
	if err != nil {
		return ""
	}
	offset, err := pointer.Int64(0)
	if err != nil {
		return ""
	}
	r := bytes.NewReader(parsed.Raw)
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return ""
	}
	subDir, _, err := tiff.DecodeDir(r, parsed.Tiff.Order)
	if err != nil {
		return ""
	}
	return tagByID(subDir, bodySerialTagID)
}

func tagByID(dir *tiff.Dir, id uint16) string {
	for _, tag := range dir.Tags {
		if tag.Id != id {
			continue
		}
		if value, err := tag.StringVal(); err == nil {
			return strings.TrimSpace(strings.Trim(value, "\x00"))
		}
		return ""
	}
	return ""
}

func tagString(parsed *exif.Exif, name exif.FieldName) string {
	tag, err := parsed.Get(name)
	if err != nil {
		return ""
	}
	if value, err := tag.StringVal(); err == nil {
		return strings.TrimSpace(strings.Trim(value, "\x00"))
	}
	return strings.TrimSpace(strings.Trim(tag.String(), `"`))
}

func tagInt(parsed *exif.Exif, name exif.FieldName) string {
	tag, err := parsed.Get(name)
	if err != nil {
		return ""
	}
	value, err := tag.Int(0)
	if err != nil {
		return ""
	}
	return strconv.Itoa(value)
}
