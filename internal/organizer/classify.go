package organizer

import "strings"

// Kind identifies how a source file is routed to an output tree.
type Kind int

const (
	KindJPEG Kind = iota
	KindRAW
)

func (k Kind) String() string {
	switch k {
	case KindJPEG:
		return "jpeg"
	case KindRAW:
		return "raw"
	default:
		return "unknown"
	}
}

var rawExtensions = map[string]struct{}{
	"dng": {},
	"nef": {},
	"cr2": {},
	"arw": {},
	"orf": {},
	"rw2": {},
	"pef": {},
	"srw": {},
	"raf": {},
	"3fr": {},
	"fff": {},
	"x3f": {},
}

// Classify maps a file extension (without the leading dot) to its kind.
// The second return is false for unsupported extensions.
func Classify(ext string) (Kind, bool) {
	lower := strings.ToLower(ext)
	switch {
	case lower == "jpg" || lower == "jpeg":
		return KindJPEG, true
	default:
		if _, ok := rawExtensions[lower]; ok {
			return KindRAW, true
		}
		return 0, false
	}
}

var shadowNames = map[string]struct{}{
	".DS_Store":       {},
	".AppleDouble":    {},
	".Trashes":        {},
	".Spotlight-V100": {},
	".fseventsd":      {},
	".TemporaryItems": {},
}

// IsShadowName reports whether a file or directory name is filesystem
// bookkeeping left behind by macOS on removable media.
func IsShadowName(name string) bool {
	if strings.HasPrefix(name, "._") {
		return true
	}
	_, ok := shadowNames[name]
	return ok
}
