package imageops

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const thumbPrefix = "thumb-"

var derivedRe = regexp.MustCompile(`^(flipped-|part\d+-|scaled-\d+x\d+-)`)

// FlippedName is the file name of the mirrored copy of base.
func FlippedName(base string) string {
	return "flipped-" + derivedBase(base)
}

// PartName is the file name of strip i of base.
func PartName(i int, base string) string {
	return fmt.Sprintf("part%d-%s", i, derivedBase(base))
}

// ScaledName is the file name of base scaled and cropped to w x h. The size
// is part of the name so that different targets never overwrite each other.
func ScaledName(w, h int, base string) string {
	return fmt.Sprintf("scaled-%dx%d-%s", w, h, derivedBase(base))
}

// ThumbName is the file name of the thumbnail that belongs to a derived file.
func ThumbName(derived string) string {
	derived = filepath.Base(derived)
	return thumbPrefix + strings.TrimSuffix(derived, filepath.Ext(derived)) + ".png"
}

// IsDerived reports whether name was produced by FlippedName, PartName or
// ScaledName.
func IsDerived(name string) bool {
	return derivedRe.MatchString(filepath.Base(name))
}

// IsThumb reports whether name is a derived file's thumbnail.
func IsThumb(name string) bool {
	return strings.HasPrefix(filepath.Base(name), thumbPrefix)
}
