package quest

import (
	"math"
	"unicode/utf16"
)

// CoursePalette holds the accent colors assigned to courses.
var CoursePalette = []string{
	"#8ba6ff", "#ffc9a3", "#c0d7a7", "#f2a1b5",
	"#a5c8ff", "#e5c3ff", "#9ad7d4", "#ffd9a8",
}

// CourseColor picks a stable palette entry for a course name. The hash
// walks UTF-16 code units with 32-bit shifts so existing data keeps the
// colors it was shown with before.
func CourseColor(course string) string {
	var h float64
	for _, c := range utf16.Encode([]rune(course)) {
		shifted := float64(toInt32(h) << 5)
		h = float64(c) + (shifted - h)
	}
	i := int(math.Mod(math.Abs(h), float64(len(CoursePalette))))
	return CoursePalette[i]
}

func toInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(int64(math.Mod(math.Trunc(f), 1<<32)))
}
