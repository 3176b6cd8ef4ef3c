package textedit

import (
	"strings"
	"unicode/utf8"
)

// RuneLen returns the number of runes in s.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// byteOffset converts a rune index into a byte offset.
// Indexes past the end return len(s).
func byteOffset(s string, runeIdx int) int {
	if runeIdx <= 0 {
		return 0
	}
	i := 0
	for off := range s {
		if i == runeIdx {
			return off
		}
		i++
	}
	return len(s)
}

// Slice returns the runes in [start, end). Arguments are clamped.
func Slice(s string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end <= start {
		return ""
	}
	bs := byteOffset(s, start)
	be := bs + byteOffset(s[bs:], end-start)
	return s[bs:be]
}

// From returns the runes from start to the end of s.
func From(s string, start int) string {
	return s[byteOffset(s, start):]
}

// At returns the rune at idx, or utf8.RuneError when idx is out of range.
func At(s string, idx int) rune {
	if idx < 0 {
		return utf8.RuneError
	}
	rest := s[byteOffset(s, idx):]
	if rest == "" {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return r
}

// Insert inserts ins at rune position pos.
func Insert(s string, pos int, ins string) string {
	off := byteOffset(s, pos)
	var b strings.Builder
	b.Grow(len(s) + len(ins))
	b.WriteString(s[:off])
	b.WriteString(ins)
	b.WriteString(s[off:])
	return b.String()
}

// Remove removes n runes starting at pos.
func Remove(s string, pos, n int) string {
	if n <= 0 {
		return s
	}
	return Replace(s, pos, pos+n, "")
}

// Replace replaces the runes in [start, end) with ins.
func Replace(s string, start, end int, ins string) string {
	if start < 0 {
		start = 0
	}
	if end < start {
		end = start
	}
	bs := byteOffset(s, start)
	be := bs + byteOffset(s[bs:], end-start)
	return s[:bs] + ins + s[be:]
}

// IndexRune returns the rune index of the first r in s at or after from, or -1.
func IndexRune(s string, r rune, from int) int {
	i := 0
	for _, c := range s {
		if i >= from && c == r {
			return i
		}
		i++
	}
	return -1
}
