package satinepath

import (
	"path"
	"strings"
)

const upperhex = "0123456789ABCDEF"

// SafeChars determines which bytes escape from image key
type SafeChars interface {
	// ShouldEscape returns true if byte requires escaping
	ShouldEscape(c byte) bool
}

// NewSafeChars safe chars from predefined set of bytes that skip escaping
func NewSafeChars(safechars string) SafeChars {
	s := &safeChars{safeChars: map[byte]bool{}}
	for _, c := range safechars {
		s.safeChars[byte(c)] = true
	}
	return s
}

type safeChars struct {
	safeChars map[byte]bool
}

func (s *safeChars) ShouldEscape(c byte) bool {
	if !defaultShouldEscape(c) {
		return false
	}
	if len(s.safeChars) > 0 && s.safeChars[c] {
		return false
	}
	return true
}

func defaultShouldEscape(c byte) bool {
	// alphanum
	if 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' {
		return false
	}
	switch c {
	case '/': // should not escape path segment
		return false
	case '-', '_', '.', '~': // Unreserved characters (mark)
		return false
	}
	// Everything else must be escaped.
	return true
}

// extracted from url.escape plus allowing custom shouldEscape func
func escape(s string, shouldEscape func(c byte) bool) string {
	spaceCount, hexCount := 0, 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldEscape(c) {
			if c == ' ' {
				spaceCount++
			} else {
				hexCount++
			}
		}
	}

	if spaceCount == 0 && hexCount == 0 {
		return s
	}

	var buf [64]byte
	var t []byte

	required := len(s) + 2*hexCount
	if required <= len(buf) {
		t = buf[:required]
	} else {
		t = make([]byte, required)
	}

	if hexCount == 0 {
		copy(t, s)
		for i := 0; i < len(s); i++ {
			if s[i] == ' ' {
				t[i] = '+'
			}
		}
		return string(t)
	}

	j := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == ' ':
			t[j] = '+'
			j++
		case shouldEscape(c):
			t[j] = '%'
			t[j+1] = upperhex[c>>4]
			t[j+2] = upperhex[c&15]
			j += 3
		default:
			t[j] = s[i]
			j++
		}
	}
	return string(t)
}

// Normalize image key to be storage path friendly
func Normalize(image string, safeChars SafeChars) string {
	image = path.Clean(image)
	image = strings.Trim(image, "/")
	if safeChars == nil {
		return escape(image, defaultShouldEscape)
	}
	return escape(image, safeChars.ShouldEscape)
}
