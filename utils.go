package locker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// IsValidKey reports whether k is acceptable as a content key.
// It checks that the key:
//   - is not empty
//   - is valid UTF-8
//   - does not end with "/"
//   - does not contain a backslash
//   - does not contain null bytes, control characters (< 0x20) or DEL (0x7f)
//
// Traversal segments are left to the sandbox, which decides whether the
// cleaned key stays inside the caller's directory.
func IsValidKey(k string) bool {
	if k == "" {
		return false
	}

	if !utf8.ValidString(k) {
		return false
	}

	if strings.HasSuffix(k, "/") {
		return false
	}

	if strings.Contains(k, `\`) {
		return false
	}

	for _, r := range k {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}

	return true
}

var validPrefixRegex = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// IsValidPrefix checks an image prefix (alphanumeric only).
func IsValidPrefix(p string) bool {
	return validPrefixRegex.MatchString(p)
}

var imageTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"heif": "image/heif",
	"heic": "image/heic",
	"ico":  "image/x-icon",
}

// ImageExt returns the lowercased extension of filename (without the dot)
// and whether it is an allowed image type.
func ImageExt(filename string) (string, bool) {
	name := strings.TrimSpace(filename)
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return "", false
	}
	ext := strings.ToLower(name[i+1:])
	_, ok := imageTypes[ext]
	return ext, ok
}

// ContentTypeForExt maps an extension to its image content type. Unknown
// extensions fall back to image/<ext>.
func ContentTypeForExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return "application/octet-stream"
	}
	if ct, ok := imageTypes[ext]; ok {
		return ct
	}
	return "image/" + ext
}
