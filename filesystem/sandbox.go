package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sagarc03/locker"
)

// Sandbox maps untrusted path fragments onto paths relative to the storage
// root and refuses anything that would leave the owning directory.
type Sandbox struct {
	root *os.Root
}

// NewSandbox creates a Sandbox over root.
func NewSandbox(root *os.Root) *Sandbox {
	return &Sandbox{root: root}
}

// Resolve joins parts under base and returns the slash-separated result
// relative to the storage root. base is server controlled: a username, or ""
// for the storage root itself. The result must be a strict descendant of
// base, otherwise locker.ErrPathEscape is returned.
func (s *Sandbox) Resolve(base string, parts ...string) (string, error) {
	if base != "" && !isPlainSegment(base) {
		return "", fmt.Errorf("resolve %q: %w", base, locker.ErrPathEscape)
	}

	elems := make([]string, 0, len(parts)+1)
	elems = append(elems, base)
	for _, p := range parts {
		if strings.ContainsRune(p, 0) {
			return "", fmt.Errorf("resolve: %w: nul byte", locker.ErrPathEscape)
		}
		if strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) || filepath.VolumeName(p) != "" {
			return "", fmt.Errorf("resolve: %w: absolute path", locker.ErrPathEscape)
		}
		elems = append(elems, p)
	}

	rel := path.Join(elems...)
	if !isStrictDescendant(base, rel) {
		return "", fmt.Errorf("resolve: %w", locker.ErrPathEscape)
	}
	return rel, nil
}

// Check walks the existing components of rel and fails with
// locker.ErrPathEscape if any of them is a symlink. Components that do not
// exist yet end the walk.
func (s *Sandbox) Check(rel string) error {
	cur := ""
	for _, seg := range strings.Split(rel, "/") {
		if seg == "" || seg == "." {
			continue
		}
		cur = path.Join(cur, seg)

		info, err := s.root.Lstat(filepath.FromSlash(cur))
		if err != nil {
			if isNotExist(err) {
				return nil
			}
			return fmt.Errorf("check %s: %w", cur, err)
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			return fmt.Errorf("check %s: %w: symlink", cur, locker.ErrPathEscape)
		}
	}
	return nil
}

// resolve runs Resolve and Check together.
func (s *Sandbox) resolve(base string, parts ...string) (string, error) {
	rel, err := s.Resolve(base, parts...)
	if err != nil {
		return "", err
	}
	if err := s.Check(rel); err != nil {
		return "", err
	}
	return rel, nil
}

func isPlainSegment(seg string) bool {
	return seg != "." && seg != ".." &&
		!strings.ContainsAny(seg, `/\`) &&
		!strings.ContainsRune(seg, 0)
}

func isStrictDescendant(base, rel string) bool {
	if base == "" {
		return rel != "." && rel != ".." && !strings.HasPrefix(rel, "../")
	}
	return strings.HasPrefix(rel, base+"/")
}
