package tree

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher decides which entries are invisible to comparison and
// reconciliation. Patterns use doublestar syntax:
//   - no slash: matched against the base name at any depth (*.tmp)
//   - trailing slash: directories only (.git/, node_modules/)
//   - any other slash: matched against the root-relative path (build/**/*.o)
type Matcher struct {
	patterns []pattern
}

type pattern struct {
	glob     string
	dirOnly  bool
	baseOnly bool
}

// NewMatcher validates and compiles exclusion patterns
func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, raw := range patterns {
		if raw == "" {
			continue
		}

		p := pattern{glob: strings.TrimPrefix(raw, "/")}
		if strings.HasSuffix(p.glob, "/") {
			p.dirOnly = true
			p.glob = strings.TrimSuffix(p.glob, "/")
		}
		p.baseOnly = !strings.Contains(p.glob, "/")

		if !doublestar.ValidatePattern(p.glob) {
			return nil, fmt.Errorf("invalid exclude pattern %q", raw)
		}
		m.patterns = append(m.patterns, p)
	}
	return m, nil
}

// Excluded reports whether the entry at relativePath is excluded.
// A nil Matcher excludes nothing.
func (m *Matcher) Excluded(relativePath string, isDir bool) bool {
	if m == nil {
		return false
	}

	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}

		subject := relativePath
		if p.baseOnly {
			subject = path.Base(relativePath)
		}

		// Patterns were validated in NewMatcher
		if matched, _ := doublestar.Match(p.glob, subject); matched {
			return true
		}
	}
	return false
}

// Len returns the number of active patterns
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.patterns)
}
