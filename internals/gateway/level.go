package gateway

import (
	"fmt"
	"strings"
)

// Level urutan hirarki: branch → semester → section → subject → document.
type Level int

const (
	LevelBranch Level = iota
	LevelSemester
	LevelSection
	LevelSubject
	LevelDocument
)

var levelNames = [...]string{"branch", "semester", "section", "subject", "document"}

func (l Level) String() string {
	if l < LevelBranch || l > LevelDocument {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

func (l Level) Valid() bool { return l >= LevelBranch && l <= LevelDocument }

// IsRoot: branch tidak punya parent.
func (l Level) IsRoot() bool { return l == LevelBranch }

// IsNode: level yang berupa node hirarki (bukan document).
func (l Level) IsNode() bool { return l >= LevelBranch && l <= LevelSubject }

func (l Level) Parent() (Level, bool) {
	if l <= LevelBranch || !l.Valid() {
		return 0, false
	}
	return l - 1, true
}

func (l Level) Child() (Level, bool) {
	if l >= LevelDocument || !l.Valid() {
		return 0, false
	}
	return l + 1, true
}

// ParentColumn: nama kolom FK ke parent, kosong untuk branch.
func (l Level) ParentColumn() string {
	switch l {
	case LevelSemester:
		return "branch_id"
	case LevelSection:
		return "semester_id"
	case LevelSubject:
		return "section_id"
	case LevelDocument:
		return "subject_id"
	}
	return ""
}

func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, "s")
	if s == "branche" {
		s = "branch"
	}
	for i, n := range levelNames {
		if n == s {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Level) UnmarshalText(b []byte) error {
	v, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
