package script

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Default patterns. RoleName accepts U+00A0 between words since \s in Go
// regexps is ASCII only and screenplay pages use non-breaking spaces.
const (
	SceneHeading = `(INT|EXT)\.`
	RoleName     = `^[\s\x{00a0}]*([A-Z']+([\s\x{00a0}][A-Z']+)*)[\s\x{00a0}]*$`
	AnyLine      = `.+`
)

// ErrInvalidPattern is returned when a scene or role pattern does not
// compile.
var ErrInvalidPattern = errors.New("script: invalid pattern")

// RoleCount is the number of phrases a role speaks.
type RoleCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Scene is one scene with its speaking roles in order of first appearance.
type Scene struct {
	Name  string      `json:"name"`
	Roles []RoleCount `json:"roles"`
}

// Scenes is an insertion-ordered map from scene name to role counts.
// The zero value is empty and ready to use.
type Scenes struct {
	order []*Scene
	index map[string]*sceneIndex
}

type sceneIndex struct {
	scene *Scene
	roles map[string]int // role name -> position in scene.Roles
}

// Len returns the number of scenes.
func (s *Scenes) Len() int { return len(s.order) }

// Names returns the scene names in order of first appearance.
func (s *Scenes) Names() []string {
	names := make([]string, len(s.order))
	for i, sc := range s.order {
		names[i] = sc.Name
	}
	return names
}

// Roles returns the roles of the named scene, or nil if it is unknown.
func (s *Scenes) Roles(scene string) []RoleCount {
	idx, ok := s.index[scene]
	if !ok {
		return nil
	}
	return append([]RoleCount(nil), idx.scene.Roles...)
}

// All returns a copy of every scene in order.
func (s *Scenes) All() []Scene {
	out := make([]Scene, len(s.order))
	for i, sc := range s.order {
		out[i] = Scene{Name: sc.Name, Roles: append([]RoleCount(nil), sc.Roles...)}
	}
	return out
}

func (s *Scenes) count(scene, role string) {
	if s.index == nil {
		s.index = make(map[string]*sceneIndex)
	}
	idx, ok := s.index[scene]
	if !ok {
		idx = &sceneIndex{scene: &Scene{Name: scene}, roles: make(map[string]int)}
		s.index[scene] = idx
		s.order = append(s.order, idx.scene)
	}
	pos, ok := idx.roles[role]
	if !ok {
		pos = len(idx.scene.Roles)
		idx.roles[role] = pos
		idx.scene.Roles = append(idx.scene.Roles, RoleCount{Name: role})
	}
	idx.scene.Roles[pos].Count++
}

// Extract groups role lines by scene.
//
// Each line is trimmed. A line matching scenePattern at its start opens a
// scene; any other line matching rolePattern at its start counts one phrase
// for that role in the current scene. Lines before the first heading are
// ignored, and a scene only appears once a role is counted in it. A heading
// seen again continues the earlier scene. An empty rolePattern means AnyLine.
func Extract(lines []string, scenePattern, rolePattern string) (*Scenes, error) {
	if rolePattern == "" {
		rolePattern = AnyLine
	}
	sceneRe, err := compileAnchored(scenePattern)
	if err != nil {
		return nil, fmt.Errorf("%w: scene: %w", ErrInvalidPattern, err)
	}
	roleRe, err := compileAnchored(rolePattern)
	if err != nil {
		return nil, fmt.Errorf("%w: role: %w", ErrInvalidPattern, err)
	}

	scenes := &Scenes{}
	var current string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		switch {
		case sceneRe.MatchString(line):
			current = line
		case current != "" && roleRe.MatchString(line):
			scenes.count(current, line)
		}
	}
	return scenes, nil
}

// TopRoles sums phrase counts across all scenes and returns the n roles
// with the most phrases. Ties keep the order in which roles first appear.
// n <= 0 returns every role.
func TopRoles(scenes *Scenes, n int) []RoleCount {
	var totals []RoleCount
	pos := make(map[string]int)
	for _, sc := range scenes.order {
		for _, rc := range sc.Roles {
			i, ok := pos[rc.Name]
			if !ok {
				i = len(totals)
				pos[rc.Name] = i
				totals = append(totals, RoleCount{Name: rc.Name})
			}
			totals[i].Count += rc.Count
		}
	}
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Count > totals[j].Count
	})
	if n > 0 && n < len(totals) {
		totals = totals[:n]
	}
	if totals == nil {
		totals = []RoleCount{}
	}
	return totals
}

// Diff returns the scene names present in exactly one of a and b, sorted.
func Diff(a, b *Scenes) []string {
	diff := []string{}
	for _, name := range a.Names() {
		if _, ok := b.index[name]; !ok {
			diff = append(diff, name)
		}
	}
	for _, name := range b.Names() {
		if _, ok := a.index[name]; !ok {
			diff = append(diff, name)
		}
	}
	sort.Strings(diff)
	return diff
}

// compileAnchored compiles pattern so that it only matches at the start of
// the input.
func compileAnchored(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(?:` + pattern + `)`)
}
