package editor

import (
	"mesh-editor/math"
)

// Modifiers are the selection modifier keys sampled for a pick.
type Modifiers struct {
	Additive bool // shift
	Toggle   bool // ctrl or cmd
}

// ModifiersFromKeys resolves raw key state. Toggle wins when both are held.
func ModifiersFromKeys(shift, ctrl, meta bool) Modifiers {
	toggle := ctrl || meta
	return Modifiers{Additive: shift && !toggle, Toggle: toggle}
}

// Selection is a set of handles plus one active handle.
type Selection struct {
	members map[*Handle]struct{}
	order   []*Handle
	active  *Handle
}

func NewSelection() *Selection {
	return &Selection{members: make(map[*Handle]struct{})}
}

// Len returns the number of selected handles.
func (s *Selection) Len() int { return len(s.order) }

// Handles returns the selected handles in the order they were added.
func (s *Selection) Handles() []*Handle {
	return append([]*Handle(nil), s.order...)
}

// Active returns the active handle, or nil.
func (s *Selection) Active() *Handle { return s.active }

// IsSelected reports whether h is a member.
func (s *Selection) IsSelected(h *Handle) bool {
	_, ok := s.members[h]
	return ok
}

// Clear drops every member and the active handle.
func (s *Selection) Clear() {
	s.members = make(map[*Handle]struct{})
	s.order = nil
	s.active = nil
}

// Apply updates the selection with handles under mods: no modifier
// replaces, additive adds and toggle flips membership. The last handle
// affected becomes active.
func (s *Selection) Apply(handles []*Handle, mods Modifiers) {
	switch {
	case mods.Toggle:
		for _, h := range handles {
			if s.IsSelected(h) {
				s.remove(h)
			} else {
				s.add(h)
			}
		}
		if n := len(handles); n > 0 && s.IsSelected(handles[n-1]) {
			s.active = handles[n-1]
		}
	case mods.Additive:
		for _, h := range handles {
			s.add(h)
		}
	default:
		s.Clear()
		for _, h := range handles {
			s.add(h)
		}
	}
	s.fixActive()
}

// Prune removes every member keep rejects.
func (s *Selection) Prune(keep func(*Handle) bool) {
	for _, h := range s.Handles() {
		if !keep(h) {
			s.remove(h)
		}
	}
	s.fixActive()
}

// Centroid returns the mean world position of the selected proxies.
func (s *Selection) Centroid() math.Vec3 {
	points := make([]math.Vec3, 0, len(s.order))
	for _, h := range s.order {
		if h.Proxy != nil {
			points = append(points, h.Proxy.WorldPosition())
		} else {
			points = append(points, h.RefWorld)
		}
	}
	return Centroid(points)
}

func (s *Selection) add(h *Handle) {
	if h == nil {
		return
	}
	if _, ok := s.members[h]; !ok {
		s.members[h] = struct{}{}
		s.order = append(s.order, h)
	}
	s.active = h
}

func (s *Selection) remove(h *Handle) {
	if _, ok := s.members[h]; !ok {
		return
	}
	delete(s.members, h)
	for i, m := range s.order {
		if m == h {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// fixActive falls back to the first remaining member when the active
// handle is gone.
func (s *Selection) fixActive() {
	if s.active != nil && s.IsSelected(s.active) {
		return
	}
	s.active = nil
	if len(s.order) > 0 {
		s.active = s.order[0]
	}
}
