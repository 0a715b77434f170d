// Package view toggles modal, tab, and menu visibility. Every operation is a
// pure state change on the UI container driven by an explicit user action
// or a session notification.
package view

import (
	"net/url"

	"github.com/pkordes/travel-guide/internal/domain"
	"github.com/pkordes/travel-guide/internal/ui"
)

const avatarBase = "https://ui-avatars.com/api/"

// Coordinator implements the modal/tab state machine.
type Coordinator struct {
	state *ui.Container
}

// NewCoordinator constructs a Coordinator over state.
func NewCoordinator(state *ui.Container) *Coordinator {
	return &Coordinator{state: state}
}

// OpenAuthModal selects tab and shows the auth modal. Unknown tabs fall back
// to the login tab.
func (c *Coordinator) OpenAuthModal(tab ui.Tab) {
	if !tab.Valid() {
		tab = ui.TabLogin
	}
	c.state.Update(func(s *ui.State) {
		s.ActiveTab = tab
		s.AuthModalOpen = true
	})
}

func (c *Coordinator) CloseAuthModal() {
	c.state.Update(func(s *ui.State) { s.AuthModalOpen = false })
}

// SelectTab activates tab inside the auth modal. The visible form always
// follows the active tab.
func (c *Coordinator) SelectTab(tab ui.Tab) {
	if !tab.Valid() {
		return
	}
	c.state.Update(func(s *ui.State) { s.ActiveTab = tab })
}

// OpenGuideModal shows the guide modal with the given pre-filled fields.
func (c *Coordinator) OpenGuideModal(draft ui.GuideDraft) {
	c.state.Update(func(s *ui.State) {
		s.GuideDraft = draft
		s.GuideModalOpen = true
	})
}

func (c *Coordinator) CloseGuideModal() {
	c.state.Update(func(s *ui.State) { s.GuideModalOpen = false })
}

// ToggleDropdown flips the user dropdown, as a click on the avatar does.
func (c *Coordinator) ToggleDropdown() {
	c.state.Update(func(s *ui.State) { s.DropdownOpen = !s.DropdownOpen })
}

// PointerDown reports a pointer interaction anywhere in the page. Outside
// the user menu it closes the dropdown.
func (c *Coordinator) PointerDown(insideUserMenu bool) {
	if insideUserMenu {
		return
	}
	c.state.Update(func(s *ui.State) { s.DropdownOpen = false })
}

// ApplySession moves the header between the signed-out and signed-in
// states. Applying the same session twice yields the same state.
func (c *Coordinator) ApplySession(sess *domain.Session) {
	c.state.Update(func(s *ui.State) {
		if sess == nil {
			s.SignedIn = false
			s.UserName = ""
			s.AvatarURL = ""
			s.DropdownOpen = false
			return
		}
		s.SignedIn = true
		s.UserName = sess.DisplayName
		s.AvatarURL = AvatarURL(*sess)
	})
}

// AvatarURL returns the photo URL of sess, or a generated initials avatar
// when the identity has no photo.
func AvatarURL(sess domain.Session) string {
	if sess.PhotoURL != "" {
		return sess.PhotoURL
	}
	name := sess.DisplayName
	if name == "" {
		name = "User"
	}
	q := url.Values{}
	q.Set("name", name)
	q.Set("background", "007bff")
	q.Set("color", "fff")
	return avatarBase + "?" + q.Encode()
}
