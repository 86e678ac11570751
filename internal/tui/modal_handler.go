package tui

import tea "github.com/charmbracelet/bubbletea"

// Modal is a self-contained modal that owns its own Update/View lifecycle.
// The topmost modal of a page receives all input and renders full-screen.
type Modal interface {
	// ID returns a unique identifier used to deduplicate pushes.
	ID() string
	// Update processes a message. Return pop=true to close the modal.
	Update(msg tea.Msg) (pop bool, cmd tea.Cmd)
	// View renders the modal content for the given terminal dimensions.
	View(width, height int) string
}

// ModalStack is embedded by pages that show modals.
type ModalStack struct {
	modalStack []Modal
}

// PushModal adds a modal unless one with the same id is already open.
func (s *ModalStack) PushModal(modal Modal) {
	for _, existing := range s.modalStack {
		if existing.ID() == modal.ID() {
			return
		}
	}
	s.modalStack = append(s.modalStack, modal)
}

// PopModal removes the topmost modal from the stack.
func (s *ModalStack) PopModal() {
	if len(s.modalStack) > 0 {
		s.modalStack = s.modalStack[:len(s.modalStack)-1]
	}
}

// TopModal returns the topmost modal, or nil if the stack is empty.
func (s *ModalStack) TopModal() Modal {
	if len(s.modalStack) == 0 {
		return nil
	}
	return s.modalStack[len(s.modalStack)-1]
}

// HasModal returns true if any modal is on the stack.
func (s *ModalStack) HasModal() bool {
	return len(s.modalStack) > 0
}

// routeToModal hands msg to the top modal. ok is false when no modal is open.
func (s *ModalStack) routeToModal(msg tea.Msg) (cmd tea.Cmd, ok bool) {
	modal := s.TopModal()
	if modal == nil {
		return nil, false
	}
	pop, cmd := modal.Update(msg)
	if pop {
		s.PopModal()
	}
	return cmd, true
}
