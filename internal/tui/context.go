package tui

// ModalContext provides read-only context to modals for rendering.
type ModalContext struct {
	ReverseScrollWheel bool
}
