package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"menu-extractor/internal/types"
)

// ErrModalTimeout is returned when a product modal does not become ready in time
var ErrModalTimeout = errors.New("product modal did not open")

// ModalState is the lifecycle state of the product modal
type ModalState int

const (
	ModalClosed ModalState = iota
	ModalOpening
	ModalSubDialogOpen
	ModalReady
)

func (s ModalState) String() string {
	switch s {
	case ModalClosed:
		return "closed"
	case ModalOpening:
		return "opening"
	case ModalSubDialogOpen:
		return "sub-dialog-open"
	case ModalReady:
		return "ready"
	default:
		return fmt.Sprintf("ModalState(%d)", int(s))
	}
}

// ModalController opens and closes product modals one at a time.
// Only one modal may be open; WithModal always leaves it Closed.
type ModalController struct {
	query          *ElementQuery
	logger         types.Logger
	openTimeout    time.Duration
	dismissTimeout time.Duration
	overlayOffset  Point
	state          ModalState
}

// NewModalController creates a controller using the timeouts and overlay offset from config
func NewModalController(query *ElementQuery, config *types.Config, logger types.Logger) *ModalController {
	return &ModalController{
		query:          query,
		logger:         logger,
		openTimeout:    config.ModalTimeout,
		dismissTimeout: config.DismissTimeout,
		overlayOffset:  Point{X: config.OverlayClickX, Y: config.OverlayClickY},
		state:          ModalClosed,
	}
}

// State returns the current lifecycle state
func (m *ModalController) State() ModalState {
	return m.state
}

// WithModal opens the modal of container, runs fn while it is ready and then
// closes it. Close runs exactly once, whether Open or fn failed.
func (m *ModalController) WithModal(ctx context.Context, container Element, fn func(ctx context.Context) error) error {
	defer m.Close(ctx)

	if err := m.Open(ctx, container); err != nil {
		return err
	}
	return fn(ctx)
}

// Open clicks container and waits for the modal and its option list.
// An address prompt shown on top of the modal is dismissed first.
func (m *ModalController) Open(ctx context.Context, container Element) error {
	if m.state != ModalClosed {
		return fmt.Errorf("cannot open modal in state %s", m.state)
	}

	m.state = ModalOpening
	if err := m.query.Click(ctx, container, nil); err != nil {
		return fmt.Errorf("failed to open product modal: %w", err)
	}

	if err := m.query.WaitFor(ctx, ModalWindow, m.openTimeout); err != nil {
		return fmt.Errorf("%w: %v", ErrModalTimeout, err)
	}

	if m.query.Exists(ctx, AddressModalForm) {
		m.dismissAddressPrompt(ctx)
	}

	if err := m.query.WaitFor(ctx, ModifiersList, m.openTimeout); err != nil {
		// the prompt may render after the first check and hide the options
		if !m.query.Exists(ctx, AddressModalForm) {
			return fmt.Errorf("%w: %v", ErrModalTimeout, err)
		}
		m.dismissAddressPrompt(ctx)
		if err := m.query.WaitFor(ctx, ModifiersList, m.openTimeout); err != nil {
			return fmt.Errorf("%w: %v", ErrModalTimeout, err)
		}
	}

	m.state = ModalReady
	return nil
}

func (m *ModalController) dismissAddressPrompt(ctx context.Context) {
	m.state = ModalSubDialogOpen
	m.logger.Debug("Address prompt is open, dismissing it")
	m.Dismiss(ctx, AddressModalForm)
}

// Close dismisses the product modal and resets the state to Closed
func (m *ModalController) Close(ctx context.Context) {
	m.Dismiss(ctx, ModalWindow)
	m.state = ModalClosed
}

// Dismiss clicks the overlay outside the dialog content and waits for hidden
// to disappear. It is best-effort: a missing overlay is a no-op and a dialog
// that stays visible only produces a warning.
func (m *ModalController) Dismiss(ctx context.Context, hidden Selector) {
	overlay, err := m.query.Find(ctx, nil, ModalOverlay)
	if err != nil {
		m.logger.Debugf("No overlay to dismiss %s: %v", hidden, err)
		return
	}

	offset := m.overlayOffset
	if err := m.query.Click(ctx, overlay, &offset); err != nil {
		m.logger.Warnf("Failed to click overlay to dismiss %s: %v", hidden, err)
		return
	}

	if err := m.query.WaitHidden(ctx, hidden, m.dismissTimeout); err != nil {
		m.logger.Warnf("Dialog %s still visible after dismiss, continuing: %v", hidden, err)
	}
}
