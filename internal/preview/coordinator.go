package preview

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"thiepcuoi.vn/web/internal/cart"
	"thiepcuoi.vn/web/internal/domain"
)

// State is the editing session phase.
type State int

const (
	Idle State = iota
	AwaitingInput
	Previewing
	Saving
	Saved
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingInput:
		return "awaiting_input"
	case Previewing:
		return "previewing"
	case Saving:
		return "saving"
	case Saved:
		return "saved"
	default:
		return "unknown"
	}
}

var (
	// ErrNoTemplate blocks a commit when no card template is selected.
	ErrNoTemplate = errors.New("preview: no card template selected")
	// ErrNoWeddingDate blocks a commit when the wedding date is unset.
	ErrNoWeddingDate = errors.New("preview: wedding date is required")
	// ErrBusy is returned when a commit is already in flight.
	ErrBusy = errors.New("preview: save already in progress")
	// ErrNotPersisted is returned when a save render comes back without an id.
	ErrNotPersisted = errors.New("preview: saved card has no id")
)

// Renderer produces a rendered card. SaveCard=false must not persist anything.
type Renderer interface {
	Render(ctx context.Context, req domain.RenderRequest) (domain.CustomizedCard, error)
}

// Result reports what happened to one Update call.
type Result struct {
	Seq   uint64
	State State
	// Card is the preview currently on screen, nil if none has rendered yet.
	Card *domain.CustomizedCard
	// Rendered is true when this call's render was applied.
	Rendered bool
	// Stale is true when a newer request superseded this one; its result was discarded.
	Stale bool
	// Err is the render failure, if any. The previous preview stays in Card.
	Err error
}

// CommitMode selects what happens after a successful save.
type CommitMode int

const (
	CommitSave CommitMode = iota + 1
	CommitAddToCart
)

// CommitResult is the saved card and field snapshot.
type CommitResult struct {
	Mode   CommitMode
	Card   domain.CustomizedCard
	Fields Fields
}

// CartEntry builds the cart candidate for an add-to-cart commit.
func (r CommitResult) CartEntry(unitPrice domain.Money) cart.CustomizedCard {
	data := CustomData(r.Fields)
	return cart.CustomizedCard{
		ID:                r.Card.ID,
		TemplateID:        r.Card.TemplateID,
		TemplateName:      r.Card.TemplateName,
		CardTemplateName:  r.Card.CardTemplateName,
		GroomName:         data[domain.FieldGroomName],
		BrideName:         data[domain.FieldBrideName],
		WeddingDate:       data[domain.FieldWeddingDate],
		WeddingTime:       data[domain.FieldWeddingTime],
		WeddingVenue:      data[domain.FieldWeddingVenue],
		CustomMessage:     data[domain.FieldCustomMessage],
		GeneratedImageURL: r.Card.GeneratedImageURL,
		RenderedHTML:      r.Card.RenderedHTML,
		UnitPrice:         unitPrice,
	}
}

// Coordinator keeps one editing session's preview in sync with its inputs.
// Each preview request is tagged with a sequence number and only the latest issued one is applied.
type Coordinator struct {
	renderer Renderer
	logger   *zap.Logger

	mu             sync.Mutex
	cardTemplateID domain.ID
	state          State
	seq            uint64
	current        *domain.CustomizedCard
	saved          *domain.CustomizedCard
}

// NewCoordinator returns an Idle coordinator.
func NewCoordinator(r Renderer, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{renderer: r, logger: logger}
}

// SelectTemplate switches the card template. In-flight previews for the old template become stale.
func (c *Coordinator) SelectTemplate(id domain.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == c.cardTemplateID && c.state != Idle {
		return
	}
	c.cardTemplateID = id
	c.seq++
	c.current = nil
	if id.IsZero() {
		c.state = Idle
	} else {
		c.state = AwaitingInput
	}
}

// Reset starts a fresh editing session on id, dropping the preview and the last saved card.
func (c *Coordinator) Reset(id domain.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Saving {
		return
	}
	c.cardTemplateID = id
	c.seq++
	c.current = nil
	c.saved = nil
	if id.IsZero() {
		c.state = Idle
	} else {
		c.state = AwaitingInput
	}
}

// CardTemplateID returns the selected card template.
func (c *Coordinator) CardTemplateID() domain.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cardTemplateID
}

// State returns the current phase.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns the preview on screen.
func (c *Coordinator) Current() *domain.CustomizedCard {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Saved returns the last committed card.
func (c *Coordinator) Saved() *domain.CustomizedCard {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saved
}

// Update reacts to an input change. It renders a preview only when a template is selected and both names are set.
func (c *Coordinator) Update(ctx context.Context, f Fields) Result {
	c.mu.Lock()
	if c.cardTemplateID.IsZero() {
		c.state = Idle
		res := Result{Seq: c.seq, State: c.state}
		c.mu.Unlock()
		return res
	}
	if !f.HasNames() {
		if c.state != Saving {
			c.state = AwaitingInput
		}
		res := Result{Seq: c.seq, State: c.state, Card: c.current}
		c.mu.Unlock()
		return res
	}
	c.seq++
	seq := c.seq
	if c.state != Saving {
		c.state = Previewing
	}
	req := domain.RenderRequest{CardTemplateID: c.cardTemplateID, CustomData: CustomData(f), SaveCard: false}
	c.mu.Unlock()

	card, err := c.renderer.Render(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return Result{Seq: seq, State: c.state, Card: c.current, Stale: true}
	}
	if err != nil {
		c.logger.Warn("preview render failed",
			zap.Error(err),
			zap.Uint64("seq", seq),
			zap.String("cardTemplateId", req.CardTemplateID.String()))
		return Result{Seq: seq, State: c.state, Card: c.current, Err: err}
	}
	// previews never carry an id even if a backend echoes one
	card.ID = ""
	card.IsSaved = false
	c.current = &card
	return Result{Seq: seq, State: c.state, Card: c.current, Rendered: true}
}

// Commit saves the card. Preconditions are checked before any render call.
// On failure the session returns to Previewing and the error is returned for display.
func (c *Coordinator) Commit(ctx context.Context, f Fields, mode CommitMode) (CommitResult, error) {
	c.mu.Lock()
	switch {
	case c.cardTemplateID.IsZero():
		c.mu.Unlock()
		return CommitResult{}, ErrNoTemplate
	case f.WeddingDate.IsZero():
		c.mu.Unlock()
		return CommitResult{}, ErrNoWeddingDate
	case c.state == Saving:
		c.mu.Unlock()
		return CommitResult{}, ErrBusy
	}
	c.state = Saving
	req := domain.RenderRequest{CardTemplateID: c.cardTemplateID, CustomData: CustomData(f), SaveCard: true}
	c.mu.Unlock()

	card, err := c.renderer.Render(ctx, req)
	if err == nil && card.ID.IsZero() {
		err = ErrNotPersisted
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = Previewing
		c.logger.Error("card save failed", zap.Error(err), zap.String("cardTemplateId", req.CardTemplateID.String()))
		return CommitResult{}, fmt.Errorf("preview: save card: %w", err)
	}
	c.state = Saved
	c.saved = &card
	return CommitResult{Mode: mode, Card: card, Fields: f}, nil
}
