// Package submit delivers a completed wizard to the intake endpoint with an
// exactly-once-in-flight guard.
package submit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/terrasite/leadform/internal/form"
	"github.com/terrasite/leadform/internal/logger"
	"github.com/terrasite/leadform/internal/notice"
)

// User-facing texts.
const (
	MsgInFlight = "Your request is already being sent, please wait"
	MsgSuccess  = "Thank you! Your request has been sent. We will contact you shortly."
	MsgFailure  = "Could not send the request. Please try again later or contact us directly."
)

// DefaultResetDelay is how long the success acknowledgment stays on the
// filled form before the wizard resets.
const DefaultResetDelay = time.Second

// Transport delivers a payload. It blocks until the endpoint answers.
type Transport interface {
	Send(ctx context.Context, p form.Payload) error
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, p form.Payload) error

func (f TransportFunc) Send(ctx context.Context, p form.Payload) error {
	return f(ctx, p)
}

// Presenter shows transient feedback. *notice.Board implements it.
type Presenter interface {
	Show(kind notice.Kind, text string) uint64
}

// Options tune a Controller.
type Options struct {
	// ResetDelay is returned in a successful Outcome.
	ResetDelay time.Duration
	// Timeout bounds a single Deliver call. Zero means no limit.
	Timeout time.Duration
}

// Outcome tells the caller what to do after Complete.
type Outcome struct {
	Succeeded bool
	// ResetAfter is the delay before ApplyReset should run. Only set on success.
	ResetAfter time.Duration
	// Message is the text that was presented.
	Message string
}

// Controller runs the Idle -> Submitting -> Idle cycle for one wizard.
type Controller struct {
	state     *form.WizardState
	transport Transport
	presenter Presenter
	opts      Options

	inFlight     atomic.Bool
	resetPending atomic.Bool
}

// NewController creates a controller for state.
func NewController(state *form.WizardState, transport Transport, presenter Presenter, opts Options) *Controller {
	if opts.ResetDelay <= 0 {
		opts.ResetDelay = DefaultResetDelay
	}
	return &Controller{
		state:     state,
		transport: transport,
		presenter: presenter,
		opts:      opts,
	}
}

// InFlight reports whether a submission is running.
func (c *Controller) InFlight() bool {
	return c.inFlight.Load()
}

// Begin claims the guard and produces the payload to deliver. When a
// submission is already running it presents a notice and returns
// ErrSubmissionInFlight without touching the guard. Any other failure
// releases the guard before returning. A new attempt cancels a reset still
// pending from an earlier success.
func (c *Controller) Begin() (form.Payload, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		c.presenter.Show(notice.KindInfo, MsgInFlight)
		return form.Payload{}, ErrSubmissionInFlight
	}
	c.resetPending.Store(false)

	if !c.state.IsLast() {
		c.inFlight.Store(false)
		return form.Payload{}, ErrNotFinalStep
	}
	if err := c.state.Validate(); err != nil {
		c.inFlight.Store(false)
		c.presenter.Show(notice.KindError, err.Error())
		return form.Payload{}, err
	}

	c.state.Sync()
	p := form.BuildPayload(c.state.Data())
	logger.Debug("Submitting lead with fields %v", p.Keys())
	return p, nil
}

// Deliver sends p through the transport. A panicking transport is
// reported as a *TransportError.
func (c *Controller) Deliver(ctx context.Context, p form.Payload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Transport panicked: %v", r)
			err = &TransportError{Err: fmt.Errorf("transport panic: %v", r)}
		}
	}()

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}
	return c.transport.Send(ctx, p)
}

// Complete releases the guard and presents the result of Deliver.
// On success the wizard keeps its data until ApplyReset runs.
func (c *Controller) Complete(err error) Outcome {
	defer c.inFlight.Store(false)

	if err != nil {
		msg := FailureMessage(err)
		logger.Warn("Lead submission failed: %v", err)
		c.presenter.Show(notice.KindError, msg)
		return Outcome{Message: msg}
	}

	logger.Info("Lead submitted")
	c.resetPending.Store(true)
	c.presenter.Show(notice.KindSuccess, MsgSuccess)
	return Outcome{Succeeded: true, ResetAfter: c.opts.ResetDelay, Message: MsgSuccess}
}

// ResetPending reports whether a success is waiting for ApplyReset.
func (c *Controller) ResetPending() bool {
	return c.resetPending.Load()
}

// ApplyReset resets the wizard after a successful submission. Only the
// first call after each success has an effect.
func (c *Controller) ApplyReset() bool {
	if !c.resetPending.CompareAndSwap(true, false) {
		return false
	}
	c.state.Reset()
	return true
}

// Submit runs Begin, Deliver and Complete in sequence. The returned error
// is the Begin or delivery error; the guard is released in every case.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	p, err := c.Begin()
	if err != nil {
		return Outcome{}, err
	}

	err = c.Deliver(ctx, p)
	return c.Complete(err), err
}
