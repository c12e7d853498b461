package navigator

import (
	"context"
	"errors"
	"time"

	"github.com/law-makers/dealwatch/internal/browser"
	"github.com/law-makers/dealwatch/internal/runctx"
)

// Outcome is the result of running one popup step
type Outcome string

const (
	// OutcomeDismissed means every action of the step succeeded
	OutcomeDismissed Outcome = "dismissed"
	// OutcomeAbsent means the trigger never appeared within the step wait
	OutcomeAbsent Outcome = "absent"
	// OutcomePartial means the trigger was handled but a later action was not found
	OutcomePartial Outcome = "partial"
	// OutcomeFailed means the step errored for a reason other than absence
	OutcomeFailed Outcome = "failed"
)

// ActionKind selects what an Action does with its target
type ActionKind int

const (
	// ActionClick waits for the target to become visible and clicks it
	ActionClick ActionKind = iota
	// ActionWait only waits for the target to be present
	ActionWait
)

// Action is one interaction within a popup step
type Action struct {
	Kind   ActionKind
	Target browser.Locator
}

// Click builds a click action
func Click(loc browser.Locator) Action { return Action{Kind: ActionClick, Target: loc} }

// Wait builds an action that only waits for loc, e.g. a modal container
// that must be rendered before its buttons respond
func Wait(loc browser.Locator) Action { return Action{Kind: ActionWait, Target: loc} }

// PopupStep describes a dismissible interstitial. The first action is the
// trigger: if it does not appear within Wait the popup is considered absent.
// SettleAfter is paused after the step was handled; with SettleAlways it is
// paused whatever the outcome, giving later popups time to render.
type PopupStep struct {
	Name         string
	Actions      []Action
	Wait         time.Duration
	Optional     bool
	OnEntry      bool
	SettleAfter  time.Duration
	SettleAlways bool
}

// StepResult records how a step went
type StepResult struct {
	Name    string
	Entry   bool
	Outcome Outcome
	Err     error
}

func (n *Navigator) runStep(ctx context.Context, page browser.Page, step PopupStep) StepResult {
	logger := runctx.Logger(ctx)
	res := StepResult{Name: step.Name}

	wait := step.Wait
	if wait <= 0 {
		wait = n.opts.StepTimeout
	}

	for i, action := range step.Actions {
		err := n.do(ctx, page, action, wait)
		if err == nil {
			continue
		}

		notFound := errors.Is(err, browser.ErrNotFound) && ctx.Err() == nil
		switch {
		case notFound && i == 0:
			res.Outcome = OutcomeAbsent
			if !step.Optional {
				res.Err = ErrRequiredStepAbsent
			}
			logger.Debug().Str("step", step.Name).Dur("wait", wait).Msg("Popup not present")
			if step.SettleAlways {
				n.settle(ctx, step)
			}
			return res
		case notFound:
			res.Outcome = OutcomePartial
			res.Err = err
			logger.Warn().
				Str("step", step.Name).
				Int("action", i+1).
				Err(err).
				Msg("Popup only partially handled")
			n.settle(ctx, step)
			return res
		default:
			res.Outcome = OutcomeFailed
			res.Err = err
			logger.Warn().Str("step", step.Name).Err(err).Msg("Popup step failed")
			if step.SettleAlways {
				n.settle(ctx, step)
			}
			return res
		}
	}

	res.Outcome = OutcomeDismissed
	logger.Info().Str("step", step.Name).Msg("Popup dismissed")
	n.settle(ctx, step)
	return res
}

func (n *Navigator) do(ctx context.Context, page browser.Page, action Action, wait time.Duration) error {
	actionCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	if action.Kind == ActionWait {
		return page.WaitPresent(actionCtx, action.Target)
	}
	return page.Click(actionCtx, action.Target)
}

func (n *Navigator) settle(ctx context.Context, step PopupStep) {
	if step.SettleAfter <= 0 {
		return
	}
	if err := n.sleep(ctx, step.SettleAfter); err != nil {
		runctx.Logger(ctx).Debug().Str("step", step.Name).Err(err).Msg("Settle interrupted")
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
