// Package browser owns the headless Chrome session a pipeline run drives.
package browser

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when an element does not show up before the wait expires
var ErrNotFound = errors.New("element not found")

// Strategy selects how a Locator expression is evaluated
type Strategy int

const (
	// ByCSS evaluates the expression as a CSS selector
	ByCSS Strategy = iota
	// ByXPath evaluates the expression as an XPath query
	ByXPath
)

func (s Strategy) String() string {
	switch s {
	case ByCSS:
		return "css"
	case ByXPath:
		return "xpath"
	default:
		return "unknown"
	}
}

// Locator identifies an element on the page
type Locator struct {
	By   Strategy
	Expr string
}

// CSS builds a CSS selector locator
func CSS(expr string) Locator { return Locator{By: ByCSS, Expr: expr} }

// XPath builds an XPath locator
func XPath(expr string) Locator { return Locator{By: ByXPath, Expr: expr} }

func (l Locator) String() string {
	return fmt.Sprintf("%s(%s)", l.By, l.Expr)
}

// Page is the set of interactions the navigator and diagnostics need.
// Waiting operations block until ctx is done and then report ErrNotFound.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, loc Locator) error
	WaitPresent(ctx context.Context, loc Locator) error
	HTML(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) ([]byte, error)
}
