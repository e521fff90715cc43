// Package authz implements the capability check that guards application operations.
//
// Capabilities form a flat set. Holding one never implies holding another.
package authz

import (
	"errors"
	"fmt"
	"sort"
)

// Capability is a named permission granted to a user
type Capability string

const (
	ViewApplication     Capability = "view_application"
	CreateApplication   Capability = "create_application"
	DecideApplication   Capability = "decide_application"
	AnnotateApplication Capability = "annotate_application"
)

// AllCapabilities lists every known capability
var AllCapabilities = []Capability{
	ViewApplication,
	CreateApplication,
	DecideApplication,
	AnnotateApplication,
}

// ParseCapability validates a capability name
func ParseCapability(s string) (Capability, error) {
	for _, c := range AllCapabilities {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown capability %q", s)
}

// Action is an operation a principal asks to perform
type Action string

const (
	ActionView     Action = "view_application"
	ActionCreate   Action = "create_application"
	ActionDecide   Action = "decide_application"
	ActionAnnotate Action = "annotate_application"
)

var requiredCapability = map[Action]Capability{
	ActionView:     ViewApplication,
	ActionCreate:   CreateApplication,
	ActionDecide:   DecideApplication,
	ActionAnnotate: AnnotateApplication,
}

// RequiredCapability returns the capability needed for an action
func RequiredCapability(a Action) (Capability, bool) {
	c, ok := requiredCapability[a]
	return c, ok
}

// Principal is an authenticated user together with its granted capabilities
type Principal struct {
	UserID       int64
	Username     string
	capabilities map[Capability]struct{}
}

// NewPrincipal builds a principal from stored capability names. Unknown names are ignored.
func NewPrincipal(userID int64, username string, capabilities []string) *Principal {
	p := &Principal{
		UserID:       userID,
		Username:     username,
		capabilities: make(map[Capability]struct{}, len(capabilities)),
	}
	for _, name := range capabilities {
		if c, err := ParseCapability(name); err == nil {
			p.capabilities[c] = struct{}{}
		}
	}
	return p
}

// Has reports whether the principal holds c
func (p *Principal) Has(c Capability) bool {
	if p == nil {
		return false
	}
	_, ok := p.capabilities[c]
	return ok
}

// Capabilities returns the held capabilities sorted by name
func (p *Principal) Capabilities() []Capability {
	if p == nil {
		return nil
	}
	caps := make([]Capability, 0, len(p.capabilities))
	for c := range p.capabilities {
		caps = append(caps, c)
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
	return caps
}

// Require returns nil when p may perform a. A nil principal yields an
// UnauthenticatedError; a missing capability yields a ForbiddenError.
func Require(p *Principal, a Action) error {
	if p == nil {
		return &UnauthenticatedError{}
	}
	c, ok := RequiredCapability(a)
	if !ok {
		return &ForbiddenError{Action: a}
	}
	if !p.Has(c) {
		return &ForbiddenError{Action: a}
	}
	return nil
}

// RequireAuthenticated returns an UnauthenticatedError when p is nil
func RequireAuthenticated(p *Principal) error {
	if p == nil {
		return &UnauthenticatedError{}
	}
	return nil
}

// ForbiddenError is returned when the principal lacks the capability for an action
type ForbiddenError struct {
	Action Action
}

func (e *ForbiddenError) Category() string { return "forbidden" }

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("forbidden: missing capability for %s", e.Action)
}

// UnauthenticatedError is returned when no principal is present
type UnauthenticatedError struct{}

func (e *UnauthenticatedError) Category() string { return "unauthenticated" }

func (e *UnauthenticatedError) Error() string {
	return "authentication required"
}

// IsForbidden reports whether err is a ForbiddenError
func IsForbidden(err error) bool {
	var fe *ForbiddenError
	return errors.As(err, &fe)
}

// IsUnauthenticated reports whether err is an UnauthenticatedError
func IsUnauthenticated(err error) bool {
	var ue *UnauthenticatedError
	return errors.As(err, &ue)
}
