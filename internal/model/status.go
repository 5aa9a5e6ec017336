package model

import (
	"encoding/json"
	"strings"

	"github.com/ghanu-pos/api/internal/enum"
)

// StatusKind is the set of order states. StatusOther covers labels written
// by other tools; they are kept verbatim and never acted on.
type StatusKind int

const (
	StatusInProgress StatusKind = iota
	StatusCompleted
	StatusCancelled
	StatusOther
)

// Status is an order state. Actor is only set for cancellations, Label only
// for StatusOther.
type Status struct {
	Kind  StatusKind
	Actor string
	Label string
}

func InProgress() Status { return Status{Kind: StatusInProgress} }

func Completed() Status { return Status{Kind: StatusCompleted} }

// CancelledBy records who cancelled the order.
func CancelledBy(actor string) Status {
	return Status{Kind: StatusCancelled, Actor: actor}
}

// IsCancelled reports whether the order was cancelled by anyone.
func (s Status) IsCancelled() bool { return s.Kind == StatusCancelled }

// IsTerminal reports whether no further queue transition is expected.
func (s Status) IsTerminal() bool {
	return s.Kind == StatusCompleted || s.Kind == StatusCancelled
}

// String renders the persisted label, e.g. "ملغي بواسطة admin".
func (s Status) String() string {
	switch s.Kind {
	case StatusCompleted:
		return enum.OrderStatusCompleted
	case StatusCancelled:
		if s.Actor == "" {
			return enum.OrderStatusCancelledBy
		}
		return enum.OrderStatusCancelledBy + " " + s.Actor
	case StatusOther:
		return s.Label
	default:
		return enum.OrderStatusInProgress
	}
}

// ParseStatus is the inverse of String. An empty label is treated as
// in-progress; an unrecognised one becomes StatusOther with the raw label.
func ParseStatus(label string) Status {
	trimmed := strings.TrimSpace(label)
	switch {
	case trimmed == "" || trimmed == enum.OrderStatusInProgress:
		return InProgress()
	case trimmed == enum.OrderStatusCompleted:
		return Completed()
	case strings.HasPrefix(trimmed, enum.OrderStatusCancelledBy):
		actor := strings.TrimSpace(strings.TrimPrefix(trimmed, enum.OrderStatusCancelledBy))
		return CancelledBy(actor)
	}
	return Status{Kind: StatusOther, Label: label}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	*s = ParseStatus(label)
	return nil
}
