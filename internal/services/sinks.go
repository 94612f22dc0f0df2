package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/presencematic/whatsapp-orders/internal/models"
)

// ErrSinkUnavailable means no order store was configured or it failed to start
var ErrSinkUnavailable = errors.New("order store not available")

// OrderSink appends completed orders to an external store
type OrderSink interface {
	Append(ctx context.Context, record models.OrderRecord) error
	Name() string
}

// NoopSink stands in when no order store could be set up; every append fails
// with ErrSinkUnavailable so the order is logged as not saved.
type NoopSink struct{}

func (NoopSink) Append(ctx context.Context, record models.OrderRecord) error {
	return ErrSinkUnavailable
}

func (NoopSink) Name() string {
	return "none"
}

// MultiSink writes every order to each of its sinks
type MultiSink struct {
	sinks []OrderSink
}

// NewMultiSink combines sinks. With no sinks it behaves like NoopSink; with one it returns it as is.
func NewMultiSink(sinks ...OrderSink) OrderSink {
	switch len(sinks) {
	case 0:
		return NoopSink{}
	case 1:
		return sinks[0]
	}
	return &MultiSink{sinks: sinks}
}

// Append tries every sink and joins their errors
func (m *MultiSink) Append(ctx context.Context, record models.OrderRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Append(ctx, record); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) Name() string {
	names := make([]string, 0, len(m.sinks))
	for _, s := range m.sinks {
		names = append(names, s.Name())
	}
	return strings.Join(names, "+")
}
