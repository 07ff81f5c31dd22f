package api

import (
	"context"

	"github.com/r3d91ll/spectra/pkg/archive"
	"github.com/r3d91ll/spectra/pkg/processor"
	"github.com/r3d91ll/spectra/pkg/results"
)

// EventBroadcaster publishes result and upload events. *Hub implements it.
type EventBroadcaster interface {
	ResultAdded(s results.Summary) error
	ResultsReset() error
	DescriptionSet(s results.Summary) error
	Upload(eventType string, data UploadEventData) error
}

// Processor turns uploaded CSV files into result CSV files.
// *processor.Client implements it.
type Processor interface {
	Process(ctx context.Context, files []archive.File, bounds processor.Bounds) ([]archive.File, error)
	Health(ctx context.Context) error
}

var (
	_ EventBroadcaster = (*Hub)(nil)
	_ Processor        = (*processor.Client)(nil)
)

// nopEvents drops every event.
type nopEvents struct{}

func (nopEvents) ResultAdded(results.Summary) error    { return nil }
func (nopEvents) ResultsReset() error                  { return nil }
func (nopEvents) DescriptionSet(results.Summary) error { return nil }
func (nopEvents) Upload(string, UploadEventData) error { return nil }

func eventsOrNop(b EventBroadcaster) EventBroadcaster {
	if b == nil {
		return nopEvents{}
	}
	return b
}
