package tui

import (
	"context"

	"github.com/willcgage/wirelessboard/internal/apiclient"
	"github.com/willcgage/wirelessboard/internal/registry"
)

// Feed is a live stream of receiver snapshots. The updates channel closes
// when the feed ends; Err reports the cause, nil meaning a clean shutdown.
type Feed interface {
	Updates() <-chan []registry.Device
	Err() error
	Close() error
}

// Transport is the data source behind the dashboard. The live
// implementation wraps apiclient; tests substitute a fake.
type Transport interface {
	// Snapshot fetches the receiver list once.
	Snapshot(ctx context.Context) ([]registry.Device, error)

	// Subscribe opens a push feed of receiver snapshots.
	Subscribe(ctx context.Context) (Feed, error)
}

// clientTransport adapts apiclient.Client to the Transport seam.
type clientTransport struct {
	client *apiclient.Client
}

// NewClientTransport wraps an API client for use as the dashboard's data
// source.
func NewClientTransport(client *apiclient.Client) Transport {
	return clientTransport{client: client}
}

func (t clientTransport) Snapshot(ctx context.Context) ([]registry.Device, error) {
	return t.client.Snapshot(ctx)
}

func (t clientTransport) Subscribe(ctx context.Context) (Feed, error) {
	sub, err := t.client.Subscribe(ctx)
	if err != nil {
		return nil, err
	}
	return sub, nil
}
