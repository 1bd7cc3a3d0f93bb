package storage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cyp0633/repeatcal/event"
)

// MockStorage implements the Storage interface for testing
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) ListEvents(ctx context.Context) ([]event.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]event.Event), args.Error(1)
}

func (m *MockStorage) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockStorage) CreateEvents(ctx context.Context, forms []event.Form) ([]event.Event, error) {
	args := m.Called(ctx, forms)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]event.Event), args.Error(1)
}

func (m *MockStorage) UpdateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	args := m.Called(ctx, ev)
	return args.Get(0).(event.Event), args.Error(1)
}

func (m *MockStorage) DeleteEvent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// UpdateSeries treats the first Return value as the current series members and
// runs mutate over them, so tests observe what the caller would have stored.
func (m *MockStorage) UpdateSeries(ctx context.Context, seriesID string, mutate Mutation) ([]event.Event, error) {
	args := m.Called(ctx, seriesID, mutate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	members := args.Get(0).([]event.Event)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	out := make([]event.Event, 0, len(members))
	for _, member := range members {
		updated, err := mutate(member)
		if err != nil {
			return nil, err
		}
		out = append(out, updated)
	}
	return out, nil
}

func (m *MockStorage) DeleteSeries(ctx context.Context, seriesID string) (int, error) {
	args := m.Called(ctx, seriesID)
	return args.Int(0), args.Error(1)
}
