package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/cyp0633/repeatcal/internal/httpclient"
)

// Remove deletes exactly one occurrence, whether or not it belongs to a series.
func (o *Operations) Remove(ctx context.Context, id string) error {
	err := o.http.DoDELETE(ctx, eventPath(id))
	if errors.Is(err, httpclient.ErrNotFound) {
		err = fmt.Errorf("%w: %s: %w", ErrOccurrenceGone, id, err)
	}
	if err != nil {
		o.logger.Error("failed to delete event", "event_id", id, "error", err)
		o.notifier.Notify(Notice{Level: LevelError, Message: MsgDeleteFailed})
		return err
	}

	o.logger.Info("deleted event", "event_id", id)
	o.refresh(ctx)
	o.notifier.Notify(Notice{Level: LevelInfo, Message: MsgDeleted})
	return nil
}
