package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/cyp0633/repeatcal/internal/httpclient"
	"github.com/cyp0633/repeatcal/series"
)

// UpdateSeries applies patch to every member of the series. An empty series
// identifier (a repeating event that was never assigned one) is skipped
// without a request or an error.
func (o *Operations) UpdateSeries(ctx context.Context, seriesID string, patch series.Patch) error {
	if seriesID == "" {
		o.logger.Warn("skipping series operation without series id", "operation", "update")
		return nil
	}

	err := o.http.DoPUT(ctx, seriesPath(seriesID), patch, nil)
	if errors.Is(err, httpclient.ErrNotFound) {
		err = fmt.Errorf("%w: %s: %w", series.ErrSeriesNotFound, seriesID, err)
	}
	if err != nil {
		o.logger.Error("failed to update series", "series_id", seriesID, "error", err)
		o.notifier.Notify(Notice{Level: LevelError, Message: MsgSeriesUpdateFailed})
		return err
	}

	o.logger.Info("updated series", "series_id", seriesID)
	o.refresh(ctx)
	o.onSave()
	o.notifier.Notify(Notice{Level: LevelSuccess, Message: MsgSeriesUpdated})
	return nil
}

// RemoveSeries deletes every member of the series. Like UpdateSeries it skips
// an empty series identifier.
func (o *Operations) RemoveSeries(ctx context.Context, seriesID string) error {
	if seriesID == "" {
		o.logger.Warn("skipping series operation without series id", "operation", "delete")
		return nil
	}

	if err := o.http.DoDELETE(ctx, seriesPath(seriesID)); err != nil {
		o.logger.Error("failed to delete series", "series_id", seriesID, "error", err)
		o.notifier.Notify(Notice{Level: LevelError, Message: MsgDeleteFailed})
		return err
	}

	o.logger.Info("deleted series", "series_id", seriesID)
	o.refresh(ctx)
	o.notifier.Notify(Notice{Level: LevelInfo, Message: MsgDeleted})
	return nil
}
