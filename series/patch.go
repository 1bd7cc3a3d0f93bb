package series

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/samber/mo"

	"github.com/cyp0633/repeatcal/event"
)

// Patch holds the fields a whole-series edit may change. Identity, date and
// recurrence are not representable here, so they can never be merged into a
// member.
type Patch struct {
	Title            mo.Option[string]
	StartTime        mo.Option[event.Clock]
	EndTime          mo.Option[event.Clock]
	Description      mo.Option[string]
	Location         mo.Option[string]
	Category         mo.Option[event.Category]
	NotificationTime mo.Option[int]
}

// PatchFrom copies every non-identity field of f into a patch.
func PatchFrom(f event.Form) Patch {
	return Patch{
		Title:            mo.Some(f.Title),
		StartTime:        mo.Some(f.StartTime),
		EndTime:          mo.Some(f.EndTime),
		Description:      mo.Some(f.Description),
		Location:         mo.Some(f.Location),
		Category:         mo.Some(f.Category),
		NotificationTime: mo.Some(f.NotificationTime),
	}
}

func (p Patch) IsEmpty() bool {
	return !p.Title.IsPresent() && !p.StartTime.IsPresent() && !p.EndTime.IsPresent() &&
		!p.Description.IsPresent() && !p.Location.IsPresent() && !p.Category.IsPresent() &&
		!p.NotificationTime.IsPresent()
}

// Apply overwrites the fields present in p and leaves everything else,
// including ID, Date and Repeat, as it was.
func Apply(e event.Event, p Patch) event.Event {
	e.Title = p.Title.OrElse(e.Title)
	e.StartTime = p.StartTime.OrElse(e.StartTime)
	e.EndTime = p.EndTime.OrElse(e.EndTime)
	e.Description = p.Description.OrElse(e.Description)
	e.Location = p.Location.OrElse(e.Location)
	e.Category = p.Category.OrElse(e.Category)
	e.NotificationTime = p.NotificationTime.OrElse(e.NotificationTime)
	return e
}

// MarshalJSON writes only the present fields, using the event wire names.
func (p Patch) MarshalJSON() ([]byte, error) {
	out := make(map[string]any)
	if v, ok := p.Title.Get(); ok {
		out["title"] = v
	}
	if v, ok := p.StartTime.Get(); ok {
		out["startTime"] = v
	}
	if v, ok := p.EndTime.Get(); ok {
		out["endTime"] = v
	}
	if v, ok := p.Description.Get(); ok {
		out["description"] = v
	}
	if v, ok := p.Location.Get(); ok {
		out["location"] = v
	}
	if v, ok := p.Category.Get(); ok {
		out["category"] = v
	}
	if v, ok := p.NotificationTime.Get(); ok {
		out["notificationTime"] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a partial event. Keys outside the patchable set (id,
// date, repeat and anything unknown) are dropped, as are null values.
func (p *Patch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out Patch
	var err error
	if out.Title, err = field[string](raw, "title"); err != nil {
		return err
	}
	if out.StartTime, err = field[event.Clock](raw, "startTime"); err != nil {
		return err
	}
	if out.EndTime, err = field[event.Clock](raw, "endTime"); err != nil {
		return err
	}
	if out.Description, err = field[string](raw, "description"); err != nil {
		return err
	}
	if out.Location, err = field[string](raw, "location"); err != nil {
		return err
	}
	if out.Category, err = field[event.Category](raw, "category"); err != nil {
		return err
	}
	if out.NotificationTime, err = field[int](raw, "notificationTime"); err != nil {
		return err
	}
	*p = out
	return nil
}

func field[T any](raw map[string]json.RawMessage, key string) (mo.Option[T], error) {
	msg, ok := raw[key]
	if !ok || string(msg) == "null" {
		return mo.None[T](), nil
	}
	var v T
	if err := json.Unmarshal(msg, &v); err != nil {
		return mo.None[T](), fmt.Errorf("invalid %s: %w", key, err)
	}
	return mo.Some(v), nil
}

// DecodePatch reads a series patch from r. Only the patchable fields survive
// decoding.
func DecodePatch(r io.Reader) (Patch, error) {
	var p Patch
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return Patch{}, fmt.Errorf("decode series patch: %w", err)
	}
	return p, nil
}
