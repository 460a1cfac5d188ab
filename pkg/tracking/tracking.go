// Package tracking holds the parcel lifecycle vocabulary shared by
// senders, travelers and the public tracking page: status values,
// human-shareable tracking codes and last-known location handling.
package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/porolink/porobase/adapter/collection"
	"github.com/porolink/porobase/adapter/decoder"
	"github.com/porolink/porobase/domain"
)

// Parcel lifecycle statuses. A freshly created parcel has no status at
// all, which displays as "New".
const (
	StatusPickedUp  = "picked_up"
	StatusInTransit = "in_transit"
	StatusDelivered = "delivered"
)

// Geolocation call contract: a fix older than LocateMaxAge is refused and
// the lookup gives up after LocateTimeout.
const (
	LocateTimeout = 10 * time.Second
	LocateMaxAge  = 5 * time.Minute
)

// codeAlphabet covers base36 digits for the random code suffix.
const codeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Location is a GPS fix with its reported accuracy in meters.
type Location struct {
	Lat      float64 `poro:"lat" json:"lat"`
	Lng      float64 `poro:"lng" json:"lng"`
	Accuracy float64 `poro:"accuracy" json:"accuracy,omitempty"`
}

// Locator resolves the device's current position. Implementations honor
// [LocateTimeout] and may serve a cached fix up to [LocateMaxAge] old.
type Locator interface {
	Locate(ctx context.Context) (Location, error)
}

// NewCode generates a human-shareable tracking code of the form
// PORO-<creation millis>-<nine upper base36 characters>.
func NewCode(now time.Time) string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return fmt.Sprintf("PORO-%d-%s", now.UnixMilli(), strings.ToUpper(string(suffix)))
}

// URL returns the public tracking page address for a code.
func URL(origin, code string) string {
	return fmt.Sprintf("%s/track/%s", strings.TrimRight(origin, "/"), code)
}

var locationDecoder = decoder.NewDecoder()

// LocationOf extracts the last known fix from a parcel document, or nil
// when none has been recorded.
func LocationOf(parcel domain.M) (*Location, error) {
	raw, ok := parcel["location"]
	if !ok || raw == nil {
		return nil, nil
	}
	var loc Location
	if err := locationDecoder.Decode(raw, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// MapsURL returns a maps link for a fix, or empty when there is none.
func MapsURL(loc *Location) string {
	if loc == nil {
		return ""
	}
	return fmt.Sprintf("https://maps.google.com/?q=%v,%v", loc.Lat, loc.Lng)
}

// FormatStatus renders a status value for display.
func FormatStatus(status string) string {
	switch status {
	case "":
		return "New"
	case StatusPickedUp:
		return "Picked Up"
	case StatusInTransit:
		return "In Transit"
	case StatusDelivered:
		return "Delivered"
	default:
		return status
	}
}

// FormatLocation renders a fix as a coarse region name where one of the
// known bounds matches, otherwise as raw coordinates.
func FormatLocation(loc *Location) string {
	if loc == nil {
		return "Location not available"
	}
	lat, lng := loc.Lat, loc.Lng
	switch {
	case lat >= 59.5 && lat <= 70.1 && lng >= 20.5 && lng <= 31.6:
		return "Finland"
	case lat >= 35 && lat <= 71 && lng >= -10 && lng <= 40:
		return "Europe"
	case lat >= 24.5 && lat <= 49.4 && lng >= -125 && lng <= -66.9:
		return "United States"
	default:
		return fmt.Sprintf("%.4f, %.4f", lat, lng)
	}
}

// UpdateStatus moves a parcel to a new status, stamping updated_at and,
// when a locator is given, attaching the current fix. A failed location
// lookup is logged and the update proceeds without it. The returned
// location is the fix that was attached, if any.
func UpdateStatus(ctx context.Context, parcels *collection.Collection, logger *slog.Logger, loc Locator, parcelID, status string) (*Location, error) {
	update := domain.M{
		"status":     status,
		"updated_at": time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}

	var fix *Location
	if loc != nil {
		lctx, cancel := context.WithTimeout(ctx, LocateTimeout)
		got, err := loc.Locate(lctx)
		cancel()
		if err != nil {
			logger.Warn("location lookup failed", "parcel", parcelID, "err", err)
		} else {
			fix = &got
			update["location"] = domain.M{
				"lat":      got.Lat,
				"lng":      got.Lng,
				"accuracy": got.Accuracy,
			}
		}
	}

	if err := parcels.Update(update).Eq(ctx, "id", parcelID); err != nil {
		return nil, err
	}
	return fix, nil
}
