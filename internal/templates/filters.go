package templates

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/flosch/pongo2/v6"

	"git.home.luguber.info/inful/puggle/internal/foundation"
)

// Named formats accepted by datetimeformat and published_on, matched
// case-insensitively. Any other argument is used as a Go time layout.
var dateFormats = foundation.NewNormalizer(map[string]string{
	"short":  "2006-01-02 15:04",
	"medium": "Jan 2 2006 3:04:05 PM",
	"long":   "January 2 2006 3:04:05 PM",
	"full":   "Monday, January 2 2006 3:04:05.000000 PM",
	"iso":    "2006-01-02T15:04:05-07:00",
}, "")

const defaultDateFormat = "medium"

var (
	filtersOnce sync.Once
	filtersErr  error
)

// pongo2 keeps filters in a process-wide registry.
func registerFilters() error {
	filtersOnce.Do(func() {
		filters := map[string]pongo2.FilterFunction{
			"datetimeformat": filterDatetimeFormat,
			"published_on":   filterPublishedOn,
		}
		for name, fn := range filters {
			if pongo2.FilterExists(name) {
				continue
			}
			if err := pongo2.RegisterFilter(name, fn); err != nil {
				filtersErr = errors.Join(filtersErr, err)
			}
		}
	})
	return filtersErr
}

// FormatDateTime formats value in UTC. value may be a time.Time, unix
// seconds, or an RFC 3339 string. format is a preset name, a Go layout,
// or empty for the medium preset.
func FormatDateTime(value any, format string) (string, error) {
	ts, err := toTime(value)
	if err != nil {
		return "", err
	}
	if format == "" {
		format = defaultDateFormat
	}
	layout, ok := dateFormats.Lookup(format)
	if !ok {
		layout = format
	}
	return ts.UTC().Format(layout), nil
}

// PublishedOn renders the publication line used under post titles.
func PublishedOn(value any, format string) (string, error) {
	user, err := FormatDateTime(value, format)
	if err != nil {
		return "", err
	}
	iso, err := FormatDateTime(value, "iso")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Published on <time datetime=\"%s\">%s UTC</time>", iso, user), nil
}

func toTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, errors.New("missing date value")
		}
		return *v, nil
	case int:
		return time.Unix(int64(v), 0), nil
	case int64:
		return time.Unix(v, 0), nil
	case float64:
		return time.Unix(int64(v), 0), nil
	case string:
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			return ts, nil
		}
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Unix(secs, 0), nil
		}
		return time.Time{}, fmt.Errorf("cannot parse %q as a date", v)
	case nil:
		return time.Time{}, errors.New("missing date value")
	default:
		return time.Time{}, fmt.Errorf("cannot format %T as a date", value)
	}
}

func formatParam(param *pongo2.Value) string {
	if param == nil || param.IsNil() {
		return ""
	}
	return param.String()
}

func filterDatetimeFormat(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	out, err := FormatDateTime(in.Interface(), formatParam(param))
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:datetimeformat", OrigError: err}
	}
	return pongo2.AsValue(out), nil
}

func filterPublishedOn(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	out, err := PublishedOn(in.Interface(), formatParam(param))
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:published_on", OrigError: err}
	}
	return pongo2.AsSafeValue(out), nil
}
