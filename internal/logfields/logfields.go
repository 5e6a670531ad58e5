package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyPage       = "page"
	KeyEntry      = "entry"
	KeyStem       = "stem"
	KeyPath       = "path"
	KeyTemplate   = "template"
	KeyAlias      = "alias"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyAddr       = "addr"
	KeyOp         = "op"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyRemoteAddr = "remote_addr"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr       { return slog.String(KeyBuildID, id) }
func Page(name string) slog.Attr        { return slog.String(KeyPage, name) }
func Entry(path string) slog.Attr       { return slog.String(KeyEntry, path) }
func Stem(stem string) slog.Attr        { return slog.String(KeyStem, stem) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func Template(path string) slog.Attr    { return slog.String(KeyTemplate, path) }
func Alias(alias string) slog.Attr      { return slog.String(KeyAlias, alias) }
func Count(n int) slog.Attr             { return slog.Int(KeyCount, n) }
func Addr(addr string) slog.Attr        { return slog.String(KeyAddr, addr) }
func Op(op string) slog.Attr            { return slog.String(KeyOp, op) }
func Method(m string) slog.Attr         { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr         { return slog.Int(KeyStatus, code) }
func RemoteAddr(addr string) slog.Attr  { return slog.String(KeyRemoteAddr, addr) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
