// Package logfields centralizes canonical slog field names so log keys do not
// drift between the pipeline, server and daemon packages.
package logfields

import "log/slog"

const (
	KeyPlanID       = "plan_id"
	KeyGenerationID = "generation_id"
	KeyStage        = "stage"
	KeyArtifactID   = "artifact_id"
	KeyDurationMS   = "duration_ms"
	KeyMethod       = "method"
	KeyPath         = "path"
	KeyStatus       = "status"
	KeyRemoteAddr   = "remote_addr"
	KeyUserAgent    = "user_agent"
	KeyError        = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func PlanID(id string) slog.Attr       { return slog.String(KeyPlanID, id) }
func GenerationID(id string) slog.Attr { return slog.String(KeyGenerationID, id) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func ArtifactID(id string) slog.Attr   { return slog.String(KeyArtifactID, id) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Status(code int) slog.Attr        { return slog.Int(KeyStatus, code) }
func RemoteAddr(a string) slog.Attr    { return slog.String(KeyRemoteAddr, a) }
func UserAgent(ua string) slog.Attr    { return slog.String(KeyUserAgent, ua) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
