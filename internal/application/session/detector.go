package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/embedgate/embedgate/internal/domain/user"
	"github.com/embedgate/embedgate/internal/shared/biztime"
	"github.com/embedgate/embedgate/internal/shared/logger"
)

// DefaultSuspiciousWindow is the default lookback window for the detector.
const DefaultSuspiciousWindow = 30 * time.Minute

// Security notice types recorded in the session payload.
const (
	NoticeTooManyIPs        = "too_many_ip_addresses"
	NoticeIPChanged         = "ip_changed_significantly"
	NoticeTooManyUserAgents = "too_many_user_agents"
)

const payloadNoticesKey = "security_notices"

// SecurityNotice is the advisory object written into the current session's
// payload when a detection rule fires.
type SecurityNotice struct {
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	DetectedAt time.Time `json:"detected_at"`
}

// Detector scans the user's recent sessions for anomalies. It is purely
// advisory: it annotates the current session and logs, but never
// terminates a session on its own.
type Detector struct {
	sessions user.SessionRepository
	window   time.Duration
	logger   logger.Interface
}

// NewDetector creates a detector; window <= 0 falls back to the default.
func NewDetector(sessions user.SessionRepository, window time.Duration, log logger.Interface) *Detector {
	if window <= 0 {
		window = DefaultSuspiciousWindow
	}
	return &Detector{
		sessions: sessions,
		window:   window,
		logger:   log.Named("session.detector"),
	}
}

// Inspect runs the detection rules for the current request and returns the
// notices that fired. Notices are also written into the current session's
// payload for later presentation. Storage errors degrade to no detection.
func (d *Detector) Inspect(ctx context.Context, userID uint, currentSessionID, ip, userAgent string) []SecurityNotice {
	if userID == 0 || currentSessionID == "" {
		return nil
	}

	since := biztime.NowUnix() - int64(d.window.Seconds())
	others, err := d.sessions.RecentOtherSessions(ctx, userID, currentSessionID, since)
	if err != nil {
		d.logger.Warnw("suspicious activity scan skipped",
			"user_id", userID,
			"error", err,
		)
		return nil
	}

	now := biztime.NowUTC()
	var notices []SecurityNotice

	ips := map[string]bool{ip: true}
	agents := map[string]bool{userAgent: true}
	for _, s := range others {
		if s.IPAddress != "" {
			ips[s.IPAddress] = true
		}
		if s.UserAgent != "" {
			agents[s.UserAgent] = true
		}
	}

	if len(ips) > 3 {
		notices = append(notices, SecurityNotice{
			Type:       NoticeTooManyIPs,
			Message:    "Your account was accessed from an unusual number of IP addresses recently.",
			DetectedAt: now,
		})
	}

	// Coarse heuristic: compare only the first dotted octet. Any
	// first-octet difference fires, including benign ISP reassignment;
	// this is a documented limitation, not a security guarantee.
	currentOctet := firstOctet(ip)
	for _, s := range others {
		if s.IPAddress == "" {
			continue
		}
		if firstOctet(s.IPAddress) != currentOctet {
			notices = append(notices, SecurityNotice{
				Type:       NoticeIPChanged,
				Message:    "Your account's IP address changed significantly within a short period.",
				DetectedAt: now,
			})
			break
		}
	}

	if len(agents) > 2 {
		notices = append(notices, SecurityNotice{
			Type:       NoticeTooManyUserAgents,
			Message:    "Your account was used from an unusual number of browsers or devices recently.",
			DetectedAt: now,
		})
	}

	if len(notices) == 0 {
		return nil
	}

	d.logger.Warnw("suspicious session activity detected",
		"user_id", userID,
		"session_id", currentSessionID,
		"notices", noticeTypes(notices),
		"ips", keys(ips),
		"user_agents", len(agents),
	)

	d.annotate(ctx, currentSessionID, notices)

	return notices
}

// annotate merges the notices into the current session's payload. The
// payload is base64-wrapped JSON; anything unreadable is treated as empty.
func (d *Detector) annotate(ctx context.Context, sessionID string, notices []SecurityNotice) {
	record, err := d.sessions.GetByID(ctx, sessionID)
	if err != nil {
		d.logger.Warnw("failed to load session for annotation", "session_id", sessionID, "error", err)
		return
	}

	data := DecodePayload(record.Payload)
	existing, _ := data[payloadNoticesKey].([]interface{})
	for _, n := range notices {
		existing = append(existing, n)
	}
	data[payloadNoticesKey] = existing

	encoded, err := EncodePayload(data)
	if err != nil {
		d.logger.Warnw("failed to encode session payload", "session_id", sessionID, "error", err)
		return
	}

	if err := d.sessions.UpdatePayload(ctx, sessionID, encoded); err != nil {
		d.logger.Warnw("failed to record security notice", "session_id", sessionID, "error", err)
	}
}

// DecodePayload unwraps a base64 JSON payload into a map. Malformed or
// empty payloads decode to an empty map rather than an error.
func DecodePayload(payload string) map[string]interface{} {
	if payload == "" {
		return map[string]interface{}{}
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return map[string]interface{}{}
	}

	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil || data == nil {
		return map[string]interface{}{}
	}
	return data
}

// EncodePayload wraps a map back into base64 JSON.
func EncodePayload(data map[string]interface{}) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func firstOctet(ip string) string {
	if idx := strings.Index(ip, "."); idx > 0 {
		return ip[:idx]
	}
	return ip
}

func noticeTypes(notices []SecurityNotice) []string {
	types := make([]string, len(notices))
	for i, n := range notices {
		types[i] = n.Type
	}
	return types
}

func keys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
