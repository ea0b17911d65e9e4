// Package widgetdomain holds the application services answering "may this
// domain load the widget", plus registration and admin state changes.
package widgetdomain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	domain "github.com/embedgate/embedgate/internal/domain/widgetdomain"
	vo "github.com/embedgate/embedgate/internal/domain/widgetdomain/value_objects"
	apperrors "github.com/embedgate/embedgate/internal/shared/errors"
	"github.com/embedgate/embedgate/internal/shared/logger"
)

// Verifier modes.
const (
	ModeDirect = "direct"
	ModeRemote = "remote"
)

// DefaultTimeout bounds the remote probe and verification call.
const DefaultTimeout = 3 * time.Second

// devHosts always verify as authorized so local development needs no
// seeded data.
var devHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
}

var devHostSuffixes = []string{".localhost", ".test"}

// VerdictCache is the optional short-TTL cache in front of direct-mode
// lookups. Errors from the cache are treated as misses.
type VerdictCache interface {
	Get(ctx context.Context, name string) (*domain.Result, error)
	Set(ctx context.Context, name string, result domain.Result) error
}

// Verifier is the single source of truth for domain authorization. It is
// a stateless injected service: configuration only, no process-wide
// mutable state. Every failure path resolves to an unauthorized result;
// nothing here returns an error to the widget client.
type Verifier struct {
	mode      string
	records   domain.Repository
	cache     VerdictCache
	remoteURL string
	client    *http.Client
	logger    logger.Interface
}

// NewDirectVerifier builds a verifier that consults the local store.
// cache may be nil.
func NewDirectVerifier(records domain.Repository, cache VerdictCache, log logger.Interface) *Verifier {
	return &Verifier{
		mode:    ModeDirect,
		records: records,
		cache:   cache,
		logger:  log.Named("widgetdomain.verifier"),
	}
}

// NewRemoteVerifier builds a verifier that calls a remote verification
// endpoint. timeout <= 0 falls back to the default.
func NewRemoteVerifier(remoteURL string, timeout time.Duration, log logger.Interface) *Verifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Verifier{
		mode:      ModeRemote,
		remoteURL: strings.TrimRight(remoteURL, "/"),
		client:    &http.Client{Timeout: timeout},
		logger:    log.Named("widgetdomain.verifier"),
	}
}

// Verify resolves the authorization tuple for a raw domain string.
func (v *Verifier) Verify(ctx context.Context, rawDomain string) domain.Result {
	name, err := vo.NewDomainName(rawDomain)
	if err != nil {
		return domain.Unauthorized(domain.ReasonValidationError, "invalid domain name")
	}

	if isDevHost(name.String()) {
		return domain.Result{
			Authorized:   true,
			DomainExists: true,
			Status:       domain.StatusActive.String(),
			Message:      "development host",
			Reason:       domain.ReasonForced,
		}
	}

	if v.mode == ModeRemote {
		return v.verifyRemote(ctx, name.String())
	}
	return v.verifyDirect(ctx, name.String())
}

func (v *Verifier) verifyDirect(ctx context.Context, name string) domain.Result {
	if v.cache != nil {
		if cached, err := v.cache.Get(ctx, name); err == nil && cached != nil {
			return *cached
		}
	}

	record, err := v.records.GetByName(ctx, vo.DomainName(name))
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return domain.Result{
				Authorized:   false,
				DomainExists: false,
				Message:      "domain is not registered",
				Reason:       domain.ReasonNotFound,
			}
		}
		v.logger.Errorw("domain lookup failed, failing closed",
			"domain", name,
			"error", err,
		)
		return domain.Unauthorized(domain.ReasonValidationError, "verification unavailable")
	}

	result := domain.Result{
		DomainExists: true,
		IsVerified:   record.IsVerified,
		Status:       record.Status.String(),
	}
	if record.Authorized() {
		result.Authorized = true
		result.Message = "domain is authorized"
		result.Reason = domain.ReasonAuthorized
	} else {
		result.Message = "domain is not active"
		result.Reason = domain.ReasonInactive
	}

	if v.cache != nil {
		if err := v.cache.Set(ctx, name, result); err != nil {
			v.logger.Debugw("verdict cache write failed", "domain", name, "error", err)
		}
	}

	return result
}

// verifyRemote calls the remote verification endpoint. Transport failures,
// non-success statuses, timeouts, and malformed payloads all fail closed.
func (v *Verifier) verifyRemote(ctx context.Context, name string) domain.Result {
	if v.remoteURL == "" {
		return domain.Unauthorized(domain.ReasonValidationError, "remote verification is not configured")
	}

	if err := v.probe(ctx); err != nil {
		v.logger.Warnw("remote verifier unreachable, failing closed",
			"domain", name,
			"error", err,
		)
		return domain.Unauthorized(domain.ReasonValidationError, "verification service unreachable")
	}

	verifyURL := fmt.Sprintf("%s/api/widget/verify?domain=%s", v.remoteURL, url.QueryEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, verifyURL, nil)
	if err != nil {
		return domain.Unauthorized(domain.ReasonValidationError, "verification request could not be built")
	}

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Warnw("remote verification call failed, failing closed",
			"domain", name,
			"error", err,
		)
		return domain.Unauthorized(domain.ReasonValidationError, "verification service unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.logger.Warnw("remote verification returned non-success status, failing closed",
			"domain", name,
			"status", resp.StatusCode,
		)
		return domain.Unauthorized(domain.ReasonValidationError, "verification service error")
	}

	var payload struct {
		Success bool          `json:"success"`
		Data    domain.Result `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		v.logger.Warnw("remote verification response malformed, failing closed",
			"domain", name,
			"error", err,
		)
		return domain.Unauthorized(domain.ReasonValidationError, "verification response malformed")
	}
	if !payload.Success {
		return domain.Unauthorized(domain.ReasonValidationError, "verification rejected")
	}

	return payload.Data
}

// probe is a best-effort connectivity check before trusting the remote
// verdict.
func (v *Verifier) probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, v.remoteURL+"/", nil)
	if err != nil {
		return err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("probe returned status %d", resp.StatusCode)
	}
	return nil
}

func isDevHost(name string) bool {
	if devHosts[name] {
		return true
	}
	for _, suffix := range devHostSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
