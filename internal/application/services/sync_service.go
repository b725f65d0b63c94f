package services

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/multidom/domainsync/config"
	"github.com/multidom/domainsync/internal/domain/directory"
	"github.com/multidom/domainsync/internal/domain/run"
	"github.com/multidom/domainsync/pkg/errors"
	"github.com/multidom/domainsync/pkg/logger"
	"github.com/multidom/domainsync/pkg/token"
)

// Well-known sync endpoint paths. Runners live on the home domain,
// receivers on each target domain.
const (
	PathRunLogin      = "/_ms-run"
	PathRunLogout     = "/_ms-run-logout"
	PathReceiveLogin  = "/_ms-sso"
	PathReceiveLogout = "/_ms-sso-logout"
)

// RunnerPath returns the runner path for a mode.
func RunnerPath(mode string) string {
	if mode == token.ModeLogout {
		return PathRunLogout
	}
	return PathRunLogin
}

// ReceiverPath returns the receiver path for a mode.
func ReceiverPath(mode string) string {
	if mode == token.ModeLogout {
		return PathReceiveLogout
	}
	return PathReceiveLogin
}

// IDGenerator produces run plan identifiers.
type IDGenerator interface {
	RunID() (string, error)
}

// SyncService plans and sequences cross-domain session propagation runs.
type SyncService struct {
	runRepo  run.Repository
	consumed run.ConsumedLedger
	dirRepo  directory.Repository
	codec    *token.Codec
	idGen    IDGenerator
	cfg      *config.Config
}

// NewSyncService creates a new synchronization service.
func NewSyncService(
	runRepo run.Repository,
	consumed run.ConsumedLedger,
	dirRepo directory.Repository,
	codec *token.Codec,
	idGen IDGenerator,
	cfg *config.Config,
) *SyncService {
	return &SyncService{
		runRepo:  runRepo,
		consumed: consumed,
		dirRepo:  dirRepo,
		codec:    codec,
		idGen:    idGen,
		cfg:      cfg,
	}
}

// PlanLogin builds a run that propagates sessionID to every active domain
// except homeHost, and persists it. Returns ErrNoTargets when there is
// nothing to synchronize; the triggering login is then a no-op here.
func (s *SyncService) PlanLogin(ctx context.Context, homeHost, sessionID string) (string, error) {
	return s.plan(ctx, token.ModeLogin, homeHost, sessionID)
}

// PlanLogout builds a run that clears the session on every active domain
// except homeHost. Logout conveys absence of session, so no session id.
func (s *SyncService) PlanLogout(ctx context.Context, homeHost string) (string, error) {
	return s.plan(ctx, token.ModeLogout, homeHost, "")
}

func (s *SyncService) plan(ctx context.Context, mode, homeHost, sessionID string) (string, error) {
	home := directory.CanonicalHost(homeHost)

	hosts, err := s.dirRepo.ListActiveHosts(ctx)
	if err != nil {
		return "", errors.Wrap(err, "failed to list target domains")
	}

	targets := make([]string, 0, len(hosts))
	seen := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		canon := directory.CanonicalHost(h)
		if canon == "" || canon == home || seen[canon] {
			continue
		}
		seen[canon] = true
		targets = append(targets, canon)
	}

	if len(targets) == 0 {
		return "", errors.ErrNoTargets
	}

	steps := make([]run.Step, 0, len(targets))
	for _, host := range targets {
		code, err := s.codec.Make(mode, sessionID, host, s.cfg.SSO.TokenTTL)
		if err != nil {
			return "", err
		}
		steps = append(steps, run.Step{Host: host, Code: code})
	}

	runID, err := s.idGen.RunID()
	if err != nil {
		return "", errors.Wrap(err, "failed to generate run id")
	}

	plan := &run.Plan{Home: home, Steps: steps}
	if err := s.runRepo.Put(ctx, runID, plan, s.cfg.SSO.RunTTL); err != nil {
		return "", err
	}

	return runID, nil
}

// Advance loads the run, extends its TTL and resolves the next action for
// the given step index. A completed run is deleted before returning Done.
func (s *SyncService) Advance(ctx context.Context, runID string, index int) (*run.Plan, run.NextAction, error) {
	plan, err := s.runRepo.Get(ctx, runID)
	if err != nil {
		if errors.Is(err, errors.ErrRunNotFound) {
			return nil, run.NextAction{Kind: run.ActionNotFound}, nil
		}
		return nil, run.NextAction{}, err
	}

	if err := s.runRepo.Touch(ctx, runID, s.cfg.SSO.RunTTL); err != nil {
		// A failed touch only shortens the window; the run is still valid.
		logger.FromContext(ctx).Warn("failed to extend run ttl",
			logger.Component("sync"),
			logger.RunID(runID),
			logger.Error(err),
		)
	}

	action := run.Advance(plan, index)
	if action.Kind == run.ActionDone {
		if err := s.runRepo.Delete(ctx, runID); err != nil {
			logger.FromContext(ctx).Warn("failed to delete completed run",
				logger.Component("sync"),
				logger.RunID(runID),
				logger.Error(err),
			)
		}
	}

	return plan, action, nil
}

// ConsumeToken validates a receiver token: signature and lifetime, mode,
// session id presence, host binding to the serving domain, and one-shot
// consumption. requestHost is the domain the receiver runs on.
func (s *SyncService) ConsumeToken(ctx context.Context, raw, wantMode, requestHost string) (*token.Claims, error) {
	claims, err := s.codec.Parse(raw)
	if err != nil {
		return nil, err
	}

	if claims.Mode != wantMode {
		return nil, errors.ErrModeMismatch
	}
	if wantMode == token.ModeLogin && claims.SessionID == "" {
		return nil, errors.ErrMissingSessionID
	}
	if directory.CanonicalHost(claims.Host) != directory.CanonicalHost(requestHost) {
		return nil, errors.ErrHostMismatch
	}

	sig, err := token.Signature(raw)
	if err != nil {
		return nil, err
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	first, err := s.consumed.MarkConsumed(ctx, sig, ttl)
	if err != nil {
		// Fail open: a ledger blip must not break propagation. The short
		// token TTL still bounds the replay window.
		logger.FromContext(ctx).Warn("failed to mark token consumed",
			logger.Component("sync"),
			logger.Host(requestHost),
			logger.Error(err),
		)
		return claims, nil
	}
	if !first {
		return nil, errors.ErrTokenConsumed
	}

	return claims, nil
}

// RunnerURL builds the runner URL on the home domain for a step index.
func (s *SyncService) RunnerURL(scheme, home, mode, runID string, index int, ret string, slow bool) string {
	q := url.Values{}
	q.Set("run", runID)
	q.Set("i", strconv.Itoa(index))
	if ret != "" {
		q.Set("ret", ret)
	}
	if slow {
		q.Set("slow", "1")
	}
	return scheme + "://" + home + RunnerPath(mode) + s.cfg.SSO.URLSuffix + "?" + q.Encode()
}

// ReceiverURL builds the receiver URL on the step's target host. Receiver
// hops always use https, matching what the tokens were planned for.
func (s *SyncService) ReceiverURL(step run.Step, mode, returnURL string, slow bool) string {
	q := url.Values{}
	q.Set("c", step.Code)
	q.Set("return", returnURL)
	if slow {
		q.Set("slow", "1")
	}
	return "https://" + step.Host + ReceiverPath(mode) + s.cfg.SSO.URLSuffix + "?" + q.Encode()
}

// StartURL resolves the entry point of a run's redirect chain: the first
// step's receiver, returning to the runner at index 1. ret is the final
// URL the chain lands on after the last step.
func (s *SyncService) StartURL(ctx context.Context, runID, mode, scheme, ret string, slow bool) (string, error) {
	plan, err := s.runRepo.Get(ctx, runID)
	if err != nil {
		return "", err
	}

	action := run.Advance(plan, 0)
	if action.Kind != run.ActionStep {
		return "", errors.ErrRunNotFound
	}

	next := s.RunnerURL(scheme, plan.Home, mode, runID, 1, ret, slow)
	return s.ReceiverURL(action.Step, mode, next, slow), nil
}
