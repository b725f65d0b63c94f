package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multidom/domainsync/config"
	"github.com/multidom/domainsync/internal/application/services"
	"github.com/multidom/domainsync/internal/domain/directory"
	"github.com/multidom/domainsync/internal/domain/run"
	redisadapter "github.com/multidom/domainsync/internal/infrastructure/cache/redis"
	"github.com/multidom/domainsync/internal/infrastructure/crypto"
	apperrors "github.com/multidom/domainsync/pkg/errors"
	"github.com/multidom/domainsync/pkg/token"
)

type stubDirectory struct {
	hosts []string
	err   error
}

func (s *stubDirectory) ListActive(ctx context.Context) ([]*directory.Domain, error) {
	if s.err != nil {
		return nil, s.err
	}
	domains := make([]*directory.Domain, 0, len(s.hosts))
	for _, h := range s.hosts {
		domains = append(domains, &directory.Domain{Host: h, Active: true})
	}
	return domains, nil
}

func (s *stubDirectory) ListActiveHosts(ctx context.Context) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.hosts, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.SSO.SessionCookie = "ms_session"
	cfg.SSO.RunTTL = 300 * time.Second
	cfg.SSO.TokenTTL = 180 * time.Second
	return cfg
}

func newService(t *testing.T, hosts []string) (*services.SyncService, run.Repository) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	wrapped := redisadapter.NewFromClient(client)
	runRepo := redisadapter.NewRunRepository(wrapped)
	consumed := redisadapter.NewConsumedTokenRepository(wrapped)
	codec := token.NewCodec([]byte("0123456789abcdef0123456789abcdef"))

	svc := services.NewSyncService(runRepo, consumed, &stubDirectory{hosts: hosts}, codec, crypto.NewIDGenerator(), testConfig())
	return svc, runRepo
}

func TestPlanLogin_ExcludesHomeAndDuplicates(t *testing.T) {
	svc, runRepo := newService(t, []string{"a.com", "B.com", "b.com", "", "https://C.com/"})
	ctx := context.Background()

	runID, err := svc.PlanLogin(ctx, "A.com", "sess-1")
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	plan, err := runRepo.Get(ctx, runID)
	require.NoError(t, err)

	assert.Equal(t, "a.com", plan.Home)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, "b.com", plan.Steps[0].Host)
	assert.Equal(t, "c.com", plan.Steps[1].Host)
}

func TestPlanLogin_StepTokensCarryClaims(t *testing.T) {
	svc, runRepo := newService(t, []string{"b.com"})
	ctx := context.Background()

	runID, err := svc.PlanLogin(ctx, "a.com", "sess-1")
	require.NoError(t, err)

	plan, err := runRepo.Get(ctx, runID)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)

	codec := token.NewCodec([]byte("0123456789abcdef0123456789abcdef"))
	claims, err := codec.Parse(plan.Steps[0].Code)
	require.NoError(t, err)

	assert.Equal(t, token.ModeLogin, claims.Mode)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, "b.com", claims.Host)
}

func TestPlanLogout_TokensOmitSession(t *testing.T) {
	svc, runRepo := newService(t, []string{"b.com"})
	ctx := context.Background()

	runID, err := svc.PlanLogout(ctx, "a.com")
	require.NoError(t, err)

	plan, err := runRepo.Get(ctx, runID)
	require.NoError(t, err)

	codec := token.NewCodec([]byte("0123456789abcdef0123456789abcdef"))
	claims, err := codec.Parse(plan.Steps[0].Code)
	require.NoError(t, err)

	assert.Equal(t, token.ModeLogout, claims.Mode)
	assert.Empty(t, claims.SessionID)
}

func TestPlan_NoTargets(t *testing.T) {
	svc, _ := newService(t, []string{"a.com", "A.com"})

	_, err := svc.PlanLogin(context.Background(), "a.com", "sess-1")
	assert.ErrorIs(t, err, apperrors.ErrNoTargets)

	_, err = svc.PlanLogout(context.Background(), "a.com")
	assert.ErrorIs(t, err, apperrors.ErrNoTargets)
}

func TestPlan_RunIDsAreUnique(t *testing.T) {
	svc, _ := newService(t, []string{"b.com"})
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		runID, err := svc.PlanLogin(ctx, "a.com", "sess-1")
		require.NoError(t, err)
		assert.False(t, seen[runID])
		seen[runID] = true
	}
}

func TestAdvance_WalksStepsThenDeletes(t *testing.T) {
	svc, runRepo := newService(t, []string{"b.com", "c.com"})
	ctx := context.Background()

	runID, err := svc.PlanLogin(ctx, "a.com", "sess-1")
	require.NoError(t, err)

	plan, action, err := svc.Advance(ctx, runID, 0)
	require.NoError(t, err)
	require.Equal(t, run.ActionStep, action.Kind)
	assert.Equal(t, "b.com", action.Step.Host)
	assert.Equal(t, "a.com", plan.Home)

	_, action, err = svc.Advance(ctx, runID, 1)
	require.NoError(t, err)
	require.Equal(t, run.ActionStep, action.Kind)
	assert.Equal(t, "c.com", action.Step.Host)

	_, action, err = svc.Advance(ctx, runID, 2)
	require.NoError(t, err)
	assert.Equal(t, run.ActionDone, action.Kind)

	// A completed run is removed from storage.
	_, err = runRepo.Get(ctx, runID)
	assert.ErrorIs(t, err, apperrors.ErrRunNotFound)
}

func TestAdvance_UnknownRun(t *testing.T) {
	svc, _ := newService(t, []string{"b.com"})

	_, action, err := svc.Advance(context.Background(), "missing", 0)
	require.NoError(t, err)
	assert.Equal(t, run.ActionNotFound, action.Kind)
}

func TestConsumeToken_Valid(t *testing.T) {
	svc, runRepo := newService(t, []string{"b.com"})
	ctx := context.Background()

	runID, err := svc.PlanLogin(ctx, "a.com", "sess-1")
	require.NoError(t, err)
	plan, err := runRepo.Get(ctx, runID)
	require.NoError(t, err)

	claims, err := svc.ConsumeToken(ctx, plan.Steps[0].Code, token.ModeLogin, "b.com")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestConsumeToken_ModeMismatch(t *testing.T) {
	svc, runRepo := newService(t, []string{"b.com"})
	ctx := context.Background()

	runID, err := svc.PlanLogin(ctx, "a.com", "sess-1")
	require.NoError(t, err)
	plan, err := runRepo.Get(ctx, runID)
	require.NoError(t, err)

	_, err = svc.ConsumeToken(ctx, plan.Steps[0].Code, token.ModeLogout, "b.com")
	assert.ErrorIs(t, err, apperrors.ErrModeMismatch)
}

func TestConsumeToken_HostMismatch(t *testing.T) {
	svc, runRepo := newService(t, []string{"b.com"})
	ctx := context.Background()

	runID, err := svc.PlanLogin(ctx, "a.com", "sess-1")
	require.NoError(t, err)
	plan, err := runRepo.Get(ctx, runID)
	require.NoError(t, err)

	_, err = svc.ConsumeToken(ctx, plan.Steps[0].Code, token.ModeLogin, "evil.com")
	assert.ErrorIs(t, err, apperrors.ErrHostMismatch)
}

func TestConsumeToken_ReplayRejected(t *testing.T) {
	svc, runRepo := newService(t, []string{"b.com"})
	ctx := context.Background()

	runID, err := svc.PlanLogin(ctx, "a.com", "sess-1")
	require.NoError(t, err)
	plan, err := runRepo.Get(ctx, runID)
	require.NoError(t, err)

	_, err = svc.ConsumeToken(ctx, plan.Steps[0].Code, token.ModeLogin, "b.com")
	require.NoError(t, err)

	_, err = svc.ConsumeToken(ctx, plan.Steps[0].Code, token.ModeLogin, "b.com")
	assert.ErrorIs(t, err, apperrors.ErrTokenConsumed)
}

func TestConsumeToken_Garbage(t *testing.T) {
	svc, _ := newService(t, []string{"b.com"})

	_, err := svc.ConsumeToken(context.Background(), "not-a-token", token.ModeLogin, "b.com")
	assert.Error(t, err)
}

func TestRunnerAndReceiverURLs(t *testing.T) {
	svc, _ := newService(t, []string{"b.com"})

	u := svc.RunnerURL("https", "a.com", token.ModeLogin, "run1", 2, "https://a.com/welcome", false)
	assert.Equal(t, "https://a.com/_ms-run?i=2&ret=https%3A%2F%2Fa.com%2Fwelcome&run=run1", u)

	u = svc.RunnerURL("https", "a.com", token.ModeLogout, "run1", 0, "", true)
	assert.Equal(t, "https://a.com/_ms-run-logout?i=0&run=run1&slow=1", u)

	u = svc.ReceiverURL(run.Step{Host: "b.com", Code: "tok"}, token.ModeLogin, "https://a.com/_ms-run?i=1&run=run1", false)
	assert.Equal(t, "https://b.com/_ms-sso?c=tok&return=https%3A%2F%2Fa.com%2F_ms-run%3Fi%3D1%26run%3Drun1", u)
}

func TestStartURL_PointsAtFirstStep(t *testing.T) {
	svc, runRepo := newService(t, []string{"b.com", "c.com"})
	ctx := context.Background()

	runID, err := svc.PlanLogin(ctx, "a.com", "sess-1")
	require.NoError(t, err)

	startURL, err := svc.StartURL(ctx, runID, token.ModeLogin, "https", "https://a.com/", false)
	require.NoError(t, err)

	assert.Contains(t, startURL, "https://b.com/_ms-sso?")
	assert.Contains(t, startURL, "run%3D"+runID)

	// Step codes are base64url JWTs, so they survive query encoding as-is.
	plan, err := runRepo.Get(ctx, runID)
	require.NoError(t, err)
	assert.Contains(t, startURL, "c="+plan.Steps[0].Code)
}

func TestPlan_DirectoryError(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	wrapped := redisadapter.NewFromClient(client)
	svc := services.NewSyncService(
		redisadapter.NewRunRepository(wrapped),
		redisadapter.NewConsumedTokenRepository(wrapped),
		&stubDirectory{err: apperrors.ErrStorage},
		token.NewCodec([]byte("0123456789abcdef0123456789abcdef")),
		crypto.NewIDGenerator(),
		testConfig(),
	)

	_, err = svc.PlanLogin(context.Background(), "a.com", "sess-1")
	assert.ErrorIs(t, err, apperrors.ErrStorage)
}
