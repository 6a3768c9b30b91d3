package manager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftwave/lbsync/internal/lbapi"
)

func desiredServer() lbapi.ServerConfig {
	cfg := defaultTemplate()
	cfg.Bind = "0.0.0.0:9000"
	cfg.Discovery.SrvLookupServer = "10.11.0.1:53"
	cfg.Discovery.SrvLookupPattern = "_8080._tcp.svc1.web.svc.prod1."

	return cfg
}

func TestApplyServer(t *testing.T) {
	key := serverKey{Port: 8080, Service: "svc1"}

	t.Run("creates a missing entry", func(t *testing.T) {
		state := newLBState(nil)
		mgr := newTestManager(newSourceMock(nil, testSnapshot()), newLBMock(state))

		err := mgr.applyServer(key, desiredServer())
		require.NoError(t, err)

		assert.Equal(t, []string{"_8080_svc1"}, state.creates)
		assert.Empty(t, state.deletes)
	})

	t.Run("converged entry issues no calls", func(t *testing.T) {
		state := newLBState(map[string]lbapi.ServerConfig{"_8080_svc1": desiredServer()})
		mgr := newTestManager(newSourceMock(nil, testSnapshot()), newLBMock(state))

		err := mgr.applyServer(key, desiredServer())
		require.NoError(t, err)

		assert.Empty(t, state.creates)
		assert.Empty(t, state.deletes)
	})

	t.Run("changed scalar deletes then creates", func(t *testing.T) {
		stale := desiredServer()
		stale.Balance = "leastconn"

		state := newLBState(map[string]lbapi.ServerConfig{"_8080_svc1": stale})
		mgr := newTestManager(newSourceMock(nil, testSnapshot()), newLBMock(state))

		err := mgr.applyServer(key, desiredServer())
		require.NoError(t, err)

		assert.Equal(t, []string{"_8080_svc1"}, state.deletes)
		assert.Equal(t, []string{"_8080_svc1"}, state.creates)
	})

	t.Run("changed substructure field deletes then creates", func(t *testing.T) {
		stale := desiredServer()
		stale.Healthcheck.Fails = "5"

		state := newLBState(map[string]lbapi.ServerConfig{"_8080_svc1": stale})
		mgr := newTestManager(newSourceMock(nil, testSnapshot()), newLBMock(state))

		err := mgr.applyServer(key, desiredServer())
		require.NoError(t, err)

		assert.Equal(t, []string{"_8080_svc1"}, state.deletes)
		assert.Equal(t, []string{"_8080_svc1"}, state.creates)
	})

	t.Run("missing mandatory fields skip the create", func(t *testing.T) {
		missing := []struct {
			name string
			muck func(cfg *lbapi.ServerConfig)
		}{
			{"bind", func(cfg *lbapi.ServerConfig) { cfg.Bind = "" }},
			{"lookup server", func(cfg *lbapi.ServerConfig) { cfg.Discovery.SrvLookupServer = "" }},
			{"lookup pattern", func(cfg *lbapi.ServerConfig) { cfg.Discovery.SrvLookupPattern = "" }},
		}

		for _, tt := range missing {
			// go vet
			tt := tt

			t.Run(tt.name, func(t *testing.T) {
				desired := desiredServer()
				tt.muck(&desired)

				state := newLBState(nil)
				mgr := newTestManager(newSourceMock(nil, testSnapshot()), newLBMock(state))

				err := mgr.applyServer(key, desired)
				require.Error(t, err)
				assert.ErrorIs(t, err, errMissingMandatoryFields)
				assert.True(t, skippable(err))
				assert.Empty(t, state.creates)
			})
		}
	})

	t.Run("delete failure aborts", func(t *testing.T) {
		stale := desiredServer()
		stale.Balance = "leastconn"

		state := newLBState(map[string]lbapi.ServerConfig{"_8080_svc1": stale})
		lb := newLBMock(state)
		lb.DoDeleteServer = func(ctx context.Context, name string) error {
			return lbapi.ErrLBServerDeleteFailed
		}

		mgr := newTestManager(newSourceMock(nil, testSnapshot()), lb)

		err := mgr.applyServer(key, desiredServer())
		require.Error(t, err)
		assert.ErrorIs(t, err, lbapi.ErrLBServerDeleteFailed)
		assert.False(t, skippable(err))
		assert.Empty(t, state.creates)
	})

	t.Run("idempotent: second apply issues nothing", func(t *testing.T) {
		state := newLBState(nil)
		mgr := newTestManager(newSourceMock(nil, testSnapshot()), newLBMock(state))

		require.NoError(t, mgr.applyServer(key, desiredServer()))
		require.NoError(t, mgr.applyServer(key, desiredServer()))

		assert.Equal(t, []string{"_8080_svc1"}, state.creates)
		assert.Empty(t, state.deletes)
	})
}

func TestDeleteServiceServers(t *testing.T) {
	t.Run("removes only the service's entries", func(t *testing.T) {
		state := newLBState(map[string]lbapi.ServerConfig{
			"_8080_svc1":  desiredServer(),
			"_9000_svc1":  desiredServer(),
			"_8080_svc12": desiredServer(),
			"_8080_other": desiredServer(),
		})

		mgr := newTestManager(newSourceMock(nil, testSnapshot()), newLBMock(state))

		err := mgr.deleteServiceServers("svc1")
		require.NoError(t, err)

		// svc12 shares the svc1 prefix and must survive
		assert.Equal(t, []string{"_8080_svc1", "_9000_svc1"}, state.deletes)
		assert.Contains(t, state.servers, "_8080_svc12")
		assert.Contains(t, state.servers, "_8080_other")
	})

	t.Run("no entries is a no-op", func(t *testing.T) {
		state := newLBState(nil)
		mgr := newTestManager(newSourceMock(nil, testSnapshot()), newLBMock(state))

		err := mgr.deleteServiceServers("svc1")
		require.NoError(t, err)
		assert.Empty(t, state.deletes)
	})
}

func TestPruneServiceServers(t *testing.T) {
	t.Run("removes entries for ports no longer exposed", func(t *testing.T) {
		state := newLBState(map[string]lbapi.ServerConfig{
			"_8080_svc1": desiredServer(),
			"_9000_svc1": desiredServer(),
			"_8080_svc2": desiredServer(),
		})

		mgr := newTestManager(newSourceMock(nil, testSnapshot()), newLBMock(state))

		err := mgr.pruneServiceServers("svc1", map[int]struct{}{8080: {}})
		require.NoError(t, err)

		assert.Equal(t, []string{"_9000_svc1"}, state.deletes)
		assert.Contains(t, state.servers, "_8080_svc1")
		assert.Contains(t, state.servers, "_8080_svc2")
	})

	t.Run("nothing exposed removes everything", func(t *testing.T) {
		state := newLBState(map[string]lbapi.ServerConfig{
			"_8080_svc1": desiredServer(),
			"_9000_svc1": desiredServer(),
		})

		mgr := newTestManager(newSourceMock(nil, testSnapshot()), newLBMock(state))

		err := mgr.pruneServiceServers("svc1", nil)
		require.NoError(t, err)

		assert.Equal(t, []string{"_8080_svc1", "_9000_svc1"}, state.deletes)
	})
}
