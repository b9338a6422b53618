package workload_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivanshkc/p99probe/pkg/probe"
	"github.com/shivanshkc/p99probe/pkg/workload"
)

// TestNames verifies the registry listing.
func TestNames(t *testing.T) {
	names := workload.Names()
	assert.Equal(t, []string{"add", "http", "json", "sha256", "sleep", "sort"}, names)

	for _, name := range names {
		description, err := workload.Describe(name)
		assert.NoError(t, err)
		assert.NotEmpty(t, description)
	}
}

// TestNew_Builtins builds every in-process workload and runs it through the
// probe to make sure it is callable repeatedly.
func TestNew_Builtins(t *testing.T) {
	cfg := workload.DefaultConfig()
	cfg.Sleep = time.Microsecond

	for _, name := range []string{"add", "sha256", "json", "sort", "sleep"} {
		t.Run(name, func(t *testing.T) {
			instance, err := workload.New(name, cfg)
			require.NoError(t, err)
			require.NotNil(t, instance.Op)
			defer instance.Close()

			stats := probe.Measure(instance.Op, make([]int64, 20), 20, 5)

			assert.Equal(t, uint64(20), stats.Samples)
			assert.NoError(t, instance.Err())
			assert.Zero(t, instance.Failures())
		})
	}
}

// TestNew_Errors covers configuration that cannot be bound.
func TestNew_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		workload    string
		mutate      func(cfg *workload.Config)
		expectedIs  error
		expectedMsg string
	}{
		{
			name:       "Unknown Workload",
			workload:   "fibonacci",
			mutate:     func(cfg *workload.Config) {},
			expectedIs: workload.ErrUnknownWorkload,
		},
		{
			name:       "HTTP Without URL",
			workload:   "http",
			mutate:     func(cfg *workload.Config) { cfg.URL = "" },
			expectedIs: workload.ErrMissingURL,
		},
		{
			name:        "HTTP With Unsupported Scheme",
			workload:    "http",
			mutate:      func(cfg *workload.Config) { cfg.URL = "ftp://example.com" },
			expectedMsg: "unsupported URL scheme",
		},
		{
			name:        "Zero Payload",
			workload:    "sha256",
			mutate:      func(cfg *workload.Config) { cfg.PayloadSize = 0 },
			expectedMsg: "payload size must be positive",
		},
		{
			name:        "Negative Sort Size",
			workload:    "sort",
			mutate:      func(cfg *workload.Config) { cfg.PayloadSize = -1 },
			expectedMsg: "payload size must be positive",
		},
		{
			name:        "Negative Sleep",
			workload:    "sleep",
			mutate:      func(cfg *workload.Config) { cfg.Sleep = -time.Second },
			expectedMsg: "sleep duration must not be negative",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := workload.DefaultConfig()
			tc.mutate(&cfg)

			_, err := workload.New(tc.workload, cfg)
			require.Error(t, err)
			if tc.expectedIs != nil {
				assert.ErrorIs(t, err, tc.expectedIs)
			}
			if tc.expectedMsg != "" {
				assert.Contains(t, err.Error(), tc.expectedMsg)
			}
		})
	}

	t.Run("Describe Unknown", func(t *testing.T) {
		_, err := workload.Describe("nope")
		assert.ErrorIs(t, err, workload.ErrUnknownWorkload)
	})
}

// TestHTTP runs the http workload against a local server.
func TestHTTP(t *testing.T) {
	t.Run("Successful Requests", func(t *testing.T) {
		var hits atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			_, _ = w.Write([]byte("ok"))
		}))
		defer server.Close()

		cfg := workload.DefaultConfig()
		cfg.URL = server.URL

		instance, err := workload.New("http", cfg)
		require.NoError(t, err)
		defer instance.Close()

		stats := probe.Measure(instance.Op, make([]int64, 10), 10, 2)

		assert.Equal(t, uint64(10), stats.Samples)
		assert.Equal(t, int64(12), hits.Load(), "warmup requests hit the server too")
		assert.NoError(t, instance.Err())
	})

	t.Run("Failing Status Is Captured", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		cfg := workload.DefaultConfig()
		cfg.URL = server.URL

		instance, err := workload.New("http", cfg)
		require.NoError(t, err)
		defer instance.Close()

		stats := probe.Measure(instance.Op, make([]int64, 5), 5, 0)

		assert.Equal(t, uint64(5), stats.Samples, "failures do not stop the probe")
		require.Error(t, instance.Err())
		assert.Contains(t, instance.Err().Error(), "unexpected status code: 500")
		assert.Equal(t, 5, instance.Failures())
	})
}
