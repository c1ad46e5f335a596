package logging

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSetupDefaultsToInfoLevel(t *testing.T) {
	logger, cleanup, err := Setup(Config{})
	require.NoError(t, err)
	defer cleanup()
	require.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestSetupParsesLevel(t *testing.T) {
	logger, cleanup, err := Setup(Config{Level: "WARN", Format: "json"})
	require.NoError(t, err)
	defer cleanup()
	require.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	_, _, err := Setup(Config{Level: "verbose"})
	require.Error(t, err)
}

func TestSetupRequiresLokiURL(t *testing.T) {
	_, _, err := Setup(Config{Loki: LokiConfig{Enabled: true}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "loki url")
}

func TestSetupWithLokiFanout(t *testing.T) {
	received := make(chan struct{}, 8)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		select {
		case received <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	logger, cleanup, err := Setup(Config{
		Level:  "debug",
		Format: "json",
		Loki: LokiConfig{
			Enabled: true,
			URL:     server.URL,
			Labels:  map[string]string{"app": "debug-mode-test"},
		},
	})
	require.NoError(t, err)

	logger.Error().Msg("invalid lambda debug mode configuration")
	cleanup()

	select {
	case <-received:
	case <-time.After(10 * time.Second):
		t.Fatal("expected the loki endpoint to receive a push")
	}
}
