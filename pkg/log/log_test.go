package log

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	logrus.SetOutput(&buf)
	t.Cleanup(func() { logrus.SetOutput(os.Stderr) })
	return &buf
}

func TestWithFields_DevelopmentKeepsOnlyTracingFields(t *testing.T) {
	t.Setenv("TEST_LOG_LEVEL", "")
	SetupTestLogger()
	buf := captureOutput(t)

	t.Setenv("APP_ENV", "dev")
	L.WithFields(Fields{"owner_id": "u1", "remote_addr": "10.0.0.1"}).Warn("assinatura falhou")
	assert.Contains(t, buf.String(), "owner_id=u1")
	assert.NotContains(t, buf.String(), "remote_addr")

	buf.Reset()
	t.Setenv("APP_ENV", "production")
	L.WithFields(Fields{"owner_id": "u1", "remote_addr": "10.0.0.1"}).Warn("assinatura falhou")
	assert.Contains(t, buf.String(), "remote_addr=10.0.0.1")
}

func TestSetupTestLogger_Level(t *testing.T) {
	t.Setenv("TEST_LOG_LEVEL", "")
	SetupTestLogger()
	buf := captureOutput(t)

	L.Info("oculto")
	assert.Empty(t, buf.String())

	t.Setenv("TEST_LOG_LEVEL", "debug")
	SetupTestLogger()
	L.Debug("visível")
	assert.Contains(t, buf.String(), "visível")
}

func TestWithContext_CorrelationID(t *testing.T) {
	SetupTestLogger()
	buf := captureOutput(t)
	t.Setenv("APP_ENV", "dev")

	ctx, id := WithCorrelationID(context.Background())
	assert.Equal(t, id, GetCorrelationID(ctx))

	L.WithContext(ctx).Warn("com correlação")
	assert.Contains(t, buf.String(), "correlation_id="+id)
	assert.Empty(t, GetCorrelationID(context.Background()))
}
