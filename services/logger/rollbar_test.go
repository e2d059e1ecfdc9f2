package logsvc

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/user"
)

func TestRollbarLogger(t *testing.T) {
	conf := &core.Config{AppName: "viewly", Env: "TEST", Log: core.LogConfig{Level: "debug"}}
	var buf bytes.Buffer
	logger := NewRollbarLogger(NewZerolog(&buf, conf, "test"), conf)
	logger.Enable(false)

	usr := user.User{ID: "u1", Username: "jdoe"}
	logger.Error("something broke", errors.New("boom"), map[string]interface{}{"path": "/api/v1"}, usr)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "something broke", line["message"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "/api/v1", line["path"])
	assert.Equal(t, "u1", line["user_id"])
	assert.Equal(t, "jdoe", line["username"])
	assert.Equal(t, "viewly", line["app"])
}

func TestNewZerolog_Level(t *testing.T) {
	conf := &core.Config{Log: core.LogConfig{Level: "warn"}}
	var buf bytes.Buffer
	logger := NewRollbarLogger(NewZerolog(&buf, conf, "test"), conf)
	logger.Enable(false)

	logger.Info("hidden")
	assert.Zero(t, buf.Len())
	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}
