package logsvc

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mithesh23/kmit-club-sub001/core"
)

func TestRollbarLogger_structuredOutput(t *testing.T) {
	out := new(bytes.Buffer)
	conf := core.NewTestConfig()
	logger := NewRollbarLogger(out, conf, "API")

	logger.Error(
		"approving registration",
		errors.New("boom"),
		map[string]interface{}{"club_id": "c1"},
		core.Person{ID: "p1", Username: "robotics", Email: "robotics@kmit.in"},
	)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, "approving registration", entry["msg"])
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "c1", entry["club_id"])
	assert.Equal(t, "p1", entry["person"])
	assert.Equal(t, conf.AppName, entry["app"])
	assert.Equal(t, "API", entry["component"])
}
