package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverallStatus(t *testing.T) {
	c := NewChecker(time.Minute)
	assert.Equal(t, StatusDown, c.Overall())

	c.Register("up", func(ctx context.Context) (Status, error) {
		return StatusUp, nil
	})
	c.Register("down", func(ctx context.Context) (Status, error) {
		return StatusDown, errors.New("unreachable")
	})
	c.checkAll()

	assert.Equal(t, StatusDegraded, c.Overall())
}

func TestHTTPHandler(t *testing.T) {
	c := NewChecker(time.Minute)
	c.Register("coordinator", func(ctx context.Context) (Status, error) {
		return StatusUp, nil
	})
	c.checkAll()

	rec := httptest.NewRecorder()
	c.HTTPHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	var body struct {
		Status     Status      `json:"status"`
		Components []Component `json:"components"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, StatusUp, body.Status)
	require.Len(t, body.Components, 1)
	assert.Equal(t, "coordinator", body.Components[0].Name)
}
