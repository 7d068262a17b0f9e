package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want ID
	}{
		{name: "number", body: `{"id":2}`, want: "2"},
		{name: "string", body: `{"id":"2"}`, want: "2"},
		{name: "empty string", body: `{"id":""}`, want: ""},
		{name: "null", body: `{"id":null}`, want: ""},
		{name: "absent", body: `{}`, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateUserRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.want, req.UserID)
		})
	}

	var req UpdateUserRequest
	assert.Error(t, json.Unmarshal([]byte(`{"id":true}`), &req))
}
