package errs

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorMatchesSentinels(t *testing.T) {
	wrapped := fmt.Errorf("update: %w", Forbidden("You can only edit your own routes"))

	assert.True(t, IsForbidden(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.True(t, IsNotFound(NotFound("Route")))
	assert.Equal(t, "No Route matches the given query.", NotFound("Route").Message)
	assert.Equal(t, http.StatusNotFound, InvalidPage().Status)
}

func TestFieldErrors(t *testing.T) {
	fields := FieldErrors{}
	assert.NoError(t, fields.Err())

	fields.Add("title", "This field is required.")
	fields.Add("title", "Ensure this field has no more than 200 characters.")
	fields.Add("distance", "A valid number is required.")

	err := fields.Err()
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Len(t, FieldsOf(err)["title"], 2)
	assert.Equal(t,
		"Validation failed (distance: A valid number is required.; title: This field is required. Ensure this field has no more than 200 characters.)",
		err.Error())
	assert.Nil(t, FieldsOf(fmt.Errorf("plain")))
}

func TestFromBindError(t *testing.T) {
	var dst struct {
		Distance float64 `json:"distance"`
		Days     *int    `json:"duration_days"`
		Title    string  `json:"title"`
	}

	tests := []struct {
		name  string
		body  string
		field string
		msg   string
	}{
		{"float", `{"distance":"far"}`, "distance", "A valid number is required."},
		{"int", `{"duration_days":1.5}`, "duration_days", "A valid integer is required."},
		{"string", `{"title":3}`, "title", "Not a valid string."},
		{"empty body", ``, "non_field_errors", "No data provided"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := json.NewDecoder(strings.NewReader(tt.body)).Decode(&dst)
			require.Error(t, err)

			apiErr := FromBindError(err)
			assert.Equal(t, http.StatusBadRequest, apiErr.Status)
			assert.Equal(t, []string{tt.msg}, apiErr.Fields[tt.field])
		})
	}

	err := json.NewDecoder(strings.NewReader(`{"title":`)).Decode(&dst)
	apiErr := FromBindError(err)
	require.Len(t, apiErr.Fields["non_field_errors"], 1)
	assert.True(t, strings.HasPrefix(apiErr.Fields["non_field_errors"][0], "JSON parse error - "))
}

func TestFromBindErrorUsesJSONNameOfEmbeddedField(t *testing.T) {
	type Profile struct {
		Year *int `json:"motorcycle_year"`
	}
	var dst struct {
		Profile
		Avatar string `json:"avatar"`
	}

	err := json.Unmarshal([]byte(`{"motorcycle_year":"abc"}`), &dst)
	require.Error(t, err)

	apiErr := FromBindError(err)
	assert.Equal(t, FieldErrors{"motorcycle_year": {"A valid integer is required."}}, apiErr.Fields)
}
