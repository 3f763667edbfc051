package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motoroutes-api/errs"
)

func TestPageRequestResolve(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		total   int64
		want    int
		invalid bool
	}{
		{name: "default", raw: "", total: 45, want: 1},
		{name: "explicit", raw: "2", total: 45, want: 2},
		{name: "last keyword", raw: "last", total: 45, want: 3},
		{name: "first page of empty set", raw: "1", total: 0, want: 1},
		{name: "last of empty set", raw: "last", total: 0, want: 1},
		{name: "past the end", raw: "4", total: 45, invalid: true},
		{name: "zero", raw: "0", total: 45, invalid: true},
		{name: "negative", raw: "-1", total: 45, invalid: true},
		{name: "not a number", raw: "two", total: 45, invalid: true},
		{name: "second page of empty set", raw: "2", total: 0, invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := PageRequest{Raw: tt.raw, Size: 20}.Resolve(tt.total)
			if tt.invalid {
				require.ErrorIs(t, err, errs.ErrInvalidPage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, page.Number)
		})
	}
}

func TestPageNavigation(t *testing.T) {
	page := Page{Number: 2, Size: 20, Total: 45}

	assert.Equal(t, 3, page.NumPages())
	assert.Equal(t, 20, page.Offset())
	assert.True(t, page.HasNext())
	assert.True(t, page.HasPrevious())

	page.Number = 3
	assert.False(t, page.HasNext())

	assert.Equal(t, 1, Page{Size: 20}.NumPages())
}

func TestOptionalDistinguishesAbsentFromNull(t *testing.T) {
	var in struct {
		Year     Optional[int]     `json:"year"`
		Distance Optional[float64] `json:"distance"`
		Days     Optional[int]     `json:"days"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"year":null,"distance":12.5}`), &in))

	assert.True(t, in.Year.Set)
	assert.True(t, in.Year.Null)
	assert.Nil(t, in.Year.Ptr())

	require.NotNil(t, in.Distance.Ptr())
	assert.Equal(t, 12.5, *in.Distance.Ptr())

	assert.False(t, in.Days.Set)
	assert.Nil(t, in.Days.Ptr())
}

func TestOptionalAcceptsNumbersSentAsStrings(t *testing.T) {
	var in struct {
		Year     Optional[int]     `json:"year"`
		Distance Optional[float64] `json:"distance"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"year":"2020","distance":" 49.5 "}`), &in))
	assert.Equal(t, 2020, in.Year.Value)
	assert.Equal(t, 49.5, in.Distance.Value)

	for _, body := range []string{`{"year":"2.5"}`, `{"year":"abc"}`, `{"year":""}`, `{"distance":"\"1\""}`} {
		t.Run(body, func(t *testing.T) {
			var in struct {
				Year     Optional[int]     `json:"year"`
				Distance Optional[float64] `json:"distance"`
			}
			assert.Error(t, json.Unmarshal([]byte(body), &in))
		})
	}

	var text struct {
		Name Optional[string] `json:"name"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"name":"7"}`), &text))
	assert.Equal(t, "7", text.Name.Value)
}
