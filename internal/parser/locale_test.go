package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGermanDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "standard date", input: "15.03.2024", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{name: "leading whitespace", input: "  01.01.2023", want: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
		{name: "impossible day", input: "32.01.2024", wantErr: true},
		{name: "iso format rejected", input: "2024-03-15", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGermanDate(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var formatErr *FormatError
				assert.ErrorAs(t, err, &formatErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}
}

func TestParseGermanAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "simple decimal", input: "45,67", want: "45.67"},
		{name: "negative", input: "-45,67", want: "-45.67"},
		{name: "thousands separator", input: "2.500,00", want: "2500"},
		{name: "millions", input: "1.234.567,89", want: "1234567.89"},
		{name: "integer", input: "100", want: "100"},
		{name: "empty", input: "", wantErr: true},
		{name: "letters", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGermanAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseGermanBoolean(t *testing.T) {
	for _, truthy := range []string{"Ja", "ja", "JA", "yes", "true", "1", "Wahr", " ja "} {
		assert.True(t, ParseGermanBoolean(truthy), "expected %q to be true", truthy)
	}
	for _, falsy := range []string{"", "Nein", "no", "false", "0", "2", "maybe"} {
		assert.False(t, ParseGermanBoolean(falsy), "expected %q to be false", falsy)
	}
}
