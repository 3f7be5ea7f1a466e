package pathutil

import (
	"errors"
	"testing"
)

func TestExtractID(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		prefix    string
		wantID    int64
		wantError error
	}{
		{
			name:      "valid title ID",
			path:      "/titles/123",
			prefix:    "/titles/",
			wantID:    123,
			wantError: nil,
		},
		{
			name:      "valid profile ID",
			path:      "/profiles/456",
			prefix:    "/profiles/",
			wantID:    456,
			wantError: nil,
		},
		{
			name:      "invalid ID - not a number",
			path:      "/titles/abc",
			prefix:    "/titles/",
			wantID:    0,
			wantError: ErrInvalidID,
		},
		{
			name:      "invalid ID - zero",
			path:      "/titles/0",
			prefix:    "/titles/",
			wantID:    0,
			wantError: ErrInvalidID,
		},
		{
			name:      "invalid ID - negative",
			path:      "/titles/-1",
			prefix:    "/titles/",
			wantID:    0,
			wantError: ErrInvalidID,
		},
		{
			name:      "invalid ID - empty",
			path:      "/titles/",
			prefix:    "/titles/",
			wantID:    0,
			wantError: ErrInvalidID,
		},
		{
			name:      "invalid ID - with extra path",
			path:      "/titles/123/similar",
			prefix:    "/titles/",
			wantID:    0,
			wantError: ErrInvalidID,
		},
		{
			name:      "large valid ID",
			path:      "/titles/9223372036854775807",
			prefix:    "/titles/",
			wantID:    9223372036854775807,
			wantError: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID, gotErr := ExtractID(tt.path, tt.prefix)

			if gotID != tt.wantID {
				t.Errorf("ExtractID() id = %v, want %v", gotID, tt.wantID)
			}

			if !errors.Is(gotErr, tt.wantError) {
				t.Errorf("ExtractID() error = %v, want %v", gotErr, tt.wantError)
			}
		})
	}
}
