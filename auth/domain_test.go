package auth

import (
	"errors"
	"testing"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"https://app.infisical.com", "https://app.infisical.com", nil},
		{"https://app.infisical.com/", "https://app.infisical.com", nil},
		{"  eu.infisical.com//  ", "https://eu.infisical.com", nil},
		{"http://localhost:8080", "http://localhost:8080", nil},
		{"https://vault.internal/infisical/", "https://vault.internal/infisical", nil},
		{"", "", ErrMissingDomain},
		{"https://", "", ErrInvalidDomain},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeDomain(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NormalizeDomain(%q) error = %v, want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeDomain(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeDomain(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
