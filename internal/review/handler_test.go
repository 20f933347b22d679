package review

import (
	"testing"

	"arcstride/internal/apperr"
)

func TestScoreX2(t *testing.T) {
	tests := []struct {
		name    string
		in      float64
		want    int
		wantErr bool
	}{
		{name: "zero", in: 0, want: 0},
		{name: "half step", in: 7.5, want: 15},
		{name: "max", in: 10, want: 20},
		{name: "whole", in: 3, want: 6},
		{name: "negative", in: -0.5, wantErr: true},
		{name: "over max", in: 10.5, wantErr: true},
		{name: "quarter step", in: 7.25, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scoreX2(tt.in)
			if tt.wantErr {
				if !apperr.IsInvalid(err) {
					t.Fatalf("expected Invalid, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
