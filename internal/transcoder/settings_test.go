package transcoder

import "testing"

func TestEffectiveSampleRate(t *testing.T) {
	tests := []struct {
		requested, decoder, want int
	}{
		{48000, 44100, 48000},
		{0, 44100, 44100},
		{-1, 44100, 44100},
	}
	for _, tt := range tests {
		if got := effectiveSampleRate(tt.requested, tt.decoder); got != tt.want {
			t.Errorf("effectiveSampleRate(%d, %d) = %d, want %d", tt.requested, tt.decoder, got, tt.want)
		}
	}
}

func TestEffectiveBitRate(t *testing.T) {
	tests := []struct {
		requested, decoder, want int
	}{
		{192000, 128000, 192000},
		{0, 128000, 128000},
	}
	for _, tt := range tests {
		if got := effectiveBitRate(tt.requested, tt.decoder); got != tt.want {
			t.Errorf("effectiveBitRate(%d, %d) = %d, want %d", tt.requested, tt.decoder, got, tt.want)
		}
	}
}

func TestEffectiveMaxBitRate(t *testing.T) {
	tests := []struct {
		requested, decoder, want int
	}{
		{256000, 128000, 256000},
		{0, 128000, 128000},
	}
	for _, tt := range tests {
		if got := effectiveMaxBitRate(tt.requested, tt.decoder); got != tt.want {
			t.Errorf("effectiveMaxBitRate(%d, %d) = %d, want %d", tt.requested, tt.decoder, got, tt.want)
		}
	}
}
