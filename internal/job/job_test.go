package job

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestChannelLayoutResolve(t *testing.T) {
	tests := []struct {
		in   ChannelLayout
		want ChannelLayout
	}{
		{ChannelMono, ChannelMono},
		{ChannelStereo, ChannelStereo},
		{ChannelStereoDownmix, ChannelStereoDownmix},
		{"", ChannelStereo},
		{"5.1", ChannelStereo},
	}
	for _, tt := range tests {
		if got := tt.in.Resolve(); got != tt.want {
			t.Errorf("ChannelLayout(%q).Resolve() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStagingPath(t *testing.T) {
	id := uuid.New()
	in := StagingPath("/work", id, "in")
	out := StagingPath("/work", id, "out")

	if !strings.HasSuffix(in, id.String()+".in."+StagingExtension) {
		t.Errorf("input staging path = %q", in)
	}
	if !strings.HasSuffix(out, id.String()+".out."+StagingExtension) {
		t.Errorf("output staging path = %q", out)
	}
}

func TestNewAssignsQueuedState(t *testing.T) {
	j := New(Params{Format: "ogg", Codec: "libopus"}, "/work")
	if j.State != StateQueued {
		t.Errorf("State = %q, want %q", j.State, StateQueued)
	}
	if j.InputPath == "" || j.OutputPath == "" {
		t.Error("staging paths should be populated")
	}
}

func TestStateIsTerminal(t *testing.T) {
	tests := map[State]bool{
		StateQueued:    false,
		StateRunning:   false,
		StateSucceeded: true,
		StateFailed:    true,
	}
	for state, want := range tests {
		if got := state.IsTerminal(); got != want {
			t.Errorf("State(%q).IsTerminal() = %v, want %v", state, got, want)
		}
	}
}
