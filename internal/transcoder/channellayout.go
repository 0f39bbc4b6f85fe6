package transcoder

import (
	"github.com/Neur0toxine/atranscoder-rpc/internal/job"
	"github.com/asticode/go-astiav"
)

// resolveChannelLayout maps a job.ChannelLayout token to the astiav channel
// layout the encoder and filter graph are configured with.
func resolveChannelLayout(c job.ChannelLayout) astiav.ChannelLayout {
	switch c.Resolve() {
	case job.ChannelMono:
		return astiav.ChannelLayoutMono
	case job.ChannelStereoDownmix:
		return astiav.ChannelLayoutStereoDownmix
	default:
		return astiav.ChannelLayoutStereo
	}
}
