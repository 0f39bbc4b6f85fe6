package transcoder

import (
	"fmt"

	"github.com/asticode/go-astiav"
)

// filterSpec is the only filter chain this service ever builds: a pass-
// through between the source and sink buffers. Resample and remix happen
// implicitly because the sink is configured to the encoder's required
// sample format, rate and channel layout, and libav inserts the conversion
// automatically when source and sink disagree.
const filterSpec = "anull"

// filterGraph owns the abuffer/abuffersink pair and the graph joining them.
type filterGraph struct {
	graph   *astiav.FilterGraph
	srcCtx  *astiav.FilterContext
	sinkCtx *astiav.FilterContext
}

// buildFilterGraph wires a single abuffer -> anull -> abuffersink chain
// between decoder and encoder, configuring the sink to the encoder's
// negotiated sample format, rate and channel layout. When the encoder does
// not support variable frame size, the sink's output frame size is clamped
// to the encoder's fixed frame size so every filtered frame is encodable
// without additional buffering downstream.
func buildFilterGraph(decoder, encoder *astiav.CodecContext) (filterGraph, error) {
	graph := astiav.AllocFilterGraph()
	if graph == nil {
		return filterGraph{}, fmt.Errorf("%w: failed to allocate filter graph", ErrFilterBuildFailed)
	}

	buffersrc := astiav.FindFilterByName("abuffer")
	buffersink := astiav.FindFilterByName("abuffersink")
	if buffersrc == nil || buffersink == nil {
		graph.Free()
		return filterGraph{}, fmt.Errorf("%w: abuffer/abuffersink filters unavailable", ErrFilterBuildFailed)
	}

	srcArgs := fmt.Sprintf(
		"time_base=%d/%d:sample_rate=%d:sample_fmt=%s:channel_layout=%s",
		decoder.TimeBase().Num(), decoder.TimeBase().Den(),
		decoder.SampleRate(),
		decoder.SampleFormat().Name(),
		decoder.ChannelLayout().String(),
	)
	srcCtx, err := graph.NewFilterContext(buffersrc, "in", srcArgs)
	if err != nil {
		graph.Free()
		return filterGraph{}, fmt.Errorf("%w: source buffer: %v", ErrFilterBuildFailed, err)
	}

	sinkCtx, err := graph.NewFilterContext(buffersink, "out", "")
	if err != nil {
		graph.Free()
		return filterGraph{}, fmt.Errorf("%w: sink buffer: %v", ErrFilterBuildFailed, err)
	}
	if err := sinkCtx.SetSampleFormats([]astiav.SampleFormat{encoder.SampleFormat()}); err != nil {
		graph.Free()
		return filterGraph{}, fmt.Errorf("%w: sink sample format: %v", ErrFilterBuildFailed, err)
	}
	if err := sinkCtx.SetChannelLayouts([]astiav.ChannelLayout{encoder.ChannelLayout()}); err != nil {
		graph.Free()
		return filterGraph{}, fmt.Errorf("%w: sink channel layout: %v", ErrFilterBuildFailed, err)
	}
	if err := sinkCtx.SetSampleRates([]int{encoder.SampleRate()}); err != nil {
		graph.Free()
		return filterGraph{}, fmt.Errorf("%w: sink sample rate: %v", ErrFilterBuildFailed, err)
	}

	inputs := astiav.AllocFilterInOut()
	defer inputs.Free()
	inputs.SetName("out")
	inputs.SetFilterContext(sinkCtx)
	inputs.SetPadIdx(0)
	inputs.SetNext(nil)

	outputs := astiav.AllocFilterInOut()
	defer outputs.Free()
	outputs.SetName("in")
	outputs.SetFilterContext(srcCtx)
	outputs.SetPadIdx(0)
	outputs.SetNext(nil)

	if err := graph.Parse(filterSpec, inputs, outputs); err != nil {
		graph.Free()
		return filterGraph{}, fmt.Errorf("%w: parse %q: %v", ErrFilterBuildFailed, filterSpec, err)
	}
	if err := graph.Configure(); err != nil {
		graph.Free()
		return filterGraph{}, fmt.Errorf("%w: configure: %v", ErrFilterBuildFailed, err)
	}
	if !encoder.Codec().Capabilities().Has(astiav.CodecCapabilityVariableFrameSize) {
		sinkCtx.SetBufferSinkFrameSize(encoder.FrameSize())
	}

	return filterGraph{graph: graph, srcCtx: srcCtx, sinkCtx: sinkCtx}, nil
}

func (fg filterGraph) close() {
	if fg.graph != nil {
		fg.graph.Free()
	}
}
