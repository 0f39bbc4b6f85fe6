// Package transcoder drives one Job's decode -> filter -> encode pipeline on
// top of the go-astiav FFmpeg bindings. A Transcoder owns exactly one
// decoder, one encoder, and one filter graph for the life of a single Job;
// it never shares those handles across Jobs or goroutines.
package transcoder

import (
	"fmt"

	"github.com/Neur0toxine/atranscoder-rpc/internal/codecopts"
	"github.com/Neur0toxine/atranscoder-rpc/internal/job"
	"github.com/asticode/go-astiav"
)

// Transcoder owns the decode/filter/encode pipeline for a single Job.
type Transcoder struct {
	AudioStreamIndex int

	decoder *astiav.CodecContext
	encoder *astiav.CodecContext
	graph   filterGraph

	inTimeBase  astiav.Rational
	outTimeBase astiav.Rational

	decodedFrame  *astiav.Frame
	filteredFrame *astiav.Frame
	encodedPacket *astiav.Packet
}

// New builds the Transcoder for one Job: it selects the input's audio
// stream, opens a decoder for it, resolves and opens an encoder from
// params, adds the corresponding output stream, and builds the filter graph
// that bridges the two. See the package-level spec for the exact resolution
// rules this follows.
func New(ictx, octx *astiav.FormatContext, params job.Params) (*Transcoder, error) {
	inputStream := bestAudioStream(ictx)
	if inputStream == nil {
		return nil, ErrNoAudioStream
	}

	decoder, err := openDecoder(inputStream)
	if err != nil {
		return nil, err
	}

	encoderCodec := astiav.FindEncoderByName(params.Codec)
	if encoderCodec == nil {
		decoder.Free()
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, params.Codec)
	}
	if encoderCodec.MediaType() != astiav.MediaTypeAudio {
		decoder.Free()
		return nil, fmt.Errorf("%w: %s", ErrNotAudioCodec, params.Codec)
	}

	outputStream := octx.NewStream(encoderCodec)
	if outputStream == nil {
		decoder.Free()
		return nil, fmt.Errorf("transcoder: failed to add output stream for codec %q", params.Codec)
	}

	encoder := astiav.AllocCodecContext(encoderCodec)
	if encoder == nil {
		decoder.Free()
		return nil, fmt.Errorf("transcoder: failed to allocate encoder context for codec %q", params.Codec)
	}

	if octx.OutputFormat().Flags().Has(astiav.IOFormatFlagGlobalHeader) {
		encoder.SetFlags(encoder.Flags().Add(astiav.CodecContextFlagGlobalHeader))
	}

	sampleFormats := encoderCodec.SampleFormats()
	if len(sampleFormats) == 0 {
		decoder.Free()
		encoder.Free()
		return nil, fmt.Errorf("%w: %s", ErrNoSupportedFormat, params.Codec)
	}

	rate := effectiveSampleRate(params.SampleRate, decoder.SampleRate())
	layout := resolveChannelLayout(params.ChannelLayout)

	encoder.SetSampleRate(rate)
	encoder.SetChannelLayout(layout)
	encoder.SetSampleFormat(sampleFormats[0])
	encoder.SetBitRate(int64(effectiveBitRate(params.BitRate, int(decoder.BitRate()))))
	encoder.SetMaxBitRate(int64(effectiveMaxBitRate(params.MaxBitRate, int(decoder.MaxBitRate()))))
	encoder.SetTimeBase(astiav.NewRational(1, rate))
	outputStream.SetTimeBase(astiav.NewRational(1, rate))

	openOpts := astiav.NewDictionary()
	defer openOpts.Free()
	if params.CodecOpts != "" {
		for k, v := range codecopts.Parse(params.CodecOpts) {
			if err := openOpts.Set(k, v, 0); err != nil {
				decoder.Free()
				encoder.Free()
				return nil, fmt.Errorf("%w: %s=%s: %v", ErrCodecOptionRejected, k, v, err)
			}
		}
	}
	if err := encoder.Open(encoderCodec, openOpts); err != nil {
		decoder.Free()
		encoder.Free()
		return nil, fmt.Errorf("%w: %v", ErrCodecOptionRejected, err)
	}

	if err := outputStream.CodecParameters().FromCodecContext(encoder); err != nil {
		decoder.Free()
		encoder.Free()
		return nil, fmt.Errorf("transcoder: failed to copy encoder parameters to output stream: %w", err)
	}

	fg, err := buildFilterGraph(decoder, encoder)
	if err != nil {
		decoder.Free()
		encoder.Free()
		return nil, err
	}

	return &Transcoder{
		AudioStreamIndex: inputStream.Index(),
		decoder:          decoder,
		encoder:          encoder,
		graph:            fg,
		inTimeBase:       decoder.TimeBase(),
		outTimeBase:      outputStream.TimeBase(),
		decodedFrame:     astiav.AllocFrame(),
		filteredFrame:    astiav.AllocFrame(),
		encodedPacket:    astiav.AllocPacket(),
	}, nil
}

// InTimeBase is the decoder's time base; demuxed packets must be rescaled to
// it before being handed to SendPacket.
func (t *Transcoder) InTimeBase() astiav.Rational { return t.inTimeBase }

// Close releases every handle the Transcoder owns. It is idempotent.
func (t *Transcoder) Close() {
	if t.decodedFrame != nil {
		t.decodedFrame.Free()
		t.decodedFrame = nil
	}
	if t.filteredFrame != nil {
		t.filteredFrame.Free()
		t.filteredFrame = nil
	}
	if t.encodedPacket != nil {
		t.encodedPacket.Free()
		t.encodedPacket = nil
	}
	t.graph.close()
	t.graph = filterGraph{}
	if t.decoder != nil {
		t.decoder.Free()
		t.decoder = nil
	}
	if t.encoder != nil {
		t.encoder.Free()
		t.encoder = nil
	}
}

// bestAudioStream delegates to libav's own stream-selection heuristic
// (av_find_best_stream) rather than picking the first audio stream seen, so
// multi-audio-stream inputs resolve the same "best" stream the original
// picked via streams().best(media::Type::Audio).
func bestAudioStream(ictx *astiav.FormatContext) *astiav.Stream {
	s, err := ictx.FindBestStream(astiav.MediaTypeAudio, -1, -1)
	if err != nil {
		return nil
	}
	return s
}

func openDecoder(stream *astiav.Stream) (*astiav.CodecContext, error) {
	params := stream.CodecParameters()
	codec := astiav.FindDecoder(params.CodecID())
	if codec == nil {
		return nil, fmt.Errorf("transcoder: no decoder available for codec id %d", params.CodecID())
	}
	ctx := astiav.AllocCodecContext(codec)
	if ctx == nil {
		return nil, fmt.Errorf("transcoder: failed to allocate decoder context")
	}
	if err := params.ToCodecContext(ctx); err != nil {
		ctx.Free()
		return nil, fmt.Errorf("transcoder: failed to apply stream parameters to decoder: %w", err)
	}
	if err := ctx.Open(codec, nil); err != nil {
		ctx.Free()
		return nil, fmt.Errorf("transcoder: failed to open decoder: %w", err)
	}
	return ctx, nil
}
