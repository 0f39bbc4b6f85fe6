package transcoder

import (
	"errors"
	"fmt"

	"github.com/asticode/go-astiav"
)

// The operations below are the stepwise primitives the job driver calls, in
// order, to push one input packet all the way through to muxed output.
// EAGAIN from the underlying library is never an error here: it means
// "nothing more to drain right now", and every Drain* loop treats it as its
// normal, successful termination condition. astiav.ErrEof is likewise
// expected, not failed, both in the Drain* loops and in the two SendEOF*
// calls.

// SendPacket feeds one demuxed, already-rescaled packet to the decoder.
func (t *Transcoder) SendPacket(pkt *astiav.Packet) error {
	if err := t.decoder.SendPacket(pkt); err != nil {
		return fmt.Errorf("%w: %v", ErrDecoderSendFailed, err)
	}
	return nil
}

// SendEOFDecoder signals end of input to the decoder so it flushes any
// frames buffered internally.
func (t *Transcoder) SendEOFDecoder() error {
	if err := t.decoder.SendPacket(nil); err != nil && !errors.Is(err, astiav.ErrEof) {
		return fmt.Errorf("%w: %v", ErrDecoderEofFailed, err)
	}
	return nil
}

// DrainDecoded pulls every frame the decoder currently has ready and pushes
// each one into the filter graph's source pad, rescaling into the filter
// graph's notion of time implicitly via the frame's own time base. It
// returns once the decoder reports EAGAIN (nothing more ready) or EOF
// (fully flushed).
func (t *Transcoder) DrainDecoded() error {
	for {
		err := t.decoder.ReceiveFrame(t.decodedFrame)
		if err != nil {
			if errors.Is(err, astiav.ErrEagain) || errors.Is(err, astiav.ErrEof) {
				return nil
			}
			return fmt.Errorf("transcoder: decoder receive frame: %w", err)
		}
		t.decodedFrame.SetPts(t.decodedFrame.BestEffortTimestamp())
		if err := t.graph.srcCtx.BuffersrcAddFrame(t.decodedFrame, astiav.NewBuffersrcFlags()); err != nil {
			return fmt.Errorf("transcoder: push frame into filter graph: %w", err)
		}
		t.decodedFrame.Unref()
	}
}

// FlushFilter signals end of stream to the filter graph's source pad so any
// frames it is holding (e.g. for frame-size batching) are released.
func (t *Transcoder) FlushFilter() error {
	if err := t.graph.srcCtx.BuffersrcAddFrame(nil, astiav.NewBuffersrcFlags()); err != nil {
		return fmt.Errorf("%w: %v", ErrFilterFlushFailed, err)
	}
	return nil
}

// DrainFiltered pulls every frame the filter graph's sink pad currently has
// ready and sends each one to the encoder. It returns once the sink reports
// EAGAIN or EOF.
func (t *Transcoder) DrainFiltered() error {
	for {
		err := t.graph.sinkCtx.BuffersinkGetFrame(t.filteredFrame, astiav.NewBuffersinkFlags())
		if err != nil {
			if errors.Is(err, astiav.ErrEagain) || errors.Is(err, astiav.ErrEof) {
				return nil
			}
			return fmt.Errorf("transcoder: filter sink get frame: %w", err)
		}
		if err := t.encoder.SendFrame(t.filteredFrame); err != nil {
			t.filteredFrame.Unref()
			return fmt.Errorf("transcoder: encoder send frame: %w", err)
		}
		t.filteredFrame.Unref()
	}
}

// SendEOFEncoder signals end of stream to the encoder so it flushes any
// frames buffered for lookahead.
func (t *Transcoder) SendEOFEncoder() error {
	if err := t.encoder.SendFrame(nil); err != nil && !errors.Is(err, astiav.ErrEof) {
		return fmt.Errorf("%w: %v", ErrEncoderEofFailed, err)
	}
	return nil
}

// DrainEncoded pulls every packet the encoder currently has ready, rescales
// each from the decoder's time base to the output stream's time base, tags
// it with the output stream index, and writes it to the muxer. It returns
// once the encoder reports EAGAIN or EOF.
func (t *Transcoder) DrainEncoded(octx *astiav.FormatContext, outputStreamIndex int) error {
	for {
		err := t.encoder.ReceivePacket(t.encodedPacket)
		if err != nil {
			if errors.Is(err, astiav.ErrEagain) || errors.Is(err, astiav.ErrEof) {
				return nil
			}
			return fmt.Errorf("transcoder: encoder receive packet: %w", err)
		}
		t.encodedPacket.SetStreamIndex(outputStreamIndex)
		t.encodedPacket.RescaleTs(t.inTimeBase, t.outTimeBase)
		if err := octx.WriteInterleavedFrame(t.encodedPacket); err != nil {
			t.encodedPacket.Unref()
			return fmt.Errorf("%w: %v", ErrMuxWriteFailed, err)
		}
		t.encodedPacket.Unref()
	}
}
