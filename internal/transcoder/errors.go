package transcoder

import "errors"

// Construction errors, returned by New when the decode/filter/encode
// pipeline cannot be assembled for a Job.
var (
	ErrNoAudioStream       = errors.New("transcoder: input has no audio stream")
	ErrUnknownCodec        = errors.New("transcoder: unknown encoder codec")
	ErrNotAudioCodec       = errors.New("transcoder: resolved codec is not an audio codec")
	ErrNoSupportedFormat   = errors.New("transcoder: encoder advertises no supported sample format")
	ErrCodecOptionRejected = errors.New("transcoder: encoder rejected a codec option")
	ErrFilterBuildFailed   = errors.New("transcoder: failed to build filter graph")
)

// Run errors, returned by the stepwise drive operations. EAGAIN from the
// underlying codec library is not an error: it is the drain loop's normal
// termination signal and is handled internally, never surfaced here.
var (
	ErrDecoderSendFailed = errors.New("transcoder: decoder rejected packet")
	ErrDecoderEofFailed  = errors.New("transcoder: decoder rejected eof signal")
	ErrFilterFlushFailed = errors.New("transcoder: filter source flush failed")
	ErrEncoderEofFailed  = errors.New("transcoder: encoder rejected eof signal")
	ErrMuxWriteFailed    = errors.New("transcoder: mux write failed")
)
