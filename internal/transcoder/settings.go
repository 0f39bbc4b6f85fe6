package transcoder

// effectiveSampleRate implements the resolution rule from the construction
// contract: an explicit positive requested rate wins, otherwise the decoder's
// own rate is inherited.
func effectiveSampleRate(requested, decoderRate int) int {
	if requested > 0 {
		return requested
	}
	return decoderRate
}

// effectiveBitRate resolves a requested bit rate (0 meaning "unset") against
// the decoder's own bit rate.
func effectiveBitRate(requested, decoderBitRate int) int {
	if requested > 0 {
		return requested
	}
	return decoderBitRate
}

// effectiveMaxBitRate mirrors effectiveBitRate for the maximum bit rate field.
func effectiveMaxBitRate(requested, decoderMaxBitRate int) int {
	if requested > 0 {
		return requested
	}
	return decoderMaxBitRate
}
