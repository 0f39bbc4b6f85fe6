package httpapi

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/Neur0toxine/atranscoder-rpc/internal/job"
)

// requestParams mirrors the client-facing field names for both the
// multipart and JSON submit bodies; bitRate/maxBitRate/codecOpts/
// channelLayout/callbackUrl are all optional.
type requestParams struct {
	Format        string `json:"format"`
	Codec         string `json:"codec"`
	CodecOpts     string `json:"codecOpts"`
	BitRate       string `json:"bitRate"`
	MaxBitRate    string `json:"maxBitRate"`
	SampleRate    string `json:"sampleRate"`
	ChannelLayout string `json:"channelLayout"`
	CallbackURL   string `json:"callbackUrl"`
	URL           string `json:"url"`
}

var errMissingRequiredField = errors.New("httpapi: format, codec and sampleRate are required")

// toJobParams validates the required fields and converts numeric strings,
// producing the job.Params a Job is constructed from. src is filled in by
// the caller once the input's location is known.
func (p requestParams) toJobParams(src job.Source) (job.Params, error) {
	if p.Format == "" || p.Codec == "" || p.SampleRate == "" {
		return job.Params{}, errMissingRequiredField
	}
	sampleRate, err := strconv.Atoi(p.SampleRate)
	if err != nil {
		return job.Params{}, errors.New("httpapi: sampleRate must be an integer")
	}
	bitRate, err := parseOptionalInt(p.BitRate)
	if err != nil {
		return job.Params{}, errors.New("httpapi: bitRate must be an integer")
	}
	maxBitRate, err := parseOptionalInt(p.MaxBitRate)
	if err != nil {
		return job.Params{}, errors.New("httpapi: maxBitRate must be an integer")
	}

	return job.Params{
		Format:        p.Format,
		Codec:         p.Codec,
		CodecOpts:     p.CodecOpts,
		BitRate:       bitRate,
		MaxBitRate:    maxBitRate,
		SampleRate:    sampleRate,
		ChannelLayout: job.ChannelLayout(p.ChannelLayout),
		Source:        src,
		CallbackURL:   p.CallbackURL,
	}, nil
}

func parseOptionalInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func decodeJSONParams(body []byte) (requestParams, error) {
	var p requestParams
	if err := json.Unmarshal(body, &p); err != nil {
		return requestParams{}, err
	}
	return p, nil
}
