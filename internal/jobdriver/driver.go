// Package jobdriver runs one Job end to end: open input and output, build
// the Transcoder, pump every packet on the selected audio stream through
// it, flush the pipeline, write the trailer, and perform the job's cleanup
// and callback side effects. One Driver is shared by every worker goroutine,
// each Run call handling a single Job.
package jobdriver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/Neur0toxine/atranscoder-rpc/internal/callback"
	"github.com/Neur0toxine/atranscoder-rpc/internal/codecopts"
	"github.com/Neur0toxine/atranscoder-rpc/internal/job"
	"github.com/Neur0toxine/atranscoder-rpc/internal/logging"
	"github.com/Neur0toxine/atranscoder-rpc/internal/source"
	"github.com/Neur0toxine/atranscoder-rpc/internal/transcoder"
	"github.com/asticode/go-astiav"
	"github.com/rs/zerolog"
)

// Driver executes Jobs. It is stateless beyond configuration, so a single
// Driver is safely shared by every worker in the pool.
type Driver struct {
	callbacks  *callback.Client
	httpClient *http.Client
}

// New builds a Driver that fetches URL sources and delivers completion
// callbacks through client.
func New(client *callback.Client) *Driver {
	return &Driver{callbacks: client, httpClient: http.DefaultClient}
}

// Run transcodes job from InputPath to OutputPath, then performs cleanup
// and callback delivery in the order the Job Driver contract specifies:
// on success the input is removed, a success callback is attempted if
// configured, and only then is the output removed -- there is a narrow
// window where a racing GET /get/{id} can still observe it, which is
// accepted, documented behaviour, not a bug. On failure both staged files
// are removed best-effort before the failure callback is attempted.
func (d *Driver) Run(ctx context.Context, j job.Job) error {
	logger := logging.WithComponentFromContext(ctx, "jobdriver")
	logger = logger.With().Str(logging.FieldJobID, j.ID.String()).Logger()
	logger.Info().Str(logging.FieldEvent, "job.start").Msg("starting transcode")

	err := d.transcode(ctx, j)
	if err != nil {
		logger.Error().Err(err).Str(logging.FieldEvent, "job.failed").Msg("transcode failed")
		removeStaged(logger, j.InputPath)
		removeStaged(logger, j.OutputPath)
		d.notify(ctx, j, err)
		return err
	}

	logger.Info().Str(logging.FieldEvent, "job.succeeded").Msg("transcode succeeded")
	removeStaged(logger, j.InputPath)
	d.notify(ctx, j, nil)
	removeStaged(logger, j.OutputPath)
	return nil
}

func (d *Driver) transcode(ctx context.Context, j job.Job) error {
	if err := source.Stage(ctx, d.httpClient, j); err != nil {
		return fmt.Errorf("jobdriver: stage source: %w", err)
	}

	ictx := astiav.AllocFormatContext()
	if ictx == nil {
		return fmt.Errorf("jobdriver: failed to allocate input format context")
	}
	defer ictx.Free()
	if err := ictx.OpenInput(j.InputPath, nil, nil); err != nil {
		return fmt.Errorf("jobdriver: open input %q: %w", j.InputPath, err)
	}
	defer ictx.CloseInput()
	if err := ictx.FindStreamInfo(nil); err != nil {
		return fmt.Errorf("jobdriver: probe input %q: %w", j.InputPath, err)
	}

	octx, err := astiav.AllocOutputFormatContext(nil, j.Params.Format, j.OutputPath)
	if err != nil || octx == nil {
		return fmt.Errorf("jobdriver: allocate output for format %q: %w", j.Params.Format, err)
	}
	defer octx.Free()

	tc, err := transcoder.New(ictx, octx, j.Params)
	if err != nil {
		return fmt.Errorf("jobdriver: build transcoder: %w", err)
	}
	defer tc.Close()

	if !octx.OutputFormat().Flags().Has(astiav.IOFormatFlagNoFile) {
		ioCtx, err := astiav.OpenIOContext(j.OutputPath, astiav.NewIOContextFlags(astiav.IOContextFlagWrite), nil, nil)
		if err != nil {
			return fmt.Errorf("jobdriver: open output file %q: %w", j.OutputPath, err)
		}
		defer ioCtx.Close()
		octx.SetPb(ioCtx)
	}

	octx.SetMetadata(ictx.Metadata())

	var headerOpts *astiav.Dictionary
	if j.Params.CodecOpts != "" {
		headerOpts = astiav.NewDictionary()
		defer headerOpts.Free()
		for k, v := range codecopts.Parse(j.Params.CodecOpts) {
			if err := headerOpts.Set(k, v, 0); err != nil {
				return fmt.Errorf("jobdriver: set muxer option %s=%s: %w", k, v, err)
			}
		}
	}
	if err := octx.WriteHeader(headerOpts); err != nil {
		return fmt.Errorf("jobdriver: write header: %w", err)
	}

	outputStreamIndex := tc.AudioStreamIndex
	if octx.NbStreams() > 0 {
		outputStreamIndex = octx.Streams()[0].Index()
	}

	pkt := astiav.AllocPacket()
	defer pkt.Free()

	for {
		if err := ictx.ReadFrame(pkt); err != nil {
			if errors.Is(err, astiav.ErrEof) {
				break
			}
			return fmt.Errorf("jobdriver: demux read: %w", err)
		}
		if pkt.StreamIndex() != tc.AudioStreamIndex {
			pkt.Unref()
			continue
		}
		pkt.RescaleTs(ictx.Streams()[tc.AudioStreamIndex].TimeBase(), tc.InTimeBase())
		if err := tc.SendPacket(pkt); err != nil {
			pkt.Unref()
			return err
		}
		pkt.Unref()
		if err := drainPipeline(tc, octx, outputStreamIndex); err != nil {
			return err
		}
	}

	if err := tc.SendEOFDecoder(); err != nil {
		return err
	}
	if err := drainPipeline(tc, octx, outputStreamIndex); err != nil {
		return err
	}

	if err := tc.FlushFilter(); err != nil {
		return err
	}
	if err := tc.DrainFiltered(); err != nil {
		return err
	}
	if err := tc.DrainEncoded(octx, outputStreamIndex); err != nil {
		return err
	}

	if err := tc.SendEOFEncoder(); err != nil {
		return err
	}
	if err := tc.DrainEncoded(octx, outputStreamIndex); err != nil {
		return err
	}

	if err := octx.WriteTrailer(); err != nil {
		return fmt.Errorf("jobdriver: write trailer: %w", err)
	}
	return nil
}

// drainPipeline pushes whatever the decoder currently has ready all the way
// through the filter graph and encoder to the muxer.
func drainPipeline(tc *transcoder.Transcoder, octx *astiav.FormatContext, outputStreamIndex int) error {
	if err := tc.DrainDecoded(); err != nil {
		return err
	}
	if err := tc.DrainFiltered(); err != nil {
		return err
	}
	return tc.DrainEncoded(octx, outputStreamIndex)
}

func (d *Driver) notify(ctx context.Context, j job.Job, jobErr error) {
	if j.Params.CallbackURL == "" {
		return
	}
	var errMsg string
	if jobErr != nil {
		errMsg = jobErr.Error()
	}
	d.callbacks.Notify(ctx, j.Params.CallbackURL, j.ID.String(), errMsg)
}

func removeStaged(logger zerolog.Logger, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Str(logging.FieldPath, path).Msg("failed to remove staged file")
	}
}
