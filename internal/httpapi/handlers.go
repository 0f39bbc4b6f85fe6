package httpapi

import (
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Neur0toxine/atranscoder-rpc/internal/job"
	"github.com/Neur0toxine/atranscoder-rpc/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/google/renameio/v2"
	"github.com/google/uuid"
)

// handleEnqueueMultipart stages the uploaded file durably and enqueues the
// resulting Job. Staging happens before the Job is enqueued so a worker
// never observes a partially-written input.
func (s *Server) handleEnqueueMultipart(w http.ResponseWriter, r *http.Request) {
	logger := logging.WithComponentFromContext(r.Context(), "httpapi")

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodySize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to parse multipart form: "+err.Error())
		return
	}

	params := requestParams{
		Format:        r.FormValue("format"),
		Codec:         r.FormValue("codec"),
		CodecOpts:     r.FormValue("codecOpts"),
		BitRate:       r.FormValue("bitRate"),
		MaxBitRate:    r.FormValue("maxBitRate"),
		SampleRate:    r.FormValue("sampleRate"),
		ChannelLayout: r.FormValue("channelLayout"),
		CallbackURL:   r.FormValue("callbackUrl"),
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "missing file field: "+err.Error())
		return
	}
	defer file.Close()

	id := uuid.New()
	inputPath := job.StagingPath(s.cfg.TempDir, id, "in")

	if err := stageUpload(inputPath, file); err != nil {
		logger.Error().Err(err).Msg("failed to stage upload")
		writeError(w, http.StatusInternalServerError, "failed to persist upload: "+err.Error())
		return
	}

	jobParams, err := params.toJobParams(job.LocalFile(inputPath))
	if err != nil {
		_ = os.Remove(inputPath)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	j := job.Job{
		ID:         id,
		Params:     jobParams,
		InputPath:  inputPath,
		OutputPath: job.StagingPath(s.cfg.TempDir, id, "out"),
		State:      job.StateQueued,
	}
	s.pool.Enqueue(j)

	logger.Info().Str(logging.FieldEvent, "job.enqueued").Str(logging.FieldJobID, id.String()).Msg("job enqueued from upload")
	writeCreated(w, id.String())
}

// stageUpload durably persists src to path using an atomic write-then-
// rename, so a crash mid-upload never leaves a partial file at path.
func stageUpload(path string, src io.Reader) error {
	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return err
	}
	defer pending.Cleanup()

	if _, err := io.Copy(pending, src); err != nil {
		return err
	}
	return pending.CloseAtomicallyReplace()
}

// handleEnqueueURL enqueues a Job whose input will be fetched by the
// worker; no network I/O happens on the request-handling goroutine.
func (s *Server) handleEnqueueURL(w http.ResponseWriter, r *http.Request) {
	logger := logging.WithComponentFromContext(r.Context(), "httpapi")

	body, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxBodySize))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read request body: "+err.Error())
		return
	}

	params, err := decodeJSONParams(body)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "invalid JSON body: "+err.Error())
		return
	}
	if params.URL == "" {
		writeError(w, http.StatusInternalServerError, "url is required")
		return
	}

	id := uuid.New()
	jobParams, err := params.toJobParams(job.FromURL(params.URL, s.cfg.MaxBodySize))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	j := job.Job{
		ID:         id,
		Params:     jobParams,
		InputPath:  job.StagingPath(s.cfg.TempDir, id, "in"),
		OutputPath: job.StagingPath(s.cfg.TempDir, id, "out"),
		State:      job.StateQueued,
	}
	s.pool.Enqueue(j)

	logger.Info().Str(logging.FieldEvent, "job.enqueued").Str(logging.FieldJobID, id.String()).Msg("job enqueued from url")
	writeCreated(w, id.String())
}

// handleGet streams the output staged for id, sniffing its Content-Type
// from the first bytes since the staging filename carries no extension
// hinting at the container format.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	logger := logging.WithComponentFromContext(r.Context(), "httpapi")

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown job id")
		return
	}

	path := job.StagingPath(s.cfg.TempDir, id, "out")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "result not ready or unknown job id")
			return
		}
		logger.Error().Err(err).Str(logging.FieldJobID, id.String()).Msg("failed to open staged output")
		writeError(w, http.StatusInternalServerError, "failed to read result: "+err.Error())
		return
	}
	defer f.Close()

	contentType := sniffContentType(f, path)
	w.Header().Set("Content-Type", contentType)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read result: "+err.Error())
		return
	}
	if _, err := io.Copy(w, f); err != nil {
		logger.Warn().Err(err).Str(logging.FieldJobID, id.String()).Msg("failed to stream result to client")
	}
}

func sniffContentType(f *os.File, path string) string {
	var buf [512]byte
	n, _ := f.Read(buf[:])
	if n > 0 {
		if ct := http.DetectContentType(buf[:n]); ct != "application/octet-stream" {
			return ct
		}
	}
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
