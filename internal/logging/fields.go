package logging

// Canonical field name constants for structured logging, kept in one place so
// handlers, the job driver, and the worker pool agree on spelling.
const (
	FieldRequestID = "request_id"
	FieldJobID     = "job_id"
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldWorkerID  = "worker_id"

	FieldCodec         = "codec"
	FieldFormat        = "format"
	FieldSampleRate    = "sample_rate"
	FieldChannelLayout = "channel_layout"
	FieldBitRate       = "bit_rate"

	FieldPath = "path"
	FieldURL  = "url"

	FieldOldState = "old_state"
	FieldNewState = "new_state"
)
