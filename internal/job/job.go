// Package job defines the data model shared by job intake, the worker pool,
// and the job driver: a Job's parameters, its source, and its lifecycle state.
package job

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
)

// State is the lifecycle of a Job. It is intentionally
// coarse-grained: Queued -> Running -> (Succeeded | Failed).
type State string

const (
	StateQueued    State = "QUEUED"
	StateRunning   State = "RUNNING"
	StateSucceeded State = "SUCCEEDED"
	StateFailed    State = "FAILED"
)

// IsTerminal reports whether the state is final.
func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// ChannelLayout is a recognised output channel-layout token. Anything else,
// including an unset value, resolves to Stereo.
type ChannelLayout string

const (
	ChannelMono          ChannelLayout = "mono"
	ChannelStereo        ChannelLayout = "stereo"
	ChannelStereoDownmix ChannelLayout = "stereo_downmix"
)

// Resolve returns the effective channel layout, defaulting unrecognised or
// empty tokens to stereo.
func (c ChannelLayout) Resolve() ChannelLayout {
	switch c {
	case ChannelMono, ChannelStereo, ChannelStereoDownmix:
		return c
	default:
		return ChannelStereo
	}
}

// Source describes where the input asset comes from. Exactly one of the
// constructors below should be used; the zero value is not a valid Source.
type Source struct {
	kind     sourceKind
	path     string
	url      string
	maxBytes int64
}

type sourceKind int

const (
	sourceInvalid sourceKind = iota
	sourceLocalFile
	sourceURL
)

// LocalFile builds a Source for an asset already staged on disk (e.g. a
// multipart upload).
func LocalFile(path string) Source {
	return Source{kind: sourceLocalFile, path: path}
}

// FromURL builds a Source that must be fetched by the worker before
// transcoding, capped at maxBytes.
func FromURL(url string, maxBytes int64) Source {
	return Source{kind: sourceURL, url: url, maxBytes: maxBytes}
}

// IsURL reports whether the source must be fetched over HTTP.
func (s Source) IsURL() bool { return s.kind == sourceURL }

// URL returns the source URL. Only meaningful when IsURL is true.
func (s Source) URL() string { return s.url }

// MaxBytes returns the fetch byte ceiling. Only meaningful when IsURL is true.
func (s Source) MaxBytes() int64 { return s.maxBytes }

// Path returns the local path of an already-staged asset. Only meaningful
// when IsURL is false.
func (s Source) Path() string { return s.path }

// Params is the immutable set of parameters a client submitted for a Job.
type Params struct {
	Format        string // muxer short name, e.g. "ogg"
	Codec         string // encoder short name, e.g. "libopus"
	CodecOpts     string // raw "k=v;k=v" string, parsed by the codecopts package
	BitRate       int    // 0 means "unset"
	MaxBitRate    int    // 0 means "unset"
	SampleRate    int    // <= 0 means "inherit decoder's rate"
	ChannelLayout ChannelLayout
	Source        Source
	CallbackURL   string
}

// Job is a single transcoding request, owned by exactly one worker from
// dequeue to completion.
type Job struct {
	ID         uuid.UUID
	Params     Params
	InputPath  string
	OutputPath string
	State      State
}

// StagingExtension is appended to every staged file, matched case-insensitively
// by the cleanup sweeper.
const StagingExtension = "atranscoder"

// New assigns a fresh identifier and derives the staging paths from it.
func New(params Params, workDir string) Job {
	id := uuid.New()
	return Job{
		ID:         id,
		Params:     params,
		InputPath:  StagingPath(workDir, id, "in"),
		OutputPath: StagingPath(workDir, id, "out"),
		State:      StateQueued,
	}
}

// StagingPath builds a deterministic staging path of the form
// "{workDir}/{id}.{kind}.atranscoder", kind being "in" or "out".
func StagingPath(workDir string, id uuid.UUID, kind string) string {
	return filepath.Join(workDir, fmt.Sprintf("%s.%s.%s", id.String(), kind, StagingExtension))
}
