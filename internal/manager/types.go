package manager

import "time"

// LoadState is the lifecycle state of the model handle.
type LoadState string

const (
	LoadUnset   LoadState = "unset"
	LoadLoading LoadState = "loading"
	LoadLoaded  LoadState = "loaded"
	LoadFailed  LoadState = "failed"
)

// LoadResult is the typed outcome of the startup loader.
type LoadResult struct {
	State     LoadState
	ModelName string
	Backend   string
	Device    string
	// Path is the local weights file, once fetched.
	Path string
	// Reason explains a failed load.
	Reason   string
	LoadedAt time.Time
	Duration time.Duration
}

// Loaded reports whether model and processor are both available.
func (r LoadResult) Loaded() bool { return r.State == LoadLoaded }

// Snapshot is a read-only projection of the manager state.
type Snapshot struct {
	Result   LoadResult
	QueueLen int
	Inflight int
}
