// Package capability tracks which inference capabilities are usable for the
// lifetime of the process. A local model that fails once (device unsupported,
// model missing) is treated as permanently unavailable for this run so agents
// never pay the probe cost twice.
package capability

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Task identifies one analysis task routed through the fallback chain.
type Task string

const (
	TaskVision       Task = "vision"
	TaskAudio        Task = "audio"
	TaskTremor       Task = "tremor"
	TaskVoiceEmotion Task = "voice_emotion"
	TaskTriage       Task = "triage"
)

// CloudAllowed reports whether the task's policy permits network egress.
// Vision, audio, and emotion payloads never leave the device; only tremor
// summaries and triage prompts may be sent to a cloud model.
func CloudAllowed(task Task) bool {
	switch task {
	case TaskTremor, TaskTriage:
		return true
	default:
		return false
	}
}

// Registry records sticky "capability unavailable" flags per task. Flags are
// set at most once per process lifetime and cleared only by Reset (tests) or
// process restart.
type Registry struct {
	mu          sync.RWMutex
	unavailable map[Task]string
}

// NewRegistry creates an empty registry. Its lifecycle is tied to the
// orchestrator that owns it; it is injected, never global.
func NewRegistry() *Registry {
	return &Registry{
		unavailable: make(map[Task]string),
	}
}

// MarkUnavailable records that the local capability for task failed.
// Subsequent MarkUnavailable calls for the same task keep the first reason.
func (r *Registry) MarkUnavailable(task Task, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, seen := r.unavailable[task]; seen {
		return
	}
	r.unavailable[task] = reason
	log.Warn().
		Str("task", string(task)).
		Str("reason", reason).
		Msg("local capability disabled for remainder of process")
}

// Available reports whether the local capability for task is still usable.
func (r *Registry) Available(task Task) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, down := r.unavailable[task]
	return !down
}

// Reason returns the recorded failure reason, if the task was disabled.
func (r *Registry) Reason(task Task) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reason, down := r.unavailable[task]
	return reason, down
}

// Reset clears all flags. Intended for tests.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unavailable = make(map[Task]string)
}
