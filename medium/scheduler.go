package medium

// scheduler.go wraps github.com/iti/evt/evtm the way ITI-mrnes's
// scheduler.go wraps it for task scheduling: a thin layer providing the
// now()/add(job)/remove(job) contract spec.md §9 asks for, so the frame
// pipeline never touches evtm directly. Unlike ITI-mrnes's TaskScheduler
// (which schedules against a fixed core count), jobs here aren't resource
// limited — the contention modeling that bounds concurrency lives in the
// deadline computation (§4.D step 5), not in the scheduler.

import (
	"github.com/iti/evt/evtm"
	"github.com/iti/evt/vrtime"
)

// Job is the scheduler handle for one in-flight frame. Cancelling a job
// (client disconnect, spec.md §4.F) is a lazy flag check rather than a true
// heap removal, since evtm does not expose one: the fired callback is a
// no-op once cancelled.
type Job struct {
	deadline  float64 // absolute simulated seconds
	cancelled bool
	frame     *Frame
}

// Scheduler threads an evtm.EventManager handle through the pipeline,
// matching the design note in spec.md §9 that implementations should pass a
// scheduler handle rather than rely on process-wide state.
type Scheduler struct {
	evtMgr *evtm.EventManager
}

// NewScheduler wraps an already-constructed evtm.EventManager. The event
// loop itself (virtual-time-controlled or wallclock-driven) is an external
// collaborator per spec.md §1; this package only schedules against it.
func NewScheduler(evtMgr *evtm.EventManager) *Scheduler {
	return &Scheduler{evtMgr: evtMgr}
}

// Now returns the scheduler's current simulated time, in seconds.
func (s *Scheduler) Now() float64 {
	return s.evtMgr.CurrentSeconds()
}

// Add schedules frame's delivery callback to fire at absolute simulated
// time deadline (seconds). The returned *Job is stored on the frame so a
// later disconnect can cancel it.
func (s *Scheduler) Add(deadline float64, frame *Frame, deliver func(*Frame)) *Job {
	job := &Job{deadline: deadline, frame: frame}
	frame.job = job

	delay := deadline - s.Now()
	if delay < 0 {
		delay = 0
	}

	s.evtMgr.Schedule(job, frame, func(evtMgr *evtm.EventManager, context any, data any) any {
		j := context.(*Job)
		f := data.(*Frame)
		if f.job == j {
			f.job = nil
		}
		if j.cancelled {
			return nil
		}
		deliver(f)
		return nil
	}, vrtime.SecondsToTime(delay))

	return job
}

// Remove cancels a previously scheduled job. The frame's eventual delivery
// callback becomes a no-op; spec.md §4.F's disconnect cleanup calls this
// for every frame sourced from the disconnecting client.
func (s *Scheduler) Remove(job *Job) {
	if job == nil {
		return
	}
	job.cancelled = true
	if job.frame != nil && job.frame.job == job {
		job.frame.job = nil
	}
}

// ScheduleAfter schedules an arbitrary recurring job (used for the
// interference decay timer, §4.C) without attaching it to a frame.
func (s *Scheduler) ScheduleAfter(delaySeconds float64, handler func(now float64)) {
	s.evtMgr.Schedule(nil, nil, func(evtMgr *evtm.EventManager, context any, data any) any {
		handler(evtMgr.CurrentSeconds())
		return nil
	}, vrtime.SecondsToTime(delaySeconds))
}
