/*
 * Copyright 2025 HouseholdIQ, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package scheduler runs the worker daemon's periodic jobs. Each job runs
// sequentially on its own schedule, so a slow run can never overlap the next
// one, and job failures are logged without stopping the schedule.
package scheduler

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/householdiq/bridging/pkg/logger"
	"github.com/householdiq/bridging/pkg/metrics"
)

// Job is one scheduled unit of work. Next maps the current time to the next
// run time.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
	Next func(now time.Time) time.Time
}

// Every schedules a job at a fixed interval.
func Every(name string, interval time.Duration, run func(ctx context.Context) error) Job {
	return Job{
		Name: name,
		Run:  run,
		Next: func(now time.Time) time.Time {
			return now.Add(interval)
		},
	}
}

// DailyAt schedules a job once per day at the given UTC wall time.
func DailyAt(name string, hour, minute int, run func(ctx context.Context) error) Job {
	return Job{
		Name: name,
		Run:  run,
		Next: func(now time.Time) time.Time {
			now = now.UTC()

			next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
			if !next.After(now) {
				next = next.AddDate(0, 0, 1)
			}

			return next
		},
	}
}

// WeeklyAt schedules a job once per week on the given UTC weekday and wall
// time.
func WeeklyAt(name string, weekday time.Weekday, hour, minute int, run func(ctx context.Context) error) Job {
	return Job{
		Name: name,
		Run:  run,
		Next: func(now time.Time) time.Time {
			now = now.UTC()

			next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
			for next.Weekday() != weekday || !next.After(now) {
				next = next.AddDate(0, 0, 1)
			}

			return next
		},
	}
}

// Scheduler supervises a set of jobs.
type Scheduler struct {
	logger logger.Logger
	jobs   []Job
}

func New(log logger.Logger) *Scheduler {
	return &Scheduler{logger: log.WithComponent("scheduler")}
}

func (s *Scheduler) Add(job Job) {
	s.jobs = append(s.jobs, job)
}

// Run blocks until ctx is canceled. Job errors are logged, never fatal.
func (s *Scheduler) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	for _, job := range s.jobs {
		group.Go(func() error {
			return s.runJob(ctx, job)
		})
	}

	return group.Wait()
}

func (s *Scheduler) runJob(ctx context.Context, job Job) error {
	for {
		wait := time.Until(job.Next(time.Now()))
		if wait < 0 {
			wait = 0
		}

		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()

			return ctx.Err()
		case <-timer.C:
		}

		s.logger.Debug().Str("job", job.Name).Msg("job starting")

		start := time.Now()
		err := job.Run(ctx)
		duration := time.Since(start)

		metrics.JobDuration.WithLabelValues(job.Name).Observe(duration.Seconds())

		if err != nil {
			s.logger.Error().Err(err).
				Str("job", job.Name).
				Dur("duration", duration).
				Msg("job failed")

			continue
		}

		s.logger.Info().
			Str("job", job.Name).
			Dur("duration", duration).
			Msg("job finished")
	}
}
