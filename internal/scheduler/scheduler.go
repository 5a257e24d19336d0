package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Config describes the two job timelines.
type Config struct {
	Timezone      string
	AlertInterval time.Duration
	// DigestTime is the daily wall-clock instant as "HH:MM".
	DigestTime   string
	MisfireGrace time.Duration
}

// Scheduler drives the alert-check and daily-digest jobs. Each job is
// serialized with itself; the two jobs run independently of each other.
type Scheduler struct {
	cron *gocron.Scheduler
	cfg  Config
	loc  *time.Location

	digestHour   int
	digestMinute int

	checkAlerts func()
	sendDigest  func()
}

func New(cfg Config, checkAlerts, sendDigest func()) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid timezone %q", cfg.Timezone)
	}

	hour, minute, err := parseClock(cfg.DigestTime)
	if err != nil {
		return nil, errors.Wrap(err, "invalid digest time")
	}

	return &Scheduler{
		cron:         gocron.NewScheduler(loc),
		cfg:          cfg,
		loc:          loc,
		digestHour:   hour,
		digestMinute: minute,
		checkAlerts:  checkAlerts,
		sendDigest:   sendDigest,
	}, nil
}

// Start registers both jobs and launches the scheduler. If the daily
// digest instant was missed but still falls inside the grace window
// (the process was down at the scheduled time), the digest is run once
// immediately.
func (s *Scheduler) Start() error {
	interval := int(s.cfg.AlertInterval.Minutes())
	if interval < 1 {
		interval = 1
	}

	_, err := s.cron.Every(interval).Minutes().SingletonMode().Do(func() {
		runGuarded("price_alerts", s.checkAlerts)
	})
	if err != nil {
		return errors.Wrap(err, "could not schedule alert check job")
	}

	_, err = s.cron.Every(1).Day().At(s.cfg.DigestTime).SingletonMode().Do(func() {
		now := time.Now().In(s.loc)
		scheduled := s.lastDigestOccurrence(now)
		if now.Sub(scheduled) > s.cfg.MisfireGrace {
			log.Warnf("⏭ Skipping daily_summary: %s late for the %s occurrence, grace is %s",
				now.Sub(scheduled), scheduled.Format("15:04"), s.cfg.MisfireGrace)
			return
		}
		runGuarded("daily_summary", s.sendDigest)
	})
	if err != nil {
		return errors.Wrap(err, "could not schedule daily digest job")
	}

	s.cron.StartAsync()

	if s.missedDigestWithinGrace(time.Now().In(s.loc)) {
		log.Info("⏰ Daily digest misfired within grace window, running now")
		go runGuarded("daily_summary", s.sendDigest)
	}

	log.Info("🚀 Scheduler started.")
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Info("Scheduler stopped.")
}

// lastDigestOccurrence returns the most recent daily digest instant at or
// before now.
func (s *Scheduler) lastDigestOccurrence(now time.Time) time.Time {
	occurrence := time.Date(now.Year(), now.Month(), now.Day(),
		s.digestHour, s.digestMinute, 0, 0, now.Location())
	if occurrence.After(now) {
		occurrence = occurrence.AddDate(0, 0, -1)
	}
	return occurrence
}

// missedDigestWithinGrace reports whether a digest occurrence passed less
// than the grace window ago. Beyond the window the occurrence is skipped,
// not queued.
func (s *Scheduler) missedDigestWithinGrace(now time.Time) bool {
	elapsed := now.Sub(s.lastDigestOccurrence(now))
	return elapsed > 0 && elapsed <= s.cfg.MisfireGrace
}

// runGuarded keeps a panicking job body from taking the scheduler down;
// the job stays registered for its next occurrence.
func runGuarded(name string, job func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("🔥 Panic recovered in job %s: %v", name, r)
		}
	}()
	job()
}

func parseClock(value string) (hour, minute int, err error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("bad hour in %q", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("bad minute in %q", value)
	}
	return hour, minute, nil
}
