package services

import (
	"os"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const DefaultRefreshSchedule = "0 0 * * *"

// SchedulerService recomputes time-dependent stats, such as the learning
// streak, when the calendar day rolls over.
type SchedulerService struct {
	context.DefaultService

	schedule string
	location *time.Location

	progressSvc *ProgressService
	cron        *cron.Cron
}

const SCHEDULER_SVC = "scheduler_svc"

func (svc SchedulerService) Id() string {
	return SCHEDULER_SVC
}

func (svc *SchedulerService) Configure(ctx *context.Context) error {
	svc.schedule = os.Getenv("REFRESH_SCHEDULE")
	if svc.schedule == "" {
		svc.schedule = DefaultRefreshSchedule
	}

	svc.location = time.Local
	if tz := os.Getenv("REFRESH_TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			log.Printf("Unknown REFRESH_TIMEZONE %q, using local time: %v", tz, err)
		} else {
			svc.location = loc
		}
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *SchedulerService) Start() error {
	svc.progressSvc = svc.Service(PROGRESS_SVC).(*ProgressService)

	svc.cron = cron.New(cron.WithLocation(svc.location))
	if _, err := svc.cron.AddFunc(svc.schedule, svc.refresh); err != nil {
		return err
	}
	svc.cron.Start()

	log.Printf("Progress refresh scheduled at %q", svc.schedule)
	return nil
}

func (svc *SchedulerService) refresh() {
	log.Println("Running scheduled progress refresh")
	svc.progressSvc.RefreshProgress()
}

func (svc *SchedulerService) Shutdown() {
	if svc.cron != nil {
		<-svc.cron.Stop().Done()
	}
}
