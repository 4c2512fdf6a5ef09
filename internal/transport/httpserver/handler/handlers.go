package handler

import (
	familydomain "tribeboard/internal/domain/family"
	messagingdomain "tribeboard/internal/domain/messaging"
	scheduledomain "tribeboard/internal/domain/schedule"
	syncdomain "tribeboard/internal/domain/sync"
	tasksdomain "tribeboard/internal/domain/tasks"
	"tribeboard/pkg/logger"
)

type Handlers struct {
	Families  *familydomain.Service
	Tasks     *tasksdomain.Service
	Schedule  *scheduledomain.Service
	Messaging *messagingdomain.Service
	Sync      *syncdomain.Service
	log       logger.Logger
}

func New(families *familydomain.Service, tasks *tasksdomain.Service, schedule *scheduledomain.Service, messaging *messagingdomain.Service, sync *syncdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Families:  families,
		Tasks:     tasks,
		Schedule:  schedule,
		Messaging: messaging,
		Sync:      sync,
		log:       log,
	}
}
