// Package handlers provides HTTP request handlers for the platemap API.
package handlers

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/platemap"
	"github.com/agentstation/platemap/cmd/application"
)

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	app       application.Application
	platemap  platemap.Platemap
	logger    *zerolog.Logger
	maxUpload int64
	startTime time.Time
}

// New creates a new Handlers instance.
func New(
	app application.Application,
	pm platemap.Platemap,
	logger *zerolog.Logger,
	maxUpload int64,
	startTime time.Time,
) *Handlers {
	return &Handlers{
		app:       app,
		platemap:  pm,
		logger:    logger,
		maxUpload: maxUpload,
		startTime: startTime,
	}
}
