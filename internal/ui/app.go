package ui

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/sovahealth/courier/internal/conversation"
	"github.com/sovahealth/courier/internal/portal"
)

// App bundles the collaborators shared across views: the portal client,
// the reconciliation engine, and the polling/fetch settings. Views pass
// it along as they replace each other.
type App struct {
	Client       *portal.Client
	Engine       *conversation.Engine
	PollInterval time.Duration
	MessageLimit int
	ViewerName   string
	Log          zerolog.Logger
}
