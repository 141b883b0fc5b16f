package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/weixin008/dutyroster/internal/config"
	"github.com/weixin008/dutyroster/pkg/core/engine"
	"github.com/weixin008/dutyroster/pkg/db"
)

// AppContext holds the dependencies shared by all commands
type AppContext struct {
	Ctx    context.Context
	Cfg    *config.Config
	Store  db.Store
	Engine *engine.Engine
	Logger *zap.Logger
}
