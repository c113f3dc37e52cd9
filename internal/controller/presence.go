package controller

import (
	"codeclash/internal/model"
	"codeclash/internal/transport/ws"
	"context"

	"go.uber.org/zap"
)

// goOnline connects the shared channel and announces the user. Presence is
// best effort: a channel failure never fails the screen action.
func goOnline(ctx context.Context, d Deps, id model.Ref) {
	if id.Empty() || d.RT == nil {
		return
	}
	if err := d.RT.Connect(ctx); err != nil {
		d.Log.Warn("realtime connect failed", zap.Error(err))
		return
	}
	if err := d.RT.Emit(ws.MsgUserLogin, id.String()); err != nil {
		d.Log.Warn("presence announce failed", zap.Error(err))
	}
}

// goOffline announces that id went offline
func goOffline(d Deps, id model.Ref) {
	if id.Empty() || d.RT == nil {
		return
	}
	if err := d.RT.Emit(ws.MsgUserLogout, id.String()); err != nil {
		d.Log.Debug("presence logout not sent", zap.Error(err))
	}
}
