package controller

import (
	"context"
	"errors"

	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"reachround/services"
	"reachround/utils"
)

type dispatchRequest struct {
	Scope services.DispatchScope `json:"scope"`
	ID    uint                   `json:"id"`
}

type dispatchEvent struct {
	Type    string                  `json:"type"`
	Item    *services.DispatchItem  `json:"item,omitempty"`
	Sent    int                     `json:"sent,omitempty"`
	Failed  int                     `json:"failed,omitempty"`
	Results []services.DispatchItem `json:"results,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

// DispatchWS runs one dispatch per connection. The client sends
// {"scope":"campaign"|"project","id":N}; each email outcome is pushed as an
// "item" event, followed by a "summary" or "error" event.
func (dc *DispatchController) DispatchWS(c *websocket.Conn) {
	defer c.Close()

	userID, _ := c.Locals("userID").(uint)
	log := dc.Logger.WithField("user_id", userID)

	var req dispatchRequest
	if err := c.ReadJSON(&req); err != nil {
		log.WithError(err).Debug("dispatch ws: bad request")
		_ = c.WriteJSON(dispatchEvent{Type: "error", Error: "Invalid request body"})
		return
	}
	if req.Scope != services.ScopeCampaign && req.Scope != services.ScopeProject {
		_ = c.WriteJSON(dispatchEvent{Type: "error", Error: "scope must be campaign or project"})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A closed socket stops the run between sends.
	go func() {
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	progress := func(item services.DispatchItem) {
		if err := c.WriteJSON(dispatchEvent{Type: "item", Item: &item}); err != nil {
			log.WithError(err).Debug("dispatch ws: write failed")
			cancel()
		}
	}

	result, err := dc.Dispatch.SendApproved(ctx, userID, req.Scope, req.ID, progress)
	if err != nil {
		if result != nil && errors.Is(err, context.Canceled) {
			log.WithFields(logrus.Fields{"sent": result.Sent, "failed": result.Failed}).Info("dispatch ws: client went away")
			return
		}
		_ = c.WriteJSON(dispatchEvent{Type: "error", Error: wsMessage(err)})
		return
	}

	summary := dispatchEvent{Type: "summary", Sent: result.Sent, Failed: result.Failed, Results: result.Results}
	if result.AllFailed() {
		summary.Error = "Failed to send any emails"
	}
	if err := c.WriteJSON(summary); err != nil {
		log.WithError(err).Debug("dispatch ws: write failed")
	}
}

func wsMessage(err error) string {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}
