package controllers

import (
	"context"
	"net/http"

	"cropwise/models"
	"cropwise/services"
	"cropwise/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SoilStream pushes every snapshot of a device to the websocket until the
// client goes away.
func (h *Handler) SoilStream(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	deviceID := c.Param("deviceId")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// all writes happen on the subscription goroutine
	sub := h.Soil.Subscribe(ctx, deviceID, func(snap *models.SoilCondition) {
		if err := writeSnapshot(conn, snap); err != nil {
			h.logger().Debug("websocket write failed", zap.String("device_id", deviceID), zap.Error(err))
			cancel()
		}
	})
	defer sub.Close()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	<-ctx.Done()
}

func writeSnapshot(conn *websocket.Conn, snap *models.SoilCondition) error {
	if snap == nil {
		return conn.WriteJSON(gin.H{"error": services.ErrNoSoilData.Error()})
	}
	if err := conn.WriteJSON(snap); err != nil {
		return err
	}
	if utils.CheckAbnormality(*snap) {
		return conn.WriteJSON(gin.H{
			"message":  "Abnormal soil reading detected!",
			"abnormal": utils.GetAbnormalType(*snap),
			"data":     snap,
		})
	}
	return nil
}
