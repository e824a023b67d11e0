package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"DMRelay/global"
	"DMRelay/logger"
	"DMRelay/service/chat"
	"DMRelay/service/presence"
	"DMRelay/service/relay"
	"DMRelay/service/rooms"
	"DMRelay/service/storage"
	redismgr "DMRelay/service/storage/redis"
)

func main() {
	global.Load()
	global.ConfigIds()
	if err := global.ConfigRedis(); err != nil {
		logger.Errorf("fatal: %v", err)
		return
	}
	defer func() { _ = redismgr.CloseRedis() }()

	store := storage.NewRedisStore(redismgr.GetRedis())
	hub := rooms.NewHub()
	tracker := presence.NewTracker(store, hub)
	rel := relay.NewRelay(store, hub, global.Config.TypingTTL)

	s := chat.NewServer(hub, tracker, rel, global.Config.AllowedOrigin)

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/ws", s.HandleWS) // e.g. ws://localhost:3001/ws (Origin checked)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	addr := fmt.Sprintf(":%d", global.Config.Port)
	logger.Infof("[HTTP] Listening on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Errorf("HTTP server failed: %v", err)
	}
}
