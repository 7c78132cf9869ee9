package app

import (
	"time"

	"github.com/scrumpoker/core/internal/config"
	http_health "github.com/scrumpoker/core/internal/delivery/http/health"
	http_init "github.com/scrumpoker/core/internal/delivery/http/init"
	http_room "github.com/scrumpoker/core/internal/delivery/http/room"
	http_user "github.com/scrumpoker/core/internal/delivery/http/user"
	ws_room "github.com/scrumpoker/core/internal/delivery/ws/room"
	infra_memory_room "github.com/scrumpoker/core/internal/infra/memory/room"
	infra_memory_user "github.com/scrumpoker/core/internal/infra/memory/user"
	usecase_room "github.com/scrumpoker/core/internal/usecase/room"
	usecase_user "github.com/scrumpoker/core/internal/usecase/user"
	usecase_voting "github.com/scrumpoker/core/internal/usecase/voting"
)

func Go(cfg *config.Config) {
	roomStore := infra_memory_room.New()
	userStore := infra_memory_user.New()

	roomUC := usecase_room.New(roomStore, usecase_room.Limits{
		DefaultCapacity: cfg.Rooms.DefaultCapacity,
		MaxCapacity:     cfg.Rooms.MaxCapacity,
		TTL:             time.Duration(cfg.Rooms.TTLHours) * time.Hour,
		CleanupPeriod:   cfg.Rooms.CleanupPeriod,
	})
	votingUC := usecase_voting.New(roomStore)
	userUC := usecase_user.New(userStore)

	hub := ws_room.NewHub(roomUC, votingUC)
	go hub.Run()

	controllerPool := http_init.NewControllerPool()
	controllerPool.Add(http_health.New(cfg.App.Name))
	controllerPool.Add(http_room.New(roomUC, cfg.App.PublicURL))
	controllerPool.Add(http_user.New(userUC))
	controllerPool.Add(ws_room.NewController(hub))

	controllerPool.Register()
	controllerPool.RunAll(cfg.HTTP.Host, cfg.HTTP.Port)
}
