package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pkruglov/shopfloor-bot/internal/flow"
	"github.com/pkruglov/shopfloor-bot/internal/guard"
	"github.com/pkruglov/shopfloor-bot/internal/rest/handlers"
	"github.com/pkruglov/shopfloor-bot/internal/storage/sqlite"
	"github.com/pkruglov/shopfloor-bot/internal/tasks"
	"github.com/pkruglov/shopfloor-bot/pkg/rest/response"
)

// Server is the administrative HTTP API. It shares the storage and
// the lifecycle service with the bot, so both surfaces see the same
// state and the same transition rules.
type Server struct {
	addr   string
	router *gin.Engine
	log    *logrus.Logger
}

func New(addr string, db *sqlite.DB, svc *tasks.Service, engine *flow.Engine,
	reportsDir string, log *logrus.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	manage := requireManage(db)
	handlers.NewTaskHandler(db, svc, log).EnrichRoutes(router, manage)
	handlers.NewUserHandler(db, log).EnrichRoutes(router, manage)
	handlers.NewDictionaryHandler(db, log).EnrichRoutes(router, manage)
	handlers.NewReportHandler(engine, reportsDir, log).EnrichRoutes(router, manage)
	handlers.NewNotificationHandler(db, log).EnrichRoutes(router)

	return &Server{addr: addr, router: router, log: log}
}

func (s *Server) Run() error {
	s.log.WithField("addr", s.addr).Info("http api listening")
	return s.router.Run(s.addr)
}

// requireManage gates mutating routes on the X-Actor-ID header: the
// Telegram id of an active admin or manager.
func requireManage(db *sqlite.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, err := strconv.ParseInt(c.GetHeader("X-Actor-ID"), 10, 64)
		if err != nil {
			response.HandleError(response.NewForbiddenError(), c)
			return
		}
		u, err := db.GetUserByTelegramID(c.Request.Context(), actorID)
		if err != nil || !guard.CanManage(u) {
			response.HandleError(response.NewForbiddenError(), c)
			return
		}
		c.Next()
	}
}
