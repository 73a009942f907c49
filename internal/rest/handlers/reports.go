package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pkruglov/shopfloor-bot/internal/flow"
	"github.com/pkruglov/shopfloor-bot/internal/report"
	"github.com/pkruglov/shopfloor-bot/pkg/rest/response"
)

// Report generates report files through the same path the bot uses,
// so both surfaces agree on periods, rows and rendering.
type Report struct {
	engine *flow.Engine
	dir    string
	log    *logrus.Logger
}

func NewReportHandler(engine *flow.Engine, dir string, log *logrus.Logger) *Report {
	return &Report{engine: engine, dir: dir, log: log}
}

func (h *Report) EnrichRoutes(router *gin.Engine, manage gin.HandlerFunc) {
	router.GET("/reports/generate", manage, h.generateAction)
}

// generateAction resolves the period from the query: either a named
// period token or an explicit date_from/date_to pair. The file lands
// in the reports directory and the response carries its path.
func (h *Report) generateAction(c *gin.Context) {
	const op = "handlers.Report.generateAction"
	log := h.log.WithField("operation", op)

	managerID, err := strconv.ParseInt(c.Query("manager_id"), 10, 64)
	if err != nil {
		response.HandleError(response.NewBadRequestError("manager_id must be an integer"), c)
		return
	}
	format := c.DefaultQuery("format", report.FormatCSV)
	if !report.ValidFormat(format) {
		response.HandleError(response.NewBadRequestError("format must be csv, pdf or xlsx"), c)
		return
	}

	var p report.Period
	if token := c.Query("period"); token != "" && token != report.PeriodCustom {
		p, err = h.engine.ResolvePeriod(token)
		if err != nil {
			response.HandleError(response.NewBadRequestError("unknown period"), c)
			return
		}
	} else {
		from, ferr := time.Parse(dateLayout, c.Query("date_from"))
		to, terr := time.Parse(dateLayout, c.Query("date_to"))
		if ferr != nil || terr != nil {
			response.HandleError(response.NewBadRequestError("date_from and date_to must be YYYY-MM-DD"), c)
			return
		}
		p = report.Period{From: from, To: to}
	}

	data, name, err := h.engine.GenerateReport(c.Request.Context(), flow.ReportRequest{
		ManagerID: managerID,
		Period:    p,
		Format:    format,
	})
	if err != nil {
		if flow.IsEmpty(err) {
			response.HandleError(response.NewNotFoundError(), c)
			return
		}
		log.WithError(err).Error("generate report")
		response.HandleError(err, c)
		return
	}

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		log.WithError(err).Error("create reports dir")
		response.HandleError(err, c)
		return
	}
	path := filepath.Join(h.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.WithError(err).Error("write report file")
		response.HandleError(err, c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"file_path": path})
}
