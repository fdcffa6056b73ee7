package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"nanogrid/cache"
	"nanogrid/catalog"
	"nanogrid/common"
	"nanogrid/energy"
	"nanogrid/influx"
	nanoprom "nanogrid/prometheus"
	"nanogrid/storage"
)

// MetricsClient is what the server needs from the influx client.
type MetricsClient interface {
	catalog.Querier
	Ping(ctx context.Context) error
}

type Server struct {
	config   *common.Config
	client   MetricsClient
	engine   storage.SnapEngine
	results  *cache.ResultCache
	hub      *Hub
	gatherer prometheus.Gatherer
}

func NewServer(config *common.Config, client MetricsClient, engine storage.SnapEngine,
	results *cache.ResultCache, gatherer prometheus.Gatherer) *Server {
	return &Server{
		config:   config,
		client:   client,
		engine:   engine,
		results:  results,
		hub:      NewHub(engine),
		gatherer: gatherer,
	}
}

// Hub exposes the websocket hub so the collector can broadcast refreshes.
func (server *Server) Hub() *Hub {
	return server.hub
}

func (server *Server) Router() *gin.Engine {
	router := gin.Default()

	router.GET("/healthz", server.getHealth)
	router.GET("/metrics", nanoprom.NanogridPrometheusHandler(server.gatherer))

	api := router.Group("/api", TokenAuth(server.config.Token))
	{
		api.GET("/panels", server.listPanels)
		api.GET("/panels/:name", server.getPanel)
		api.GET("/queries", server.listQueries)
		api.GET("/ranges", server.listRanges)
		api.POST("/query", server.runQuery)
		api.GET("/energy/bill", server.getEnergyBill)
		api.GET("/energy/savings", server.getEnergySavings)
		api.GET("/system", getSystem)
	}

	router.GET("/ws", TokenAuth(server.config.Token), server.hub.handle)

	router.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{})
	})
	return router
}

func (server *Server) getHealth(ctx *gin.Context) {
	if err := server.client.Ping(ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unreachable", "error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (server *Server) listPanels(ctx *gin.Context) {
	snapshots, err := server.engine.Load()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, snapshots)
}

func (server *Server) getPanel(ctx *gin.Context) {
	snapshot, err := server.engine.Latest(ctx.Param("name"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, snapshot)
}

func (server *Server) listQueries(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"queries": catalog.Names()})
}

func (server *Server) listRanges(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"ranges": influx.TimeRanges()})
}

type queryRequest struct {
	Query  string           `json:"query" binding:"required"`
	Range  influx.TimeRange `json:"range"`
	Window string           `json:"window"`
}

type queryResponse struct {
	Query  string           `json:"query"`
	Range  influx.TimeRange `json:"range"`
	Window string           `json:"window"`
	Cached bool             `json:"cached"`
	Points []influx.Point   `json:"points"`
}

// runQuery serves ad-hoc catalog queries, answering repeats from the result
// cache within its TTL.
func (server *Server) runQuery(ctx *gin.Context) {
	var request queryRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.Range != "" && !request.Range.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "unhandled time range"})
		return
	}

	response := queryResponse{
		Query:  request.Query,
		Range:  request.Range,
		Window: request.Window,
	}

	key := cache.Key(request.Query, request.Range, request.Window)
	if points, isExist := server.results.Get(key); isExist {
		response.Cached = true
		response.Points = points
		ctx.JSON(http.StatusOK, response)
		return
	}

	points, err := catalog.Run(ctx.Request.Context(), server.client, request.Query, request.Range, request.Window)
	if err != nil {
		abortOnQueryError(ctx, err)
		return
	}
	server.results.Add(key, points)

	response.Points = points
	ctx.JSON(http.StatusOK, response)
}

// getEnergyBill prices the grid consumption over the requested range.
func (server *Server) getEnergyBill(ctx *gin.Context) {
	timeRange := influx.TimeRange(ctx.DefaultQuery("range", string(influx.LastMonth)))
	if !timeRange.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "unhandled time range"})
		return
	}

	points, err := catalog.Run(ctx.Request.Context(), server.client, "grid_power", timeRange, "")
	if err != nil {
		abortOnQueryError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"range": timeRange,
		"kwh":   energy.TotalKWh(points),
		"cost":  energy.PredictedBill(points),
		"unit":  "USD",
	})
}

// getEnergySavings compares the MPC controller against the rule-based one
// over the requested range.
func (server *Server) getEnergySavings(ctx *gin.Context) {
	timeRange := influx.TimeRange(ctx.DefaultQuery("range", string(influx.LastMonth)))
	if !timeRange.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "unhandled time range"})
		return
	}
	mode := energy.Mode(ctx.DefaultQuery("mode", string(energy.Heating)))

	indoor, err := catalog.Run(ctx.Request.Context(), server.client, "indoor_temperature", timeRange, "")
	if err != nil {
		abortOnQueryError(ctx, err)
		return
	}
	outdoor, err := catalog.Run(ctx.Request.Context(), server.client, "outdoor_temperature", timeRange, "")
	if err != nil {
		abortOnQueryError(ctx, err)
		return
	}

	savings, err := energy.ControlSavings(indoor, outdoor, mode)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"range": timeRange, "mode": mode, "savings": savings})
}

// abortOnQueryError maps a catalog failure onto a status code: transport
// failures are a bad gateway, everything else is a bad request.
func abortOnQueryError(ctx *gin.Context, err error) {
	var transportErr *influx.TransportError
	if errors.As(err, &transportErr) {
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
