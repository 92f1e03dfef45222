package api

import (
	"errors"
	"time"

	models "FinCast/internal/domain/models"
	"FinCast/internal/service/metrics"
	"FinCast/internal/service/ratelimit"
	"FinCast/internal/services/forecast"
	"FinCast/internal/usecase"
	pkgcache "FinCast/pkg/cache"
	xhttp "FinCast/pkg/http"
	xlogger "FinCast/pkg/logger"
	"FinCast/pkg/queue"

	"github.com/labstack/echo/v4"
)

const responseCacheTTL = 30 * time.Second

// ForecastHandler exposes the forecasting engine over Echo.
type ForecastHandler struct {
	logger  *xlogger.Logger
	orch    *usecase.ForecastOrchestrator
	history *usecase.HistoryUseCase
	cache   pkgcache.Service
	jobs    queue.QueueService
	rl      *ratelimit.Limiter
}

func NewForecastHandler(logger *xlogger.Logger, orch *usecase.ForecastOrchestrator) *ForecastHandler {
	metrics.Register()
	return &ForecastHandler{logger: logger, orch: orch, rl: ratelimit.New()}
}

// SetCache enables response caching for forecast and explain.
func (h *ForecastHandler) SetCache(c pkgcache.Service) { h.cache = c }

// SetHistory enables the daily-candles endpoint.
func (h *ForecastHandler) SetHistory(uc *usecase.HistoryUseCase) { h.history = uc }

// SetJobQueue enables async transfer-learning via the job queue.
func (h *ForecastHandler) SetJobQueue(q queue.QueueService) { h.jobs = q }

func (h *ForecastHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/forecast")
	g.POST("", h.Forecast)
	g.POST("/explain", h.Explain)
	g.POST("/recommend", h.Recommend)
	g.POST("/augment", h.Augment)
	g.POST("/transfer-learn", h.TransferLearn)
	g.GET("/status", h.Status)
	e.GET("/api/history", h.History)
}

func (h *ForecastHandler) Forecast(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.ForecastLatency.WithLabelValues("forecast").Observe(time.Since(start).Seconds()) }()

	req := &models.SnapshotRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":forecast", 10, 5) {
		h.logger.Warn("forecast rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429))
	}

	ctx := c.Request().Context()
	cacheKey := pkgcache.GenerateKeyWithParams("forecast", req.SecurityID, req.Date, req.Horizon)
	if h.cache != nil && len(req.History) == 0 {
		var cached models.ForecastResponse
		if err := h.cache.Get(ctx, cacheKey, &cached); err == nil {
			h.logger.Debug("forecast cache_hit", xlogger.String("key", cacheKey))
			return xhttp.SuccessResponse(c, cached)
		}
	}

	res, err := h.orch.Forecast(ctx, req.Snapshot())
	if err != nil {
		metrics.ForecastErrors.WithLabelValues("forecast").Inc()
		h.logger.Error("forecast error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapEngineError(err))
	}
	if h.cache != nil && len(req.History) == 0 {
		if err := h.cache.Set(ctx, cacheKey, res, responseCacheTTL); err != nil {
			h.logger.Warn("forecast cache_set_error", xlogger.Error(err))
		}
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastHandler) Explain(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.ForecastLatency.WithLabelValues("explain").Observe(time.Since(start).Seconds()) }()

	req := &models.SnapshotRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":explain", 10, 5) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429))
	}

	res, err := h.orch.Explain(c.Request().Context(), req.Snapshot())
	if err != nil {
		metrics.ForecastErrors.WithLabelValues("explain").Inc()
		h.logger.Error("explain error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapEngineError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastHandler) Recommend(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.ForecastLatency.WithLabelValues("recommend").Observe(time.Since(start).Seconds()) }()

	req := &models.SnapshotRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":recommend", 10, 5) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429))
	}

	// no caching here, each call publishes a fresh signal
	res, err := h.orch.Recommend(c.Request().Context(), req.Snapshot())
	if err != nil {
		metrics.ForecastErrors.WithLabelValues("recommend").Inc()
		h.logger.Error("recommend error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapEngineError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastHandler) Augment(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.ForecastLatency.WithLabelValues("augment").Observe(time.Since(start).Seconds()) }()

	req := &models.AugmentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":augment", 3, 1) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429))
	}

	if c.QueryParam("async") == "true" && h.jobs != nil {
		if err := h.jobs.PublishMessage(c.Request().Context(), usecase.MsgAugment, req); err != nil {
			h.logger.Error("augment enqueue error", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.InternalError("enqueue failed"))
		}
		return xhttp.CreatedResponse(c, map[string]string{"status": "queued"})
	}

	res, err := h.orch.Augment(c.Request().Context(), *req)
	if err != nil {
		metrics.ForecastErrors.WithLabelValues("augment").Inc()
		h.logger.Error("augment error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapEngineError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastHandler) TransferLearn(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.ForecastLatency.WithLabelValues("transfer_learn").Observe(time.Since(start).Seconds())
	}()

	req := &models.TransferLearnRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":transfer", 2, 0.5) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429))
	}

	if c.QueryParam("async") == "true" && h.jobs != nil {
		if err := h.jobs.PublishMessage(c.Request().Context(), usecase.MsgTransferLearn, req); err != nil {
			h.logger.Error("transfer-learn enqueue error", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.InternalError("enqueue failed"))
		}
		return xhttp.CreatedResponse(c, map[string]string{"status": "queued"})
	}

	res, err := h.orch.TransferLearn(c.Request().Context(), *req)
	if err != nil {
		metrics.ForecastErrors.WithLabelValues("transfer_learn").Inc()
		h.logger.Error("transfer-learn error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapEngineError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastHandler) Status(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.orch.Status())
}

func (h *ForecastHandler) History(c echo.Context) error {
	if h.history == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("history store not configured"))
	}
	securityID := c.QueryParam("security_id")
	to := xhttp.ParseTimeDefault(c.QueryParam("to"), time.Now())
	from := xhttp.ParseTimeDefault(c.QueryParam("from"), to.AddDate(0, -1, 0))
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 0)

	res, err := h.history.GetHistory(c.Request().Context(), usecase.GetHistoryParams{
		SecurityID: securityID,
		From:       from,
		To:         to,
		Limit:      limit,
	})
	if err != nil {
		h.logger.Error("history error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	return xhttp.SuccessResponse(c, res)
}

// mapEngineError converts engine sentinels into client-facing errors.
func mapEngineError(err error) error {
	switch {
	case errors.Is(err, forecast.ErrInvalidHorizon):
		return xhttp.BadRequestError("horizon must be between 1 and 5 days").WithError(err)
	case errors.Is(err, forecast.ErrInsufficientHistory):
		return xhttp.BadRequestError("not enough price history to fit the model").WithError(err)
	case errors.Is(err, forecast.ErrNotFitted):
		return xhttp.BadRequestError("model is not fitted yet").WithError(err)
	default:
		return err
	}
}
