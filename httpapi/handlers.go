package httpapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/waldmeta/mint/counter"
	"github.com/waldmeta/mint/health"
)

type resetRequest struct {
	Value string `json:"value"`
}

type entityInfo struct {
	Entity     string `json:"entity"`
	Prefix     string `json:"prefix"`
	CounterKey string `json:"counterKey"`
}

func registerMintHandlers(e *echo.Echo, s *Server) {
	e.POST("/entities/:entity", func(c echo.Context) error {
		id, err := s.minter.NewEntity(c.Request().Context(), c.Param("entity"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, id)
	})

	e.POST("/bnodes", func(c echo.Context) error {
		id, err := s.minter.BNode(c.Request().Context())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, id)
	})

	e.PUT("/entities/:entity/counter", func(c echo.Context) error {
		if !s.opts.AllowReset {
			return echo.NewHTTPError(http.StatusForbidden, "counter reset is disabled")
		}

		var req resetRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "request body must be {\"value\": \"<decimal>\"}")
		}

		entity := c.Param("entity")
		if err := s.minter.Reset(c.Request().Context(), entity, req.Value); err != nil {
			return err
		}
		s.logger.Warn("counter reset over http",
			"entity", entity,
			"value", req.Value,
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return c.NoContent(http.StatusNoContent)
	})

	e.GET("/entities", func(c echo.Context) error {
		cfg := s.minter.Config()
		var res []entityInfo
		for _, entity := range s.minter.Entities() {
			key, err := s.minter.CounterKey(entity)
			if err != nil {
				return err
			}
			res = append(res, entityInfo{Entity: entity, Prefix: cfg.Entities[entity], CounterKey: key})
		}
		return c.JSON(http.StatusOK, res)
	})

	e.GET("/codes/:code", func(c echo.Context) error {
		decoded, err := s.minter.Parse(c.Param("code"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, decoded)
	})
}

func registerStatusHandlers(e *echo.Echo, s *Server) {
	e.GET("/healthz", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), s.opts.HealthTimeout)
		defer cancel()

		pinger, _ := s.minter.Store().(counter.Pinger)
		status := health.StoreCheck(ctx, "counter", pinger, 0)

		code := http.StatusOK
		if status.IsUnhealthy() {
			code = http.StatusServiceUnavailable
		}
		return c.JSON(code, status)
	})
}
