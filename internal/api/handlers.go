package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"timemate/internal/core/presets"
)

func (srv *Server) handleGet(c echo.Context) error {
	return c.JSON(http.StatusOK, srv.timer.Get())
}

func (srv *Server) handleSetInput(c echo.Context) error {
	var payload InputRequest
	if err := c.Bind(&payload); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, srv.timer.SetInput(payload.Input))
}

func (srv *Server) handleStart(c echo.Context) error {
	return c.JSON(http.StatusOK, srv.timer.Start())
}

func (srv *Server) handlePause(c echo.Context) error {
	return c.JSON(http.StatusOK, srv.timer.Pause())
}

func (srv *Server) handleReset(c echo.Context) error {
	return c.JSON(http.StatusOK, srv.timer.Reset())
}

func (srv *Server) handleMessage(c echo.Context) error {
	var msg Message
	if err := c.Bind(&msg); err != nil {
		return err
	}

	switch msg.Type {
	case MessageGet, MessageGetTimer:
		return c.JSON(http.StatusOK, srv.timer.Get())
	case MessageSetInput:
		return c.JSON(http.StatusOK, srv.timer.SetInput(msg.Input))
	case MessageStart:
		return c.JSON(http.StatusOK, srv.timer.Start())
	case MessagePause:
		return c.JSON(http.StatusOK, srv.timer.Pause())
	case MessageReset:
		return c.JSON(http.StatusOK, srv.timer.Reset())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown message type")
	}
}

func (srv *Server) handleListPresets(c echo.Context) error {
	list, err := srv.presets.List(c.Request().Context())
	if err != nil {
		srv.logger.Error("failed to list presets", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, list)
}

func (srv *Server) handleAddPreset(c echo.Context) error {
	var payload PresetRequest
	if err := c.Bind(&payload); err != nil {
		return err
	}

	preset, err := srv.presets.Add(c.Request().Context(), payload.Name, payload.Duration, payload.Color)
	if err != nil {
		return srv.presetError(err)
	}
	srv.logger.Info("added preset", "id", preset.ID, "name", preset.Name)
	return c.JSON(http.StatusCreated, preset)
}

func (srv *Server) handleRemovePreset(c echo.Context) error {
	id := c.Param("id")
	if err := srv.presets.Remove(c.Request().Context(), id); err != nil {
		return srv.presetError(err)
	}
	srv.logger.Info("removed preset", "id", id)
	return c.NoContent(http.StatusNoContent)
}

func (srv *Server) handleApplyPreset(c echo.Context) error {
	preset, err := srv.presets.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return srv.presetError(err)
	}
	return c.JSON(http.StatusOK, srv.timer.SetInput(preset.Duration))
}

func (srv *Server) presetError(err error) error {
	switch {
	case errors.Is(err, presets.ErrInvalidPreset):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, presets.ErrPresetNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "preset not found")
	default:
		srv.logger.Error("preset storage failure", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
}
