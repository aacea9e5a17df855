// Package api serves configuration derivation over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/samcharles93/aqt/internal/logger"
	"github.com/samcharles93/aqt/internal/version"
	"github.com/samcharles93/aqt/pkg/aqt"
)

// Server derives aqt configurations on request and keeps each result in a
// ConfigStore for later retrieval.
type Server struct {
	log   logger.Logger
	store *ConfigStore
	newID func() string
	clock func() time.Time
}

func NewServer(store *ConfigStore, log logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	if store == nil {
		store = NewConfigStore(0)
	}
	return &Server{
		log:   log,
		store: store,
		newID: newConfigID,
		clock: time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.POST("/v1/dot_general", s.handleDotGeneral)
	e.POST("/v1/dot_general_raw", s.handleDotGeneralRaw)
	e.POST("/v1/presets/fully_quantized", s.handleFullyQuantized)
	e.POST("/v1/presets/per_pass", s.handlePerPass)
	e.GET("/v1/configs/:id", s.handleGetConfig)
	e.DELETE("/v1/configs/:id", s.handleDeleteConfig)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, HealthResponse{Status: "ok", Version: version.String()})
}

func (s *Server) handleDotGeneral(c *echo.Context) error {
	req, err := decodeJSON[DotGeneralRequest](c.Request().Body)
	if err != nil {
		return writeError(c, err)
	}
	cfg, err := BuildDotGeneral(req)
	if err != nil {
		return s.fail(c, "dot_general", err)
	}
	return s.respond(c, "dot_general", cfg)
}

func (s *Server) handleDotGeneralRaw(c *echo.Context) error {
	req, err := decodeJSON[DotGeneralRawRequest](c.Request().Body)
	if err != nil {
		return writeError(c, err)
	}
	cfg, err := BuildDotGeneralRaw(req)
	if err != nil {
		return s.fail(c, "dot_general_raw", err)
	}
	return s.respond(c, "dot_general_raw", cfg)
}

func (s *Server) handleFullyQuantized(c *echo.Context) error {
	req, err := decodeJSON[FullyQuantizedRequest](c.Request().Body)
	if err != nil {
		return writeError(c, err)
	}
	cfg, err := BuildFullyQuantized(req)
	if err != nil {
		return s.fail(c, "dot_general", err)
	}
	return s.respond(c, "dot_general", cfg)
}

func (s *Server) handlePerPass(c *echo.Context) error {
	req, err := decodeJSON[PerPassRequest](c.Request().Body)
	if err != nil {
		return writeError(c, err)
	}
	cfg, err := BuildPerPass(req)
	if err != nil {
		return s.fail(c, "dot_general", err)
	}
	return s.respond(c, "dot_general", cfg)
}

func (s *Server) handleGetConfig(c *echo.Context) error {
	resp, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "config not found")
	}
	return writeJSON(c, http.StatusOK, resp)
}

func (s *Server) handleDeleteConfig(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "config not found")
	}
	s.log.Debug("deleted config", "id", id)
	return writeJSON(c, http.StatusOK, DeletedResponse{ID: id, Object: "config.deleted", Deleted: true})
}

func (s *Server) respond(c *echo.Context, object string, cfg any) error {
	resp := ConfigResponse{
		ID:      s.newID(),
		Object:  object,
		Created: s.clock().Unix(),
		Config:  cfg,
	}
	s.store.Put(resp)
	s.log.Info("derived config", "id", resp.ID, "object", object, "path", c.Request().URL.Path)
	return writeJSON(c, http.StatusOK, resp)
}

func (s *Server) fail(c *echo.Context, object string, err error) error {
	s.log.Warn("config rejected", "object", object, "path", c.Request().URL.Path, "error", err.Error())
	return writeError(c, err)
}

// BuildDotGeneral validates req and derives the configuration it describes.
func BuildDotGeneral(req DotGeneralRequest) (*aqt.DotGeneral, error) {
	if err := checkBits(
		namedBits{"lhs_bits", req.LHSBits},
		namedBits{"rhs_bits", req.RHSBits},
		namedBits{"bwd_bits", req.BwdBits},
	); err != nil {
		return nil, err
	}
	return aqt.NewDotGeneral(req.LHSBits, req.RHSBits, req.BwdBits, orDefault(req.UseFwdQuant, true))
}

// BuildDotGeneralRaw validates req and derives a single contraction.
func BuildDotGeneralRaw(req DotGeneralRawRequest) (*aqt.DotGeneralRaw, error) {
	if err := checkBits(namedBits{"lhs_bits", req.LHSBits}, namedBits{"rhs_bits", req.RHSBits}); err != nil {
		return nil, err
	}
	var opts []aqt.RawOption
	if req.LocalAqtShards != nil {
		opts = append(opts, aqt.WithLocalAqt(*req.LocalAqtShards))
	}
	if req.ConvSpatialDims != nil {
		return aqt.NewConvGeneralDilated(*req.ConvSpatialDims, req.LHSBits, req.RHSBits, opts...)
	}
	return aqt.NewDotGeneralRaw(req.LHSBits, req.RHSBits, opts...)
}

// BuildFullyQuantized applies req on top of the preset defaults.
func BuildFullyQuantized(req FullyQuantizedRequest) (*aqt.DotGeneral, error) {
	o := aqt.DefaultFullyQuantizedOptions()
	if err := checkBits(namedBits{"fwd_bits", req.FwdBits}, namedBits{"bwd_bits", req.BwdBits}); err != nil {
		return nil, err
	}
	if req.FwdBits != nil {
		o.FwdBits = req.FwdBits
	}
	if req.BwdBits != nil {
		o.BwdBits = req.BwdBits
	}
	o.UseFwdQuant = orDefault(req.UseFwdQuant, o.UseFwdQuant)
	o.UseStochasticRounding = orDefault(req.UseStochasticRounding, o.UseStochasticRounding)
	o.UseDummyStaticBound = req.UseDummyStaticBound
	return aqt.FullyQuantized(o)
}

// BuildPerPass validates req and derives a per-pass configuration.
func BuildPerPass(req PerPassRequest) (*aqt.DotGeneral, error) {
	o := aqt.PerPassOptions{
		FwdBits:     req.FwdBits,
		DLHSBits:    req.DLHSBits,
		DRHSBits:    req.DRHSBits,
		UseFwdQuant: req.UseFwdQuant,
	}
	if err := checkBits(
		namedBits{"fwd_bits", req.FwdBits},
		namedBits{"dlhs_bits", req.DLHSBits},
		namedBits{"drhs_bits", req.DRHSBits},
	); err != nil {
		return nil, err
	}
	rng, err := aqt.ParseRNGType(req.RNG)
	if err != nil {
		return nil, newInvalidRequest("rng_type", err.Error())
	}
	o.RNG = rng
	if req.DLHSLocalAqtShards != nil {
		o.DLHSLocalAqt = &aqt.LocalAqt{ContractionAxisShardCount: *req.DLHSLocalAqtShards}
	}
	if req.DRHSLocalAqtShards != nil {
		o.DRHSLocalAqt = &aqt.LocalAqt{ContractionAxisShardCount: *req.DRHSLocalAqtShards}
	}
	for _, acc := range []struct {
		param string
		name  string
		dst   *aqt.DType
	}{
		{"fwd_accumulator_dtype", req.FwdAccumulatorDType, &o.FwdAccumulatorDType},
		{"dlhs_accumulator_dtype", req.DLHSAccumulatorDType, &o.DLHSAccumulatorDType},
		{"drhs_accumulator_dtype", req.DRHSAccumulatorDType, &o.DRHSAccumulatorDType},
	} {
		if acc.name == "" {
			continue
		}
		d, err := aqt.ParseDType(acc.name)
		if err != nil {
			return nil, newInvalidRequest(acc.param, err.Error())
		}
		*acc.dst = d
	}
	return aqt.PerPass(o)
}
