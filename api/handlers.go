package api

import (
	"errors"
	"net/http"

	"github.com/HamzaTakiX/Blockchain-project/artifact"
	"github.com/HamzaTakiX/Blockchain-project/model"

	"github.com/labstack/echo/v4"
)

type verifyResponse struct {
	Address    string `json:"address"`
	Registered bool   `json:"registered"`
	Valid      bool   `json:"valid"`
}

type statsResponse struct {
	TotalIssued int `json:"totalIssued"`
}

type adminResponse struct {
	AdminAddress string `json:"adminAddress"`
}

type artifactResponse struct {
	ContentID artifact.ContentID `json:"contentId"`
	Locator   artifact.Locator   `json:"locator"`
}

type listResponse struct {
	Addresses []string `json:"addresses"`
	Count     int      `json:"count"`
}

func (s *Server) handleHealth(e echo.Context) error {
	return e.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}

func (s *Server) handleGetDiploma(e echo.Context) error {
	view, err := s.registry.GetDiplomaWithMetadata(e.Request().Context(), e.Param("address"))
	if err != nil {
		return registryError(e, err)
	}
	return e.JSON(http.StatusOK, view)
}

// handleVerifyDiploma reports registration and validity separately; a
// revoked diploma is registered but not valid.
func (s *Server) handleVerifyDiploma(e echo.Context) error {
	ctx := e.Request().Context()
	addr, err := model.NormalizeAddress(e.Param("address"))
	if err != nil {
		return registryError(e, err)
	}

	resp := verifyResponse{Address: addr}
	resp.Registered, err = s.registry.Verify(ctx, addr)
	if err != nil {
		return registryError(e, err)
	}
	if resp.Registered {
		record, err := s.registry.GetDiploma(ctx, addr)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return registryError(e, err)
		}
		resp.Valid = record != nil && record.IsValid
	}
	return e.JSON(http.StatusOK, resp)
}

func (s *Server) handleListDiplomas(e echo.Context) error {
	addrs, err := s.registry.StudentAddresses(e.Request().Context())
	if err != nil {
		return registryError(e, err)
	}
	return e.JSON(http.StatusOK, listResponse{Addresses: addrs, Count: len(addrs)})
}

func (s *Server) handleStats(e echo.Context) error {
	total, err := s.registry.TotalIssued(e.Request().Context())
	if err != nil {
		return registryError(e, err)
	}
	return e.JSON(http.StatusOK, statsResponse{TotalIssued: total})
}

func (s *Server) handleAdmin(e echo.Context) error {
	admin, err := s.registry.Admin(e.Request().Context())
	if err != nil {
		return registryError(e, err)
	}
	return e.JSON(http.StatusOK, adminResponse{AdminAddress: admin})
}

func (s *Server) handleResolveArtifact(e echo.Context) error {
	id, err := artifact.ParseID(e.Param("cid"))
	if err != nil {
		return registryError(e, err)
	}
	return e.JSON(http.StatusOK, artifactResponse{ContentID: id, Locator: s.registry.Gateway().Resolve(id)})
}
