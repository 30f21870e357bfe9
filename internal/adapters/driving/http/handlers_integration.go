package http

import (
	"encoding/json"
	"net/http"

	"github.com/custodia-labs/cloud-integration/internal/core/ports/driving"
)

// Stored credential endpoints

// handleCreateIntegration godoc
// @Summary      Create integration
// @Description  Stores a credential for a user and provider directly
// @Tags         Integrations
// @Accept       json
// @Produce      json
// @Param        request  body      driving.CreateIntegrationRequest  true  "Integration to store"
// @Success      201      {object}  domain.IntegrationSummary
// @Failure      400      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Router       /api/v1/cloud [post]
func (s *Server) handleCreateIntegration(w http.ResponseWriter, r *http.Request) {
	var req driving.CreateIntegrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	integration, err := s.integrationService.Create(r.Context(), req)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, integration)
}

// handleGetIntegration godoc
// @Summary      Get integration
// @Tags         Integrations
// @Produce      json
// @Param        id   path      string  true  "Integration ID"
// @Success      200  {object}  domain.IntegrationSummary
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/cloud/{id} [get]
func (s *Server) handleGetIntegration(w http.ResponseWriter, r *http.Request) {
	integration, err := s.integrationService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, integration)
}

// handleListUserIntegrations godoc
// @Summary      List a user's integrations
// @Tags         Integrations
// @Produce      json
// @Param        userId  path      string  true  "User ID"
// @Success      200     {array}   domain.IntegrationSummary
// @Failure      400     {object}  ErrorResponse
// @Router       /api/v1/cloud/user/{userId} [get]
func (s *Server) handleListUserIntegrations(w http.ResponseWriter, r *http.Request) {
	integrations, err := s.integrationService.ListByUser(r.Context(), r.PathValue("userId"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, integrations)
}

// handleUpdateIntegration godoc
// @Summary      Update integration
// @Description  Replaces the credential and/or the active flag
// @Tags         Integrations
// @Accept       json
// @Produce      json
// @Param        id       path      string                            true  "Integration ID"
// @Param        request  body      driving.UpdateIntegrationRequest  true  "Fields to change"
// @Success      200      {object}  domain.IntegrationSummary
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /api/v1/cloud/{id} [put]
func (s *Server) handleUpdateIntegration(w http.ResponseWriter, r *http.Request) {
	var req driving.UpdateIntegrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	integration, err := s.integrationService.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, integration)
}

// handleDeleteIntegration godoc
// @Summary      Delete integration
// @Tags         Integrations
// @Param        id  path  string  true  "Integration ID"
// @Success      204
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/cloud/{id} [delete]
func (s *Server) handleDeleteIntegration(w http.ResponseWriter, r *http.Request) {
	if err := s.integrationService.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
