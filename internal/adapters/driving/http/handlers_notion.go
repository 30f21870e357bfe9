package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/custodia-labs/cloud-integration/internal/core/domain"
	"github.com/custodia-labs/cloud-integration/internal/core/ports/driving"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temp file.
const multipartMemory = 8 << 20

// ViewURLResponse carries a browser URL for a stored file.
// @Description Browser URL for a stored file
type ViewURLResponse struct {
	ViewURL string `json:"viewUrl" example:"https://notion.so/mock/123"`
}

// OAuth endpoints

// handleNotionAuth godoc
// @Summary      Start Notion authorization
// @Description  Returns the Notion consent URL for the user and binds the pending attempt to the browser session
// @Tags         Notion OAuth
// @Produce      json
// @Param        userId  query     string  true  "User ID"
// @Success      200     {object}  driving.AuthorizeResponse
// @Failure      400     {object}  ErrorResponse
// @Router       /api/v1/cloud/notion/auth [get]
func (s *Server) handleNotionAuth(w http.ResponseWriter, r *http.Request) {
	resp, err := s.oauthService.Authorize(r.Context(), GetSessionID(r.Context()), r.URL.Query().Get("userId"))
	if err != nil {
		s.logger.Warn("authorization start failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleNotionCallback godoc
// @Summary      Notion OAuth callback
// @Description  Completes the authorization started in the same browser session and redirects to the configured success or failure URL
// @Tags         Notion OAuth
// @Param        code   query  string  false  "Authorization code"
// @Param        state  query  string  false  "State issued by the auth endpoint"
// @Param        error  query  string  false  "Error returned by Notion"
// @Success      302
// @Router       /api/v1/cloud/notion/callback [get]
func (s *Server) handleNotionCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := driving.CallbackRequest{
		Code:             query.Get("code"),
		State:            query.Get("state"),
		Error:            query.Get("error"),
		ErrorDescription: query.Get("error_description"),
	}

	resp, err := s.oauthService.Callback(r.Context(), GetSessionID(r.Context()), req)
	if err != nil {
		var oauthErr *domain.OAuthError
		switch {
		case errors.Is(err, domain.ErrCSRFMismatch):
			s.logger.Warn("oauth callback rejected", "reason", "state mismatch")
		case errors.As(err, &oauthErr):
			s.logger.Warn("oauth callback rejected", "reason", "provider error", "error", oauthErr.Code)
		default:
			s.logger.Error("oauth callback failed", "error", err)
		}
		http.Redirect(w, r, s.failureRedirect, http.StatusFound)
		return
	}

	http.Redirect(w, r, successURL(s.successRedirect, resp.WorkspaceName), http.StatusFound)
}

// successURL appends the workspace name as a query hint.
func successURL(base, workspace string) string {
	if workspace == "" {
		return base
	}
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("workspace", workspace)
	u.RawQuery = q.Encode()
	return u.String()
}

// handleNotionDisconnect godoc
// @Summary      Disconnect Notion
// @Description  Deactivates every active Notion credential the user holds
// @Tags         Notion OAuth
// @Accept       json
// @Produce      json
// @Param        request  body      driving.DisconnectRequest  true  "User to disconnect"
// @Success      200      {object}  MessageResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /api/v1/cloud/notion/disconnect [post]
func (s *Server) handleNotionDisconnect(w http.ResponseWriter, r *http.Request) {
	var req driving.DisconnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := s.oauthService.Disconnect(r.Context(), req.UserID); err != nil {
		if !errors.Is(err, domain.ErrInvalidInput) {
			s.logger.Error("disconnect failed", "user_id", req.UserID, "error", err)
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Notion integration disconnected successfully"})
}

// handleNotionCheckAuth godoc
// @Summary      Check Notion connection
// @Description  Reports whether the user holds an active Notion credential
// @Tags         Notion OAuth
// @Produce      json
// @Param        userId  query     string  true  "User ID"
// @Success      200     {object}  driving.CheckAuthResponse
// @Failure      400     {object}  ErrorResponse
// @Router       /api/v1/cloud/notion/check-auth [get]
func (s *Server) handleNotionCheckAuth(w http.ResponseWriter, r *http.Request) {
	authenticated, err := s.oauthService.CheckAuth(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, driving.CheckAuthResponse{
		Authenticated: authenticated,
		Provider:      string(domain.ProviderNotion),
	})
}

// Page endpoints

// handleCreatePage godoc
// @Summary      Create a page
// @Description  Creates a child page under parentId using the user's stored token
// @Tags         Notion Pages
// @Accept       json
// @Produce      json
// @Param        userId    query     string                      true  "User ID"
// @Param        parentId  query     string                      true  "Parent page ID"
// @Param        request   body      driving.CreatePageRequest   true  "Page title and content"
// @Success      200       {object}  driving.CreatePageResponse
// @Failure      400       {object}  ErrorResponse
// @Router       /api/v1/cloud/notion/pages [post]
func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	var req driving.CreatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.UserID = r.URL.Query().Get("userId")
	req.ParentID = r.URL.Query().Get("parentId")

	resp, err := s.notionService.CreatePage(r.Context(), req)
	if err != nil {
		s.writeProxyError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleNotionNested routes the two-segment GET paths under the Notion
// prefix, which share a shape: pages/{pageId} and {fileId}/view.
func (s *Server) handleNotionNested(w http.ResponseWriter, r *http.Request) {
	first, second := r.PathValue("first"), r.PathValue("second")
	switch {
	case first == "pages":
		r.SetPathValue("pageId", second)
		s.handleGetPage(w, r)
	case second == "view":
		r.SetPathValue("fileId", first)
		s.handleFileViewURL(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// handleGetPage godoc
// @Summary      Get a page
// @Description  Returns the raw Notion page object
// @Tags         Notion Pages
// @Produce      json
// @Param        pageId  path      string  true  "Page ID"
// @Param        userId  query     string  true  "User ID"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  ErrorResponse
// @Router       /api/v1/cloud/notion/pages/{pageId} [get]
func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	page, err := s.notionService.GetPage(r.Context(), r.URL.Query().Get("userId"), r.PathValue("pageId"))
	if err != nil {
		s.writeProxyError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// handleListPages godoc
// @Summary      List pages
// @Description  Returns the raw Notion search result filtered to pages
// @Tags         Notion Pages
// @Produce      json
// @Param        userId  query     string  true  "User ID"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  ErrorResponse
// @Router       /api/v1/cloud/notion/pages [get]
func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	result, err := s.notionService.ListPages(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		s.writeProxyError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleNotionStatus godoc
// @Summary      Connection status
// @Description  Reports whether the user's stored token is still accepted by Notion
// @Tags         Notion Pages
// @Produce      json
// @Param        userId  query     string  true  "User ID"
// @Success      200     {object}  driving.StatusResponse
// @Failure      400     {object}  ErrorResponse
// @Router       /api/v1/cloud/notion/status [get]
func (s *Server) handleNotionStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.notionService.Status(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		s.writeProxyError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// File endpoints

// handleUploadFile godoc
// @Summary      Upload a file
// @Description  Stores a file with the provider. Not supported by the real Notion client.
// @Tags         Notion Files
// @Accept       multipart/form-data
// @Produce      json
// @Param        userId  query     string  true  "User ID"
// @Param        file    formData  file    true  "File to upload"
// @Success      200     {object}  driving.FileResponse
// @Failure      400     {object}  ErrorResponse
// @Failure      413     {object}  ErrorResponse
// @Failure      501     {object}  ErrorResponse
// @Router       /api/v1/cloud/notion/upload [post]
func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	req, cleanup, ok := s.readFileRequest(w, r)
	if !ok {
		return
	}
	defer cleanup()

	resp, err := s.notionService.UploadFile(r.Context(), req)
	if err != nil {
		s.writeProxyError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleFileViewURL godoc
// @Summary      File view URL
// @Description  Returns a browser URL for a stored file
// @Tags         Notion Files
// @Produce      json
// @Param        fileId  path      string  true  "File ID"
// @Param        userId  query     string  true  "User ID"
// @Success      200     {object}  ViewURLResponse
// @Failure      400     {object}  ErrorResponse
// @Failure      501     {object}  ErrorResponse
// @Router       /api/v1/cloud/notion/{fileId}/view [get]
func (s *Server) handleFileViewURL(w http.ResponseWriter, r *http.Request) {
	viewURL, err := s.notionService.FileViewURL(r.Context(), r.URL.Query().Get("userId"), r.PathValue("fileId"))
	if err != nil {
		s.writeProxyError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ViewURLResponse{ViewURL: viewURL})
}

// handleDeleteFile godoc
// @Summary      Delete a file
// @Tags         Notion Files
// @Produce      json
// @Param        fileId  path      string  true  "File ID"
// @Param        userId  query     string  true  "User ID"
// @Success      200     {object}  MessageResponse
// @Failure      400     {object}  ErrorResponse
// @Failure      501     {object}  ErrorResponse
// @Router       /api/v1/cloud/notion/{fileId} [delete]
func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := s.notionService.DeleteFile(r.Context(), r.URL.Query().Get("userId"), r.PathValue("fileId")); err != nil {
		s.writeProxyError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "File deleted successfully"})
}

// handleUpdateFile godoc
// @Summary      Replace a file
// @Tags         Notion Files
// @Accept       multipart/form-data
// @Produce      json
// @Param        fileId  path      string  true  "File ID"
// @Param        userId  query     string  true  "User ID"
// @Param        file    formData  file    true  "Replacement file"
// @Success      200     {object}  driving.FileResponse
// @Failure      400     {object}  ErrorResponse
// @Failure      413     {object}  ErrorResponse
// @Failure      501     {object}  ErrorResponse
// @Router       /api/v1/cloud/notion/{fileId} [put]
func (s *Server) handleUpdateFile(w http.ResponseWriter, r *http.Request) {
	req, cleanup, ok := s.readFileRequest(w, r)
	if !ok {
		return
	}
	defer cleanup()

	resp, err := s.notionService.UpdateFile(r.Context(), r.PathValue("fileId"), req)
	if err != nil {
		s.writeProxyError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// readFileRequest parses the multipart "file" field, bounded by the
// configured upload limit. It writes the error response itself and
// reports ok=false when the request cannot proceed.
func (s *Server) readFileRequest(w http.ResponseWriter, r *http.Request) (driving.FileRequest, func(), bool) {
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file exceeds upload limit")
			return driving.FileRequest{}, nil, false
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return driving.FileRequest{}, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		_ = r.MultipartForm.RemoveAll()
		writeError(w, http.StatusBadRequest, "file is required")
		return driving.FileRequest{}, nil, false
	}

	cleanup := func() {
		_ = file.Close()
		_ = r.MultipartForm.RemoveAll()
	}

	return driving.FileRequest{
		UserID:   r.URL.Query().Get("userId"),
		Reader:   file,
		FileName: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
	}, cleanup, true
}
