package handlers

import (
	"encoding/json"
	"net/http"
)

type CollaborationHandler struct{}

func NewCollaborationHandler() *CollaborationHandler {
	return &CollaborationHandler{}
}

func (h *CollaborationHandler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"workspace_id": "ws-123", "status": "created"})
}

func (h *CollaborationHandler) SharePatent(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"share_id": "sh-456", "status": "shared"})
}

//Personal.AI order the ending
