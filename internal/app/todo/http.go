package todo

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

// Register mounts the todo routes on the shared router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/todos", h.handleList)
	r.Post("/api/todos", h.handleCreate)
	r.Get("/api/todos/{id}", h.handleGet)
	r.Put("/api/todos/{id}", h.handleUpdate)
	r.Delete("/api/todos/{id}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	todos, err := h.Service.List(r.Context())
	if err != nil {
		log.Printf("list todos: %v", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to fetch todos")
		return
	}
	h.writeJSON(w, http.StatusOK, todos)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := h.Service.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrIDRequired):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrTodoNotFound):
			h.writeError(w, http.StatusNotFound, "Todo not found")
		default:
			log.Printf("get todo %s: %v", id, err)
			h.writeError(w, http.StatusInternalServerError, "Failed to fetch todo")
		}
		return
	}
	h.writeJSON(w, http.StatusOK, t)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	created, err := h.Service.Create(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrTitleRequired),
			errors.Is(err, ErrDescriptionRequired),
			errors.Is(err, ErrIsActiveRequired):
			h.writeError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("create todo: %v", err)
			h.writeError(w, http.StatusInternalServerError, "Failed to create todo")
		}
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	updated, err := h.Service.Update(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrIDRequired):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrTodoNotFound):
			h.writeError(w, http.StatusNotFound, "Todo not found")
		default:
			log.Printf("update todo %s: %v", id, err)
			h.writeError(w, http.StatusInternalServerError, "Failed to update todo")
		}
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrIDRequired):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrTodoNotFound):
			h.writeError(w, http.StatusNotFound, "Todo not found")
		default:
			log.Printf("delete todo %s: %v", id, err)
			h.writeError(w, http.StatusInternalServerError, "Failed to delete todo")
		}
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Todo deleted successfully"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
