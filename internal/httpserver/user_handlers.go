package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"devconnect/internal/service"
)

func handleGetProfile(userSvc *service.UserService, profileSvc *service.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		writeProfile(w, r, userSvc, profileSvc, user.ID)
	}
}

func handleGetUser(userSvc *service.UserService, profileSvc *service.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
			return
		}
		writeProfile(w, r, userSvc, profileSvc, id)
	}
}

func writeProfile(w http.ResponseWriter, r *http.Request, userSvc *service.UserService, profileSvc *service.ProfileService, userID int64) {
	user, err := userSvc.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	skills, err := profileSvc.ListSkills(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	projects, err := profileSvc.ListProjects(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":     user,
		"skills":   skills,
		"projects": projects,
	})
}

func handleDeactivate(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if err := userSvc.Deactivate(r.Context(), user.ID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleUpdateProfile(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)

		var in service.UpdateProfileInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		updated, err := userSvc.UpdateProfile(r.Context(), user.ID, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}
