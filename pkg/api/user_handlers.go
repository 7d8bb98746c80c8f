package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gavel-oj/gavel/pkg/errs"
	"github.com/gavel-oj/gavel/pkg/httputil"
	"github.com/gavel-oj/gavel/pkg/users"
)

// UserHandlers provides user lookups
type UserHandlers struct {
	users *users.PostgresService
}

// NewUserHandlers creates new user handlers
func NewUserHandlers(userService *users.PostgresService) *UserHandlers {
	return &UserHandlers{users: userService}
}

// RegisterRoutes registers user routes
func (h *UserHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/user/uuid/{uuid}", h.getByUUID).Methods("GET")
	router.HandleFunc("/user/userName/{userName}", h.getByUserName).Methods("GET")
	router.HandleFunc("/user/addPrivilege", h.addPrivilege).Methods("POST")
	router.HandleFunc("/user/delPrivilege", h.delPrivilege).Methods("POST")
}

// getByUUID handles GET /user/uuid/{uuid}
func (h *UserHandlers) getByUUID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(httputil.PathVar(r, "uuid"))
	if err != nil {
		httputil.WriteInvalidURL(w)
		return
	}

	user, err := h.users.FindByUUID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteResult(w, user)
}

// getByUserName handles GET /user/userName/{userName}
func (h *UserHandlers) getByUserName(w http.ResponseWriter, r *http.Request) {
	userName := httputil.PathVar(r, "userName")
	if !users.IsValidUserName(userName) {
		httputil.WriteInvalidURL(w)
		return
	}

	user, err := h.users.FindByUserName(r.Context(), userName)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteResult(w, user)
}

type privilegeRequest struct {
	UserUUID  uuid.UUID `json:"userUUID"`
	Privilege string    `json:"privilege"`
}

type privilegeResult struct {
	Changed bool `json:"changed"`
}

// addPrivilege handles POST /user/addPrivilege
func (h *UserHandlers) addPrivilege(w http.ResponseWriter, r *http.Request) {
	h.mutatePrivilege(w, r, (*users.User).AddPrivilege)
}

// delPrivilege handles POST /user/delPrivilege
func (h *UserHandlers) delPrivilege(w http.ResponseWriter, r *http.Request) {
	h.mutatePrivilege(w, r, (*users.User).DelPrivilege)
}

func (h *UserHandlers) mutatePrivilege(w http.ResponseWriter, r *http.Request, apply func(*users.User, users.Privilege) bool) {
	if err := requireManageUsers(r); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	var req privilegeRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	priv, ok := users.ParsePrivilege(req.Privilege)
	if !ok {
		httputil.WriteError(w, r, errs.NewInvalidInput("privilege", req.Privilege))
		return
	}

	user, err := h.users.FindByUUID(r.Context(), req.UserUUID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	changed := apply(user, priv)
	if changed {
		if err := h.users.Save(r.Context(), user); err != nil {
			httputil.WriteError(w, r, err)
			return
		}
	}
	httputil.WriteResult(w, privilegeResult{Changed: changed})
}
