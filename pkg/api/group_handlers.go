package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gavel-oj/gavel/pkg/errs"
	"github.com/gavel-oj/gavel/pkg/groups"
	"github.com/gavel-oj/gavel/pkg/httputil"
	"github.com/gavel-oj/gavel/pkg/middleware"
	"github.com/gavel-oj/gavel/pkg/users"
)

// GroupHandlers provides user group management
type GroupHandlers struct {
	groups *groups.PostgresService
}

// NewGroupHandlers creates new group handlers
func NewGroupHandlers(groupService *groups.PostgresService) *GroupHandlers {
	return &GroupHandlers{groups: groupService}
}

// RegisterRoutes registers group routes
func (h *GroupHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/userGroup/getByUUID/{uuid}", h.getByUUID).Methods("GET")
	router.HandleFunc("/userGroup/getByName/{name}", h.getByName).Methods("GET")
	router.HandleFunc("/userGroup/create", h.create).Methods("POST")
	router.HandleFunc("/userGroup/delete", h.delete).Methods("POST")
	router.HandleFunc("/userGroup/addUser", h.addUser).Methods("POST")
	router.HandleFunc("/userGroup/delUser", h.delUser).Methods("POST")
}

// requireManageUsers gates the mutating group operations
func requireManageUsers(r *http.Request) error {
	user := middleware.GetUser(r)
	if user == nil {
		return errs.NewAuth(errs.NotLoggedIn)
	}
	if !user.HasPrivilege(users.PrivilegeManageUsers) {
		return errs.NewAuth(errs.PermissionDenied)
	}
	return nil
}

// getByUUID handles GET /userGroup/getByUUID/{uuid}
func (h *GroupHandlers) getByUUID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(httputil.PathVar(r, "uuid"))
	if err != nil {
		httputil.WriteInvalidURL(w)
		return
	}

	group, err := h.groups.FindByUUID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteResult(w, group)
}

// getByName handles GET /userGroup/getByName/{name}
func (h *GroupHandlers) getByName(w http.ResponseWriter, r *http.Request) {
	name := httputil.PathVar(r, "name")
	if !groups.IsValidName(name) {
		httputil.WriteInvalidURL(w)
		return
	}

	group, err := h.groups.FindByName(r.Context(), name)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteResult(w, group)
}

type createGroupRequest struct {
	Name string `json:"name"`
}

// create handles POST /userGroup/create
func (h *GroupHandlers) create(w http.ResponseWriter, r *http.Request) {
	if err := requireManageUsers(r); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	var req createGroupRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	group, err := h.groups.CreateGroup(r.Context(), req.Name)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteResult(w, group)
}

type deleteGroupRequest struct {
	UUID uuid.UUID `json:"uuid"`
}

// delete handles POST /userGroup/delete
func (h *GroupHandlers) delete(w http.ResponseWriter, r *http.Request) {
	if err := requireManageUsers(r); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	var req deleteGroupRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if err := h.groups.DeleteGroup(r.Context(), req.UUID); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteOK(w)
}

type membershipRequest struct {
	UserUUID  uuid.UUID `json:"userUUID"`
	GroupUUID uuid.UUID `json:"groupUUID"`
}

type membershipResult struct {
	Changed bool `json:"changed"`
}

// addUser handles POST /userGroup/addUser
func (h *GroupHandlers) addUser(w http.ResponseWriter, r *http.Request) {
	if err := requireManageUsers(r); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	var req membershipRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	joined, err := h.groups.Join(r.Context(), req.UserUUID, req.GroupUUID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteResult(w, membershipResult{Changed: joined})
}

// delUser handles POST /userGroup/delUser
func (h *GroupHandlers) delUser(w http.ResponseWriter, r *http.Request) {
	if err := requireManageUsers(r); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	var req membershipRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	left, err := h.groups.Leave(r.Context(), req.UserUUID, req.GroupUUID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteResult(w, membershipResult{Changed: left})
}
