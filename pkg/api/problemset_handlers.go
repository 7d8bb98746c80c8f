package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gavel-oj/gavel/pkg/config"
	"github.com/gavel-oj/gavel/pkg/errs"
	"github.com/gavel-oj/gavel/pkg/httputil"
	"github.com/gavel-oj/gavel/pkg/middleware"
	"github.com/gavel-oj/gavel/pkg/observability"
	"github.com/gavel-oj/gavel/pkg/permission"
	"github.com/gavel-oj/gavel/pkg/problemsets"
	"github.com/gavel-oj/gavel/pkg/users"
)

// ProblemSetHandlers provides problem set management
type ProblemSetHandlers struct {
	problemSets *problemsets.PostgresService
	resolver    permission.Resolver
	limits      config.LimitsConfig
	metrics     *observability.Metrics
}

// NewProblemSetHandlers creates new problem set handlers
func NewProblemSetHandlers(setService *problemsets.PostgresService, resolver permission.Resolver, limits config.LimitsConfig, metrics *observability.Metrics) *ProblemSetHandlers {
	return &ProblemSetHandlers{
		problemSets: setService,
		resolver:    resolver,
		limits:      limits,
		metrics:     metrics,
	}
}

// RegisterRoutes registers problem set routes
func (h *ProblemSetHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/problemSet/getByUUID/{uuid}", h.getByUUID).Methods("GET")
	router.HandleFunc("/problemSet/getByUrlName/{urlName}", h.getByUrlName).Methods("GET")
	router.HandleFunc("/problemSet/getByOwnUser/{userUUID}", h.getByOwnUser).Methods("GET")
	router.HandleFunc("/problemSet/create", h.create).Methods("POST")
	router.HandleFunc("/problemSet/delete", h.delete).Methods("POST")
	router.HandleFunc("/problemSet/updatePermissionControl", h.updatePermissionControl).Methods("POST")
}

// problemSetView is the external form of a problem set. The permission
// controls are only populated for problem managers.
type problemSetView struct {
	UUID              uuid.UUID             `json:"uuid"`
	ProblemCount      int                   `json:"problemCount"`
	Name              string                `json:"name,omitempty"`
	UrlName           string                `json:"urlName,omitempty"`
	OwnUser           *uuid.UUID            `json:"ownUser,omitempty"`
	PermissionControl *problemsets.WirePair `json:"permissionControl,omitempty"`
}

// canList reports whether the requester may see the set at all
func (h *ProblemSetHandlers) canList(user *users.User, set *problemsets.ProblemSet) bool {
	var allowed bool
	if set.IsPrivate() {
		allowed = (user != nil && user.UUID == set.OwnUser) || users.CheckPrivilege(user, users.PrivilegeManageProblems)
	} else {
		allowed = users.CheckPermission(user, set.PermissionControl.List, users.PrivilegeManageProblems)
	}
	h.metrics.ObservePermissionCheck(allowed)
	return allowed
}

// canAdminister reports whether the requester may delete the set or rewrite
// its permission controls. The modify allow-list only gates adding problems
// to a set; administration takes the ManageProblems privilege, or ownership
// for a private set.
func (h *ProblemSetHandlers) canAdminister(user *users.User, set *problemsets.ProblemSet) bool {
	allowed := users.CheckPrivilege(user, users.PrivilegeManageProblems)
	if !allowed && set.IsPrivate() {
		allowed = user != nil && user.UUID == set.OwnUser
	}
	h.metrics.ObservePermissionCheck(allowed)
	return allowed
}

func (h *ProblemSetHandlers) view(user *users.User, set *problemsets.ProblemSet) *problemSetView {
	v := &problemSetView{
		UUID:         set.UUID,
		ProblemCount: set.ProblemCount,
		Name:         set.Name,
		UrlName:      set.UrlName,
	}
	if set.IsPrivate() {
		ownUser := set.OwnUser
		v.OwnUser = &ownUser
	}
	if users.CheckPrivilege(user, users.PrivilegeManageProblems) {
		v.PermissionControl = problemsets.ToWirePair(set.PermissionControl)
	}
	return v
}

func (h *ProblemSetHandlers) respondWithSet(w http.ResponseWriter, r *http.Request, set *problemsets.ProblemSet) {
	user := middleware.GetUser(r)
	if !h.canList(user, set) {
		httputil.WriteError(w, r, errs.NewAuth(errs.PermissionDenied))
		return
	}
	httputil.WriteResult(w, h.view(user, set))
}

// getByUUID handles GET /problemSet/getByUUID/{uuid}
func (h *ProblemSetHandlers) getByUUID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(httputil.PathVar(r, "uuid"))
	if err != nil {
		httputil.WriteInvalidURL(w)
		return
	}

	set, err := h.problemSets.FindByUUID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.respondWithSet(w, r, set)
}

// getByUrlName handles GET /problemSet/getByUrlName/{urlName}
func (h *ProblemSetHandlers) getByUrlName(w http.ResponseWriter, r *http.Request) {
	urlName := httputil.PathVar(r, "urlName")
	if !problemsets.IsValidUrlName(urlName) {
		httputil.WriteInvalidURL(w)
		return
	}

	set, err := h.problemSets.FindByUrlName(r.Context(), urlName)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	h.respondWithSet(w, r, set)
}

// getByOwnUser handles GET /problemSet/getByOwnUser/{userUUID}
func (h *ProblemSetHandlers) getByOwnUser(w http.ResponseWriter, r *http.Request) {
	ownUser, err := uuid.Parse(httputil.PathVar(r, "userUUID"))
	if err != nil {
		httputil.WriteInvalidURL(w)
		return
	}

	user := middleware.GetUser(r)
	if user == nil {
		httputil.WriteError(w, r, errs.NewAuth(errs.NotLoggedIn))
		return
	}
	if user.UUID != ownUser && !user.HasPrivilege(users.PrivilegeManageProblems) {
		httputil.WriteError(w, r, errs.NewAuth(errs.PermissionDenied))
		return
	}

	set, err := h.problemSets.FindByOwnUser(r.Context(), ownUser)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteResult(w, h.view(user, set))
}

type createSetRequest struct {
	Name    string `json:"name"`
	UrlName string `json:"urlName"`
}

// create handles POST /problemSet/create
func (h *ProblemSetHandlers) create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		httputil.WriteError(w, r, errs.NewAuth(errs.NotLoggedIn))
		return
	}
	if !user.HasPrivilege(users.PrivilegeManageProblems) {
		httputil.WriteError(w, r, errs.NewAuth(errs.PermissionDenied))
		return
	}

	var req createSetRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	set, err := h.problemSets.CreateGlobal(r.Context(), req.Name, req.UrlName)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteResult(w, h.view(user, set))
}

type deleteSetRequest struct {
	UUID uuid.UUID `json:"uuid"`
}

// delete handles POST /problemSet/delete
func (h *ProblemSetHandlers) delete(w http.ResponseWriter, r *http.Request) {
	var req deleteSetRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	set, err := h.problemSets.FindByUUID(r.Context(), req.UUID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	user := middleware.GetUser(r)
	if user == nil {
		httputil.WriteError(w, r, errs.NewAuth(errs.NotLoggedIn))
		return
	}
	if !h.canAdminister(user, set) {
		httputil.WriteError(w, r, errs.NewAuth(errs.PermissionDenied))
		return
	}

	if err := h.problemSets.Delete(r.Context(), set); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteOK(w)
}

type updateSetPermissionControlRequest struct {
	UUID              uuid.UUID             `json:"uuid"`
	PermissionControl *problemsets.WirePair `json:"permissionControl"`
}

// updatePermissionControl handles POST /problemSet/updatePermissionControl
func (h *ProblemSetHandlers) updatePermissionControl(w http.ResponseWriter, r *http.Request) {
	var req updateSetPermissionControlRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	set, err := h.problemSets.FindByUUID(r.Context(), req.UUID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	user := middleware.GetUser(r)
	if user == nil {
		httputil.WriteError(w, r, errs.NewAuth(errs.NotLoggedIn))
		return
	}
	if !h.canAdminister(user, set) {
		httputil.WriteError(w, r, errs.NewAuth(errs.PermissionDenied))
		return
	}

	err = h.problemSets.UpdatePermissionControl(r.Context(), set, req.PermissionControl, h.resolver,
		h.limits.PermissionControlMaxUsers, h.limits.PermissionControlMaxGroups)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteResult(w, h.view(user, set))
}
