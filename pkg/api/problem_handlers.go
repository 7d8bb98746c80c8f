package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gavel-oj/gavel/pkg/config"
	"github.com/gavel-oj/gavel/pkg/errs"
	"github.com/gavel-oj/gavel/pkg/httputil"
	"github.com/gavel-oj/gavel/pkg/middleware"
	"github.com/gavel-oj/gavel/pkg/observability"
	"github.com/gavel-oj/gavel/pkg/permission"
	"github.com/gavel-oj/gavel/pkg/problems"
	"github.com/gavel-oj/gavel/pkg/problemsets"
	"github.com/gavel-oj/gavel/pkg/users"
)

// ProblemHandlers provides problem management
type ProblemHandlers struct {
	problems    *problems.PostgresService
	problemSets *problemsets.PostgresService
	resolver    permission.Resolver
	limits      config.LimitsConfig
	metrics     *observability.Metrics
}

// NewProblemHandlers creates new problem handlers
func NewProblemHandlers(problemService *problems.PostgresService, setService *problemsets.PostgresService, resolver permission.Resolver, limits config.LimitsConfig, metrics *observability.Metrics) *ProblemHandlers {
	return &ProblemHandlers{
		problems:    problemService,
		problemSets: setService,
		resolver:    resolver,
		limits:      limits,
		metrics:     metrics,
	}
}

// RegisterRoutes registers problem routes
func (h *ProblemHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/problem/getByProblemSetAndID/{setUUID}/{id}", h.getByProblemSetAndID).Methods("GET")
	router.HandleFunc("/problem/create", h.create).Methods("POST")
	router.HandleFunc("/problem/updatePermissionControl", h.updatePermissionControl).Methods("POST")
}

// problemView is the external form of a problem. The permission controls
// are only populated for requesters who may modify the problem.
type problemView struct {
	UUID              uuid.UUID            `json:"uuid"`
	ID                int                  `json:"id"`
	Name              string               `json:"name"`
	ProblemSet        uuid.UUID            `json:"problemSet"`
	OwnUser           uuid.UUID            `json:"ownUser"`
	SubmitCount       int                  `json:"submitCount"`
	AcceptedCount     int                  `json:"acceptedCount"`
	Type              string               `json:"type"`
	PermissionControl *problems.WireTriple `json:"permissionControl,omitempty"`
}

// canModify reports whether the requester may change the problem. Owners
// always can.
func (h *ProblemHandlers) canModify(user *users.User, problem *problems.Problem) bool {
	allowed := user != nil && user.UUID == problem.OwnUser ||
		users.CheckPermission(user, problem.PermissionControl.Modify, users.PrivilegeManageProblems)
	h.metrics.ObservePermissionCheck(allowed)
	return allowed
}

// canView reports whether the requester may see the problem
func (h *ProblemHandlers) canView(user *users.User, problem *problems.Problem) bool {
	allowed := user != nil && user.UUID == problem.OwnUser ||
		users.CheckPermission(user, problem.PermissionControl.View, users.PrivilegeManageProblems)
	h.metrics.ObservePermissionCheck(allowed)
	return allowed
}

func (h *ProblemHandlers) view(user *users.User, problem *problems.Problem) *problemView {
	v := &problemView{
		UUID:          problem.UUID,
		ID:            problem.ID,
		Name:          problem.Name,
		ProblemSet:    problem.ProblemSet,
		OwnUser:       problem.OwnUser,
		SubmitCount:   problem.SubmitCount,
		AcceptedCount: problem.AcceptedCount,
		Type:          problem.Type,
	}
	if h.canModify(user, problem) {
		v.PermissionControl = problems.ToWireTriple(problem.PermissionControl)
	}
	return v
}

// getByProblemSetAndID handles GET /problem/getByProblemSetAndID/{setUUID}/{id}
func (h *ProblemHandlers) getByProblemSetAndID(w http.ResponseWriter, r *http.Request) {
	setUUID, err := uuid.Parse(httputil.PathVar(r, "setUUID"))
	if err != nil {
		httputil.WriteInvalidURL(w)
		return
	}
	id, err := strconv.Atoi(httputil.PathVar(r, "id"))
	if err != nil || id < 1 {
		httputil.WriteInvalidURL(w)
		return
	}

	problem, err := h.problems.FindByProblemSetAndID(r.Context(), setUUID, id)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	user := middleware.GetUser(r)
	if !h.canView(user, problem) {
		httputil.WriteError(w, r, errs.NewAuth(errs.PermissionDenied))
		return
	}
	httputil.WriteResult(w, h.view(user, problem))
}

type createProblemRequest struct {
	ProblemSet uuid.UUID `json:"problemSet"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
}

// create handles POST /problem/create. The problem lands in the caller's
// own set unless they may modify the target set.
func (h *ProblemHandlers) create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		httputil.WriteError(w, r, errs.NewAuth(errs.NotLoggedIn))
		return
	}

	var req createProblemRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	set, err := h.problemSets.FindByUUID(r.Context(), req.ProblemSet)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	var allowed bool
	if set.IsPrivate() {
		allowed = set.OwnUser == user.UUID || user.HasPrivilege(users.PrivilegeManageProblems)
	} else {
		allowed = users.CheckPermission(user, set.PermissionControl.Modify, users.PrivilegeManageProblems)
	}
	h.metrics.ObservePermissionCheck(allowed)
	if !allowed {
		httputil.WriteError(w, r, errs.NewAuth(errs.PermissionDenied))
		return
	}

	problem, err := h.problems.Create(r.Context(), set.UUID, user.UUID, req.Name, req.Type)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteResult(w, h.view(user, problem))
}

type updateProblemPermissionControlRequest struct {
	UUID              uuid.UUID            `json:"uuid"`
	PermissionControl *problems.WireTriple `json:"permissionControl"`
}

// updatePermissionControl handles POST /problem/updatePermissionControl
func (h *ProblemHandlers) updatePermissionControl(w http.ResponseWriter, r *http.Request) {
	var req updateProblemPermissionControlRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	problem, err := h.problems.FindByUUID(r.Context(), req.UUID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	user := middleware.GetUser(r)
	if user == nil {
		httputil.WriteError(w, r, errs.NewAuth(errs.NotLoggedIn))
		return
	}
	if !h.canModify(user, problem) {
		httputil.WriteError(w, r, errs.NewAuth(errs.PermissionDenied))
		return
	}

	err = h.problems.UpdatePermissionControl(r.Context(), problem, req.PermissionControl, h.resolver,
		h.limits.PermissionControlMaxUsers, h.limits.PermissionControlMaxGroups)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteResult(w, h.view(user, problem))
}
