// Package api provides the HTTP surface of the Gavel judge backend.
//
// # Overview
//
// The server wires gorilla/mux routes to the entity services. Every
// response uses the envelope {"success": true, "result": ...} or
// {"success": false, "error": {...}} where the error object carries a
// semantic kind (NotFoundError, DuplicateError, InvalidInputError,
// PermissionDeniedError, ...). Semantic failures are HTTP 200; only
// infrastructure failures surface as 500.
//
// Authentication is cookie based: the session middleware resolves the
// cookie to a user before handlers run, so handlers only ever look at the
// request context.
//
// # Routes
//
// Auth: POST /auth/register, /auth/login, /auth/logout.
// Users: GET /user/uuid/{uuid}, /user/userName/{userName}; POST
// /user/addPrivilege, /user/delPrivilege (both require ManageUsers).
// Groups: GET /userGroup/getByUUID/{uuid}, /userGroup/getByName/{name};
// POST /userGroup/create, /userGroup/delete, /userGroup/addUser,
// /userGroup/delUser (all four require the ManageUsers privilege).
// Problem sets: GET /problemSet/getByUUID/{uuid},
// /problemSet/getByUrlName/{urlName}, /problemSet/getByOwnUser/{userUUID};
// POST /problemSet/create, /problemSet/delete,
// /problemSet/updatePermissionControl.
// Problems: GET /problem/getByProblemSetAndID/{setUUID}/{id};
// POST /problem/create, /problem/updatePermissionControl.
// Operational: GET /healthz, GET /readyz, GET /metrics, and POST
// /test/dropDatabase when test mode is enabled.
package api
