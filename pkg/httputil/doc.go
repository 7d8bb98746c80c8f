// Package httputil provides the response envelope and request helpers for
// the Gavel API.
//
// # Overview
//
// Every API response is wrapped in an envelope. Successful operations
// return {"success": true, "result": ...}; failures return
// {"success": false, "error": {...}} where the error object names a
// semantic kind. Semantic failures (not found, duplicate, invalid input,
// auth) keep HTTP 200 because the envelope already distinguishes them;
// infrastructure failures become an opaque 500.
//
// # Usage Example
//
//	var req createRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // error response already written
//	}
//	result, err := service.Create(r.Context(), req)
//	if err != nil {
//		httputil.WriteError(w, r, err)
//		return
//	}
//	httputil.WriteResult(w, result)
//
// # Related Packages
//
//   - pkg/errs: the semantic error kinds and their wire encoding
package httputil
