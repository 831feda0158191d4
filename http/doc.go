// Package http provides the HTTP surface of the locker server.
//
// # Routes
//
//	POST /login                 {username, password}  -> token
//	POST /put                   {key, content}        -> {etag}
//	POST /get                   {key}                 -> {etag, content}
//	POST /delete                {key}                 -> no data
//	POST /getEtag               {key}                 -> {etag} or no data
//	POST /uploadImage/{prefix}  multipart "file"      -> {objectKey}
//	GET  /image/{objectKey}     raw image bytes
//
// Every JSON response uses the same envelope:
//
//	{"code": 200, "data": ...}
//	{"code": 404, "message": "not found"}
//
// The HTTP status always equals code.
//
// # Authentication
//
// AuthMiddleware guards every route except /login and /image/*. It expects
// a bearer token issued by /login and binds the resolved user to the
// request context with locker.WithIdentity:
//
//	r.Use(http.AuthMiddleware(authenticator))
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{MaxUploadSize: 10 << 20}
//	handler := http.NewHandler(&handlerCfg, authenticator, service)
//	srv := &nethttp.Server{Addr: ":5708", Handler: handler.Router()}
//
// # Middleware
//
// Router installs chi's RequestID, RequestLog and Recover on every route,
// plus CORS when enabled in HandlerConfig.
package http
