// Package server exposes the nexus core over HTTP using Gin, wrapped with
// h2c so HTTP/2 cleartext clients share the same port.
//
// Routes:
//
//	GET  /health              component health
//	GET  /version             build information
//	GET  /stats               manager, pipeline and stream handler counters
//	POST /pipelines/json      {"data": <any JSON>}
//	POST /pipelines/csv       {"data": "user,action,timestamp"}
//	POST /pipelines/stream    {"data": [22.5, 21.0]}
//	POST /pipelines/chain     {"data": <any JSON>}
//	POST /pipelines/recover   {"data": <any JSON>}
//	POST /streams/dispatch    {"batch": ["temp:22.5", "buy:100"]}
package server
