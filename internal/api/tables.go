package api

import "net/http"

type tablesResponse struct {
	Tables []string `json:"tables"`
	Count  int      `json:"count"`
}

// handleListTables reports the views registered at startup. Registration is
// static for the life of the process, so no engine round trip is needed.
func handleListTables(deps Dependencies, w http.ResponseWriter, _ *http.Request) {
	tables := deps.RegisteredTables
	if tables == nil {
		tables = []string{}
	}
	writeJSON(w, http.StatusOK, tablesResponse{Tables: tables, Count: len(tables)})
}
