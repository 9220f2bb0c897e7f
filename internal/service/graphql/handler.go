package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"
	log "github.com/sirupsen/logrus"
)

// request — тело POST-запроса к /graphql.
type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler обслуживает GraphQL-запросы поверх собранной схемы.
type Handler struct {
	schema graphql.Schema
	logger *log.Entry
}

// NewHandler создаёт HTTP-handler для /graphql.
func NewHandler(schema graphql.Schema) *Handler {
	return &Handler{
		schema: schema,
		logger: log.WithField("component", "graphql-http"),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        r.Context(),
	})

	if len(result.Errors) > 0 {
		h.logger.WithFields(log.Fields{
			"operation": req.OperationName,
			"errors":    len(result.Errors),
		}).Debug("graphql request completed with errors")
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.WithError(err).Warn("failed to encode graphql response")
	}
}

var _ http.Handler = (*Handler)(nil)
