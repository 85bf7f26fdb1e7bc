package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spetersoncode/countdown/internal/countdown"
	"github.com/spetersoncode/countdown/internal/errors"
	"github.com/spetersoncode/countdown/internal/models"
	"github.com/spetersoncode/countdown/internal/service"
)

// API Response types

// TimerResponse represents a timer in API responses.
type TimerResponse struct {
	Index  int    `json:"index"`
	Key    string `json:"key"`
	Name   string `json:"name"`
	Origin int64  `json:"origin"`
	Date   string `json:"date"`
}

// FormatRequest is the body of POST /api/format. Numbers arrive as JSON
// floats and must be whole milliseconds.
type FormatRequest struct {
	Now     *float64  `json:"now,omitempty"`
	Origins []float64 `json:"origins"`
	Specs   []string  `json:"specs,omitempty"`
}

// FormatResponse is the rendered matrix for a FormatRequest.
type FormatResponse struct {
	Now   int64      `json:"now"`
	Specs []string   `json:"specs"`
	Cells [][]string `json:"cells"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error      string `json:"error"`
	Code       int    `json:"code"`
	Message    string `json:"message,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Code:    status,
		Message: message,
	})
}

// writeSharedError writes an error response using the shared error type.
// It automatically maps the error kind to the appropriate HTTP status code.
func writeSharedError(w http.ResponseWriter, err *errors.Error) {
	writeJSON(w, err.HTTPStatus(), ErrorResponse{
		Error:      http.StatusText(err.HTTPStatus()),
		Code:       err.HTTPStatus(),
		Message:    err.Message,
		Suggestion: err.Suggestion,
	})
}

// writeAnyError writes err as a shared error when it carries a kind.
func writeAnyError(w http.ResponseWriter, err error) {
	if e, ok := errors.As(err); ok {
		writeSharedError(w, e)
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

// Timer handlers

func (s *Server) handleListTimers(w http.ResponseWriter, r *http.Request) {
	timers := s.config.Timers.List()
	response := make([]TimerResponse, 0, len(timers))
	for i, t := range timers {
		response = append(response, timerToResponse(i, t))
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleAppendTimer(w http.ResponseWriter, r *http.Request) {
	var req service.AppendInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	timer, err := s.config.Timers.Append(r.Context(), req)
	if err != nil {
		writeAnyError(w, err)
		return
	}

	index := models.IndexOfKey(s.config.Timers.List(), timer.Key)
	s.logger.Printf("Added timer %q (%s)", timer.Name, timer.Key)
	writeJSON(w, http.StatusCreated, timerToResponse(index, timer))
}

func (s *Server) handleRemoveTimer(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid timer index")
		return
	}

	timer, err := s.config.Timers.Remove(r.Context(), index)
	if err != nil {
		writeAnyError(w, err)
		return
	}

	s.logger.Printf("Removed timer %q (%s)", timer.Name, timer.Key)
	writeJSON(w, http.StatusOK, timerToResponse(index, timer))
}

// Render handlers

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	query, err := url.ParseQuery(r.URL.RawQuery)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query: "+err.Error())
		return
	}

	specs := s.config.Specs
	if raw := query["spec"]; len(raw) > 0 {
		parsed, err := countdown.ParseSpecs(raw)
		if err != nil {
			writeAnyError(w, err)
			return
		}
		specs = parsed
	}

	now := s.config.Timers.Clock().NowMillis()
	if raw := query.Get("now"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "now must be an integer number of milliseconds")
			return
		}
		now = n
	}

	rendering, err := s.config.Timers.Render(now, specs)
	if err != nil {
		writeAnyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rendering)
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	origins, err := countdown.OriginsFromFloats(req.Origins)
	if err != nil {
		writeAnyError(w, err)
		return
	}

	now := s.config.Timers.Clock().NowMillis()
	if req.Now != nil {
		now, err = countdown.MillisFromFloat(*req.Now)
		if err != nil {
			writeAnyError(w, err)
			return
		}
	}

	specs := s.config.Specs
	if len(req.Specs) > 0 {
		specs, err = countdown.ParseSpecs(req.Specs)
		if err != nil {
			writeAnyError(w, err)
			return
		}
	}

	cells, err := countdown.FormatAll(now, origins, specs)
	if err != nil {
		writeAnyError(w, err)
		return
	}

	resp := FormatResponse{Now: now, Specs: make([]string, len(specs)), Cells: cells}
	for i, spec := range specs {
		resp.Specs[i] = spec.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, countdown.TimeUnits())
}

func timerToResponse(index int, t models.Timer) TimerResponse {
	return TimerResponse{
		Index:  index,
		Key:    t.Key,
		Name:   t.Name,
		Origin: t.Origin,
		Date:   countdown.ToTime(t.Origin).Format("2006-01-02T15:04:05.000Z07:00"),
	}
}
