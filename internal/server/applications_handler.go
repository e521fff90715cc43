package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/jonathan/applicant-tracker/internal/applications"
	"github.com/jonathan/applicant-tracker/internal/authz"
	"github.com/jonathan/applicant-tracker/internal/metrics"
	"github.com/jonathan/applicant-tracker/internal/server/middleware"
	"github.com/jonathan/applicant-tracker/internal/types"
)

const maxBodyBytes = 1 << 20

const msgDecisionRecorded = "Application status updated successfully."

// ---------------------------------------------------------------------
// Application handlers
// ---------------------------------------------------------------------

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	details, err := s.apps.List(r.Context(), middleware.GetPrincipal(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationRecords(details))
}

func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r)
	if err := authz.Require(p, authz.ActionCreate); err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.CreateApplicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		var invalidID *types.InvalidIDError
		if errors.As(err, &invalidID) {
			err = &ErrValidation{Field: "job", Message: types.MsgInvalidInteger}
		}
		s.writeError(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, r, validationError(err))
		return
	}

	detail, err := s.apps.Create(r.Context(), p, req.Job.Int64())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	metrics.RecordApplicationCreated()
	writeJSON(w, http.StatusCreated, toApplicationRecord(detail))
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	detail, err := s.apps.Get(r.Context(), middleware.GetPrincipal(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationRecord(detail))
}

func (s *Server) handleDecideApplication(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r)
	if err := authz.Require(p, authz.ActionDecide); err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.DecisionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	status := req.StatusValue()
	if err := s.apps.Decide(r.Context(), p, id, status); err != nil {
		s.writeError(w, r, err)
		return
	}
	metrics.RecordDecision(status)
	writeJSON(w, http.StatusOK, types.DecisionResponse{Success: msgDecisionRecorded})
}

// ---------------------------------------------------------------------
// Note handlers
// ---------------------------------------------------------------------

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r)
	if err := authz.Require(p, authz.ActionAnnotate); err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.CreateNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	note, err := s.apps.AddNote(r.Context(), p, id, req.Note)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	metrics.RecordNote()
	writeJSON(w, http.StatusCreated, toNoteRecord(note))
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	notes, err := s.apps.ListNotes(r.Context(), middleware.GetPrincipal(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toNoteRecords(notes))
}

// ---------------------------------------------------------------------
// Stats and jobs
// ---------------------------------------------------------------------

func (s *Server) handleJobStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.apps.Stats(r.Context(), middleware.GetPrincipal(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobStatsRecords(stats))
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.apps.ListJobs(r.Context(), middleware.GetPrincipal(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobRecords(jobs))
}

// pathID parses the {id} path segment. Anything that is not a positive
// integer cannot name an application and is reported as not found.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &applications.NotFoundError{Resource: "application"}
	}
	return id, nil
}

// decodeJSON reads a JSON object from the request body into dst. An empty body
// leaves dst untouched so that missing fields are reported by field.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &ErrMalformedBody{Cause: err}
	}
	return nil
}
