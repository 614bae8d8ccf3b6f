package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/carbon-map/internal/bucket"
	"github.com/sells-group/carbon-map/internal/model"
	"github.com/sells-group/carbon-map/internal/selection"
	"github.com/sells-group/carbon-map/internal/session"
	"github.com/sells-group/carbon-map/internal/view"
)

// Pointer actions accepted by the pointer endpoint.
const (
	ActionHover = "hover"
	ActionClick = "click"
	ActionLeave = "leave"
	ActionClear = "clear"
)

type toggleRequest struct {
	On *bool `json:"on"`
}

type scaleRequest struct {
	Scale string `json:"scale"`
}

type pointerRequest struct {
	Action string  `json:"action"`
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type sessionResponse struct {
	ID    string          `json:"id"`
	Frame frameResponse   `json:"frame"`
	Panel view.PanelModel `json:"panel"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	s.writeCreated(w, s.deps.Sessions.Create())
}

// writeCreated answers a create request with the session's first frame and
// panel. The session may already be gone if it was deleted concurrently.
func (s *Server) writeCreated(w http.ResponseWriter, sess *session.Session) {
	var resp sessionResponse
	err := sess.Do(func(v *session.View) error {
		resp = sessionResponse{
			ID:    sess.ID,
			Frame: encodeFrame(v.Map.Frame()),
			Panel: v.Panel.Model(),
		}
		return nil
	})
	switch {
	case err == nil:
	case eris.Is(err, session.ErrClosed):
		writeError(w, http.StatusNotFound, "session not found")
		return
	default:
		s.log.Error("create session failed", zap.String("session_id", sess.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Location", "/api/sessions/"+sess.ID)
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.deps.Sessions.Delete(id) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(v *session.View) (any, error) {
		return encodeFrame(v.Map.Frame()), nil
	})
}

func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(v *session.View) (any, error) {
		return v.Panel.Model(), nil
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(v *session.View) (any, error) {
		return v.State.Snapshot(), nil
	})
}

func (s *Server) handleScale(w http.ResponseWriter, r *http.Request) {
	var req scaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	scale, err := bucket.ParseScale(req.Scale)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.withSession(w, r, func(v *session.View) (any, error) {
		v.Panel.SelectScale(scale)
		s.mutated("scale")
		return v.Panel.Model(), nil
	})
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	c, err := model.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	on, ok := decodeToggle(w, r)
	if !ok {
		return
	}
	s.withSession(w, r, func(v *session.View) (any, error) {
		v.Panel.SetCategory(c, on)
		s.mutated("category")
		return v.Panel.Model(), nil
	})
}

func (s *Server) handleBucket(w http.ResponseWriter, r *http.Request) {
	b, err := bucket.Parse(chi.URLParam(r, "bucket"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	on, ok := decodeToggle(w, r)
	if !ok {
		return
	}
	s.withSession(w, r, func(v *session.View) (any, error) {
		v.Panel.SetBucket(b, on)
		s.mutated("bucket")
		return v.Panel.Model(), nil
	})
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Action = strings.ToLower(strings.TrimSpace(req.Action))
	switch req.Action {
	case ActionHover, ActionClick:
		if req.ID == "" {
			writeError(w, http.StatusBadRequest, "id is required for "+req.Action)
			return
		}
	case ActionLeave, ActionClear:
	default:
		writeError(w, http.StatusBadRequest, "action must be one of hover, click, leave, clear")
		return
	}

	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if !sess.AllowPointer(s.deps.Sessions.Clock().Now()) {
		if s.deps.Metrics != nil {
			s.deps.Metrics.PointerThrottled.Inc()
		}
		writeError(w, http.StatusTooManyRequests, "pointer events are arriving too fast")
		return
	}

	pos := selection.ScreenPos{X: req.X, Y: req.Y}
	s.respond(w, sess, func(v *session.View) (any, error) {
		var err error
		switch req.Action {
		case ActionHover:
			err = v.Map.Hover(req.ID, pos)
		case ActionClick:
			err = v.Map.Click(req.ID, pos)
		case ActionLeave:
			v.Map.Leave()
		case ActionClear:
			v.Map.BackgroundClick()
		}
		if err != nil {
			return nil, err
		}
		s.mutated(req.Action)
		return encodeFrame(v.Map.Frame()), nil
	})
}

// withSession resolves the {id} session and runs fn under its lock.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*session.View) (any, error)) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.respond(w, sess, fn)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.deps.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

func (s *Server) respond(w http.ResponseWriter, sess *session.Session, fn func(*session.View) (any, error)) {
	var out any
	err := sess.Do(func(v *session.View) error {
		var err error
		out, err = fn(v)
		return err
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, out)
	case eris.Is(err, session.ErrClosed):
		writeError(w, http.StatusNotFound, "session not found")
	case eris.Is(err, view.ErrUnknownRecord):
		writeError(w, http.StatusNotFound, "record is not plotted")
	default:
		s.log.Error("session request failed", zap.String("session_id", sess.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) mutated(op string) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.Mutations.WithLabelValues(op).Inc()
	}
}

func decodeToggle(w http.ResponseWriter, r *http.Request) (bool, bool) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false, false
	}
	if req.On == nil {
		writeError(w, http.StatusBadRequest, `"on" is required`)
		return false, false
	}
	return *req.On, true
}
