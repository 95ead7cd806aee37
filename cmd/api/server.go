package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"smartmatch/lead"
	"smartmatch/listing"
	"smartmatch/search"
	"smartmatch/session"
	"smartmatch/wizard"
)

const (
	routeHealth        = "/health"
	routeAvailPurpose  = "/api/smart-match/availability/purpose"
	routeAvailTypes    = "/api/smart-match/availability/property-types"
	routeAvailOffice   = "/api/smart-match/availability/office-sizes"
	routeAvailBudgets  = "/api/smart-match/availability/budgets"
	routeAvailLocation = "/api/smart-match/availability/locations"
	routeAvailTransit  = "/api/smart-match/availability/transit"
	routeSearch        = "/api/smart-match/search"
	routeConvert       = "/api/smart-match/convert"
	routeSession       = "/api/smart-match/sessions/{token}"
	routeWizardStart   = "/api/smart-match/wizard/start"
	routeWizardSelect  = "/api/smart-match/wizard/select"
	routeWizardBack    = "/api/smart-match/wizard/back"
	routeWizardRun     = "/api/smart-match/wizard/run"
)

const maxBodyBytes = 64 << 10

var validate = validator.New()

type searchService interface {
	Search(ctx context.Context, criteria listing.Criteria) (search.Result, error)
	ConvertToLead(ctx context.Context, params session.ConvertParams) (session.ConvertResult, error)
	Session(ctx context.Context, token string) (session.Session, []session.MatchRecord, error)
}

type wizardService interface {
	Start(ctx context.Context) wizard.State
	Select(ctx context.Context, st wizard.State, optionID string) (wizard.State, error)
	Back(ctx context.Context, st wizard.State) (wizard.State, error)
	Run(ctx context.Context, st wizard.State) (wizard.State, error)
}

// Server exposes the smart-match operations over HTTP.
type Server struct {
	availability wizard.Availability
	search       searchService
	wizard       wizardService
	codec        *wizard.Codec
	ping         func(ctx context.Context) error
	log          logrus.FieldLogger
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc(routeHealth, s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc(routeAvailPurpose, s.handleAvailPurpose).Methods(http.MethodGet)
	r.HandleFunc(routeAvailTypes, s.handleAvailPropertyTypes).Methods(http.MethodGet)
	r.HandleFunc(routeAvailOffice, s.handleAvailOfficeSizes).Methods(http.MethodGet)
	r.HandleFunc(routeAvailBudgets, s.handleAvailBudgets).Methods(http.MethodPost)
	r.HandleFunc(routeAvailTransit, s.handleAvailTransit).Methods(http.MethodPost)
	r.HandleFunc(routeAvailLocation, s.handleAvailLocations).Methods(http.MethodPost)

	r.HandleFunc(routeSearch, s.handleSearch).Methods(http.MethodPost)
	r.HandleFunc(routeConvert, s.handleConvert).Methods(http.MethodPost)
	r.HandleFunc(routeSession, s.handleSession).Methods(http.MethodGet)

	r.HandleFunc(routeWizardStart, s.handleWizardStart).Methods(http.MethodPost)
	r.HandleFunc(routeWizardSelect, s.handleWizardSelect).Methods(http.MethodPost)
	r.HandleFunc(routeWizardBack, s.handleWizardBack).Methods(http.MethodPost)
	r.HandleFunc(routeWizardRun, s.handleWizardRun).Methods(http.MethodPost)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			respondError(w, s.log, http.StatusServiceUnavailable, errCodeUnavailable, "database unreachable", err)
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAvailPurpose(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, availabilityResponse{Available: s.availability.CheckPurpose(r.Context())})
}

func (s *Server) handleAvailPropertyTypes(w http.ResponseWriter, r *http.Request) {
	purpose, ok := s.purposeParam(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, availabilityResponse{Available: s.availability.CheckPropertyType(r.Context(), purpose)})
}

func (s *Server) handleAvailOfficeSizes(w http.ResponseWriter, r *http.Request) {
	purpose, ok := s.purposeParam(w, r)
	if !ok {
		return
	}
	sizes := s.availability.CheckOfficeSize(r.Context(), purpose)
	respondJSON(w, http.StatusOK, map[string]any{"sizes": officeSizesResponse(sizes)})
}

func (s *Server) handleAvailBudgets(w http.ResponseWriter, r *http.Request) {
	var req budgetsRequest
	if !s.decode(w, r, &req) {
		return
	}
	c, ok := s.validCriteria(w, req.criteriaRequest)
	if !ok {
		return
	}
	ranges, err := req.ranges()
	if err != nil {
		respondError(w, s.log, http.StatusBadRequest, errCodeValidation, err.Error(), err)
		return
	}
	respondJSON(w, http.StatusOK, availabilityResponse{Available: s.availability.CheckBudget(r.Context(), c, ranges)})
}

func (s *Server) handleAvailTransit(w http.ResponseWriter, r *http.Request) {
	c, ok := s.decodeCriteria(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, availabilityResponse{Available: s.availability.CheckTransit(r.Context(), c)})
}

func (s *Server) handleAvailLocations(w http.ResponseWriter, r *http.Request) {
	c, ok := s.decodeCriteria(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, availabilityResponse{Available: s.availability.CheckLocation(r.Context(), c)})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	c, ok := s.decodeCriteria(w, r)
	if !ok {
		return
	}
	res, err := s.search.Search(r.Context(), c)
	if err != nil {
		s.respondDomainError(w, err, "search failed")
		return
	}
	respondJSON(w, http.StatusOK, searchResponse{
		SessionID:    res.SessionID,
		SessionToken: res.SessionToken,
		Matches:      res.Matches,
	})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.search.ConvertToLead(r.Context(), session.ConvertParams{
		SessionID: req.SessionID,
		ListingID: req.ListingID,
		FullName:  req.FullName,
		Phone:     req.Phone,
		Email:     req.Email,
	})
	if err != nil {
		s.respondDomainError(w, err, "conversion failed")
		return
	}

	out := convertResponse{LeadID: res.LeadID, SessionID: res.Session.ID}
	if res.Session.ConvertedAt != nil {
		out.ConvertedAt = *res.Session.ConvertedAt
	}
	respondJSON(w, http.StatusCreated, out)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	if token == "" {
		respondError(w, s.log, http.StatusBadRequest, errCodeValidation, "session token required", nil)
		return
	}
	sess, records, err := s.search.Session(r.Context(), token)
	if err != nil {
		s.respondDomainError(w, err, "session lookup failed")
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(sess, records))
}

func (s *Server) handleWizardStart(w http.ResponseWriter, r *http.Request) {
	s.respondWizard(w, s.wizard.Start(r.Context()))
}

func (s *Server) handleWizardSelect(w http.ResponseWriter, r *http.Request) {
	var req wizardSelectRequest
	if !s.decode(w, r, &req) {
		return
	}
	st, ok := s.decodeState(w, req.Token)
	if !ok {
		return
	}
	next, err := s.wizard.Select(r.Context(), st, req.OptionID)
	if err != nil {
		s.respondDomainError(w, err, "wizard selection failed")
		return
	}
	s.respondWizard(w, next)
}

func (s *Server) handleWizardBack(w http.ResponseWriter, r *http.Request) {
	s.wizardStep(w, r, s.wizard.Back)
}

func (s *Server) handleWizardRun(w http.ResponseWriter, r *http.Request) {
	s.wizardStep(w, r, s.wizard.Run)
}

func (s *Server) wizardStep(w http.ResponseWriter, r *http.Request, step func(context.Context, wizard.State) (wizard.State, error)) {
	var req wizardTokenRequest
	if !s.decode(w, r, &req) {
		return
	}
	st, ok := s.decodeState(w, req.Token)
	if !ok {
		return
	}
	next, err := step(r.Context(), st)
	if err != nil {
		s.respondDomainError(w, err, "wizard transition failed")
		return
	}
	s.respondWizard(w, next)
}

func (s *Server) respondWizard(w http.ResponseWriter, st wizard.State) {
	token, err := s.codec.Encode(st)
	if err != nil {
		respondError(w, s.log, http.StatusInternalServerError, errCodeInternal, "could not sign wizard state", err)
		return
	}
	respondJSON(w, http.StatusOK, wizardResponse{Token: token, Step: st.Step.Number(), State: st})
}

func (s *Server) decodeState(w http.ResponseWriter, token string) (wizard.State, bool) {
	st, err := s.codec.Decode(token)
	if err != nil {
		respondError(w, s.log, http.StatusBadRequest, errCodeInvalidState, "wizard state is invalid or expired", err)
		return wizard.State{}, false
	}
	return st, true
}

func (s *Server) purposeParam(w http.ResponseWriter, r *http.Request) (listing.Purpose, bool) {
	p := listing.Purpose(r.URL.Query().Get("purpose"))
	if !p.Valid() {
		respondError(w, s.log, http.StatusBadRequest, errCodeValidation, "purpose must be one of BUY, RENT, INVEST", nil)
		return "", false
	}
	return p, true
}

func (s *Server) decodeCriteria(w http.ResponseWriter, r *http.Request) (listing.Criteria, bool) {
	var req criteriaRequest
	if !s.decode(w, r, &req) {
		return listing.Criteria{}, false
	}
	return s.validCriteria(w, req)
}

func (s *Server) validCriteria(w http.ResponseWriter, req criteriaRequest) (listing.Criteria, bool) {
	c := req.criteria()
	if err := c.Validate(); err != nil {
		respondError(w, s.log, http.StatusBadRequest, errCodeValidation, err.Error(), err)
		return listing.Criteria{}, false
	}
	return c, true
}

// decode reads a JSON body into dst and runs struct validation on it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, s.log, http.StatusBadRequest, errCodeInvalidPayload, "invalid JSON payload", err)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respondError(w, s.log, http.StatusBadRequest, errCodeValidation, validationMessage(err), err)
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return "invalid field: " + verrs[0].Field()
	}
	return "invalid request"
}

func (s *Server) respondDomainError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, listing.ErrInvalidPurpose),
		errors.Is(err, listing.ErrInvalidPropertyType),
		errors.Is(err, listing.ErrOfficeSizeNotOffice),
		errors.Is(err, listing.ErrInvalidRange),
		errors.Is(err, lead.ErrMissingName),
		errors.Is(err, lead.ErrMissingPhone),
		errors.Is(err, wizard.ErrInvalidOption):
		respondError(w, s.log, http.StatusBadRequest, errCodeValidation, err.Error(), err)
	case errors.Is(err, wizard.ErrNotSelectable),
		errors.Is(err, wizard.ErrNoPreviousStep),
		errors.Is(err, wizard.ErrNotSearching):
		respondError(w, s.log, http.StatusConflict, errCodeInvalidState, err.Error(), err)
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, search.ErrListingNotFound):
		respondError(w, s.log, http.StatusNotFound, errCodeNotFound, err.Error(), err)
	case errors.Is(err, session.ErrAlreadyConverted):
		respondError(w, s.log, http.StatusConflict, errCodeConflict, err.Error(), err)
	default:
		respondError(w, s.log, http.StatusInternalServerError, errCodeInternal, fallback, err)
	}
}
