// Package search runs a full smart-match search and converts a search into
// a lead.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"smartmatch/listing"
	"smartmatch/logging"
	"smartmatch/matching"
	"smartmatch/session"
)

var ErrListingNotFound = errors.New("search: listing not found")

// Recorder is the session persistence the search depends on.
type Recorder interface {
	Start(ctx context.Context, criteria listing.Criteria) (session.Session, error)
	RecordMatches(ctx context.Context, sessionID string, records []session.MatchRecord) error
	Convert(ctx context.Context, params session.ConvertParams) (session.ConvertResult, error)
	Lookup(ctx context.Context, token string) (session.Session, []session.MatchRecord, error)
}

type Result struct {
	SessionID    *string
	SessionToken *string
	Matches      []matching.PropertyMatch
}

type Service struct {
	store    listing.Store
	engine   *matching.Engine
	recorder Recorder
	log      logrus.FieldLogger
	pageSize int
}

func NewService(store listing.Store, engine *matching.Engine, recorder Recorder, log logrus.FieldLogger) *Service {
	if engine == nil {
		engine = matching.NewEngine(nil)
	}
	return &Service{
		store:    store,
		engine:   engine,
		recorder: recorder,
		log:      logging.OrDefault(log),
		pageSize: listing.DefaultPageSize,
	}
}

// WithPageSize sets how many candidates each store round trip fetches. Every
// active listing is scored regardless.
func (s *Service) WithPageSize(n int) *Service {
	if n > 0 {
		s.pageSize = n
	}
	return s
}

// Search scores every active listing against a frozen copy of criteria and
// returns at most matching.TopN matches scoring above matching.MinScore.
// Session bookkeeping failures are logged and never fail the search.
func (s *Service) Search(ctx context.Context, criteria listing.Criteria) (Result, error) {
	if err := criteria.Validate(); err != nil {
		return Result{}, err
	}
	frozen := criteria.Clone()

	var sess *session.Session
	if s.recorder != nil {
		started, err := s.recorder.Start(ctx, frozen)
		if err != nil {
			s.log.WithError(err).WithField("purpose", frozen.Purpose).Error("smart match session not recorded")
		} else {
			sess = &started
		}
	}

	ranking := s.engine.NewRanking(frozen)
	err := listing.Walk(ctx, s.store, listing.Filter{
		Statuses:     []listing.Status{listing.StatusActive},
		ListingTypes: frozen.Purpose.ListingTypes(),
		Limit:        s.pageSize,
	}, func(page []listing.Listing) bool {
		ranking.Offer(page...)
		return true
	})
	if err != nil {
		return Result{}, fmt.Errorf("search: fetch candidates: %w", err)
	}

	matches := ranking.Matches()

	res := Result{Matches: matches}
	if sess == nil {
		return res, nil
	}
	res.SessionID = &sess.ID
	res.SessionToken = &sess.Token

	records := make([]session.MatchRecord, len(matches))
	for i, m := range matches {
		records[i] = session.MatchRecord{ListingID: m.ListingID, Score: m.Score, Reasons: m.Reasons}
	}
	if err := s.recorder.RecordMatches(ctx, sess.ID, records); err != nil {
		s.log.WithError(err).WithField("session_id", sess.ID).Error("smart match results not recorded")
	}

	return res, nil
}

// ConvertToLead turns a search session into a lead interested in listingID.
func (s *Service) ConvertToLead(ctx context.Context, params session.ConvertParams) (session.ConvertResult, error) {
	if s.recorder == nil {
		return session.ConvertResult{}, fmt.Errorf("search: conversion unavailable")
	}
	if _, err := s.store.Get(ctx, params.ListingID); err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			return session.ConvertResult{}, ErrListingNotFound
		}
		return session.ConvertResult{}, fmt.Errorf("search: load listing: %w", err)
	}
	return s.recorder.Convert(ctx, params)
}

// Session returns a recorded search and its ranked matches.
func (s *Service) Session(ctx context.Context, token string) (session.Session, []session.MatchRecord, error) {
	if s.recorder == nil {
		return session.Session{}, nil, session.ErrNotFound
	}
	return s.recorder.Lookup(ctx, token)
}
