package main

import (
	"errors"
	"fmt"

	"itrack/internal/api"
	"itrack/internal/config"
	"itrack/internal/session"
)

func sessionStore() (*session.Store, error) {
	path, err := session.DefaultPath()
	if err != nil {
		return nil, err
	}
	return session.NewStore(path), nil
}

// withClient runs fn with an anonymous client. Only login and health checks
// go through here; everything else goes through withSession.
func withClient(cfg *config.Config, fn func(*api.Client) error) error {
	return fn(api.NewClient(cfg.APIURL, ""))
}

// withSession is the session guard: it refuses to run fn without a stored
// session, attaches the token to the client, and drops the session when the
// backend reports it stale so the next command asks for a fresh login.
func withSession(cfg *config.Config, fn func(*api.Client, *session.Session) error) error {
	store, err := sessionStore()
	if err != nil {
		return err
	}
	sess, err := store.Require()
	if err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			return fmt.Errorf("not logged in; run %q first", "itrack login")
		}
		return err
	}

	err = fn(api.NewClient(cfg.APIURL, sess.Token), sess)
	if api.IsUnauthorized(err) {
		_ = store.Clear()
		return fmt.Errorf("session rejected by server; run %q again", "itrack login")
	}
	return err
}
