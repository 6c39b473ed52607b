package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"jsema/internal/classfile"
	"jsema/internal/driver"
	"jsema/internal/prof"
)

// session owns the resources one command needs: tracer and classpath.
type session struct {
	settings *settings
	cp       *classfile.Classpath
	closers  []func()
}

func openSession(cmd *cobra.Command) (*session, driver.Options, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, driver.Options{}, err
	}
	sess := &session{settings: s}

	profiles, err := prof.Start(s.profile)
	if err != nil {
		return nil, driver.Options{}, fmt.Errorf("failed to start profiling: %w", err)
	}
	sess.closers = append(sess.closers, func() {
		if err := profiles.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
		}
	})

	tracer, cleanup, err := setupTracing(s, cmd.ErrOrStderr())
	if err != nil {
		sess.Close()
		return nil, driver.Options{}, err
	}
	sess.closers = append(sess.closers, cleanup)

	var cache *classfile.DiskCache
	if s.cache {
		cache, err = classfile.OpenDiskCache("jsema", s.cacheDir)
		if err != nil {
			sess.Close()
			return nil, driver.Options{}, fmt.Errorf("failed to open disk cache: %w", err)
		}
	}
	cp, err := classfile.OpenClasspath(classfile.ClasspathOptions{
		Entries: s.classpath,
		Stubs:   s.stubs,
		Boot:    s.boot,
		Cache:   cache,
	})
	if err != nil {
		sess.Close()
		return nil, driver.Options{}, err
	}
	if len(cp.ChainIndex) == 0 {
		sess.Close()
		return nil, driver.Options{}, errors.New("empty classpath: add entries or keep the boot stubs")
	}
	sess.cp = cp
	sess.closers = append(sess.closers, func() {
		if err := cp.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "classpath: close error: %v\n", err)
		}
	})

	opts := driver.Options{
		Index:          cp,
		Jobs:           s.jobs,
		MaxDiagnostics: s.maxDiagnostics,
		Retries:        s.retries,
		Tracer:         tracer,
		Timings:        s.timings,
	}
	return sess, opts, nil
}

// Close releases resources in reverse order of acquisition.
func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
