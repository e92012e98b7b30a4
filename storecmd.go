// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/elliotnunn/huffpack/internal/store"
)

func storeFlags(name string) (*flag.FlagSet, *string) {
	fl := flag.NewFlagSet(name, flag.ContinueOnError)
	db := fl.String("db", defaultDB(), "store directory")
	return fl, db
}

func cmdPut(args []string) error {
	fl, db := storeFlags("put")
	as := fl.String("as", "", "store a single file under this name")
	if err := fl.Parse(args); err != nil || fl.NArg() == 0 {
		return errUsage
	}
	names, err := globAll(fl.Args())
	if err != nil {
		return err
	}
	if *as != "" && len(names) != 1 {
		return fmt.Errorf("-as needs exactly one file, %d matched", len(names))
	}

	s, err := store.Open(*db)
	if err != nil {
		return err
	}
	defer s.Close()

	var errs []error
	for _, name := range names {
		key := filepath.ToSlash(name)
		if *as != "" {
			key = *as
		}
		data, err := readFile(name)
		if err == nil {
			var st store.Stat
			st, err = s.Put(key, data)
			if err == nil {
				fmt.Printf("%s\t%d\t%d\n", st.Name, st.Size, st.Packed)
			}
		}
		if err != nil {
			slog.Warn("putError", "path", name, "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func cmdGet(args []string) error {
	fl, db := storeFlags("get")
	out := fl.String("o", "", "write to this file instead of stdout")
	if err := fl.Parse(args); err != nil || fl.NArg() != 1 {
		return errUsage
	}
	s, err := store.Open(*db)
	if err != nil {
		return err
	}
	defer s.Close()

	data, err := s.Get(fl.Arg(0))
	if err != nil {
		return err
	}
	if *out != "" {
		return os.WriteFile(*out, data, 0o644)
	}
	_, err = os.Stdout.Write(data)
	return err
}

func cmdList(args []string) error {
	fl, db := storeFlags("ls")
	if err := fl.Parse(args); err != nil || fl.NArg() > 1 {
		return errUsage
	}
	s, err := store.Open(*db)
	if err != nil {
		return err
	}
	defer s.Close()

	names, err := s.List(fl.Arg(0))
	if err != nil {
		return err
	}
	for _, name := range names {
		st, err := s.Stat(name)
		if err != nil {
			slog.Warn("statError", "name", name, "err", err)
			continue
		}
		fmt.Printf("%s\t%d\t%d\t%d\n", st.Name, st.Size, st.Packed, st.Codewords)
	}
	return nil
}

func cmdRemove(args []string) error {
	fl, db := storeFlags("rm")
	if err := fl.Parse(args); err != nil || fl.NArg() == 0 {
		return errUsage
	}
	s, err := store.Open(*db)
	if err != nil {
		return err
	}
	defer s.Close()

	var errs []error
	for _, name := range fl.Args() {
		if err := s.Delete(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func cmdServe(args []string) error {
	fl, db := storeFlags("serve")
	addr := fl.String("addr", ":1993", "listen address")
	if err := fl.Parse(args); err != nil || fl.NArg() != 0 {
		return errUsage
	}
	s, err := store.Open(*db)
	if err != nil {
		return err
	}
	defer s.Close()

	slog.Info("serving", "addr", *addr, "db", *db)
	return http.ListenAndServe(*addr, storeHandler(s))
}

// storeHandler serves decoded entries by name; a name ending in "/" lists entries under it.
func storeHandler(s *store.Store) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{name...}", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		if name == "" || strings.HasSuffix(name, "/") {
			names, err := s.List(name)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			for _, n := range names {
				fmt.Fprintln(w, n)
			}
			return
		}

		data, err := s.Get(name)
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		} else if err != nil {
			slog.Warn("serveError", "name", name, "err", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", http.DetectContentType(data))
		w.Write(data)
	})
	return mux
}
