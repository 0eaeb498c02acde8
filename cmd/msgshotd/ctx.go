package main

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
)

type Ctx struct {
	*http.Request
	http.ResponseWriter
	Query url.Values
}

func handle(p string, f func(Ctx)) {
	http.HandleFunc(p, func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logrus.Errorf("handler %s panic: %v", p, rec)
				w.WriteHeader(500)
			}
		}()
		f(Ctx{
			Request:        r,
			ResponseWriter: w,
			Query:          r.URL.Query(),
		})
	})
}

func (c Ctx) Write(p []byte) (int, error) {
	return c.ResponseWriter.Write(p)
}

func (c Ctx) Printf(p string, args ...any) {
	fmt.Fprintf(c.ResponseWriter, p, args...)
}

func (c Ctx) Error(code int, p string, args ...any) {
	c.ResponseWriter.Header().Set("Content-Type", "text/plain")
	c.WriteHeader(code)
	fmt.Fprintf(c.ResponseWriter, p+"\n", args...)
}
