package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// APIPrefix is the mount point of the versioned API.
const APIPrefix = "/api/v1"

// ResolveFilterParams are the query parameters of GET /filters.
type ResolveFilterParams struct {
	Q    string  `form:"q" json:"q"`
	Mode *string `form:"mode,omitempty" json:"mode,omitempty"`
}

// ServerInterface is the set of API handlers.
type ServerInterface interface {
	CreateSession(w http.ResponseWriter, r *http.Request)
	GetSession(w http.ResponseWriter, r *http.Request, session string)
	DeleteSession(w http.ResponseWriter, r *http.Request, session string)
	SubmitQuery(w http.ResponseWriter, r *http.Request, session string)
	LearnMore(w http.ResponseWriter, r *http.Request, session, marker string)
	ResolveFilter(w http.ResponseWriter, r *http.Request, params ResolveFilterParams)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// Handler mounts si on a fresh router.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

// HandlerWithOptions mounts si on options.BaseRouter. Parameter binding failures
// go to options.ErrorHandlerFunc.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		}
	}
	w := &wrapper{handler: si, errorHandlerFunc: options.ErrorHandlerFunc}

	r.Get("/health", si.HealthCheck)
	r.Get("/metrics", si.Metrics)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Post("/sessions", si.CreateSession)
		r.Get("/sessions/{session}", w.GetSession)
		r.Delete("/sessions/{session}", w.DeleteSession)
		r.Post("/sessions/{session}/queries", w.SubmitQuery)
		r.Post("/sessions/{session}/markers/{marker}/learn-more", w.LearnMore)
		r.Get("/filters", w.ResolveFilter)
	})
	return r
}

type wrapper struct {
	handler          ServerInterface
	errorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (wr *wrapper) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := wr.pathParam(w, r, "session")
	if !ok {
		return
	}
	wr.handler.GetSession(w, r, session)
}

func (wr *wrapper) DeleteSession(w http.ResponseWriter, r *http.Request) {
	session, ok := wr.pathParam(w, r, "session")
	if !ok {
		return
	}
	wr.handler.DeleteSession(w, r, session)
}

func (wr *wrapper) SubmitQuery(w http.ResponseWriter, r *http.Request) {
	session, ok := wr.pathParam(w, r, "session")
	if !ok {
		return
	}
	wr.handler.SubmitQuery(w, r, session)
}

func (wr *wrapper) LearnMore(w http.ResponseWriter, r *http.Request) {
	session, ok := wr.pathParam(w, r, "session")
	if !ok {
		return
	}
	marker, ok := wr.pathParam(w, r, "marker")
	if !ok {
		return
	}
	wr.handler.LearnMore(w, r, session, marker)
}

func (wr *wrapper) ResolveFilter(w http.ResponseWriter, r *http.Request) {
	var params ResolveFilterParams
	query := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, true, "q", query, &params.Q); err != nil {
		wr.errorHandlerFunc(w, r, err)
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "mode", query, &params.Mode); err != nil {
		wr.errorHandlerFunc(w, r, err)
		return
	}
	wr.handler.ResolveFilter(w, r, params)
}

func (wr *wrapper) pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &value,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		wr.errorHandlerFunc(w, r, err)
		return "", false
	}
	return value, true
}
