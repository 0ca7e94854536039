package demo

import (
	"net/http"

	"github.com/go-barry/hx/core"
)

// Register mounts the demo routes on mux.
func Register(mux *http.ServeMux, engine *core.Engine, users UserStore) {
	mux.Handle("GET /user-list", engine.HX("user-list.html")(UserList(users)))
	mux.Handle("GET /admin-list", engine.HX("user-list.html", core.NoData())(AdminList(users)))
	mux.Handle("GET /{$}", engine.Page("index.html")(nil))
}

// UserList serves JSON or HTML depending on whether the request comes from htmx.
func UserList(users UserStore) core.Handler {
	return func(r *http.Request, res *core.Response) (core.Result, error) {
		res.Header().Set("my-response-header", "works")

		list, err := users.ListUsers(r.Context())
		if err != nil {
			return core.None(), err
		}
		return core.Many(list), nil
	}
}

// AdminList only ever serves HTML.
func AdminList(users UserStore) core.Handler {
	return func(r *http.Request, res *core.Response) (core.Result, error) {
		list, err := users.ListAdmins(r.Context())
		if err != nil {
			return core.None(), err
		}
		return core.Many(list), nil
	}
}
