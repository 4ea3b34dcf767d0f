package modules

import (
	"net/http"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/user-account-service/internal/interface/http"
	"github.com/oksasatya/user-account-service/internal/interface/middleware"
)

// route is one row of a module's registration table.
type route struct {
	method    string
	path      string
	protected bool
	handler   gin.HandlerFunc
}

// UserModule wires the user handlers under /api/user.
// Public: POST /user, POST /user/auth
// Protected (bearer token): GET /user, GET /user/search, PUT /user/:userId, DELETE /user/:userId
type UserModule struct {
	Handler *handlers.UserHandler
	Tokens  middleware.TokenDecoder
}

func NewUserModule(h *handlers.UserHandler, tokens middleware.TokenDecoder) *UserModule {
	return &UserModule{Handler: h, Tokens: tokens}
}

func (m *UserModule) routes() []route {
	return []route{
		{http.MethodPost, "", false, m.Handler.CreateUser},
		{http.MethodPost, "/auth", false, m.Handler.Authenticate},
		{http.MethodGet, "", true, m.Handler.ListUsers},
		{http.MethodGet, "/search", true, m.Handler.SearchUsers},
		{http.MethodPut, "/:userId", true, m.Handler.UpdateUser},
		{http.MethodDelete, "/:userId", true, m.Handler.DeleteUser},
	}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/user")
	guard := middleware.Auth(m.Tokens)
	for _, r := range m.routes() {
		if r.protected {
			users.Handle(r.method, r.path, guard, r.handler)
			continue
		}
		users.Handle(r.method, r.path, r.handler)
	}
}
