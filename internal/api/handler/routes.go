package handler

import (
	"net/http"

	"github.com/vfg2006/sales-manager-api/internal/api/handler/router"
	"github.com/vfg2006/sales-manager-api/internal/usecases/authenticating"
	"github.com/vfg2006/sales-manager-api/internal/usecases/session"
	"github.com/vfg2006/sales-manager-api/internal/usecases/syncing"
	"github.com/vfg2006/sales-manager-api/pkg/middleware"
)

var ownerOnly = []func(http.Handler) http.Handler{middleware.RequireOwner()}

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
		{
			Path:    "/v1/signup",
			Method:  http.MethodPost,
			Handler: Signup(service),
		},
		{
			Path:        "/v1/logout",
			Method:      http.MethodPost,
			Handler:     Logout(service),
			Middlewares: ownerOnly,
		},
	}
}

func State(sessions *session.Manager, unknownLabel string) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/state",
			Method:      http.MethodGet,
			Handler:     GetState(sessions),
			Middlewares: ownerOnly,
		},
		{
			Path:        "/v1/refresh",
			Method:      http.MethodPost,
			Handler:     Refresh(sessions),
			Middlewares: ownerOnly,
		},
		{
			Path:        "/v1/live",
			Method:      http.MethodGet,
			Handler:     Live(sessions, unknownLabel),
			Middlewares: ownerOnly,
		},
		{
			Path:        "/v1/notification",
			Method:      http.MethodDelete,
			Handler:     DismissNotification(sessions),
			Middlewares: ownerOnly,
		},
	}
}

func Customers(sessions *session.Manager, service *syncing.CustomerService) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/customers",
			Method:      http.MethodGet,
			Handler:     ListCustomers(sessions),
			Middlewares: ownerOnly,
		},
		{
			Path:        "/v1/customers",
			Method:      http.MethodPost,
			Handler:     CreateCustomer(sessions, service),
			Middlewares: ownerOnly,
		},
		{
			Path:        "/v1/customers/:id",
			Method:      http.MethodGet,
			Handler:     GetCustomer(sessions, service),
			Middlewares: ownerOnly,
		},
		{
			Path:        "/v1/customers/:id",
			Method:      http.MethodPut,
			Handler:     UpdateCustomer(sessions, service),
			Middlewares: ownerOnly,
		},
	}
}

func Airlines(sessions *session.Manager, service *syncing.AirlineService) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/airlines",
			Method:      http.MethodGet,
			Handler:     ListAirlines(sessions),
			Middlewares: ownerOnly,
		},
		{
			Path:        "/v1/airlines",
			Method:      http.MethodPost,
			Handler:     CreateAirline(sessions, service),
			Middlewares: ownerOnly,
		},
		{
			Path:        "/v1/airlines/:id",
			Method:      http.MethodGet,
			Handler:     GetAirline(sessions, service),
			Middlewares: ownerOnly,
		},
		{
			Path:        "/v1/airlines/:id",
			Method:      http.MethodPut,
			Handler:     UpdateAirline(sessions, service),
			Middlewares: ownerOnly,
		},
	}
}

func Sales(sessions *session.Manager, service *syncing.SaleService, unknownLabel string) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/sales",
			Method:      http.MethodGet,
			Handler:     ListSales(sessions, unknownLabel),
			Middlewares: ownerOnly,
		},
		{
			Path:        "/v1/sales",
			Method:      http.MethodPost,
			Handler:     CreateSale(sessions, service),
			Middlewares: ownerOnly,
		},
		{
			Path:        "/v1/summary",
			Method:      http.MethodGet,
			Handler:     SalesSummary(sessions),
			Middlewares: ownerOnly,
		},
		{
			Path:        "/v1/sales/:id",
			Method:      http.MethodGet,
			Handler:     GetSale(sessions, service),
			Middlewares: ownerOnly,
		},
		{
			Path:        "/v1/sales/:id",
			Method:      http.MethodPut,
			Handler:     UpdateSale(sessions, service),
			Middlewares: ownerOnly,
		},
		{
			Path:        "/v1/sales/:id",
			Method:      http.MethodDelete,
			Handler:     DeleteSale(sessions, service),
			Middlewares: ownerOnly,
		},
	}
}
