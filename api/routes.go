package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/coreybb/locallibrary/auth"
	rh "github.com/coreybb/locallibrary/route-handlers"
	"github.com/coreybb/locallibrary/webutil"
)

const (
	apiBasePath       = "/api"
	authBasePath      = "/auth"
	usersBasePath     = "/users"
	booksBasePath     = "/books"
	authorsBasePath   = "/authors"
	genresBasePath    = "/genres"
	languagesBasePath = "/languages"
	copiesBasePath    = "/copies"
)

const (
	renewSubPath             = "/renew"
	reserveSubPath           = "/reserve"
	cancelReservationSubPath = "/cancel-reservation"
	checkoutSubPath          = "/checkout"
	returnSubPath            = "/return"
	maintenanceSubPath       = "/maintenance"
	releaseSubPath           = "/release"
)

const (
	paramID = "id" // General parameter name for resource IDs
)

// Handlers groups every route handler the API mounts.
type Handlers struct {
	Index     *rh.IndexHandler
	Auth      *rh.AuthHandler
	Books     *rh.BookHandler
	Authors   *rh.AuthorHandler
	Genres    *rh.GenreHandler
	Languages *rh.LanguageHandler
	Copies    *rh.BookCopyHandler
}

// Options configures the cross-cutting middleware.
type Options struct {
	Tokens         TokenParser
	Policy         auth.Policy
	RateLimiter    *RateLimiter
	AllowedOrigins []string
}

func SetupRoutes(h Handlers, opts Options) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	if len(opts.AllowedOrigins) > 0 {
		r.Use(CORS(opts.AllowedOrigins))
	}
	r.Use(SetHeader(webutil.HeaderContentType, webutil.ContentTypeJSONUTF8))

	r.Route(apiBasePath, func(r chi.Router) {
		if opts.RateLimiter != nil {
			r.Use(opts.RateLimiter.Middleware)
		}
		r.Use(Authenticate(opts.Tokens))

		requireCap := RequireCapability(opts.Policy, auth.CapManageCatalog)

		r.Get("/", webutil.MakeHandler(h.Index.HandleIndex))
		configureAuthRoutes(r, h.Auth, requireCap)
		configureBookRoutes(r, h.Books, requireCap)
		configureAuthorRoutes(r, h.Authors, requireCap)
		configureGenreRoutes(r, h.Genres, requireCap)
		configureLanguageRoutes(r, h.Languages, requireCap)
		configureCopyRoutes(r, h.Copies, requireCap)
	})

	// Health check endpoint
	r.Get("/healthz", handleHealthCheck)

	return r
}

func pathWithParam(basePath string, paramName string) string {
	if basePath == "" {
		return "/{" + paramName + "}"
	}
	return basePath + "/{" + paramName + "}"
}

// --- Auth and User Routes ---
func configureAuthRoutes(r chi.Router, handler *rh.AuthHandler, requireCap func(http.Handler) http.Handler) {
	r.Route(authBasePath, func(r chi.Router) {
		r.Post("/register", webutil.MakeHandler(handler.HandleRegister))
		r.Post("/login", webutil.MakeHandler(handler.HandleLogin))
	})

	r.Route(usersBasePath, func(r chi.Router) {
		r.With(RequireLogin).Get("/me", webutil.MakeHandler(handler.HandleGetMe))
		r.With(requireCap).Delete(pathWithParam("", paramID), webutil.MakeHandler(handler.HandleDeleteUser))
	})
}

// --- Book Routes ---
func configureBookRoutes(r chi.Router, handler *rh.BookHandler, requireCap func(http.Handler) http.Handler) {
	specificBookPath := pathWithParam("", paramID)

	r.Route(booksBasePath, func(r chi.Router) {
		r.Get("/", webutil.MakeHandler(handler.HandleGetBooks))
		r.Get(specificBookPath, webutil.MakeHandler(handler.HandleGetBook))

		r.Group(func(r chi.Router) {
			r.Use(requireCap)
			r.Post("/", webutil.MakeHandler(handler.HandleCreateBook))
			r.Put(specificBookPath, webutil.MakeHandler(handler.HandleUpdateBook))
			r.Delete(specificBookPath, webutil.MakeHandler(handler.HandleDeleteBook))
		})
	})
}

// --- Author Routes ---
func configureAuthorRoutes(r chi.Router, handler *rh.AuthorHandler, requireCap func(http.Handler) http.Handler) {
	specificAuthorPath := pathWithParam("", paramID)

	r.Route(authorsBasePath, func(r chi.Router) {
		r.Get("/", webutil.MakeHandler(handler.HandleGetAuthors))
		r.Get(specificAuthorPath, webutil.MakeHandler(handler.HandleGetAuthor))

		r.Group(func(r chi.Router) {
			r.Use(requireCap)
			r.Post("/", webutil.MakeHandler(handler.HandleCreateAuthor))
			r.Put(specificAuthorPath, webutil.MakeHandler(handler.HandleUpdateAuthor))
			r.Delete(specificAuthorPath, webutil.MakeHandler(handler.HandleDeleteAuthor))
		})
	})
}

// --- Genre Routes ---
func configureGenreRoutes(r chi.Router, handler *rh.GenreHandler, requireCap func(http.Handler) http.Handler) {
	r.Route(genresBasePath, func(r chi.Router) {
		r.Get("/", webutil.MakeHandler(handler.HandleGetGenres))
		r.With(requireCap).Post("/", webutil.MakeHandler(handler.HandleCreateGenre))
		r.With(requireCap).Delete(pathWithParam("", paramID), webutil.MakeHandler(handler.HandleDeleteGenre))
	})
}

// --- Language Routes ---
func configureLanguageRoutes(r chi.Router, handler *rh.LanguageHandler, requireCap func(http.Handler) http.Handler) {
	r.Route(languagesBasePath, func(r chi.Router) {
		r.Get("/", webutil.MakeHandler(handler.HandleGetLanguages))
		r.With(requireCap).Post("/", webutil.MakeHandler(handler.HandleCreateLanguage))
		r.With(requireCap).Delete(pathWithParam("", paramID), webutil.MakeHandler(handler.HandleDeleteLanguage))
	})
}

// --- Copy Routes ---
// Loan workflow routes are checked again by the lifecycle manager; the
// middleware rejects early so no body is read for an unauthorized caller.
func configureCopyRoutes(r chi.Router, handler *rh.BookCopyHandler, requireCap func(http.Handler) http.Handler) {
	specificCopyPath := pathWithParam("", paramID)

	r.Route(copiesBasePath, func(r chi.Router) {
		r.With(requireCap).Post("/", webutil.MakeHandler(handler.HandleCreateCopy))
		r.With(RequireLogin).Get("/mine", webutil.MakeHandler(handler.HandleGetMyCopies))
		r.With(requireCap).Get("/on-loan", webutil.MakeHandler(handler.HandleGetOnLoanCopies))

		r.Route(specificCopyPath, func(r chi.Router) {
			r.Get("/", webutil.MakeHandler(handler.HandleGetCopy))
			r.With(requireCap).Delete("/", webutil.MakeHandler(handler.HandleDeleteCopy))

			r.Group(func(r chi.Router) {
				r.Use(requireCap)
				r.Get(renewSubPath, webutil.MakeHandler(handler.HandleGetRenewal))
				r.Post(renewSubPath, webutil.MakeHandler(handler.HandleRenewCopy))
				r.Post(reserveSubPath, webutil.MakeHandler(handler.HandleReserveCopy))
				r.Post(cancelReservationSubPath, webutil.MakeHandler(handler.HandleCancelReservation))
				r.Post(checkoutSubPath, webutil.MakeHandler(handler.HandleCheckoutCopy))
				r.Post(returnSubPath, webutil.MakeHandler(handler.HandleReturnCopy))
				r.Post(maintenanceSubPath, webutil.MakeHandler(handler.HandleSendToMaintenance))
				r.Post(releaseSubPath, webutil.MakeHandler(handler.HandleReleaseFromMaintenance))
			})
		})
	})
}

// MountScheduler exposes the reminder sweep behind a shared secret header.
func MountScheduler(r chi.Router, tick webutil.AppHandler, secret string) {
	r.With(RequireSharedSecret(webutil.HeaderSchedulerToken, secret)).
		Post("/scheduler/tick", webutil.MakeHandler(tick))
}

// handleHealthCheck responds to a health check request.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(webutil.HeaderContentType, webutil.ContentTypeTextPlainUTF8)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
