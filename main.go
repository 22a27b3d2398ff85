package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/km-arc/go-injector/framework/app"
	"github.com/km-arc/go-injector/framework/container"
	gohttp "github.com/km-arc/go-injector/framework/http"
	"github.com/km-arc/go-injector/framework/routing"
)

func main() {
	application, err := app.New([]string{".env"}, &DemoServiceProvider{})
	if err != nil {
		// The application logger does not exist yet.
		zap.Must(zap.NewProduction()).Fatal("boot failed", zap.Error(err))
	}
	routes(application)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := application.Run(ctx); err != nil {
		application.Logger().Fatal("server stopped", zap.Error(err))
	}
}

// routes registers the demo endpoints on the application router.
func routes(application *app.Application) {
	r := application.Router()

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		body := map[string]any{
			"message": "Welcome to go-injector!",
			"version": application.Version(),
			"env":     application.Environment(),
		}
		if application.IsDebug() {
			body["injector"] = application.Injector().ID()
			body["services"] = application.Injector().Registry().Len()
		}
		gohttp.NewResponse(w).Success(body)
	})

	r.Prefix("/api/v1", func(api *routing.Router) {

		// GET /api/v1/greetings: one greeting per registered Greeter
		api.Get("/greetings", routing.Handle(func(w http.ResponseWriter, req *http.Request, gs container.All[Greeter]) {
			out := make([]string, 0, len(gs))
			for _, g := range gs {
				out = append(out, g.Greet("world"))
			}
			gohttp.NewResponse(w).Success(out)
		}))

		// /api/v1/users and /api/v1/users/{id}, one UserController per request
		routing.Resource[*UserController](api, "/users")
	})

	r.Group(func(protected *routing.Router) {
		protected.Middleware(AuthMiddleware)

		protected.Get("/profile", func(w http.ResponseWriter, req *http.Request) {
			gohttp.NewResponse(w).Success(map[string]any{"user": "authenticated"})
		})
	})
}

// ── Services ──────────────────────────────────────────────────────────────────

type Greeter interface {
	Greet(name string) string
}

type English struct{}

func (English) Greet(name string) string { return "Hello, " + name + "!" }

type French struct{}

func (French) Greet(name string) string { return "Bonjour, " + name + " !" }

type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
}

// UserStore is an in-memory user table shared by every request.
type UserStore struct {
	mu     sync.Mutex
	users  []User
	nextID int
	limit  int
}

func NewUserStore(limit container.Arg[int], logger *zap.Logger) *UserStore {
	logger.Info("user store ready", zap.Int("limit", limit.Value))
	return &UserStore{limit: limit.Value, nextID: 1}
}

var (
	errStoreFull    = errors.New("user store is full")
	errUserNotFound = errors.New("user not found")
)

func (s *UserStore) Add(u User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.users) >= s.limit {
		return User{}, errStoreFull
	}
	u.ID = s.nextID
	s.nextID++
	s.users = append(s.users, u)
	return u, nil
}

func (s *UserStore) List() []User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.users)
}

func (s *UserStore) Find(id int) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return User{}, errUserNotFound
	}
	return s.users[i], nil
}

func (s *UserStore) Replace(u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(u.ID)
	if i < 0 {
		return errUserNotFound
	}
	s.users[i] = u
	return nil
}

func (s *UserStore) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return errUserNotFound
	}
	s.users = slices.Delete(s.users, i, i+1)
	return nil
}

// index must be called with mu held.
func (s *UserStore) index(id int) int {
	return slices.IndexFunc(s.users, func(u User) bool { return u.ID == id })
}

// UserController is built per request.
type UserController struct {
	app.Controller
	store    *UserStore
	greeting Greeter
}

func NewUserController(store *UserStore, greeting container.Arg[Greeter]) *UserController {
	return &UserController{store: store, greeting: greeting.Value}
}

func (c *UserController) Index(w http.ResponseWriter, r *http.Request) {
	c.Response(w).Success(c.store.List())
}

func (c *UserController) Store(w http.ResponseWriter, r *http.Request) {
	res := c.Response(w)

	var u User
	if !c.bind(w, r, &u) {
		return
	}

	u, err := c.store.Add(u)
	if err != nil {
		res.Error(http.StatusConflict, err.Error())
		return
	}
	res.Created(map[string]any{"user": u, "greeting": c.greeting.Greet(u.Name)})
}

func (c *UserController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := c.id(w, r)
	if !ok {
		return
	}
	u, err := c.store.Find(id)
	if err != nil {
		c.Response(w).NotFound("No such user.")
		return
	}
	c.Response(w).Success(u)
}

func (c *UserController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := c.id(w, r)
	if !ok {
		return
	}
	var u User
	if !c.bind(w, r, &u) {
		return
	}
	u.ID = id
	if err := c.store.Replace(u); err != nil {
		c.Response(w).NotFound("No such user.")
		return
	}
	c.Response(w).Success(u)
}

func (c *UserController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := c.id(w, r)
	if !ok {
		return
	}
	if err := c.store.Delete(id); err != nil {
		c.Response(w).NotFound("No such user.")
		return
	}
	c.Response(w).NoContent()
}

// id parses the {id} URL parameter, answering 404 when it is not a number.
func (c *UserController) id(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(routing.Param(r, "id"))
	if err != nil {
		c.Response(w).NotFound("No such user.")
		return 0, false
	}
	return id, true
}

// bind decodes and validates the body into u, answering 400/422 on failure.
func (c *UserController) bind(w http.ResponseWriter, r *http.Request, u *User) bool {
	err := c.Request(r).Bind(u)
	if err == nil {
		return true
	}
	var verrs gohttp.ValidationErrors
	if errors.As(err, &verrs) {
		c.Response(w).ValidationError(verrs)
		return false
	}
	c.Response(w).Error(http.StatusBadRequest, err.Error())
	return false
}

// ── Registration ──────────────────────────────────────────────────────────────

// DemoServiceProvider registers the demo services.
type DemoServiceProvider struct{}

func (DemoServiceProvider) Register(m *container.Module) {
	m.Provide(
		container.As[Greeter](container.NewConstant(English{})),
		container.As[Greeter](container.NewConstant(French{})),
		container.Singleton[*UserStore](NewUserStore),
		container.Transient[*UserController](NewUserController),
	)
	container.Implements[Greeter](m,
		container.IdentityOf[English](),
		container.IdentityOf[French](),
	)
	container.WithArg[*UserStore](m, 100)

	// Two greeters are registered; the controller gets English.
	m.When(container.IdentityOf[*UserController]()).
		Needs(container.IdentityOf[Greeter]()).
		Give(English{})
}

// AuthMiddleware is an example token guard.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gohttp.NewRequest(r).BearerToken() == "" {
			gohttp.NewResponse(w).Unauthorized()
			return
		}
		next.ServeHTTP(w, r)
	})
}
