// Package rpc is the typed procedure surface. Every procedure is an entry in
// a Table that declares its kind, access requirement and input schema; the
// guard chain and validation run from that data before the handler.
package rpc

import (
	"fmt"
	"log/slog"
	"sort"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/votopopular/civic-api/internal/apperr"
	"github.com/votopopular/civic-api/internal/tenant"
)

type Kind int

const (
	Query Kind = iota
	Mutation
)

func (k Kind) String() string {
	if k == Mutation {
		return "mutation"
	}
	return "query"
}

// Handler receives the already validated input.
type Handler func(c *fiber.Ctx, a *tenant.Actor, in interface{}) (interface{}, error)

type Procedure struct {
	Name    string
	Kind    Kind
	Access  Access
	Input   func() interface{}
	Handler Handler
}

// NoInput is the input of procedures that take no arguments.
type NoInput struct{}

// NewQuery builds a query entry whose handler receives *In.
func NewQuery[In any](name string, access Access, fn func(c *fiber.Ctx, a *tenant.Actor, in *In) (interface{}, error)) Procedure {
	return typed(name, Query, access, fn)
}

// NewMutation builds a mutation entry whose handler receives *In.
func NewMutation[In any](name string, access Access, fn func(c *fiber.Ctx, a *tenant.Actor, in *In) (interface{}, error)) Procedure {
	return typed(name, Mutation, access, fn)
}

func typed[In any](name string, kind Kind, access Access, fn func(c *fiber.Ctx, a *tenant.Actor, in *In) (interface{}, error)) Procedure {
	return Procedure{
		Name:   name,
		Kind:   kind,
		Access: access,
		Input:  func() interface{} { return new(In) },
		Handler: func(c *fiber.Ctx, a *tenant.Actor, in interface{}) (interface{}, error) {
			return fn(c, a, in.(*In))
		},
	}
}

type Table struct {
	procs    map[string]Procedure
	validate *validator.Validate
}

func NewTable() *Table {
	return &Table{procs: map[string]Procedure{}, validate: NewValidator()}
}

// Register panics on duplicate or incomplete entries; the table is built once at startup.
func (t *Table) Register(procs ...Procedure) {
	for _, p := range procs {
		if p.Name == "" || p.Handler == nil || p.Input == nil {
			panic(fmt.Sprintf("rpc: incomplete procedure %q", p.Name))
		}
		if _, dup := t.procs[p.Name]; dup {
			panic(fmt.Sprintf("rpc: duplicate procedure %q", p.Name))
		}
		if p.Access.Floor != "" {
			p.Access.Auth = true
		}
		t.procs[p.Name] = p
	}
}

func (t *Table) Lookup(name string) (Procedure, bool) {
	p, ok := t.procs[name]
	return p, ok
}

// Names lists registered procedures in order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.procs))
	for name := range t.procs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Mount serves GET <prefix>/:name?input=<json> for queries and
// POST <prefix>/:name with a JSON body for both kinds.
func (t *Table) Mount(r fiber.Router) {
	r.Get("/:name", t.serve)
	r.Post("/:name", t.serve)
}

var (
	errUnknownProcedure = apperr.New(apperr.NotFound, "procedure", "unknown procedure")
	errMutationOverGet  = apperr.New(apperr.Validation, "method", "mutations must use POST")
	errMalformedInput   = apperr.New(apperr.Validation, "malformed", "malformed input")
)

func (t *Table) serve(c *fiber.Ctx) error {
	p, ok := t.procs[c.Params("name")]
	if !ok {
		return Fail(c, errUnknownProcedure)
	}
	if p.Kind == Mutation && c.Method() != fiber.MethodPost {
		return Fail(c, errMutationOverGet)
	}

	actor := tenant.GetActor(c)
	if err := Decide(actor, p.Access); err != nil {
		return Fail(c, err)
	}

	in := p.Input()
	raw := c.Body()
	if c.Method() == fiber.MethodGet {
		raw = []byte(c.Query("input"))
	}
	if len(raw) > 0 {
		if err := c.App().Config().JSONDecoder(raw, in); err != nil {
			return Fail(c, errMalformedInput)
		}
	}
	if err := t.validate.Struct(in); err != nil {
		return Fail(c, validationError(err))
	}

	data, err := p.Handler(c, actor, in)
	if err != nil {
		return Fail(c, err)
	}
	return c.JSON(fiber.Map{"result": fiber.Map{"data": data}})
}

// ErrorBody is the rendered form of a failure.
type ErrorBody struct {
	Code    apperr.Code       `json:"code"`
	Reason  string            `json:"reason,omitempty"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Fail renders err as {"error":{...}}. INTERNAL failures are logged and
// reported with their cause and rendered without it.
func Fail(c *fiber.Ctx, err error) error {
	e := apperr.From(err)
	body := ErrorBody{Code: e.Code, Reason: e.Reason, Message: e.Message, Fields: e.Fields}
	if e.Code == apperr.Internal {
		slog.Error("procedure failed",
			"procedure", c.Params("name"),
			"request_id", requestID(c),
			"user_id", tenant.GetActor(c).UserID(),
			"error", err.Error(),
		)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		body = ErrorBody{Code: apperr.Internal, Message: "internal error"}
	}
	return c.Status(e.Code.HTTPStatus()).JSON(fiber.Map{"error": body})
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}
