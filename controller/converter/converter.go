package converter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kylycht/fxpad/model"
	"github.com/kylycht/fxpad/service/conversion"
	"github.com/kylycht/fxpad/service/state"
	"github.com/kylycht/fxpad/storage/cache"
	"github.com/rs/zerolog/log"
)

// Machine runs state transitions
type Machine interface {
	Dispatch(ctx context.Context, ev state.Event) (state.State, error)
	Snapshot() state.State
}

// Rates gives access to the rate table in use
type Rates interface {
	Cache() model.RateCache
	Expired() bool
	FetchAndUpdate(ctx context.Context) error
}

func New(machine Machine, rates Rates, catalog model.Catalog) *Converter {
	return &Converter{machine: machine, rates: rates, catalog: catalog}
}

type Converter struct {
	machine Machine
	rates   Rates
	catalog model.Catalog
}

// StateView is the JSON shape of the conversion screen
type StateView struct {
	Anchor         string       `json:"anchor"`
	AnchorValue    float64      `json:"anchorValue"`
	Items          []state.Item `json:"items"`
	RatesTimestamp time.Time    `json:"ratesTimestamp"`
	RatesExpired   bool         `json:"ratesExpired"`
	Message        string       `json:"message,omitempty"`
}

// RatesView is the JSON shape of the rate table in use
type RatesView struct {
	Pivot     string             `json:"pivot"`
	Rates     map[string]float64 `json:"rates"`
	Timestamp time.Time          `json:"timestamp"`
	Expired   bool               `json:"expired"`
}

// Register mounts the routes on r
func (c *Converter) Register(r fiber.Router) {
	r.Get("/convert", c.Convert)
	r.Get("/state", c.State)
	r.Get("/currencies", c.Currencies)
	r.Post("/keypad/digit/:digit", c.Digit)
	r.Post("/keypad/decimal", c.DecimalPoint)
	r.Post("/keypad/backspace", c.Backspace)
	r.Put("/anchor/text", c.EditText)
	r.Put("/anchor/selection", c.Select)
	r.Post("/currencies/:code", c.AddCurrency)
	r.Delete("/currencies/:code", c.RemoveCurrency)
	r.Post("/currencies/:code/active", c.SetActive)
	r.Get("/rates", c.Rates)
	r.Post("/rates/refresh", c.Refresh)
}

// Convert godoc
//
//	@Summary		Convert an amount between two currencies
//	@Description	converts through the pivot currency using the rates in use
//	@Tags			converter
//	@Param			from	query	string	true	"From Currency" example(USD)
//	@Param			to		query	string	true	"To Currency"   example(GBP)
//	@Param			amount	query	number	false	"Amount"        example(3.1)
//	@Success		200	{string}	string "2.284"
//	@Failure		400	{string}	string "invalid conversion for pair: CNY/XXX"
//	@Router			/convert [get]
func (c *Converter) Convert(ctx *fiber.Ctx) error {
	from := strings.ToUpper(ctx.Query("from"))
	to := strings.ToUpper(ctx.Query("to"))
	amount := ctx.QueryFloat("amount", 1)

	_, okFrom := c.catalog.Lookup(from)
	_, okTo := c.catalog.Lookup(to)
	if !okFrom || !okTo {
		return ctx.Status(http.StatusBadRequest).SendString(fmt.Sprintf("invalid conversion for pair: %s/%s", from, to))
	}

	log.Debug().Str(from, to).Float64("amount", amount).Msg("converting")

	result := conversion.Convert(from, to, amount, c.rates.Cache().Rates)
	_, err := ctx.WriteString(fmt.Sprintf("%f", result))
	if err != nil {
		log.Error().Err(err).Msg("error occurred during result write op")
		return err
	}

	return nil
}

// State godoc
//
//	@Summary	Current conversion screen
//	@Tags		state
//	@Success	200	{object}	StateView
//	@Router		/state [get]
func (c *Converter) State(ctx *fiber.Ctx) error {
	return ctx.JSON(c.view(c.machine.Snapshot(), ""))
}

// Currencies lists the selectable currencies
func (c *Converter) Currencies(ctx *fiber.Ctx) error {
	return ctx.JSON(c.catalog.Currencies())
}

// Digit godoc
//
//	@Summary	Press a keypad digit
//	@Tags		keypad
//	@Param		digit	path	string	true	"Digit 0-9"
//	@Success	200	{object}	StateView
//	@Failure	400	{string}	string "invalid digit"
//	@Router		/keypad/digit/{digit} [post]
func (c *Converter) Digit(ctx *fiber.Ctx) error {
	d := ctx.Params("digit")
	if len(d) != 1 || d[0] < '0' || d[0] > '9' {
		return ctx.Status(http.StatusBadRequest).SendString("invalid digit: " + d)
	}
	return c.dispatch(ctx, state.Digit(d))
}

// DecimalPoint presses the keypad decimal separator
func (c *Converter) DecimalPoint(ctx *fiber.Ctx) error {
	return c.dispatch(ctx, state.DecimalPoint())
}

// Backspace presses the keypad backspace
func (c *Converter) Backspace(ctx *fiber.Ctx) error {
	return c.dispatch(ctx, state.Backspace())
}

type textRequest struct {
	Text string `json:"text"`
}

// EditText godoc
//
//	@Summary	Replace the anchor text, e.g. on paste
//	@Tags		state
//	@Param		body	body	textRequest	true	"New text"
//	@Success	200	{object}	StateView
//	@Router		/anchor/text [put]
func (c *Converter) EditText(ctx *fiber.Ctx) error {
	var req textRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(http.StatusBadRequest).SendString(err.Error())
	}
	return c.dispatch(ctx, state.EditText(req.Text))
}

// Select moves the anchor cursor or selection
func (c *Converter) Select(ctx *fiber.Ctx) error {
	var req state.Selection
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(http.StatusBadRequest).SendString(err.Error())
	}
	return c.dispatch(ctx, state.Select(req.Start, req.End))
}

// AddCurrency appends a currency to the selection
func (c *Converter) AddCurrency(ctx *fiber.Ctx) error {
	return c.dispatch(ctx, state.AddCurrency(ctx.Params("code")))
}

// RemoveCurrency drops a currency from the selection
func (c *Converter) RemoveCurrency(ctx *fiber.Ctx) error {
	return c.dispatch(ctx, state.RemoveCurrency(ctx.Params("code")))
}

// SetActive makes a selected currency the anchor
func (c *Converter) SetActive(ctx *fiber.Ctx) error {
	return c.dispatch(ctx, state.SetActive(ctx.Params("code")))
}

// Rates returns the rate table in use
func (c *Converter) Rates(ctx *fiber.Ctx) error {
	snapshot := c.rates.Cache()
	return ctx.JSON(RatesView{
		Pivot:     snapshot.Rates.Pivot(),
		Rates:     snapshot.Rates.Map(),
		Timestamp: snapshot.Timestamp,
		Expired:   c.rates.Expired(),
	})
}

// Refresh godoc
//
//	@Summary		Fetch fresh rates
//	@Description	on failure the last known rates stay in use
//	@Tags			rates
//	@Success		200	{object}	StateView
//	@Failure		500	{object}	StateView
//	@Failure		502	{object}	StateView
//	@Router			/rates/refresh [post]
func (c *Converter) Refresh(ctx *fiber.Ctx) error {
	err := c.rates.FetchAndUpdate(ctx.UserContext())
	switch {
	case errors.Is(err, cache.ErrNotSaved):
		log.Error().Err(err).Msg("refreshed rates not persisted")
		return ctx.Status(http.StatusInternalServerError).JSON(c.view(c.machine.Snapshot(), "rates refreshed but not saved"))
	case err != nil:
		log.Error().Err(err).Msg("rate refresh failed")
		return ctx.Status(http.StatusBadGateway).JSON(c.view(c.machine.Snapshot(), "unable to refresh rates, showing last known rates"))
	}

	return ctx.JSON(c.view(c.machine.Snapshot(), ""))
}

func (c *Converter) dispatch(ctx *fiber.Ctx, ev state.Event) error {
	s, err := c.machine.Dispatch(ctx.UserContext(), ev)
	switch {
	case errors.Is(err, state.ErrUnknownCurrency):
		return ctx.Status(http.StatusBadRequest).JSON(c.view(s, err.Error()))
	case err != nil:
		log.Error().Err(err).Str("event", ev.Name).Msg("unable to apply transition")
		return ctx.Status(http.StatusServiceUnavailable).SendString(err.Error())
	}

	return ctx.JSON(c.view(s, ""))
}

func (c *Converter) view(s state.State, msg string) StateView {
	snapshot := c.rates.Cache()
	return StateView{
		Anchor:         s.Anchor(),
		AnchorValue:    s.AnchorValue(),
		Items:          s.Items(),
		RatesTimestamp: snapshot.Timestamp,
		RatesExpired:   c.rates.Expired(),
		Message:        msg,
	}
}
