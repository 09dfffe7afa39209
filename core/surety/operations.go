package surety

import (
	"strconv"

	"flightsurety/core/airline"
	"flightsurety/core/flight"
	"flightsurety/core/insurance"
	"flightsurety/core/oracle"
	"flightsurety/core/state"
	"flightsurety/core/treasury"
	"flightsurety/types/ids"
	"flightsurety/types/units"
)

func flightMeta(k flight.Key) map[string]string {
	return k.Attributes()
}

// Airlines

func (c *Contract) RegisterAirline(caller, candidate ids.Address, name string) (airline.Result, state.Receipt, error) {
	var res airline.Result
	meta := map[string]string{"candidate": candidate.String()}
	receipt, err := c.mutate("RegisterAirline", caller, false, meta, func(tx *state.Tx) error {
		var err error
		res, err = c.airlines.Register(tx, caller, candidate, name)
		return err
	})
	return res, receipt, err
}

func (c *Contract) FundAirline(caller ids.Address, amount units.Amount) (state.Receipt, error) {
	meta := map[string]string{"amount": amount.String()}
	return c.mutate("FundAirline", caller, false, meta, func(tx *state.Tx) error {
		return c.airlines.Fund(tx, caller, amount)
	})
}

func (c *Contract) GetAirline(addr ids.Address) (airline.Airline, bool, error) {
	var (
		a  airline.Airline
		ok bool
	)
	err := c.view(func(tx *state.Tx) error {
		var err error
		a, ok, err = airline.Get(tx, addr)
		return err
	})
	return a, ok, err
}

func (c *Contract) IsAirlineRegistered(addr ids.Address) (bool, error) {
	a, _, err := c.GetAirline(addr)
	return a.Registered, err
}

func (c *Contract) IsAirlineFunded(addr ids.Address) (bool, error) {
	a, _, err := c.GetAirline(addr)
	return a.Funded, err
}

func (c *Contract) ListAirlines() ([]airline.Airline, error) {
	var out []airline.Airline
	err := c.view(func(tx *state.Tx) error {
		var err error
		out, err = airline.List(tx)
		return err
	})
	return out, err
}

func (c *Contract) TotalAirlines() (int, error) {
	var n int
	err := c.view(func(tx *state.Tx) error {
		var err error
		n, err = airline.TotalAirlines(tx)
		return err
	})
	return n, err
}

// Flights

func (c *Contract) RegisterFlight(caller ids.Address, code string, timestamp int64) (flight.Flight, state.Receipt, error) {
	var f flight.Flight
	k := flight.Key{Airline: caller, Code: code, Timestamp: timestamp}
	receipt, err := c.mutate("RegisterFlight", caller, false, flightMeta(k), func(tx *state.Tx) error {
		var err error
		f, err = flight.Register(tx, k)
		return err
	})
	return f, receipt, err
}

func (c *Contract) GetFlight(k flight.Key) (flight.Flight, bool, error) {
	var (
		f  flight.Flight
		ok bool
	)
	err := c.view(func(tx *state.Tx) error {
		var err error
		f, ok, err = flight.Get(tx, k.ID())
		return err
	})
	return f, ok, err
}

func (c *Contract) IsFlightRegistered(k flight.Key) (bool, error) {
	_, ok, err := c.GetFlight(k)
	return ok, err
}

// FlightStatus returns the status code and whether it is final.
func (c *Contract) FlightStatus(k flight.Key) (flight.StatusCode, bool, error) {
	var (
		status flight.StatusCode
		final  bool
	)
	err := c.view(func(tx *state.Tx) error {
		var err error
		status, final, err = flight.Status(tx, k.ID())
		return err
	})
	return status, final, err
}

func (c *Contract) ListFlights() ([]flight.Flight, error) {
	var out []flight.Flight
	err := c.view(func(tx *state.Tx) error {
		var err error
		out, err = flight.List(tx)
		return err
	})
	return out, err
}

// Insurance

func (c *Contract) BuyInsurance(caller ids.Address, k flight.Key, premium units.Amount) (insurance.Policy, state.Receipt, error) {
	var p insurance.Policy
	meta := flightMeta(k)
	meta["premium"] = premium.String()
	receipt, err := c.mutate("BuyInsurance", caller, false, meta, func(tx *state.Tx) error {
		var err error
		p, err = c.ledger.Buy(tx, k, premium, caller)
		return err
	})
	return p, receipt, err
}

func (c *Contract) IsFlightInsured(k flight.Key, passenger ids.Address) (bool, error) {
	var ok bool
	err := c.view(func(tx *state.Tx) error {
		var err error
		ok, err = c.ledger.IsFlightInsured(tx, k.ID(), passenger)
		return err
	})
	return ok, err
}

func (c *Contract) Policies(k flight.Key) ([]insurance.Policy, error) {
	var out []insurance.Policy
	err := c.view(func(tx *state.Tx) error {
		var err error
		out, err = c.ledger.Policies(tx, k.ID())
		return err
	})
	return out, err
}

func (c *Contract) CheckCredit(passenger ids.Address) (units.Amount, error) {
	var bal units.Amount
	err := c.view(func(tx *state.Tx) error {
		var err error
		bal, err = c.ledger.CheckCredit(tx, passenger)
		return err
	})
	return bal, err
}

// Pay withdraws the caller's entire credit.
func (c *Contract) Pay(caller ids.Address) (treasury.Payout, state.Receipt, error) {
	var p treasury.Payout
	receipt, err := c.mutate("Pay", caller, false, nil, func(tx *state.Tx) error {
		var err error
		p, err = c.ledger.Pay(tx, caller)
		return err
	})
	return p, receipt, err
}

func (c *Contract) Treasury() (treasury.Treasury, error) {
	var t treasury.Treasury
	err := c.view(func(tx *state.Tx) error {
		var err error
		t, err = treasury.Get(tx)
		return err
	})
	return t, err
}

// Oracles

func (c *Contract) RegisterOracle(caller ids.Address, fee units.Amount) (oracle.Oracle, state.Receipt, error) {
	var o oracle.Oracle
	receipt, err := c.mutate("RegisterOracle", caller, false, map[string]string{"fee": fee.String()}, func(tx *state.Tx) error {
		var err error
		o, err = c.oracles.Register(tx, caller, fee)
		return err
	})
	return o, receipt, err
}

func (c *Contract) GetMyIndexes(caller ids.Address) ([]uint8, error) {
	var idx []uint8
	err := c.view(func(tx *state.Tx) error {
		var err error
		idx, err = c.oracles.GetMyIndexes(tx, caller)
		return err
	})
	return idx, err
}

func (c *Contract) ListOracles() ([]oracle.Oracle, error) {
	var out []oracle.Oracle
	err := c.view(func(tx *state.Tx) error {
		var err error
		out, err = oracle.List(tx)
		return err
	})
	return out, err
}

// FetchFlightStatus opens a status request and emits OracleRequest.
func (c *Contract) FetchFlightStatus(caller ids.Address, k flight.Key) (oracle.Request, state.Receipt, error) {
	var req oracle.Request
	receipt, err := c.mutate("FetchFlightStatus", caller, false, flightMeta(k), func(tx *state.Tx) error {
		var err error
		req, err = c.oracles.FetchFlightStatus(tx, k)
		return err
	})
	return req, receipt, err
}

func (c *Contract) SubmitOracleResponse(caller ids.Address, index uint8, k flight.Key, status flight.StatusCode) (oracle.Outcome, state.Receipt, error) {
	var out oracle.Outcome
	meta := flightMeta(k)
	meta["index"] = strconv.Itoa(int(index))
	meta["status"] = strconv.Itoa(int(status))
	receipt, err := c.mutate("SubmitOracleResponse", caller, false, meta, func(tx *state.Tx) error {
		var err error
		out, err = c.oracles.Submit(tx, caller, index, k, status)
		return err
	})
	return out, receipt, err
}
