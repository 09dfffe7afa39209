package validation

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema names, one per API request body plus the genesis document.
const (
	RegisterAirline      = "register_airline"
	FundAirline          = "fund_airline"
	RegisterFlight       = "register_flight"
	BuyInsurance         = "buy_insurance"
	FetchFlightStatus    = "fetch_flight_status"
	RegisterOracle       = "register_oracle"
	SubmitOracleResponse = "submit_oracle_response"
	AuthorizeCaller      = "authorize_caller"
	OperatingStatus      = "operating_status"
	Genesis              = "genesis"
)

var (
	schemaMu sync.Mutex
	compiled = map[string]*gojsonschema.Schema{}
)

func schema(name string) (*gojsonschema.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()
	if s, ok := compiled[name]; ok {
		return s, nil
	}
	raw, err := schemaFS.ReadFile("schemas/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("unknown schema %q: %w", name, err)
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", name, err)
	}
	compiled[name] = s
	return s, nil
}

// ValidatePayload checks a raw JSON document against the named schema.
func ValidatePayload(name string, payload []byte) error {
	s, err := schema(name)
	if err != nil {
		return err
	}
	result, err := s.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		AuditValidationError(name, "invalid JSON")
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		reason := strings.Join(msgs, "; ")
		AuditValidationError(name, reason)
		return &Error{Schema: name, Reason: reason}
	}
	return nil
}

// Error reports a payload that does not match its schema.
type Error struct {
	Schema string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("payload failed %s validation: %s", e.Schema, e.Reason)
}
